// Package venue owns the two independent matching engines (spot and
// futures) that the rest of the process addresses, as two
// explicitly-constructed instances threaded through a handle rather than
// package-level singletons.
package venue

import "venue/internal/engine"

// Venue is the pair of engine instances a process constructs once at boot
// and threads through every transport it exposes.
type Venue struct {
	Spot    *engine.Engine
	Futures *engine.Engine
}

// New constructs a Venue with both engines admitting the same symbol set and
// sharing the same resource limits. Futures and spot differ only by which
// engine instance a request addresses.
func New(symbols []string, opts engine.Options) *Venue {
	return &Venue{
		Spot:    engine.New(symbols, opts),
		Futures: engine.New(symbols, opts),
	}
}

// Engine returns the Spot or Futures engine depending on isFutures.
func (v *Venue) Engine(isFutures bool) *engine.Engine {
	if isFutures {
		return v.Futures
	}
	return v.Spot
}
