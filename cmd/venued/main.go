// Command venued runs the venue's wire server: two matching engines (spot
// and futures) behind one TCP listener.
package main

import (
	"context"
	"flag"
	"os/signal"
	"strings"
	"syscall"

	"venue/internal/engine"
	"venue/internal/venue"
	"venue/internal/wire"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	address := flag.String("address", "0.0.0.0", "listen address")
	port := flag.Int("port", 9001, "listen port")
	symbolList := flag.String("symbols", "AAPL,MSFT,GOOG", "comma-separated list of admitted symbols")
	sideCapacity := flag.Int("side-capacity", 0, "per-side, per-symbol resting order capacity (0 = book default)")
	tapeCapacity := flag.Int("tape-capacity", 0, "per-symbol trade tape capacity (0 = tape default)")
	maxBars := flag.Int("max-bars", 0, "per-(symbol,interval) candle retention (0 = candles default)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	symbols := splitSymbols(*symbolList)

	v := venue.New(symbols, engine.Options{
		SideCapacity: *sideCapacity,
		TapeCapacity: *tapeCapacity,
		MaxBars:      *maxBars,
	})

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	srv := wire.New(*address, *port, v)

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	log.Info().Strs("symbols", symbols).Int("port", *port).Msg("venue daemon started")

	<-ctx.Done()
	srv.Shutdown()
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
