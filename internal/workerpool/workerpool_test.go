package workerpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tomb "gopkg.in/tomb.v2"
)

func TestPool_RunProcessesQueuedTasks(t *testing.T) {
	p := New(2)
	var processed int32

	tb := new(tomb.Tomb)
	p.Run(tb, func(_ *tomb.Tomb, task any) error {
		atomic.AddInt32(&processed, task.(int32))
		return nil
	})

	for i := int32(1); i <= 5; i++ {
		p.AddTask(i)
	}

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&processed) == 15
	}, time.Second, 10*time.Millisecond)

	tb.Kill(nil)
}
