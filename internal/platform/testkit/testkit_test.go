package testkit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	scoreFn  = func(base int) int { return base }
	levelCap = 10
)

func TestSwap_RestoresAfterSubtest(t *testing.T) {
	t.Run("func", func(t *testing.T) {
		Swap(t, &scoreFn, func(int) int { return 99 })
		assert.Equal(t, 99, scoreFn(5))
	})
	assert.Equal(t, 5, scoreFn(5))

	t.Run("int", func(t *testing.T) {
		Swap(t, &levelCap, 42)
		assert.Equal(t, 42, levelCap)
	})
	assert.Equal(t, 10, levelCap)
}

func TestSerial_NoInterleaving(t *testing.T) {
	var mu sync.Mutex
	var seq []string
	record := func(s string) {
		mu.Lock()
		seq = append(seq, s)
		mu.Unlock()
	}

	t.Run("group", func(t *testing.T) {
		for _, name := range []string{"a", "b"} {
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				Serial(t)
				record(name + "-start")
				time.Sleep(20 * time.Millisecond)
				record(name + "-end")
			})
		}
	})

	assert.Len(t, seq, 4)
	assert.Equal(t, seq[0][:1], seq[1][:1], "first pair interleaved: %v", seq)
	assert.Equal(t, seq[2][:1], seq[3][:1], "second pair interleaved: %v", seq)
}

func TestMustPanic_ReturnsValue(t *testing.T) {
	got := MustPanic(t, func() { panic("boom") })
	assert.Equal(t, "boom", got)
}
