package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cryptocheck/internal/models"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCooldownTimeWindow(t *testing.T) {
	s := NewCooldownStore(CooldownPolicy{Mode: CooldownTime, Window: 1800 * time.Second})

	assert.True(t, s.Admit("BTCUSDT", models.DirectionLong, t0))
	assert.False(t, s.Admit("BTCUSDT", models.DirectionLong, t0.Add(100*time.Second)))
	assert.True(t, s.Admit("BTCUSDT", models.DirectionLong, t0.Add(1801*time.Second)))
}

func TestCooldownKeyedBySymbolAndDirection(t *testing.T) {
	s := NewCooldownStore(CooldownPolicy{Mode: CooldownTime, Window: time.Hour})

	assert.True(t, s.Admit("BTCUSDT", models.DirectionLong, t0))
	assert.True(t, s.Admit("BTCUSDT", models.DirectionShort, t0))
	assert.True(t, s.Admit("ETHUSDT", models.DirectionLong, t0))
	assert.Equal(t, 3, s.Len())
}

func TestCooldownRejectDoesNotWrite(t *testing.T) {
	s := NewCooldownStore(CooldownPolicy{Mode: CooldownTime, Window: 30 * time.Minute})

	assert.True(t, s.Admit("BTCUSDT", models.DirectionLong, t0))
	// отказ на +20м не сдвигает окно: +30м уже проходит
	assert.False(t, s.Admit("BTCUSDT", models.DirectionLong, t0.Add(20*time.Minute)))
	assert.True(t, s.Admit("BTCUSDT", models.DirectionLong, t0.Add(30*time.Minute)))
}

func TestCooldownPerBar(t *testing.T) {
	s := NewCooldownStore(CooldownPolicy{Mode: CooldownBar})
	bar1 := t0
	bar2 := t0.Add(15 * time.Minute)

	assert.True(t, s.Admit("BTCUSDT", models.DirectionLong, bar1))
	assert.False(t, s.Admit("BTCUSDT", models.DirectionLong, bar1))
	assert.True(t, s.Admit("BTCUSDT", models.DirectionLong, bar2))
	assert.False(t, s.Admit("BTCUSDT", models.DirectionLong, bar2))
}

func TestCooldownConcurrentAdmit(t *testing.T) {
	s := NewCooldownStore(CooldownPolicy{Mode: CooldownTime, Window: time.Hour})

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Admit("BTCUSDT", models.DirectionLong, t0) {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), admitted.Load())
}
