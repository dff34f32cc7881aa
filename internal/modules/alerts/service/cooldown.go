package service

import (
	"sync"
	"time"

	"cryptocheck/internal/helper"
	"cryptocheck/internal/models"
)

type CooldownMode string

const (
	// CooldownTime — не чаще одного сигнала symbol+direction за Window.
	CooldownTime CooldownMode = "time"
	// CooldownBar — не больше одного сигнала symbol+direction на бар.
	CooldownBar CooldownMode = "bar"
)

type CooldownPolicy struct {
	Mode   CooldownMode
	Window time.Duration
}

// CooldownStore — антиспам повторных сигналов. Проверка и запись под одной блокировкой.
type CooldownStore struct {
	policy CooldownPolicy

	mu   sync.Mutex
	last map[string]time.Time
}

func NewCooldownStore(policy CooldownPolicy) *CooldownStore {
	return &CooldownStore{
		policy: policy,
		last:   make(map[string]time.Time),
	}
}

func (s *CooldownStore) Policy() CooldownPolicy { return s.policy }

// Admit — marker: wall-clock для CooldownTime, время бара для CooldownBar.
// Отказ состояние не меняет.
func (s *CooldownStore) Admit(symbol string, dir models.Direction, marker time.Time) bool {
	key := helper.DirectionKey(symbol, dir)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, seen := s.last[key]
	if seen {
		switch s.policy.Mode {
		case CooldownBar:
			if prev.Equal(marker) {
				return false
			}
		default:
			if marker.Sub(prev) < s.policy.Window {
				return false
			}
		}
	}
	s.last[key] = marker
	return true
}

func (s *CooldownStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.last)
}
