package service

import (
	"sync/atomic"
	"time"
)

// State — сводка для health-эндпоинтов. Пишут планировщик и ценовой фид.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	wsConnected   atomic.Bool
	lastCycleUnix atomic.Int64 // unix seconds
	openAlerts    atomic.Int64
	symbols       atomic.Int64
	quiet         atomic.Bool
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetWSConnected(v bool) { s.wsConnected.Store(v) }
func (s *State) WSConnected() bool     { return s.wsConnected.Load() }

// TouchCycle — отметка завершённого цикла оценки; первый цикл делает сервис ready.
func (s *State) TouchCycle(t time.Time) {
	s.lastCycleUnix.Store(t.Unix())
	s.ready.Store(true)
}

func (s *State) LastCycle() time.Time {
	u := s.lastCycleUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) SetOpenAlerts(n int) { s.openAlerts.Store(int64(n)) }
func (s *State) OpenAlerts() int     { return int(s.openAlerts.Load()) }

func (s *State) SetSymbols(n int) { s.symbols.Store(int64(n)) }
func (s *State) Symbols() int     { return int(s.symbols.Load()) }

func (s *State) SetQuiet(v bool) { s.quiet.Store(v) }
func (s *State) Quiet() bool     { return s.quiet.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
