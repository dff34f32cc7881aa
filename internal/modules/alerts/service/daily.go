package service

import (
	"sync"
	"time"

	"cryptocheck/internal/helper"
)

type Counters struct {
	Emitted int
	Wins    int
	Losses  int
}

// DayReport — итог завершившихся локальных суток.
type DayReport struct {
	Day string
	Counters
}

// Daily — счётчики текущих локальных суток. Смена дня определяется по now
// в каждом вызове; закрытые сутки копятся до TakeReports.
type Daily struct {
	loc *time.Location

	mu      sync.Mutex
	day     string
	cur     Counters
	pending []DayReport
}

func NewDaily(loc *time.Location) *Daily {
	if loc == nil {
		loc = time.UTC
	}
	return &Daily{loc: loc}
}

func (d *Daily) IncEmitted(now time.Time) { d.add(now, func(c *Counters) { c.Emitted++ }) }
func (d *Daily) IncWin(now time.Time)     { d.add(now, func(c *Counters) { c.Wins++ }) }
func (d *Daily) IncLoss(now time.Time)    { d.add(now, func(c *Counters) { c.Losses++ }) }

func (d *Daily) add(now time.Time, f func(*Counters)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roll(now)
	f(&d.cur)
}

// Current — счётчики суток, в которые попадает now.
func (d *Daily) Current(now time.Time) (string, Counters) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roll(now)
	return d.day, d.cur
}

// TakeReports отдаёт и очищает накопленные итоги прошедших суток.
func (d *Daily) TakeReports(now time.Time) []DayReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roll(now)
	out := d.pending
	d.pending = nil
	return out
}

func (d *Daily) roll(now time.Time) {
	day := helper.LocalDay(now, d.loc)
	switch {
	case d.day == "":
		d.day = day
	case day > d.day:
		d.pending = append(d.pending, DayReport{Day: d.day, Counters: d.cur})
		d.day = day
		d.cur = Counters{}
	}
}
