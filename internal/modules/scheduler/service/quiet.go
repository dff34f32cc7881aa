package service

import "time"

// QuietHours — локальный интервал [Start, End) часов без сканирования.
// Start > End переходит через полночь; Start == End выключает тишину.
type QuietHours struct {
	Start int
	End   int
	Loc   *time.Location
}

func (q QuietHours) Contains(now time.Time) bool {
	if q.Start == q.End {
		return false
	}
	loc := q.Loc
	if loc == nil {
		loc = time.UTC
	}
	h := now.In(loc).Hour()
	if q.Start < q.End {
		return h >= q.Start && h < q.End
	}
	return h >= q.Start || h < q.End
}
