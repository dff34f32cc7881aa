package service

import "time"

// Clock — источник времени; в тестах подменяется.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock — реальное время.
var SystemClock Clock = systemClock{}
