package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData — баров меньше, чем нужно для прогрева индикаторов.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrAlertOpen — по символу уже есть открытый алерт.
	ErrAlertOpen = errors.New("alert already open")
)

// FetchError — сбой источника свечей/цен: сеть, API или битый ответ.
type FetchError struct {
	Symbol    string
	Timeframe Timeframe
	Err       error
}

func (e *FetchError) Error() string {
	if e.Timeframe == "" {
		return fmt.Sprintf("fetch %s: %v", e.Symbol, e.Err)
	}
	return fmt.Sprintf("fetch %s %s: %v", e.Symbol, e.Timeframe, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DeliveryError — сообщение не доставлено в канал уведомлений.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return "delivery: " + e.Err.Error() }
func (e *DeliveryError) Unwrap() error { return e.Err }

// ConfigError — невалидная конфигурация, процесс не стартует.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}
