package config

import (
	"fmt"
	"strings"
	"time"

	"cryptocheck/internal/helper"
	"cryptocheck/internal/models"
)

func invalid(field, format string, args ...any) error {
	return &models.ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate — проверка констант политики. Ошибка фатальна для старта.
func (c *Config) Validate() error {
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return invalid("service.port", "must be in 1..65535, got %d", c.Service.Port)
	}

	switch c.Market.Provider {
	case "okx", "cryptocompare":
	default:
		return invalid("market.provider", "must be okx or cryptocompare, got %q", c.Market.Provider)
	}
	switch c.Market.PriceFeed {
	case "rest", "ws":
	default:
		return invalid("market.price_feed", "must be rest or ws, got %q", c.Market.PriceFeed)
	}
	if c.Market.FetchTimeout <= 0 {
		return invalid("market.fetch_timeout", "must be positive")
	}
	for _, f := range []struct{ name, tf string }{{"market.short_tf", c.Market.ShortTF}, {"market.long_tf", c.Market.LongTF}} {
		if helper.TFDuration(models.Timeframe(f.tf)) == 0 {
			return invalid(f.name, "unknown timeframe %q", f.tf)
		}
	}
	if helper.TFDuration(models.Timeframe(c.Market.ShortTF)) >= helper.TFDuration(models.Timeframe(c.Market.LongTF)) {
		return invalid("market.short_tf", "must be shorter than long_tf")
	}

	if len(c.Universe.Symbols) == 0 && c.Universe.TopVolatile <= 0 {
		return invalid("universe.symbols", "empty universe")
	}
	for _, s := range c.Universe.Symbols {
		if _, _, ok := helper.SplitSymbol(s); !ok {
			return invalid("universe.symbols", "unsupported symbol %q", s)
		}
	}
	if c.Universe.TopVolatile < 0 {
		return invalid("universe.top_volatile", "must not be negative")
	}

	s := c.Scheduler
	if s.Interval <= 0 {
		return invalid("scheduler.interval", "must be positive")
	}
	if s.MonitorInterval <= 0 {
		return invalid("scheduler.monitor_interval", "must be positive")
	}
	if s.MonitorInterval >= s.Interval {
		return invalid("scheduler.monitor_interval", "must be shorter than scheduler.interval (%s)", s.Interval)
	}
	if s.Workers <= 0 {
		return invalid("scheduler.workers", "must be positive")
	}
	if s.HeartbeatInterval < 0 {
		return invalid("scheduler.heartbeat_interval", "must not be negative")
	}
	if s.QuietStartHour < 0 || s.QuietStartHour > 23 || s.QuietEndHour < 0 || s.QuietEndHour > 23 {
		return invalid("scheduler.quiet_start_hour", "quiet hours must be in 0..23")
	}
	if s.TZOffsetHours < -12 || s.TZOffsetHours > 14 {
		return invalid("scheduler.tz_offset_hours", "must be in -12..14")
	}

	if err := c.Rules.validate(); err != nil {
		return err
	}
	if c.Market.BarLimit < c.Rules.WarmupBars() {
		return invalid("market.bar_limit", "%d bars do not cover warmup of %d", c.Market.BarLimit, c.Rules.WarmupBars())
	}

	r := c.Risk
	if r.SLATRMult <= 0 || r.TP1ATRMult <= 0 || r.TP2ATRMult <= 0 {
		return invalid("risk", "atr multipliers must be positive")
	}
	if r.TP2ATRMult < r.TP1ATRMult {
		return invalid("risk.tp2_atr_mult", "must not be below tp1_atr_mult")
	}
	if r.MinATRRatio < 0 {
		return invalid("risk.min_atr_ratio", "must not be negative")
	}

	switch c.Cooldown.Policy {
	case "time":
		if c.Cooldown.Window <= 0 {
			return invalid("cooldown.window", "must be positive for time policy")
		}
	case "bar":
	default:
		return invalid("cooldown.policy", "must be time or bar, got %q", c.Cooldown.Policy)
	}

	switch c.Alerts.OpenPolicy {
	case "suppress", "replace":
	default:
		return invalid("alerts.open_policy", "must be suppress or replace, got %q", c.Alerts.OpenPolicy)
	}

	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return invalid("telegram.chat_id", "required when token is set")
	}
	if c.Telegram.SendTimeout <= 0 {
		return invalid("telegram.send_timeout", "must be positive")
	}
	if c.Telegram.PollTimeout < time.Second {
		return invalid("telegram.poll_timeout", "must be at least 1s, got %s", c.Telegram.PollTimeout)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return invalid("log.format", "must be json or console, got %q", c.Log.Format)
	}
	return nil
}

func (r RulesConfig) validate() error {
	ratios := []struct {
		name string
		v    float64
	}{
		{"rules.body_threshold", r.BodyThreshold},
		{"rules.body_max_ratio", r.BodyMaxRatio},
		{"rules.tail_min_ratio", r.TailMinRatio},
		{"rules.opposite_tail_max_ratio", r.OppositeTailMaxRatio},
		{"rules.doji_body_threshold", r.DojiBodyThreshold},
	}
	for _, x := range ratios {
		if x.v <= 0 || x.v > 1 {
			return invalid(x.name, "must be in (0, 1], got %v", x.v)
		}
	}
	if r.SpikeMultiplier < 0 {
		return invalid("rules.spike_multiplier", "must not be negative")
	}
	if r.ConfidenceThreshold < 1 || r.ConfidenceThreshold > 4 {
		return invalid("rules.confidence_threshold", "must be in 1..4, got %d", r.ConfidenceThreshold)
	}
	if r.TrendStrengthThreshold < 0 || r.TrendStrengthThreshold > 100 {
		return invalid("rules.trend_strength_threshold", "must be in 0..100")
	}
	if r.OscillatorMidline <= 0 || r.OscillatorMidline >= 100 {
		return invalid("rules.oscillator_midline", "must be in (0, 100)")
	}

	periods := []struct {
		name string
		v    int
	}{
		{"rules.ema_fast", r.EMAFast},
		{"rules.ema_slow", r.EMASlow},
		{"rules.rsi_period", r.RSIPeriod},
		{"rules.macd_fast", r.MACDFast},
		{"rules.macd_slow", r.MACDSlow},
		{"rules.macd_signal", r.MACDSignal},
		{"rules.atr_period", r.ATRPeriod},
		{"rules.adx_period", r.ADXPeriod},
	}
	for _, p := range periods {
		if p.v < 2 {
			return invalid(p.name, "period must be at least 2, got %d", p.v)
		}
	}
	if r.EMAFast >= r.EMASlow {
		return invalid("rules.ema_fast", "must be shorter than ema_slow")
	}
	if r.MACDFast >= r.MACDSlow {
		return invalid("rules.macd_fast", "must be shorter than macd_slow")
	}
	return nil
}

// WarmupBars — сколько закрытых баров нужно индикаторам.
func (r RulesConfig) WarmupBars() int {
	n := r.EMASlow
	for _, x := range []int{r.EMAFast, r.RSIPeriod + 1, r.MACDSlow + r.MACDSignal - 1, r.ATRPeriod + 1, 2 * r.ADXPeriod} {
		if x > n {
			n = x
		}
	}
	return n
}
