package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDir         = "configs"
	defaultConfigFile = "values_local.yaml"
)

// Config — настройки процесса. Загружаются один раз при старте.
type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Market    MarketConfig    `mapstructure:"market"`
	Universe  UniverseConfig  `mapstructure:"universe"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Cooldown  CooldownConfig  `mapstructure:"cooldown"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
}

type ServiceConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

type TracingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

type MarketConfig struct {
	Provider         string        `mapstructure:"provider"`   // okx | cryptocompare
	PriceFeed        string        `mapstructure:"price_feed"` // rest | ws
	OKXBaseURL       string        `mapstructure:"okx_base_url"`
	OKXWSURL         string        `mapstructure:"okx_ws_url"`
	CryptoCompareURL string        `mapstructure:"cryptocompare_url"`
	APIKey           string        `mapstructure:"api_key"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
	BarLimit         int           `mapstructure:"bar_limit"`
	ShortTF          string        `mapstructure:"short_tf"`
	LongTF           string        `mapstructure:"long_tf"`
	PriceMaxAge      time.Duration `mapstructure:"price_max_age"`
}

type UniverseConfig struct {
	Symbols     []string `mapstructure:"symbols"`
	TopVolatile int      `mapstructure:"top_volatile"`
}

type SchedulerConfig struct {
	Interval          time.Duration `mapstructure:"interval"`
	MonitorInterval   time.Duration `mapstructure:"monitor_interval"`
	Workers           int           `mapstructure:"workers"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	QuietStartHour    int           `mapstructure:"quiet_start_hour"`
	QuietEndHour      int           `mapstructure:"quiet_end_hour"`
	TZOffsetHours     int           `mapstructure:"tz_offset_hours"`
	DailyReport       bool          `mapstructure:"daily_report"`
}

// RulesConfig — пороги паттернов, скоринга и периоды индикаторов.
// Значения пресета перекрываются явными ключами rules.*.
type RulesConfig struct {
	Preset string `mapstructure:"preset" yaml:"-"`

	BodyThreshold        float64 `mapstructure:"body_threshold" yaml:"body_threshold"`
	BodyMaxRatio         float64 `mapstructure:"body_max_ratio" yaml:"body_max_ratio"`
	TailMinRatio         float64 `mapstructure:"tail_min_ratio" yaml:"tail_min_ratio"`
	OppositeTailMaxRatio float64 `mapstructure:"opposite_tail_max_ratio" yaml:"opposite_tail_max_ratio"`
	DojiBodyThreshold    float64 `mapstructure:"doji_body_threshold" yaml:"doji_body_threshold"`
	DojiBias             bool    `mapstructure:"doji_bias" yaml:"doji_bias"`
	SpikeMultiplier      float64 `mapstructure:"spike_multiplier" yaml:"spike_multiplier"`

	ConfidenceThreshold    int     `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
	TrendStrengthThreshold float64 `mapstructure:"trend_strength_threshold" yaml:"trend_strength_threshold"`
	OscillatorMidline      float64 `mapstructure:"oscillator_midline" yaml:"oscillator_midline"`
	AcceptLongOnlyMax      bool    `mapstructure:"accept_long_only_max" yaml:"accept_long_only_max"`

	EMAFast    int `mapstructure:"ema_fast" yaml:"ema_fast"`
	EMASlow    int `mapstructure:"ema_slow" yaml:"ema_slow"`
	RSIPeriod  int `mapstructure:"rsi_period" yaml:"rsi_period"`
	MACDFast   int `mapstructure:"macd_fast" yaml:"macd_fast"`
	MACDSlow   int `mapstructure:"macd_slow" yaml:"macd_slow"`
	MACDSignal int `mapstructure:"macd_signal" yaml:"macd_signal"`
	ATRPeriod  int `mapstructure:"atr_period" yaml:"atr_period"`
	ADXPeriod  int `mapstructure:"adx_period" yaml:"adx_period"`
}

type RiskConfig struct {
	SLATRMult   float64 `mapstructure:"sl_atr_mult"`
	TP1ATRMult  float64 `mapstructure:"tp1_atr_mult"`
	TP2ATRMult  float64 `mapstructure:"tp2_atr_mult"`
	MinATRRatio float64 `mapstructure:"min_atr_ratio"`
}

type CooldownConfig struct {
	Policy string        `mapstructure:"policy"` // time | bar
	Window time.Duration `mapstructure:"window"`
}

type AlertsConfig struct {
	OpenPolicy string `mapstructure:"open_policy"` // suppress | replace
}

type TelegramConfig struct {
	Token       string        `mapstructure:"token"`
	ChatID      int64         `mapstructure:"chat_id"`
	Endpoint    string        `mapstructure:"endpoint"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"` // long polling getUpdates
	Commands    bool          `mapstructure:"commands"`
}

var defaults = map[string]any{
	"service.name": "cryptocheck",
	"service.port": 8080,

	"log.level":  "info",
	"log.format": "json",

	"tracing.enabled": false,
	"tracing.host":    "localhost",
	"tracing.port":    6831,

	"market.provider":          "okx",
	"market.price_feed":        "rest",
	"market.okx_base_url":      "https://www.okx.com",
	"market.okx_ws_url":        "wss://ws.okx.com:8443/ws/v5/public",
	"market.cryptocompare_url": "https://min-api.cryptocompare.com",
	"market.api_key":           "",
	"market.fetch_timeout":     10 * time.Second,
	"market.bar_limit":         100,
	"market.short_tf":          "5m",
	"market.long_tf":           "15m",
	"market.price_max_age":     30 * time.Second,

	"universe.symbols": []string{
		"BTCUSDT", "ETHUSDT", "SOLUSDT", "XRPUSDT", "DOGEUSDT",
		"ADAUSDT", "AVAXUSDT", "LINKUSDT", "TONUSDT", "SUIUSDT",
	},
	"universe.top_volatile": 0,

	"scheduler.interval":           10 * time.Minute,
	"scheduler.monitor_interval":   2 * time.Minute,
	"scheduler.workers":            8,
	"scheduler.heartbeat_interval": 2 * time.Hour,
	"scheduler.quiet_start_hour":   0,
	"scheduler.quiet_end_hour":     7,
	"scheduler.tz_offset_hours":    3,
	"scheduler.daily_report":       true,

	"rules.preset": defaultPreset,

	"risk.sl_atr_mult":   1.2,
	"risk.tp1_atr_mult":  1.8,
	"risk.tp2_atr_mult":  2.8,
	"risk.min_atr_ratio": 0.001,

	"cooldown.policy": "time",
	"cooldown.window": 30 * time.Minute,

	"alerts.open_policy": "suppress",

	"telegram.token":        "",
	"telegram.chat_id":      0,
	"telegram.endpoint":     "",
	"telegram.send_timeout": 10 * time.Second,
	"telegram.poll_timeout": 30 * time.Second,
	"telegram.commands":     true,
}

// NewConfig читает .env, configs/$CONFIG_FILE и переменные окружения.
// Отсутствие файла допустимо: работают значения по умолчанию.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	name := os.Getenv(configFilePathENV)
	if name == "" {
		name = defaultConfigFile
	}
	return Load(filepath.Join(configDir, name))
}

// Load — загрузка из конкретного файла; пустой путь: только defaults и env.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("telegram.token", "TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN")
	_ = v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
	_ = v.BindEnv("market.api_key", "CRYPTOCOMPARE_API_KEY")
	_ = v.BindEnv("service.port", "PORT")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, pkgerrors.Wrapf(err, "read config %s", path)
			}
		}
	}

	if err := applyPreset(v, v.GetString("rules.preset")); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, pkgerrors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
