package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cryptocheck/internal/helper"
	"cryptocheck/internal/models"
)

// ConnStatus — куда публикуем состояние WS (health).
type ConnStatus interface {
	SetWSConnected(v bool)
}

type TickerFeedConfig struct {
	URL          string        // wss://ws.okx.com:8443/ws/v5/public
	MaxAge       time.Duration // старше — цена считается протухшей
	PingInterval time.Duration
	Reconnect    time.Duration
}

type quote struct {
	price float64
	at    time.Time
}

// TickerFeed — кэш последних цен из канала tickers OKX.
// При отсутствии свежей цены уходит в fallback (REST), если он задан.
type TickerFeed struct {
	cfg      TickerFeedConfig
	dialer   *websocket.Dialer
	fallback PriceSource
	status   ConnStatus
	log      *zap.Logger
	now      func() time.Time

	mu     sync.RWMutex
	prices map[string]quote
}

func NewTickerFeed(cfg TickerFeedConfig, fallback PriceSource, status ConnStatus, log *zap.Logger) *TickerFeed {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 30 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 20 * time.Second
	}
	if cfg.Reconnect <= 0 {
		cfg.Reconnect = time.Second
	}
	return &TickerFeed{
		cfg:      cfg,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		fallback: fallback,
		status:   status,
		log:      log.Named("ticker_feed"),
		now:      time.Now,
		prices:   make(map[string]quote),
	}
}

func (f *TickerFeed) LastPrice(ctx context.Context, symbol string) (float64, error) {
	f.mu.RLock()
	q, ok := f.prices[symbol]
	f.mu.RUnlock()

	if ok && f.now().Sub(q.at) <= f.cfg.MaxAge {
		return q.price, nil
	}
	if f.fallback != nil {
		return f.fallback.LastPrice(ctx, symbol)
	}
	if !ok {
		return 0, &models.FetchError{Symbol: symbol, Err: fmt.Errorf("no ticker yet")}
	}
	return 0, &models.FetchError{Symbol: symbol, Err: fmt.Errorf("ticker stale since %s", q.at.Format(time.RFC3339))}
}

func (f *TickerFeed) store(symbol string, price float64, at time.Time) {
	f.mu.Lock()
	f.prices[symbol] = quote{price: price, at: at}
	f.mu.Unlock()
}

func (f *TickerFeed) setConnected(v bool) {
	if f.status != nil {
		f.status.SetWSConnected(v)
	}
}

// Run держит подписку до отмены ctx, переподключаясь после ошибок.
func (f *TickerFeed) Run(ctx context.Context, symbols []string) {
	args := make([]map[string]string, 0, len(symbols))
	for _, s := range symbols {
		id, ok := helper.InstID(s)
		if !ok {
			f.log.Warn("skip symbol", zap.String("symbol", s))
			continue
		}
		args = append(args, map[string]string{"channel": "tickers", "instId": id})
	}
	if len(args) == 0 {
		return
	}

	for {
		if err := f.session(ctx, args); err != nil && ctx.Err() == nil {
			f.log.Warn("ws session ended", zap.Error(err))
		}
		f.setConnected(false)

		select {
		case <-ctx.Done():
			return
		case <-time.After(f.cfg.Reconnect):
		}
	}
}

type tickerFrame struct {
	Event string `json:"event"`
	Msg   string `json:"msg"`
	Arg   struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Data []okxTicker `json:"data"`
}

func (f *TickerFeed) session(ctx context.Context, args []map[string]string) error {
	conn, _, err := f.dialer.DialContext(ctx, f.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// закрыть сокет при отмене, чтобы разблокировать ReadMessage
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	var writeMu sync.Mutex
	write := func(kind int, b []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		return conn.WriteMessage(kind, b)
	}

	sub, err := sonic.Marshal(map[string]any{"op": "subscribe", "args": args})
	if err != nil {
		return err
	}
	if err := write(websocket.TextMessage, sub); err != nil {
		return err
	}
	f.setConnected(true)
	f.log.Info("ws subscribed", zap.Int("symbols", len(args)))

	// OKX рвёт соединение без трафика 30s: текстовый "ping"
	go func() {
		t := time.NewTicker(f.cfg.PingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := write(websocket.TextMessage, []byte("ping")); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if string(msg) == "pong" {
			continue
		}
		var fr tickerFrame
		if err := sonic.Unmarshal(msg, &fr); err != nil {
			continue
		}
		if fr.Event == "error" {
			return fmt.Errorf("okx ws: %s", fr.Msg)
		}
		if fr.Arg.Channel != "tickers" {
			continue
		}
		for _, t := range fr.Data {
			price, err := strconv.ParseFloat(t.Last, 64)
			if err != nil || price <= 0 {
				continue
			}
			f.store(helper.SymbolFromInstID(t.InstID), price, f.now())
		}
	}
}
