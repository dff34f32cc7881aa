package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"cryptocheck/internal/models"
)

// CandleSource — закрытые свечи по возрастанию времени.
type CandleSource interface {
	GetBars(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Bar, error)
}

// PriceSource — последняя цена символа.
type PriceSource interface {
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

type OKXConfig struct {
	BaseURL string        // https://www.okx.com
	Timeout time.Duration // на один запрос
}

// OKXClient — публичный REST OKX: свечи, тикер, список тикеров спота.
type OKXClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewOKXClient(cfg OKXConfig, log *zap.Logger) *OKXClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &OKXClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log.Named("okx"),
	}
}

// okxEnvelope — общий конверт ответов OKX v5.
type okxEnvelope[T any] struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

func (c *OKXClient) get(ctx context.Context, path string, out any) error {
	return getJSON(ctx, c.http, c.baseURL+path, out)
}

// getJSON — GET с контекстом, не-2xx и битый JSON считаются ошибкой.
func getJSON(ctx context.Context, hc *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, truncate(string(b), 200))
	}
	if err := sonic.Unmarshal(b, out); err != nil {
		return errors.Wrap(err, "decode")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
