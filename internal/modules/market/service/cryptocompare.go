package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"cryptocheck/internal/helper"
	"cryptocheck/internal/models"
)

type CryptoCompareConfig struct {
	BaseURL string // https://min-api.cryptocompare.com
	APIKey  string
	Timeout time.Duration
}

// CryptoCompare — свечи и цены min-api.cryptocompare.com.
type CryptoCompare struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

func NewCryptoCompare(cfg CryptoCompareConfig, log *zap.Logger) *CryptoCompare {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &CryptoCompare{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log.Named("cryptocompare"),
	}
}

type ccHistoResp struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		Data []struct {
			Time       int64   `json:"time"`
			High       float64 `json:"high"`
			Low        float64 `json:"low"`
			Open       float64 `json:"open"`
			VolumeFrom float64 `json:"volumefrom"`
			VolumeTo   float64 `json:"volumeto"`
			Close      float64 `json:"close"`
		} `json:"Data"`
	} `json:"Data"`
}

// histoEndpoint — endpoint и aggregate для таймфрейма.
func histoEndpoint(tf models.Timeframe) (string, int, error) {
	d := helper.TFDuration(tf)
	switch {
	case d == 0:
		return "", 0, fmt.Errorf("unsupported timeframe %q", tf)
	case d < time.Hour:
		return "histominute", int(d / time.Minute), nil
	case d < 24*time.Hour:
		return "histohour", int(d / time.Hour), nil
	default:
		return "histoday", int(d / (24 * time.Hour)), nil
	}
}

// GetBars — CryptoCompare отдаёт limit+1 точек, последняя: текущий незакрытый период.
func (c *CryptoCompare) GetBars(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Bar, error) {
	fail := func(err error) error {
		return &models.FetchError{Symbol: symbol, Timeframe: tf, Err: err}
	}
	if limit <= 0 {
		limit = 100
	}
	base, quote, ok := helper.SplitSymbol(symbol)
	if !ok {
		return nil, fail(fmt.Errorf("unsupported symbol"))
	}
	endpoint, aggregate, err := histoEndpoint(tf)
	if err != nil {
		return nil, fail(err)
	}

	q := url.Values{}
	q.Set("fsym", base)
	q.Set("tsym", quote)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("aggregate", strconv.Itoa(aggregate))
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}

	var r ccHistoResp
	if err := getJSON(ctx, c.http, c.baseURL+"/data/v2/"+endpoint+"?"+q.Encode(), &r); err != nil {
		return nil, fail(err)
	}
	if r.Response != "Success" {
		return nil, fail(fmt.Errorf("cryptocompare: %s", r.Message))
	}

	rows := r.Data.Data
	if len(rows) > 0 {
		rows = rows[:len(rows)-1]
	}
	out := make([]models.Bar, 0, len(rows))
	for _, x := range rows {
		// пустые точки до листинга
		if x.Open == 0 && x.Close == 0 && x.High == 0 && x.Low == 0 {
			continue
		}
		out = append(out, models.Bar{
			Time:   time.Unix(x.Time, 0).UTC(),
			Open:   x.Open,
			High:   x.High,
			Low:    x.Low,
			Close:  x.Close,
			Volume: x.VolumeTo, // в котируемой валюте
		})
	}
	out = tail(out, limit)
	if err := validateBars(out); err != nil {
		return nil, fail(err)
	}
	return out, nil
}

func (c *CryptoCompare) LastPrice(ctx context.Context, symbol string) (float64, error) {
	fail := func(err error) error { return &models.FetchError{Symbol: symbol, Err: err} }

	base, quote, ok := helper.SplitSymbol(symbol)
	if !ok {
		return 0, fail(fmt.Errorf("unsupported symbol"))
	}
	q := url.Values{}
	q.Set("fsym", base)
	q.Set("tsyms", quote)
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}

	var r map[string]any
	if err := getJSON(ctx, c.http, c.baseURL+"/data/price?"+q.Encode(), &r); err != nil {
		return 0, fail(err)
	}
	if resp, _ := r["Response"].(string); resp == "Error" {
		msg, _ := r["Message"].(string)
		return 0, fail(fmt.Errorf("cryptocompare: %s", msg))
	}
	price, ok := r[quote].(float64)
	if !ok || price <= 0 {
		return 0, fail(fmt.Errorf("no %s price in response", quote))
	}
	return price, nil
}
