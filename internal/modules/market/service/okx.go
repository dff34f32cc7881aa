package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"cryptocheck/internal/helper"
	"cryptocheck/internal/models"
)

const okxMaxLimit = 300

// GetBars — закрытые свечи. OKX отдаёт newest-first с незакрытой свечой в голове:
// разворачиваем и отбрасываем confirm=0.
// Строка: [ts, o, h, l, c, vol, volCcy, volCcyQuote, confirm]
func (c *OKXClient) GetBars(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Bar, error) {
	fail := func(err error) error {
		return &models.FetchError{Symbol: symbol, Timeframe: tf, Err: err}
	}
	if limit <= 0 {
		limit = 100
	}
	instID, ok := helper.InstID(symbol)
	if !ok {
		return nil, fail(fmt.Errorf("unsupported symbol"))
	}
	bar, err := okxBar(tf)
	if err != nil {
		return nil, fail(err)
	}

	// +1 на незакрытую свечу
	req := limit + 1
	if req > okxMaxLimit {
		req = okxMaxLimit
	}
	path := fmt.Sprintf("/api/v5/market/candles?instId=%s&bar=%s&limit=%d",
		url.QueryEscape(instID), url.QueryEscape(bar), req,
	)

	var r okxEnvelope[[][]string]
	if err := c.get(ctx, path, &r); err != nil {
		return nil, fail(err)
	}
	if r.Code != "0" {
		return nil, fail(fmt.Errorf("okx candles error: code=%s msg=%s", r.Code, r.Msg))
	}

	out := make([]models.Bar, 0, len(r.Data))
	for i := len(r.Data) - 1; i >= 0; i-- {
		row := r.Data[i]
		if len(row) < 6 {
			return nil, fail(fmt.Errorf("short candle row: %d fields", len(row)))
		}
		if len(row) >= 9 && row[8] == "0" {
			continue // свеча ещё формируется
		}
		tsMs, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fail(fmt.Errorf("bad ts %q", row[0]))
		}
		vol := row[5]
		if len(row) >= 8 {
			vol = row[7] // volCcyQuote
		}
		v, err := parseFloats(row[1], row[2], row[3], row[4], vol)
		if err != nil {
			return nil, fail(err)
		}
		out = append(out, models.Bar{
			Time:   time.UnixMilli(tsMs).UTC(),
			Open:   v[0],
			High:   v[1],
			Low:    v[2],
			Close:  v[3],
			Volume: v[4],
		})
	}
	out = tail(out, limit)
	if err := validateBars(out); err != nil {
		return nil, fail(err)
	}
	c.log.Debug("candles", zap.String("symbol", symbol), zap.String("tf", string(tf)), zap.Int("bars", len(out)))
	return out, nil
}

type okxTicker struct {
	InstType string `json:"instType"`
	InstID   string `json:"instId"`
	Last     string `json:"last"`
	High24h  string `json:"high24h"`
	Low24h   string `json:"low24h"`
	Ts       string `json:"ts"`
}

func (c *OKXClient) LastPrice(ctx context.Context, symbol string) (float64, error) {
	fail := func(err error) error { return &models.FetchError{Symbol: symbol, Err: err} }

	instID, ok := helper.InstID(symbol)
	if !ok {
		return 0, fail(fmt.Errorf("unsupported symbol"))
	}
	var r okxEnvelope[[]okxTicker]
	if err := c.get(ctx, "/api/v5/market/ticker?instId="+url.QueryEscape(instID), &r); err != nil {
		return 0, fail(err)
	}
	if r.Code != "0" || len(r.Data) == 0 {
		return 0, fail(fmt.Errorf("okx ticker error: code=%s msg=%s", r.Code, r.Msg))
	}
	last, err := strconv.ParseFloat(r.Data[0].Last, 64)
	if err != nil || last <= 0 {
		return 0, fail(fmt.Errorf("bad last price %q", r.Data[0].Last))
	}
	return last, nil
}

// TopVolatile — n спотовых USDT-пар с наибольшим (high24h-low24h)/last.
func (c *OKXClient) TopVolatile(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	var r okxEnvelope[[]okxTicker]
	if err := c.get(ctx, "/api/v5/market/tickers?instType=SPOT", &r); err != nil {
		return nil, err
	}
	if r.Code != "0" {
		return nil, fmt.Errorf("okx error: code=%s msg=%s", r.Code, r.Msg)
	}

	type rec struct {
		sym   string
		score float64
	}
	arr := make([]rec, 0, len(r.Data))
	for _, t := range r.Data {
		if !strings.HasSuffix(t.InstID, "-USDT") {
			continue
		}
		v, err := parseFloats(t.Last, t.High24h, t.Low24h)
		if err != nil || v[0] <= 0 {
			continue
		}
		range24 := v[1] - v[2]
		if range24 <= 0 {
			continue
		}
		arr = append(arr, rec{sym: helper.SymbolFromInstID(t.InstID), score: range24 / v[0]})
	}

	sort.Slice(arr, func(i, j int) bool {
		if arr[i].score == arr[j].score {
			return arr[i].sym < arr[j].sym
		}
		return arr[i].score > arr[j].score
	})
	if n > len(arr) {
		n = len(arr)
	}
	res := make([]string, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, arr[i].sym)
	}
	return res, nil
}
