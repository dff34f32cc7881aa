package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"cryptocheck/internal/models"
)

func okxServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOKXGetBars(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[
			["1700001800000","103","104","102","103.5","10","1","1","0"],
			["1700000900000","101","103","100.5","102","12","1","1224","1"],
			["1700000000000","100","101.5","99.5","101","11","1","1","1"]
		]}`))
	}))
	defer srv.Close()

	c := NewOKXClient(OKXConfig{BaseURL: srv.URL}, zaptest.NewLogger(t))
	bars, err := c.GetBars(context.Background(), "BTCUSDT", "15m", 2)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "instId=BTC-USDT")
	assert.Contains(t, gotQuery, "bar=15m")
	assert.Contains(t, gotQuery, "limit=3")

	require.Len(t, bars, 2, "unconfirmed bar dropped")
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), bars[0].Time)
	assert.Equal(t, 101.0, bars[0].Close)
	assert.Equal(t, 102.0, bars[1].Close)
	assert.Equal(t, 1224.0, bars[1].Volume, "quote volume")
}

func TestOKXGetBarsErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"api error", `{"code":"51001","msg":"Instrument ID does not exist","data":[]}`},
		{"malformed json", `{"code":"0","data":[[`},
		{"bad number", `{"code":"0","data":[["1700000000000","x","1","1","1","1","1","1","1"]]}`},
		{"not ascending", `{"code":"0","data":[
			["1700000000000","100","101","99","100","1","1","1","1"],
			["1700000900000","100","101","99","100","1","1","1","1"]
		]}`},
		{"inconsistent ohlc", `{"code":"0","data":[["1700000000000","100","99","98","100","1","1","1","1"]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := okxServer(t, map[string]string{"/api/v5/market/candles": tt.body})
			c := NewOKXClient(OKXConfig{BaseURL: srv.URL}, zaptest.NewLogger(t))
			_, err := c.GetBars(context.Background(), "BTCUSDT", "5m", 10)
			var fe *models.FetchError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, "BTCUSDT", fe.Symbol)
			assert.Equal(t, models.Timeframe("5m"), fe.Timeframe)
		})
	}
}

func TestOKXGetBarsHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOKXClient(OKXConfig{BaseURL: srv.URL}, zaptest.NewLogger(t))
	_, err := c.GetBars(context.Background(), "BTCUSDT", "5m", 10)
	var fe *models.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, err.Error(), "http 429")
}

func TestOKXGetBarsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewOKXClient(OKXConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, zaptest.NewLogger(t))
	_, err := c.GetBars(context.Background(), "BTCUSDT", "5m", 10)
	var fe *models.FetchError
	assert.ErrorAs(t, err, &fe)
}

func TestOKXUnsupportedInput(t *testing.T) {
	c := NewOKXClient(OKXConfig{BaseURL: "http://127.0.0.1:1"}, zaptest.NewLogger(t))
	_, err := c.GetBars(context.Background(), "BTC", "5m", 10)
	assert.Error(t, err)
	_, err = c.GetBars(context.Background(), "BTCUSDT", "7m", 10)
	assert.Error(t, err)
}

func TestOKXLastPrice(t *testing.T) {
	srv := okxServer(t, map[string]string{
		"/api/v5/market/ticker": `{"code":"0","data":[{"instId":"ETH-USDT","last":"3120.5","high24h":"3200","low24h":"3000"}]}`,
	})
	c := NewOKXClient(OKXConfig{BaseURL: srv.URL}, zaptest.NewLogger(t))
	p, err := c.LastPrice(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 3120.5, p)
}

func TestOKXTopVolatile(t *testing.T) {
	srv := okxServer(t, map[string]string{
		"/api/v5/market/tickers": `{"code":"0","data":[
			{"instId":"BTC-USDT","last":"100","high24h":"102","low24h":"98"},
			{"instId":"PEPE-USDT","last":"1","high24h":"1.3","low24h":"0.9"},
			{"instId":"SOL-USDT","last":"10","high24h":"11","low24h":"9.5"},
			{"instId":"SOL-USDC","last":"10","high24h":"20","low24h":"1"},
			{"instId":"DEAD-USDT","last":"0","high24h":"1","low24h":"0"}
		]}`,
	})
	c := NewOKXClient(OKXConfig{BaseURL: srv.URL}, zaptest.NewLogger(t))

	got, err := c.TopVolatile(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"PEPEUSDT", "SOLUSDT"}, got)

	got, err = c.TopVolatile(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"PEPEUSDT", "SOLUSDT", "BTCUSDT"}, got)
}
