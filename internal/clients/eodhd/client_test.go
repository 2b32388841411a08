package eodhd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/valuescout/internal/interfaces"
)

func TestGetRealTimeQuote_ParsesResponse(t *testing.T) {
	ts := int64(1711670340) // 2024-03-28 23:59:00 UTC
	mockResp := map[string]interface{}{
		"code":          "AAPL.US",
		"timestamp":     ts,
		"close":         43.25,
		"previousClose": 42.00,
		"change_p":      2.976,
	}

	var capturedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithMinInterval(0))
	quote, err := client.GetRealTimeQuote(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("GetRealTimeQuote failed: %v", err)
	}

	if capturedPath != "/real-time/AAPL.US" {
		t.Errorf("expected path /real-time/AAPL.US, got %s", capturedPath)
	}
	if !quote.Close.Valid || quote.Close.Value != 43.25 {
		t.Errorf("expected close 43.25, got %+v", quote.Close)
	}
	if !quote.PreviousClose.Valid || quote.PreviousClose.Value != 42.00 {
		t.Errorf("expected previous close 42.00, got %+v", quote.PreviousClose)
	}
	expectedTime := time.Unix(ts, 0)
	if !quote.Timestamp.Equal(expectedTime) {
		t.Errorf("expected timestamp %v, got %v", expectedTime, quote.Timestamp)
	}
}

func TestGetRealTimeQuote_QualifiedTickerUnchanged(t *testing.T) {
	var capturedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.Write([]byte(`{"code":"BHP.AU","close":"41.5"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithMinInterval(0), WithExchange("LSE"))
	quote, err := client.GetRealTimeQuote(context.Background(), "BHP.AU")
	if err != nil {
		t.Fatalf("GetRealTimeQuote failed: %v", err)
	}
	if capturedPath != "/real-time/BHP.AU" {
		t.Errorf("expected path /real-time/BHP.AU, got %s", capturedPath)
	}
	if !quote.Close.Valid || quote.Close.Value != 41.5 {
		t.Errorf("expected string close to parse as 41.5, got %+v", quote.Close)
	}
}

func TestGetRealTimeQuote_NAValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"XYZ.US","timestamp":"NA","close":"NA","previousClose":null}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithMinInterval(0))
	quote, err := client.GetRealTimeQuote(context.Background(), "XYZ")
	if err != nil {
		t.Fatalf("GetRealTimeQuote failed: %v", err)
	}
	if quote.Close.Valid {
		t.Errorf("expected NA close to be absent, got %+v", quote.Close)
	}
	if quote.PreviousClose.Valid {
		t.Errorf("expected null previous close to be absent, got %+v", quote.PreviousClose)
	}
	if !quote.Timestamp.IsZero() {
		t.Errorf("expected zero timestamp, got %v", quote.Timestamp)
	}
}

func TestGetRealTimeQuote_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("ticker not found"))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithMinInterval(0))
	_, err := client.GetRealTimeQuote(context.Background(), "INVALID.XX")
	if err == nil {
		t.Fatal("expected error for invalid ticker")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", apiErr.StatusCode)
	}
}

func TestGetRealTimeQuote_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithMinInterval(0))
	if _, err := client.GetRealTimeQuote(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
}

func TestGetRealTimeQuote_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithMinInterval(0), WithTimeout(100*time.Millisecond))
	_, err := client.GetRealTimeQuote(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClient_PacesRequests(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		w.Write([]byte(`{"code":"AAPL.US","close":1}`))
	}))
	defer srv.Close()

	interval := 80 * time.Millisecond
	client := NewClient("test-key", WithBaseURL(srv.URL), WithMinInterval(interval))

	for i := 0; i < 3; i++ {
		if _, err := client.GetRealTimeQuote(context.Background(), "AAPL"); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}

	if len(stamps) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(stamps))
	}
	// Allow a little scheduler slack below the nominal interval.
	minGap := interval - 15*time.Millisecond
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < minGap {
			t.Errorf("requests %d and %d only %v apart, want >= %v", i-1, i, gap, minGap)
		}
	}
}

func TestClient_PacingHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"AAPL.US","close":1}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithMinInterval(time.Hour))
	if _, err := client.GetRealTimeQuote(context.Background(), "AAPL"); err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.GetRealTimeQuote(ctx, "AAPL"); err == nil {
		t.Fatal("expected limiter wait to fail once the context expires")
	}
}

func TestGetEOD_ParsesBars(t *testing.T) {
	var capturedPath, capturedFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedFrom = r.URL.Query().Get("from")
		w.Write([]byte(`[
			{"date":"2024-03-28","open":10,"high":11,"low":9.5,"close":10.5,"adjusted_close":10.4,"volume":1000},
			{"date":"bad-date","open":1,"high":1,"low":1,"close":1,"adjusted_close":1,"volume":1},
			{"date":"2024-03-27","open":9,"high":10,"low":8.5,"close":9.8,"adjusted_close":9.7,"volume":900}
		]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithMinInterval(0))
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resp, err := client.GetEOD(context.Background(), "aaa", interfaces.WithDateRange(from, time.Time{}))
	if err != nil {
		t.Fatalf("GetEOD failed: %v", err)
	}

	if capturedPath != "/eod/AAA.US" {
		t.Errorf("expected path /eod/AAA.US, got %s", capturedPath)
	}
	if capturedFrom != "2024-01-01" {
		t.Errorf("expected from=2024-01-01, got %s", capturedFrom)
	}
	if resp.Ticker != "AAA" {
		t.Errorf("expected ticker AAA, got %s", resp.Ticker)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 bars (bad date skipped), got %d", len(resp.Data))
	}
	if resp.Data[0].Close != 10.5 || resp.Data[1].Close != 9.8 {
		t.Errorf("unexpected closes: %v, %v", resp.Data[0].Close, resp.Data[1].Close)
	}
}
