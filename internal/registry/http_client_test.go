package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_FetchAuthoritativePeriodEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/01234567", r.URL.Path)
		w.Write([]byte(`{"accounts":{"next_accounts":{"period_end_on":"2025-03-31"}}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPConfig{Endpoint: srv.URL})
	info, err := client.FetchAuthoritativePeriodEnd(context.Background(), "01234567")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), info.PeriodEnd)
}

func TestHTTPClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPConfig{Endpoint: srv.URL})
	_, err := client.FetchAuthoritativePeriodEnd(context.Background(), "99999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPClient_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPConfig{Endpoint: srv.URL})
	_, err := client.FetchAuthoritativePeriodEnd(context.Background(), "01234567")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_UnreachableIsUnavailable(t *testing.T) {
	client := NewHTTPClient(HTTPConfig{Endpoint: "http://127.0.0.1:1", Timeout: time.Second})
	_, err := client.FetchAuthoritativePeriodEnd(context.Background(), "01234567")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_MissingPeriodEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accounts":{"next_accounts":{}}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPConfig{Endpoint: srv.URL})
	_, err := client.FetchAuthoritativePeriodEnd(context.Background(), "01234567")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStaticClient(t *testing.T) {
	end := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)
	client := &StaticClient{Periods: map[string]time.Time{"REF1": end}}

	info, err := client.FetchAuthoritativePeriodEnd(context.Background(), "REF1")
	require.NoError(t, err)
	assert.True(t, info.PeriodEnd.Equal(end))

	_, err = client.FetchAuthoritativePeriodEnd(context.Background(), "REF2")
	assert.ErrorIs(t, err, ErrNotFound)

	down := &StaticClient{}
	_, err = down.FetchAuthoritativePeriodEnd(context.Background(), "REF1")
	assert.ErrorIs(t, err, ErrUnavailable)
}
