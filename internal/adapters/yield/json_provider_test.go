package yield

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

func serveJSON(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestJSONFieldProvider_AppliesFeeMultiplier(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		scale float64
		want  float64
	}{
		{name: "nested number", body: `{"data":{"smaApr":4.0}}`, field: "data.smaApr", scale: 1, want: 3.6},
		{name: "numeric string", body: `{"yearlyAPR":"2.75"}`, field: "yearlyAPR", scale: 1, want: 2.475},
		{name: "fraction scaled to percent", body: `{"apr":{"netAPR":0.05}}`, field: "apr.netAPR", scale: 100, want: 4.5},
		{name: "zero", body: `{"sfrxethApr":0}`, field: "sfrxethApr", scale: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveJSON(t, http.StatusOK, tt.body)
			p := NewJSONFieldProvider("test", srv.URL, tt.field, decimal.NewFromFloat(tt.scale), DefaultFeeMultiplier)

			got, err := p.FetchRate(context.Background())
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestJSONFieldProvider_ValidatesPayload(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   domain.FetchErrorKind
	}{
		{name: "missing field", status: http.StatusOK, body: `{"data":{}}`, kind: domain.KindMissingField},
		{name: "null field", status: http.StatusOK, body: `{"data":{"smaApr":null}}`, kind: domain.KindNotNumeric},
		{name: "object field", status: http.StatusOK, body: `{"data":{"smaApr":{"v":1}}}`, kind: domain.KindNotNumeric},
		{name: "non numeric string", status: http.StatusOK, body: `{"data":{"smaApr":"n/a"}}`, kind: domain.KindNotNumeric},
		{name: "nan string", status: http.StatusOK, body: `{"data":{"smaApr":"NaN"}}`, kind: domain.KindNotNumeric},
		{name: "overflows float", status: http.StatusOK, body: `{"data":{"smaApr":1e400}}`, kind: domain.KindInvalidValue},
		{name: "overflowing string", status: http.StatusOK, body: `{"data":{"smaApr":"1e400"}}`, kind: domain.KindInvalidValue},
		{name: "negative", status: http.StatusOK, body: `{"data":{"smaApr":-1.5}}`, kind: domain.KindInvalidValue},
		{name: "not json", status: http.StatusOK, body: `<html>oops</html>`, kind: domain.KindDecode},
		{name: "server error", status: http.StatusBadGateway, body: `{}`, kind: domain.KindStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveJSON(t, tt.status, tt.body)
			p := NewJSONFieldProvider("lido", srv.URL, "data.smaApr", decimal.NewFromInt(1), DefaultFeeMultiplier)

			_, err := p.FetchRate(context.Background())
			require.Error(t, err)

			var fe *domain.FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "lido", fe.Provider)
			assert.Equal(t, tt.kind, fe.Kind)
		})
	}
}

func TestJSONFieldProvider_NetworkError(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	p := NewJSONFieldProvider("down", url, "x", decimal.NewFromInt(1), DefaultFeeMultiplier)
	_, err := p.FetchRate(context.Background())

	kind, ok := domain.FetchErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindNetwork, kind)
}

func TestJSONFieldProvider_HonorsContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p := NewJSONFieldProvider("slow", srv.URL, "x", decimal.NewFromInt(1), DefaultFeeMultiplier)
	_, err := p.FetchRate(ctx)

	kind, ok := domain.FetchErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindNetwork, kind)
}

func TestJSONFieldProvider_SendsHeaders(t *testing.T) {
	var gotAccept, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"v":1}`))
	}))
	defer srv.Close()

	p := NewJSONFieldProvider("h", srv.URL, "v", decimal.NewFromInt(1), decimal.NewFromInt(1), WithUserAgent("yieldkit-test"))
	_, err := p.FetchRate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "yieldkit-test", gotUA)
}

func TestDefiLlamaPoolProvider(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"status":"success","data":[
			{"pool":"other","project":"aave-v3","apy":9.9},
			{"pool":"aa70268e-4b52-42bf-a116-608b370f9501","project":"aave-v3","apy":5.0}
		]}`))
	}))
	defer srv.Close()

	p := NewDefiLlamaPoolProvider("aave-usdc", srv.URL+"/", DefiLlamaAaveUSDCPool, DefaultFeeMultiplier)
	got, err := p.FetchRate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 4.5, got, 1e-12)
	assert.Equal(t, "/pools", gotPath)

	missing := NewDefiLlamaPoolProvider("gone", srv.URL, "does-not-exist", DefaultFeeMultiplier)
	_, err = missing.FetchRate(context.Background())
	kind, ok := domain.FetchErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindMissingField, kind)
}

func TestBuild(t *testing.T) {
	providers, err := Build(DefaultDefinitions(), DefaultFeeMultiplier, WithRequestsPerSecond(5))
	require.NoError(t, err)
	require.Len(t, providers, len(DefaultDefinitions()))

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"lido", "rocketpool", "frax", "yearn-dai", "aave-usdc"}, names)
	assert.Equal(t, DefiLlamaYieldURL+"/pools", providers[4].(*JSONFieldProvider).URL())
}

func TestBuild_Rejects(t *testing.T) {
	tests := []struct {
		name string
		defs []Definition
	}{
		{name: "missing name", defs: []Definition{{URL: "http://x", Field: "a"}}},
		{name: "missing url", defs: []Definition{{Name: "a", Field: "a"}}},
		{name: "missing field", defs: []Definition{{Name: "a", URL: "http://x"}}},
		{name: "missing pool", defs: []Definition{{Name: "a", Kind: KindDefiLlama, URL: "http://x"}}},
		{name: "unknown kind", defs: []Definition{{Name: "a", Kind: "graphql", URL: "http://x", Field: "a"}}},
		{name: "negative scale", defs: []Definition{{Name: "a", URL: "http://x", Field: "a", Scale: -1}}},
		{name: "duplicate", defs: []Definition{
			{Name: "a", URL: "http://x", Field: "a"},
			{Name: "a", URL: "http://y", Field: "b"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.defs, DefaultFeeMultiplier)
			assert.Error(t, err)
		})
	}
}
