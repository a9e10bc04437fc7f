package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/spendboard/internal/category"
	"github.com/MrJamesThe3rd/spendboard/internal/dashboard"
	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
	spendHttp "github.com/MrJamesThe3rd/spendboard/internal/http"
	httpdashboard "github.com/MrJamesThe3rd/spendboard/internal/http/dashboard"
	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

type emptyLoader struct{}

func (emptyLoader) Load(context.Context) ([]transaction.Transaction, error)    { return nil, nil }
func (emptyLoader) Refresh(context.Context) ([]transaction.Transaction, error) { return nil, nil }
func (emptyLoader) ClearCache(context.Context) error                           { return nil }

type identityRates struct{}

func (identityRates) FetchRates(context.Context, []string)     {}
func (identityRates) Convert(amount float64, _ string) float64 { return amount }
func (identityRates) Refresh(context.Context)                  {}
func (identityRates) Snapshot() map[string]float64             { return map[string]float64{"GBP": 1} }
func (identityRates) Target() string                           { return "GBP" }
func (identityRates) Loading() bool                            { return false }
func (identityRates) LastUpdated() time.Time                   { return time.Time{} }

func newRouter() http.Handler {
	svc := dashboard.NewService(emptyLoader{}, identityRates{}, datefilter.New(time.UTC, nil), category.Default(), nil)

	return spendHttp.New([]string{"http://localhost:5173"}, httpdashboard.NewHandler(svc), nil)
}

func TestRouter_VersionedRoutes(t *testing.T) {
	h := newRouter()

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/api/v1/overview", http.StatusOK},
		{http.MethodGet, "/api/v1/rates", http.StatusOK},
		{http.MethodGet, "/overview", http.StatusNotFound},
		{http.MethodPost, "/api/v1/import", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/refresh", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")

	rec = httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
