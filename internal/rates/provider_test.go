package rates_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendboard/internal/rates"
)

func TestFrankfurterProvider_Rate(t *testing.T) {
	type testCase struct {
		name       string
		handler    http.HandlerFunc
		want       float64
		wantErr    error
		wantAnyErr bool
	}

	tests := []testCase{
		{
			name: "Success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/latest", r.URL.Path)
				assert.Equal(t, "USD", r.URL.Query().Get("from"))
				assert.Equal(t, "GBP", r.URL.Query().Get("to"))
				w.Write([]byte(`{"amount":1,"base":"USD","date":"2024-05-01","rates":{"GBP":0.79}}`))
			},
			want: 0.79,
		},
		{
			name: "NotFound",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "not found", http.StatusNotFound)
			},
			wantErr: rates.ErrUnsupported,
		},
		{
			name: "BadRequest",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "bad", http.StatusBadRequest)
			},
			wantErr: rates.ErrUnsupported,
		},
		{
			name: "MissingRate",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"rates":{"EUR":1.1}}`))
			},
			wantErr: rates.ErrRateMissing,
		},
		{
			name: "ZeroRate",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"rates":{"GBP":0}}`))
			},
			wantErr: rates.ErrRateMissing,
		},
		{
			name: "ServerError",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantAnyErr: true,
		},
		{
			name: "Garbage",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`not json`))
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			p := rates.NewFrankfurterProvider(srv.URL, 0)
			got, err := p.Rate(context.Background(), "USD", "GBP")

			if tt.wantErr != nil || tt.wantAnyErr {
				require.Error(t, err)

				var fetchErr *rates.RateFetchError
				require.ErrorAs(t, err, &fetchErr)
				assert.Equal(t, "USD", fetchErr.Currency)

				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestExchangeRateAPIProvider_Rate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/TWD", r.URL.Path)
		w.Write([]byte(`{"base":"TWD","rates":{"TWD":1,"GBP":0.024,"USD":0.031}}`))
	}))
	defer srv.Close()

	p := rates.NewExchangeRateAPIProvider(srv.URL+"/", 0)

	got, err := p.Rate(context.Background(), "TWD", "GBP")
	require.NoError(t, err)
	assert.InDelta(t, 0.024, got, 1e-9)
}

type providerFunc func(ctx context.Context, from, to string) (float64, error)

func (f providerFunc) Rate(ctx context.Context, from, to string) (float64, error) {
	return f(ctx, from, to)
}

func TestFallbackProvider_Rate(t *testing.T) {
	failing := providerFunc(func(context.Context, string, string) (float64, error) {
		return 0, rates.ErrUnsupported
	})
	ok := providerFunc(func(context.Context, string, string) (float64, error) {
		return 0.5, nil
	})
	unused := providerFunc(func(context.Context, string, string) (float64, error) {
		t.Fatal("secondary should not be called")
		return 0, nil
	})

	t.Run("PrimarySucceeds", func(t *testing.T) {
		got, err := rates.NewFallbackProvider(ok, unused, nil).Rate(context.Background(), "USD", "GBP")
		require.NoError(t, err)
		assert.Equal(t, 0.5, got)
	})

	t.Run("FallsBackToSecondary", func(t *testing.T) {
		got, err := rates.NewFallbackProvider(failing, ok, nil).Rate(context.Background(), "TWD", "GBP")
		require.NoError(t, err)
		assert.Equal(t, 0.5, got)
	})

	t.Run("BothFail", func(t *testing.T) {
		boom := errors.New("boom")
		second := providerFunc(func(context.Context, string, string) (float64, error) { return 0, boom })

		_, err := rates.NewFallbackProvider(failing, second, nil).Rate(context.Background(), "TWD", "GBP")
		require.Error(t, err)
		assert.ErrorIs(t, err, rates.ErrUnsupported)
		assert.ErrorIs(t, err, boom)
	})
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "£ 1,234.50", rates.Format(1234.5, "GBP"))
	assert.Equal(t, "NT$ -12.00", rates.Format(-12, "TWD"))
	assert.Equal(t, "CHF 3.10", rates.Format(3.1, "CHF"))
}
