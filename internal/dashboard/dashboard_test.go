package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendboard/internal/category"
	"github.com/MrJamesThe3rd/spendboard/internal/dashboard"
	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

type fakeLoader struct {
	txs       []transaction.Transaction
	err       error
	refreshes int
	cleared   int
}

func (f *fakeLoader) Load(context.Context) ([]transaction.Transaction, error) {
	return f.txs, f.err
}

func (f *fakeLoader) Refresh(context.Context) ([]transaction.Transaction, error) {
	f.refreshes++
	return f.txs, f.err
}

func (f *fakeLoader) ClearCache(context.Context) error {
	f.cleared++
	return nil
}

type fakeRates struct {
	rates     map[string]float64
	requested []string
	refreshes int
	updated   time.Time
}

func (f *fakeRates) FetchRates(_ context.Context, currencies []string) {
	f.requested = append(f.requested, currencies...)
}

func (f *fakeRates) Convert(amount float64, from string) float64 {
	if r, ok := f.rates[from]; ok {
		return amount * r
	}

	return amount
}

func (f *fakeRates) Refresh(context.Context)      { f.refreshes++ }
func (f *fakeRates) Snapshot() map[string]float64 { return f.rates }
func (f *fakeRates) Target() string               { return "GBP" }
func (f *fakeRates) Loading() bool                { return false }
func (f *fakeRates) LastUpdated() time.Time       { return f.updated }

func ledger() []transaction.Transaction {
	return []transaction.Transaction{
		{Date: "2023-12-30 10:00:00", ItemName: "Gift", Category: "Gifts", OriginalAmount: 50, FinalAmount: 50, Currency: "GBP"},
		{Date: "2024-01-03 08:00:00", ItemName: "Salary", Category: "Salary", OriginalAmount: -2000, FinalAmount: -2000, Currency: "GBP"},
		{Date: "2024-01-05 19:00:00", ItemName: "Dinner", Category: "Eating Out", OriginalAmount: 400, FinalAmount: 200, Currency: "USD", Share: 1, GF: 1},
		{Date: "2024-02-10 12:00:00", ItemName: "Hotel", Category: "Travel", OriginalAmount: 3000, FinalAmount: 3000, Currency: "TWD", Trip: true},
	}
}

func newService(l *fakeLoader, r *fakeRates) *dashboard.Service {
	return dashboard.NewService(l, r, datefilter.New(time.UTC, nil), category.Default(), nil)
}

func TestService_Overview(t *testing.T) {
	r := &fakeRates{rates: map[string]float64{"GBP": 1, "USD": 0.5, "TWD": 0.025}}
	svc := newService(&fakeLoader{txs: ledger()}, r)

	got, err := svc.Overview(context.Background(), datefilter.ForYear(2024))
	require.NoError(t, err)

	// Dinner: 400 USD * 0.5 halved = 100. Hotel: 3000 TWD * 0.025 = 75.
	assert.InDelta(t, 2000, got.TotalIncome, 1e-9)
	assert.InDelta(t, 175, got.TotalExpense, 1e-9)
	assert.InDelta(t, 1825, got.Net, 1e-9)
	assert.Equal(t, "GBP", got.Currency)
	assert.Equal(t, 3, got.Count)
	assert.ElementsMatch(t, []string{"GBP", "USD", "TWD"}, r.requested)

	names := make([]string, 0, len(got.CategoryBreakdown))
	for _, c := range got.CategoryBreakdown {
		names = append(names, c.Category)
	}

	assert.Contains(t, names, "Gifts", "categories outside the window still appear")
}

func TestService_Transactions(t *testing.T) {
	r := &fakeRates{rates: map[string]float64{"USD": 0.5}}
	svc := newService(&fakeLoader{txs: ledger()}, r)

	got, err := svc.Transactions(context.Background(), datefilter.ForMonth(2024, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Salary", got[0].ItemName)
	assert.Equal(t, transaction.TypeIncome, got[0].Type)
	assert.Equal(t, "£ 2,000.00", got[0].Display)
	assert.Empty(t, got[0].Notes)

	assert.Equal(t, "Dinner", got[1].ItemName)
	assert.InDelta(t, 100, got[1].Converted, 1e-9)
	assert.Equal(t, []string{"GF"}, got[1].Notes)
}

func TestService_Transactions_TripAndGF(t *testing.T) {
	tx := transaction.Transaction{Date: "2024-02-01 00:00:00", ItemName: "Ferry", Category: "Travel", OriginalAmount: 10, Currency: "GBP", Trip: true, GF: 1}
	svc := newService(&fakeLoader{txs: []transaction.Transaction{tx}}, &fakeRates{})

	got, err := svc.Transactions(context.Background(), datefilter.Filter{Type: datefilter.TypeCustom})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Trip", "GF"}, got[0].Notes)
}

func TestService_Chart(t *testing.T) {
	svc := newService(&fakeLoader{txs: ledger()}, &fakeRates{rates: map[string]float64{"USD": 0.5, "TWD": 0.025}})

	points, err := svc.Chart(context.Background(), datefilter.ForYear(2024))
	require.NoError(t, err)
	require.Len(t, points, 12)
	assert.Equal(t, "Jan", points[0].Period)
	assert.InDelta(t, 2000, points[0].Income, 1e-9)
	assert.InDelta(t, 100, points[0].Expense, 1e-9)
	assert.InDelta(t, 75, points[1].Expense, 1e-9)
}

func TestService_YearsAndMonths(t *testing.T) {
	svc := newService(&fakeLoader{txs: ledger()}, &fakeRates{})

	years, err := svc.Years(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2023}, years)

	months, err := svc.Months(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, months)

	f, err := svc.DefaultFilter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, datefilter.ForYear(2024), f)
}

func TestService_DefaultFilter_NoData(t *testing.T) {
	svc := newService(&fakeLoader{}, &fakeRates{})

	f, err := svc.DefaultFilter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, datefilter.TypeCustom, f.Type)
}

func TestService_InvalidFilter(t *testing.T) {
	svc := newService(&fakeLoader{txs: ledger()}, &fakeRates{})

	_, err := svc.Overview(context.Background(), datefilter.Filter{Type: "week"})
	assert.ErrorIs(t, err, datefilter.ErrInvalidFilter)
}

func TestService_LoadError(t *testing.T) {
	loadErr := errors.New("remote down")
	svc := newService(&fakeLoader{err: loadErr}, &fakeRates{})

	_, err := svc.Transactions(context.Background(), datefilter.ForYear(2024))
	assert.ErrorIs(t, err, loadErr)

	_, err = svc.Years(context.Background())
	assert.ErrorIs(t, err, loadErr)
}

func TestService_Rates(t *testing.T) {
	r := &fakeRates{rates: map[string]float64{"GBP": 1, "USD": 0.79}}
	svc := newService(&fakeLoader{}, r)

	v := svc.Rates()
	assert.Equal(t, "GBP", v.Target)
	assert.Equal(t, 0.79, v.Rates["USD"])
	assert.Nil(t, v.LastUpdated)

	r.updated = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NotNil(t, svc.Rates().LastUpdated)
}

func TestService_RefreshAndClear(t *testing.T) {
	l := &fakeLoader{txs: ledger()}
	r := &fakeRates{}
	svc := newService(l, r)

	n, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 1, l.refreshes)
	assert.Equal(t, 1, r.refreshes)

	require.NoError(t, svc.ClearCache(context.Background()))
	assert.Equal(t, 1, l.cleared)
}
