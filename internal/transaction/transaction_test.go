package transaction_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		amount float64
		want   transaction.Type
	}{
		{12.3, transaction.TypeExpense},
		{0.01, transaction.TypeExpense},
		{-1500, transaction.TypeIncome},
		{0, transaction.TypeTransfer},
		{math.Copysign(0, -1), transaction.TypeTransfer},
	}

	for _, tt := range tests {
		got := transaction.TypeOf(transaction.Transaction{FinalAmount: tt.amount})
		assert.Equal(t, tt.want, got, "amount %v", tt.amount)
	}
}

func TestKey(t *testing.T) {
	tx := transaction.Transaction{
		Date:           "2024-01-05 00:00:00",
		ItemName:       "Coffee",
		OriginalAmount: 3.5,
		Currency:       "USD",
	}

	assert.Equal(t, "2024-01-05 00:00:00-Coffee-3.5-USD", transaction.Key(tx))

	other := tx
	other.FinalAmount = 99
	assert.Equal(t, transaction.Key(tx), transaction.Key(other))
}

func TestTransaction_Time(t *testing.T) {
	tx := transaction.Transaction{Date: "2024-02-29 13:45:00"}

	got, err := tx.Time(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 13, 45, 0, 0, time.UTC), got)

	_, err = transaction.Transaction{Date: "not a date"}.Time(time.UTC)
	assert.Error(t, err)
}

func TestTransaction_Validate(t *testing.T) {
	ok := transaction.Transaction{Date: "2024-01-01", Currency: "USD"}
	assert.NoError(t, ok.Validate())

	noCurrency := ok
	noCurrency.Currency = ""
	assert.ErrorIs(t, noCurrency.Validate(), transaction.ErrValidation)

	inf := ok
	inf.GirlFriendPercentage = math.Inf(1)

	err := inf.Validate()

	var vErr *transaction.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "girlFriendPercentage", vErr.Field)
}

const exportDoc = `{
	"2024-02": {
		"Columns": ["Date", "ItemName"],
		"RowCount": 2,
		"Data": [
			{"Date": "2024-02-01", "ItemName": "Rent", "Category": "Rent", "OriginalAmount": 900,
			 "Share": true, "FinalAmount": 450, "Exclude": false, "Gf": 0,
			 "girlFriendPercentage": 50, "Trip": false},
			{"Date": "2024-02-02", "ItemName": "Salary", "Category": "Salary", "OriginalAmount": -3000,
			 "Share": 0, "FinalAmount": -3000, "Exclude": 0, "Gf": false,
			 "girlFriendPercentage": 0, "Trip": false, "Currency": "GBP"}
		]
	},
	"2024-01": {
		"Columns": [],
		"RowCount": 1,
		"Data": [
			{"Date": "2024-01-15 09:30:00", "ItemName": "Train", "Category": "Transportation", "OriginalAmount": 20,
			 "Share": 0, "FinalAmount": 20, "Exclude": 0, "Gf": 1,
			 "girlFriendPercentage": 0, "Trip": true}
		]
	}
}`

func TestTransform(t *testing.T) {
	export, err := transaction.DecodeExport(strings.NewReader(exportDoc))
	require.NoError(t, err)
	require.Len(t, export, 2)
	assert.Equal(t, "2024-02", export[0].Key)
	assert.Equal(t, 3, export.Rows())

	txs, err := transaction.Transform(export)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, "Rent", txs[0].ItemName)
	assert.Equal(t, 1.0, txs[0].Share)
	assert.Equal(t, 0.0, txs[0].Exclude)
	assert.Equal(t, "USD", txs[0].Currency)

	assert.Equal(t, "Salary", txs[1].ItemName)
	assert.Equal(t, "GBP", txs[1].Currency)
	assert.Equal(t, 0.0, txs[1].GF)

	assert.Equal(t, "Train", txs[2].ItemName)
	assert.True(t, txs[2].Trip)
	assert.Equal(t, 1.0, txs[2].GF)
}

func TestTransform_MissingField(t *testing.T) {
	doc := `{"g": {"Columns": [], "RowCount": 2, "Data": [
		{"Date": "2024-01-01", "ItemName": "a", "Category": "c", "OriginalAmount": 1,
		 "Share": 0, "FinalAmount": 1, "Exclude": 0, "Gf": 0, "girlFriendPercentage": 0, "Trip": false},
		{"Date": "2024-01-02", "ItemName": "b", "Category": "c", "OriginalAmount": 1,
		 "Share": 0, "Exclude": 0, "Gf": 0, "girlFriendPercentage": 0, "Trip": false}
	]}}`

	export, err := transaction.DecodeExport(strings.NewReader(doc))
	require.NoError(t, err)

	txs, err := transaction.Transform(export)
	assert.Nil(t, txs)

	var vErr *transaction.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "g", vErr.Group)
	assert.Equal(t, 1, vErr.Row)
	assert.Equal(t, "FinalAmount", vErr.Field)
}

func TestTransform_RowIsIndexWithinGroup(t *testing.T) {
	doc := `{
		"first": {"Columns": [], "RowCount": 2, "Data": [
			{"Date": "2024-01-01", "ItemName": "a", "Category": "c", "OriginalAmount": 1,
			 "Share": 0, "FinalAmount": 1, "Exclude": 0, "Gf": 0, "girlFriendPercentage": 0, "Trip": false},
			{"Date": "2024-01-02", "ItemName": "b", "Category": "c", "OriginalAmount": 1,
			 "Share": 0, "FinalAmount": 1, "Exclude": 0, "Gf": 0, "girlFriendPercentage": 0, "Trip": false}
		]},
		"second": {"Columns": [], "RowCount": 1, "Data": [
			{"Date": "2024-02-01", "ItemName": "c", "Category": "c", "OriginalAmount": 1,
			 "Share": 0, "Exclude": 0, "Gf": 0, "girlFriendPercentage": 0, "Trip": false}
		]}
	}`

	export, err := transaction.DecodeExport(strings.NewReader(doc))
	require.NoError(t, err)

	_, err = transaction.Transform(export)

	var vErr *transaction.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "second", vErr.Group)
	assert.Equal(t, 0, vErr.Row)
	assert.Contains(t, err.Error(), `group "second" row 0`)
}

func TestTransform_MissingGroupFields(t *testing.T) {
	export, err := transaction.DecodeExport(strings.NewReader(`{"g": {"Columns": [], "Data": []}}`))
	require.NoError(t, err)

	_, err = transaction.Transform(export)
	assert.True(t, errors.Is(err, transaction.ErrValidation))
}

func TestTransform_NullFlagIsMissing(t *testing.T) {
	doc := `{"g": {"Columns": [], "RowCount": 1, "Data": [
		{"Date": "2024-01-01", "ItemName": "a", "Category": "c", "OriginalAmount": 1,
		 "Share": 0, "FinalAmount": 1, "Exclude": null, "Gf": 0, "girlFriendPercentage": 0, "Trip": false}
	]}}`

	export, err := transaction.DecodeExport(strings.NewReader(doc))
	require.NoError(t, err)

	_, err = transaction.Transform(export)

	var vErr *transaction.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Exclude", vErr.Field)
}

func TestDecodeExport_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"NotObject", `[1, 2]`},
		{"BadFlag", `{"g": {"Columns": [], "RowCount": 1, "Data": [{"Share": "yes"}]}}`},
		{"Truncated", `{"g": {"Columns": []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transaction.DecodeExport(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}
