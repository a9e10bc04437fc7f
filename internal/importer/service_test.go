package importer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/spendboard/internal/importer"
	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

func exportDoc(n int) string {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fmt.Sprintf(`{"Date": "2024-01-%02d", "ItemName": "item-%d", "Category": "Groceries",
			"OriginalAmount": %d, "Share": false, "FinalAmount": %d, "Exclude": 0, "Gf": 0,
			"girlFriendPercentage": 0, "Trip": false}`, i+1, i, i+1, i+1)
	}

	return fmt.Sprintf(`{"2024-01": {"Columns": [], "RowCount": %d, "Data": [%s]}}`, n, strings.Join(rows, ","))
}

func names(txs []transaction.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ItemName
	}

	return out
}

func TestService_Import(t *testing.T) {
	type testCase struct {
		name      string
		rows      int
		batchSize int
		opts      importer.Options
		setupMock func(m *importer.MockWriter)
		want      importer.Result
	}

	tests := []testCase{
		{
			name:      "AllBatchesSucceed",
			rows:      5,
			batchSize: 2,
			setupMock: func(m *importer.MockWriter) {
				gomock.InOrder(
					m.EXPECT().CreateBatch(gomock.Any(), gomock.Len(2)).Return(nil),
					m.EXPECT().CreateBatch(gomock.Any(), gomock.Len(2)).Return(nil),
					m.EXPECT().CreateBatch(gomock.Any(), gomock.Len(1)).Return(nil),
				)
			},
			want: importer.Result{Total: 5, Inserted: 5},
		},
		{
			name:      "Limit",
			rows:      5,
			batchSize: 10,
			opts:      importer.Options{Limit: 3},
			setupMock: func(m *importer.MockWriter) {
				m.EXPECT().
					CreateBatch(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, txs []transaction.Transaction) error {
						assert.Equal(t, []string{"item-0", "item-1", "item-2"}, names(txs))
						return nil
					})
			},
			want: importer.Result{Total: 3, Inserted: 3},
		},
		{
			name:      "BatchFailureFallsBackToRows",
			rows:      3,
			batchSize: 3,
			setupMock: func(m *importer.MockWriter) {
				m.EXPECT().CreateBatch(gomock.Any(), gomock.Len(3)).Return(errors.New("duplicate key"))
				m.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx transaction.Transaction) error {
						if tx.ItemName == "item-1" {
							return errors.New("duplicate key")
						}

						return nil
					}).
					Times(3)
			},
			want: importer.Result{Total: 3, Inserted: 2, Failed: 1},
		},
		{
			name:      "Empty",
			rows:      0,
			batchSize: 2,
			setupMock: func(m *importer.MockWriter) {},
			want:      importer.Result{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			writer := importer.NewMockWriter(ctrl)
			tt.setupMock(writer)

			svc := importer.NewService(writer, tt.batchSize)
			got, err := svc.Import(context.Background(), strings.NewReader(exportDoc(tt.rows)), tt.opts)
			require.NoError(t, err)

			assert.Equal(t, tt.want.Total, got.Total)
			assert.Equal(t, tt.want.Inserted, got.Inserted)
			assert.Equal(t, tt.want.Failed, got.Failed)
			assert.Len(t, got.Errors, tt.want.Failed)
		})
	}
}

func TestService_Import_RowErrorDetails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dbErr := errors.New("value too long")

	writer := importer.NewMockWriter(ctrl)
	writer.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).Return(nil)
	writer.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).Return(dbErr)
	writer.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dbErr)

	svc := importer.NewService(writer, 2)
	got, err := svc.Import(context.Background(), strings.NewReader(exportDoc(3)), importer.Options{})
	require.NoError(t, err)
	require.Len(t, got.Errors, 1)

	rowErr := got.Errors[0]
	assert.Equal(t, 2, rowErr.Index)
	assert.Equal(t, "item-2", rowErr.ItemName)
	assert.ErrorIs(t, rowErr, dbErr)
}

func TestService_Import_Progress(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	writer := importer.NewMockWriter(ctrl)
	writer.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	var seen []importer.Progress

	svc := importer.NewService(writer, 2)
	_, err := svc.Import(context.Background(), strings.NewReader(exportDoc(5)), importer.Options{
		Progress: func(p importer.Progress) { seen = append(seen, p) },
	})
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.Equal(t, importer.Progress{Done: 2, Total: 5, Inserted: 2}, seen[0])
	assert.Equal(t, importer.Progress{Done: 5, Total: 5, Inserted: 5}, seen[2])
}

func TestService_Import_ValidationAbortsBeforeWriting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No expectations: nothing may be written.
	writer := importer.NewMockWriter(ctrl)

	doc := `{"g": {"Columns": [], "RowCount": 1, "Data": [{"Date": "2024-01-01", "ItemName": "x"}]}}`

	_, err := importer.NewService(writer, 2).Import(context.Background(), strings.NewReader(doc), importer.Options{})
	assert.ErrorIs(t, err, transaction.ErrValidation)
}

func TestService_Import_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	writer := importer.NewMockWriter(ctrl)

	_, err := importer.NewService(writer, 2).Import(ctx, strings.NewReader(exportDoc(2)), importer.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Parse_DefaultsCurrency(t *testing.T) {
	txs, err := importer.NewService(nil, 0).Parse(strings.NewReader(exportDoc(1)))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "USD", txs[0].Currency)
	assert.Equal(t, 0.0, txs[0].Share)
}
