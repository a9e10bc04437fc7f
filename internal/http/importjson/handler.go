package importjson

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/spendboard/internal/importer"
	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

const maxUpload = 32 << 20

// Refresher is told when new rows have landed so cached views can be rebuilt.
type Refresher interface {
	ClearCache(ctx context.Context) error
}

type Handler struct {
	importSvc *importer.Service
	refresher Refresher
}

func NewHandler(importSvc *importer.Service, refresher Refresher) *Handler {
	return &Handler{importSvc: importSvc, refresher: refresher}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importExport)
	r.Post("/preview", h.preview)
}

type validationResponse struct {
	Error string `json:"error"`
	Group string `json:"group,omitempty"`
	Row   int    `json:"row"`
	Field string `json:"field,omitempty"`
}

type previewResponse struct {
	Rows         int                       `json:"rows"`
	Transactions []transaction.Transaction `json:"transactions"`
}

// body returns the uploaded export, either the "file" part of a multipart form or
// the raw request body.
func body(w http.ResponseWriter, r *http.Request) (io.ReadCloser, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return r.Body, true
		}

		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)

		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return nil, false
	}

	return file, true
}

func (h *Handler) importExport(w http.ResponseWriter, r *http.Request) {
	limit := 0

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		limit = n
	}

	file, ok := body(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.importSvc.Import(r.Context(), file, importer.Options{Limit: limit})
	if err != nil {
		writeImportError(w, err)
		return
	}

	if h.refresher != nil && result.Inserted > 0 {
		if err := h.refresher.ClearCache(r.Context()); err != nil {
			slog.Warn("failed to clear cache after import", "error", err)
		}
	}

	status := http.StatusCreated
	if result.Failed > 0 {
		status = http.StatusMultiStatus
	}

	writeJSON(w, status, result)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	file, ok := body(w, r)
	if !ok {
		return
	}
	defer file.Close()

	txs, err := h.importSvc.Parse(file)
	if err != nil {
		writeImportError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, previewResponse{Rows: len(txs), Transactions: txs})
}

func writeImportError(w http.ResponseWriter, err error) {
	var vErr *transaction.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
			Error: vErr.Error(),
			Group: vErr.Group,
			Row:   vErr.Row,
			Field: vErr.Field,
		})

		return
	}

	if errors.Is(err, transaction.ErrMalformedExport) {
		http.Error(w, "invalid export: "+err.Error(), http.StatusBadRequest)
		return
	}

	slog.Error("import failed", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
