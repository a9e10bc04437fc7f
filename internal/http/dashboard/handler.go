package dashboard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/spendboard/internal/dashboard"
	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
)

type Handler struct {
	svc *dashboard.Service
}

func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/overview", h.overview)
	r.Get("/transactions", h.transactions)
	r.Get("/chart", h.chart)
	r.Get("/filters/years", h.years)
	r.Get("/filters/months", h.months)
	r.Get("/rates", h.rates)
	r.Post("/refresh", h.refresh)
	r.Delete("/cache", h.clearCache)
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) (datefilter.Filter, bool) {
	f, err := datefilter.FromQuery(r.URL.Query(), h.svc.Dates().Location())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return datefilter.Filter{}, false
	}

	return f, true
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.Overview(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOverviewResponse(summary))
}

func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	rows, err := h.svc.Transactions(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRowList(rows))
}

func (h *Handler) chart(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	points, err := h.svc.Chart(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chartResponse{Filter: f, Points: points})
}

func (h *Handler) years(w http.ResponseWriter, r *http.Request) {
	years, err := h.svc.Years(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, years)
}

func (h *Handler) months(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "year query parameter is required", http.StatusBadRequest)
		return
	}

	months, err := h.svc.Months(r.Context(), year)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, months)
}

func (h *Handler) rates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Rates())
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{Transactions: n, Rates: h.svc.Rates()})
}

func (h *Handler) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearCache(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, datefilter.ErrInvalidFilter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Error("dashboard request failed", "error", err)
	http.Error(w, "failed to load transactions", http.StatusBadGateway)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
