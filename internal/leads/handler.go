package leads

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/homequote/homequote/pkg/logging"
)

// exportLimit caps one export document.
const exportLimit = 10000

// Handler serves the admin lead endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// ListResponse is the response for listing leads
type ListResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// List handles GET /admin/leads requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	leads, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}
	if leads == nil {
		leads = []*Lead{}
	}

	response := ListResponse{
		Leads:  leads,
		Count:  len(leads),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Get handles GET /admin/leads/{leadID} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadID")

	lead, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch lead", "error", err, "lead_id", id)
		http.Error(w, "failed to fetch lead", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lead)
}

// Delete handles DELETE /admin/leads/{leadID} requests
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadID")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete lead", "error", err, "lead_id", id)
		http.Error(w, "failed to delete lead", http.StatusInternalServerError)
		return
	}

	h.logger.Info("lead deleted", "lead_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /admin/leads/export requests. The default document is
// the full ordered lead list as JSON, one-to-one with the stored model;
// format=csv downloads a flattened spreadsheet instead.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	filter.Limit = exportLimit

	leads, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to export leads", "error", err)
		http.Error(w, "failed to export leads", http.StatusInternalServerError)
		return
	}
	if leads == nil {
		leads = []*Lead{}
	}

	if r.URL.Query().Get("format") != "csv" {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="leads.json"`)
		json.NewEncoder(w).Encode(leads)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "created_at", "service", "estimated_price", "price_min", "price_max", "answers"})
	for _, lead := range leads {
		answers, _ := json.Marshal(lead.Answers)
		cw.Write([]string{
			lead.ID,
			lead.CreatedAt.Format(time.RFC3339),
			lead.ServiceName,
			lead.EstimatedPrice.StringFixed(2),
			lead.PriceRange.Min.StringFixed(2),
			lead.PriceRange.Max.StringFixed(2),
			string(answers),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("failed to write csv", "error", err)
	}
}

func filterFromQuery(r *http.Request) ListFilter {
	filter := ListFilter{
		Limit:  50,
		Offset: 0,
	}
	if svc := r.URL.Query().Get("service"); svc != "" {
		filter.Service = serviceKeyOrEmpty(svc)
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	return filter
}
