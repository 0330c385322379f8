package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/shopmate/internal/api"
	"github.com/cloo-solutions/shopmate/internal/domain"
	"github.com/cloo-solutions/shopmate/internal/scraper"
	"github.com/cloo-solutions/shopmate/internal/service"
	"github.com/cloo-solutions/shopmate/internal/tool"
)

type ProductService interface {
	Search(ctx context.Context, query string) ([]scraper.ProductHit, error)
	Analyze(ctx context.Context, input service.AnalyzeInput) (*service.AnalyzeOutput, error)
	List(ctx context.Context, input service.ListProductsInput) (*service.ListProductsOutput, error)
	Get(ctx context.Context, id int64) (*tool.ProductReport, error)
}

type ProductHandler struct {
	svc ProductService
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchResponse struct {
	Results []scraper.ProductHit `json:"results"`
}

type AnalyzeRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Link     string  `json:"link"`
	ImageURL string  `json:"image_url"`
}

type AnalyzeResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Cached  bool   `json:"cached"`
	Queued  bool   `json:"queued"`
}

type ProductResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
	CreatedAt string  `json:"created_at"`
}

type ListProductsResponse struct {
	Items   []*ProductResponse `json:"items"`
	Cursor  string             `json:"cursor,omitempty"`
	HasMore bool               `json:"has_more"`
}

func productToResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hits, err := h.svc.Search(r.Context(), req.Query)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if hits == nil {
		hits = []scraper.ProductHit{}
	}

	api.Success(w, http.StatusOK, SearchResponse{Results: hits})
}

func (h *ProductHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	out, err := h.svc.Analyze(r.Context(), service.AnalyzeInput{
		Name:     req.Name,
		Price:    req.Price,
		Link:     req.Link,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	status := http.StatusAccepted
	if out.Cached && !out.Queued {
		status = http.StatusOK
	}
	api.Success(w, status, AnalyzeResponse{
		Message: out.Message,
		ID:      out.ProductID,
		Cached:  out.Cached,
		Queued:  out.Queued,
	})
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	out, err := h.svc.List(r.Context(), service.ListProductsInput{
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*ProductResponse, 0, len(out.Items))
	for _, p := range out.Items {
		items = append(items, productToResponse(p))
	}
	api.Success(w, http.StatusOK, ListProductsResponse{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		api.Error(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	report, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, report)
}
