package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/shopmate/internal/api"
)

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexStatus reports how many knowledge chunks are searchable.
type IndexStatus interface {
	Len() int
}

// ProviderLister names the configured language-model providers in order.
type ProviderLister interface {
	Providers() []string
}

type HealthHandler struct {
	db        Pinger
	index     IndexStatus
	providers ProviderLister
}

func NewHealthHandler(db Pinger, index IndexStatus, providers ProviderLister) *HealthHandler {
	return &HealthHandler{db: db, index: index, providers: providers}
}

type HealthResponse struct {
	Status          string   `json:"status"`
	Database        string   `json:"database"`
	KnowledgeChunks int      `json:"knowledge_chunks"`
	Providers       []string `json:"providers"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "ok", Providers: []string{}}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unavailable"
		}
	}
	if h.index != nil {
		resp.KnowledgeChunks = h.index.Len()
	}
	if h.providers != nil {
		resp.Providers = h.providers.Providers()
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	api.Success(w, status, resp)
}
