package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/shopmate/internal/api"
	"github.com/cloo-solutions/shopmate/internal/domain"
	"github.com/cloo-solutions/shopmate/internal/service"
)

type ChatService interface {
	Chat(ctx context.Context, input service.ChatInput) (*service.ChatOutput, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages          []ChatMessage `json:"messages"`
	Provider          string        `json:"provider"`
	ActiveProductName string        `json:"active_product_name"`
}

type ChatResponse struct {
	Response       string `json:"response"`
	ProviderUsed   string `json:"provider_used"`
	RAGContextUsed bool   `json:"rag_context_used"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turns := make([]domain.ChatTurn, 0, len(req.Messages))
	for _, m := range req.Messages {
		turns = append(turns, domain.ChatTurn{Role: domain.ParseRole(m.Role), Content: m.Content})
	}

	out, err := h.svc.Chat(r.Context(), service.ChatInput{
		Messages:          turns,
		Provider:          req.Provider,
		ActiveProductName: req.ActiveProductName,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ChatResponse{
		Response:       out.Response,
		ProviderUsed:   out.ProviderUsed,
		RAGContextUsed: out.RAGContextUsed,
	})
}
