package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/shopmate/internal/api/handlers"
	"github.com/cloo-solutions/shopmate/internal/api/middleware"
	"github.com/cloo-solutions/shopmate/internal/domain"
	"github.com/cloo-solutions/shopmate/internal/scraper"
	"github.com/cloo-solutions/shopmate/internal/service"
	"github.com/cloo-solutions/shopmate/internal/tool"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Chat(ctx context.Context, input service.ChatInput) (*service.ChatOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChatOutput), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Search(ctx context.Context, query string) ([]scraper.ProductHit, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scraper.ProductHit), args.Error(1)
}

func (m *MockProductService) Analyze(ctx context.Context, input service.AnalyzeInput) (*service.AnalyzeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalyzeOutput), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, input service.ListProductsInput) (*service.ListProductsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListProductsOutput), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id int64) (*tool.ProductReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tool.ProductReport), args.Error(1)
}

type fixedProviders []string

func (p fixedProviders) Providers() []string { return p }

func setupRouter(auth middleware.AuthValidator) (http.Handler, *MockChatService, *MockProductService) {
	chatSvc := new(MockChatService)
	productSvc := new(MockProductService)

	router := NewRouter(RouterConfig{
		AuthValidator:  auth,
		CORSOrigins:    []string{"http://localhost:8051"},
		HealthHandler:  handlers.NewHealthHandler(nil, nil, fixedProviders{"gemini"}),
		ChatHandler:    handlers.NewChatHandler(chatSvc),
		ProductHandler: handlers.NewProductHandler(productSvc),
	})
	return router, chatSvc, productSvc
}

func TestRouter_Health(t *testing.T) {
	router, _, _ := setupRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp struct {
		Data handlers.HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Data.Status)
	assert.Equal(t, []string{"gemini"}, resp.Data.Providers)
}

func TestRouter_Chat(t *testing.T) {
	router, chatSvc, _ := setupRouter(middleware.NewStaticKeyValidator("sm-key"))
	chatSvc.On("Chat", mock.Anything, mock.Anything).Return(&service.ChatOutput{
		Response:     "Cześć!",
		ProviderUsed: "gemini",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hej"}]}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"provider_used":"gemini"`)
}

func TestRouter_ChatRejected(t *testing.T) {
	router, chatSvc, _ := setupRouter(nil)
	chatSvc.On("Chat", mock.Anything, mock.Anything).Return(nil, domain.ErrInputRejected)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"messages":[{"role":"user","content":"jailbreak"}]}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Zapytanie zablokowane.")
}

func TestRouter_AnalyzeRequiresKey(t *testing.T) {
	router, _, productSvc := setupRouter(middleware.NewStaticKeyValidator("sm-key"))
	productSvc.On("Analyze", mock.Anything, mock.Anything).Return(&service.AnalyzeOutput{
		ProductID: 1, Message: service.MsgAnalysisStarted, Queued: true,
	}, nil)

	body := `{"name":"iPhone 15","price":3999}`

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer sm-key")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)
	productSvc.AssertNumberOfCalls(t, "Analyze", 1)
}

func TestRouter_AnalyzeOpenWithoutKey(t *testing.T) {
	router, _, productSvc := setupRouter(nil)
	productSvc.On("Analyze", mock.Anything, mock.Anything).Return(&service.AnalyzeOutput{
		ProductID: 1, Message: service.MsgProductCached, Cached: true,
	}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"name":"x"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Products(t *testing.T) {
	router, _, productSvc := setupRouter(nil)
	productSvc.On("List", mock.Anything, service.ListProductsInput{}).Return(&service.ListProductsOutput{}, nil)
	productSvc.On("Get", mock.Anything, int64(7)).Return(&tool.ProductReport{Type: "product_report", ID: 7}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"items":[],"has_more":false}}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":7`)
}

func TestRouter_Preflight(t *testing.T) {
	router, _, _ := setupRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:8051")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:8051", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_NotFound(t *testing.T) {
	router, _, _ := setupRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/knowledge", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
