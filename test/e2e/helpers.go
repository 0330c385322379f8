//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/shopmate/internal/api/handlers"
	"github.com/cloo-solutions/shopmate/internal/api/middleware"
	"github.com/cloo-solutions/shopmate/internal/embedding"
	"github.com/cloo-solutions/shopmate/internal/guard"
	"github.com/cloo-solutions/shopmate/internal/index"
	"github.com/cloo-solutions/shopmate/internal/jobs"
	"github.com/cloo-solutions/shopmate/internal/knowledge"
	"github.com/cloo-solutions/shopmate/internal/llm"
	"github.com/cloo-solutions/shopmate/internal/repository"
	"github.com/cloo-solutions/shopmate/internal/scraper"
	"github.com/cloo-solutions/shopmate/internal/server"
	"github.com/cloo-solutions/shopmate/internal/service"
	"github.com/cloo-solutions/shopmate/internal/storage"
	"github.com/cloo-solutions/shopmate/internal/testutil"
	"github.com/cloo-solutions/shopmate/internal/tool"
)

const (
	testAPIKey      = "e2e-write-key"
	knowledgeBucket = "knowledge"
	knowledgeKey    = "sklep.txt"

	knowledgeDoc = `Zwroty przyjmujemy w ciągu 30 dni od daty zakupu, bez podawania przyczyny.

Dostawa kurierem jest darmowa dla zamówień powyżej 200 zł i trwa do dwóch dni roboczych.

Tajne hasło promocyjne na ten tydzień to ZAKUPY2024 i daje dziesięć procent rabatu.`
)

// scriptedProvider answers by prompt content so flows are deterministic.
type scriptedProvider struct{}

func (scriptedProvider) Name() string { return "scripted" }

func (scriptedProvider) Complete(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "Przeanalizuj opinie"):
		return `{"summary": "Solidny wybór", "pros": "aparat, bateria", "cons": "cena"}`, nil
	case strings.Contains(prompt, "WYNIK NARZĘDZIA"):
		return "Oto produkt, o który pytasz.", nil
	case strings.Contains(prompt, "Oblicz ratę"):
		return `{"tool": "calculate_installment", "args": {"price": 3000, "months": 10}}`, nil
	case strings.Contains(prompt, "Pokaż szczegóły"):
		return `{"tool": "get_product_details", "args": {"product_name": "Pixel"}}`, nil
	default:
		return "Zwroty przyjmujemy w ciągu 30 dni.", nil
	}
}

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	Index        *index.Index
	BinaryDir    string
	HTTPClient   *http.Client
}

// SetupE2EEnv starts Postgres and RustFS, publishes the knowledge document
// and serves the full router backed by a scripted model.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx, knowledgeBucket); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}
	if err := s3Client.PutObject(ctx, knowledgeBucket, knowledgeKey, []byte(knowledgeDoc), "text/plain"); err != nil {
		t.Fatalf("failed to upload knowledge document: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		RustFSC:    s3C,
		Pool:       pool,
		S3Client:   s3Client,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	env.ServerURL, env.ServerCloser = env.startServer(port)

	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// BuildBinaries builds the shopmate and shopmated binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "shopmate-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	for _, bin := range []string{"shopmated", "shopmate"} {
		cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, bin), "./cmd/"+bin)
		cmd.Dir = "../.."
		if out, err := cmd.CombinedOutput(); err != nil {
			e.T.Fatalf("failed to build %s: %v\n%s", bin, err, out)
		}
	}
}

// RunShopmate runs the shopmate CLI against the test server
func (e *E2ETestEnv) RunShopmate(workDir string, args ...string) (string, error) {
	return e.RunShopmateWithInput(workDir, "", args...)
}

// RunShopmateWithInput runs the shopmate CLI with stdin input
func (e *E2ETestEnv) RunShopmateWithInput(workDir, input string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "shopmate"), args...)
	cmd.Dir = workDir
	cmd.Stdin = strings.NewReader(input)
	cmd.Env = append(os.Environ(),
		"SHOPMATE_API_KEY="+testAPIKey,
		"SHOPMATE_API_URL="+e.ServerURL,
		"XDG_CONFIG_HOME="+workDir,
		"HOME="+workDir,
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	StatusCode int             `json:"-"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error,omitempty"`
	Code       string          `json:"code,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil, "")
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, apiKey string) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body, apiKey)
}

// doRequest returns the decoded envelope for every status; transport and
// decoding failures are the only errors.
func (e *E2ETestEnv) doRequest(method, path string, body interface{}, apiKey string) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	apiResp.StatusCode = resp.StatusCode
	return &apiResp, nil
}

// Chat sends a single user message.
func (e *E2ETestEnv) Chat(message string) (*APIResponse, error) {
	return e.Post("/chat", map[string]interface{}{
		"messages": []map[string]string{{"role": "user", "content": message}},
	}, "")
}

// WaitForSummary polls the product report until its summary equals want.
func (e *E2ETestEnv) WaitForSummary(productID int64, want string, timeout time.Duration) map[string]interface{} {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := e.Get(fmt.Sprintf("/products/%d", productID))
		if err == nil && resp.StatusCode == http.StatusOK {
			var report map[string]interface{}
			if err := json.Unmarshal(resp.Data, &report); err == nil && report["summary"] == want {
				return report
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	e.T.Fatalf("product %d summary did not become %q within %v", productID, want, timeout)
	return nil
}

func (e *E2ETestEnv) startServer(port int) (string, func()) {
	ctx, cancel := context.WithCancel(e.Ctx)

	productRepo := repository.NewProductRepository(e.Pool)
	offerRepo := repository.NewOfferRepository(e.Pool)
	reviewRepo := repository.NewReviewRepository(e.Pool)
	insightRepo := repository.NewInsightRepository(e.Pool)
	jobRepo := repository.NewAnalysisJobRepository(e.Pool)

	embedder := embedding.NewCachedEmbedder(embedding.NewHashEmbedder(128), repository.NewEmbeddingCacheRepository(e.Pool))
	e.Index = index.New(embedder)
	loader := knowledge.NewLoader(nil, e.S3Client)
	if err := e.Index.Build(ctx, loader.Fetch(ctx, "s3://"+knowledgeBucket+"/"+knowledgeKey)); err != nil {
		e.T.Fatalf("failed to build index: %v", err)
	}

	adapter := llm.NewAdapter(5*time.Second, scriptedProvider{})
	tools, err := tool.NewShoppingRegistry(productRepo, offerRepo, insightRepo)
	if err != nil {
		e.T.Fatalf("failed to register tools: %v", err)
	}
	activity := service.MultiActivityRecorder{
		service.NewLogActivityRecorder(nil),
		service.NewStoreActivityRecorder(repository.NewActivityLogRepository(e.Pool)),
	}

	chatSvc := service.NewChatService(guard.Default(), e.Index, adapter, tools, activity)
	productSvc := service.NewProductService(productRepo, offerRepo, insightRepo, repository.NewTxRunner(e.Pool), scraper.NewClient(""))
	analysisSvc := service.NewAnalysisService(offerRepo, reviewRepo, insightRepo, adapter)

	worker := jobs.NewWorker(jobs.NewAnalysisWorker(jobRepo, analysisSvc), 100*time.Millisecond)
	go worker.Start(ctx)

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:  middleware.NewStaticKeyValidator(testAPIKey),
		CORSOrigins:    []string{"http://localhost:8051"},
		HealthHandler:  handlers.NewHealthHandler(e.Pool, e.Index, adapter),
		ChatHandler:    handlers.NewChatHandler(chatSvc),
		ProductHandler: handlers.NewProductHandler(productSvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.T.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(e.T, serverURL, 10*time.Second)

	return serverURL, func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
		worker.Stop()
		cancel()
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
