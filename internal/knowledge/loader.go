// Package knowledge fetches the plain-text document the chat index is
// built from. A document can live in Google Docs, an S3 bucket, behind a
// plain URL, or on local disk.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/logging"
	"github.com/cloo-solutions/shopmate/internal/storage"
)

const (
	// GoogleDocExportURL is the plain-text export endpoint for a document id.
	GoogleDocExportURL = "https://docs.google.com/document/d/%s/export?format=txt"

	maxDocumentBytes = 8 << 20
)

var (
	ErrUnknownSource   = errors.New("unrecognized knowledge source")
	ErrNoObjectStore   = errors.New("s3 source configured without object storage")
	ErrDocumentTooBig  = errors.New("knowledge document exceeds size limit")
	googleDocIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{20,}$`)
)

// ObjectGetter reads objects from a bucket.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Loader resolves a knowledge source string to document text.
type Loader struct {
	httpClient   *http.Client
	objects      ObjectGetter
	googleDocURL string
}

// NewLoader creates a Loader. objects may be nil when no S3 source is used.
func NewLoader(httpClient *http.Client, objects ObjectGetter) *Loader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Loader{httpClient: httpClient, objects: objects, googleDocURL: GoogleDocExportURL}
}

// Fetch returns the document text, or "" when source is empty or cannot be
// read. Failures are logged and never fatal.
func (l *Loader) Fetch(ctx context.Context, source string) string {
	text, err := l.Load(ctx, source)
	if err != nil {
		logging.L().Warn("knowledge document unavailable, starting with an empty index",
			zap.String("source", source),
			zap.Error(err),
		)
		return ""
	}
	logging.L().Info("knowledge document loaded",
		zap.String("source", source),
		zap.Int("chars", len([]rune(text))),
	)
	return text
}

// Load is Fetch with the error surfaced. Sources are tried as an s3:// URI,
// an http(s) URL, an existing local file, and finally a Google Doc id.
func (l *Loader) Load(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)
	switch {
	case source == "":
		return "", nil
	case strings.HasPrefix(source, "s3://"):
		return l.loadObject(ctx, source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return l.loadURL(ctx, source)
	}

	path := strings.TrimPrefix(source, "file://")
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return loadFile(path)
	}
	if googleDocIDPattern.MatchString(source) {
		return l.loadURL(ctx, fmt.Sprintf(l.googleDocURL, source))
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, source)
}

func (l *Loader) loadObject(ctx context.Context, uri string) (string, error) {
	if l.objects == nil {
		return "", ErrNoObjectStore
	}
	bucket, key, err := storage.ParseURI(uri)
	if err != nil {
		return "", err
	}
	data, err := l.objects.GetObject(ctx, bucket, key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (l *Loader) loadURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download document: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if len(data) > maxDocumentBytes {
		return "", ErrDocumentTooBig
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}

func loadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(data) > maxDocumentBytes {
		return "", ErrDocumentTooBig
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
