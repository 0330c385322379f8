package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/domain"
	"github.com/cloo-solutions/shopmate/internal/guard"
	"github.com/cloo-solutions/shopmate/internal/llm"
	"github.com/cloo-solutions/shopmate/internal/logging"
	"github.com/cloo-solutions/shopmate/internal/telemetry"
)

// Insight texts used when the model's answer is unusable or incomplete.
const (
	DefaultSummary       = "Brak podsumowania"
	DefaultProsCons      = "Brak"
	AnalysisParseFailure = "Błąd analizy API."
)

// ErrAnalysisUnavailable is returned when no provider produced an analysis.
var ErrAnalysisUnavailable = errors.New("no provider produced an analysis")

// AnalysisService summarizes a product's offers and reviews into an insight.
type AnalysisService struct {
	offers    OfferRepositoryInterface
	reviews   ReviewRepositoryInterface
	insights  InsightRepositoryInterface
	generator llm.Generator
	now       func() time.Time
}

// NewAnalysisService creates a new AnalysisService instance
func NewAnalysisService(
	offers OfferRepositoryInterface,
	reviews ReviewRepositoryInterface,
	insights InsightRepositoryInterface,
	generator llm.Generator,
) *AnalysisService {
	return &AnalysisService{
		offers:    offers,
		reviews:   reviews,
		insights:  insights,
		generator: generator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AnalyzeProduct runs the review analysis for productID and stores the
// insight. A product with neither offers nor reviews goes back to status
// none. When no provider answers the insight is marked error and
// ErrAnalysisUnavailable is returned so the job can be retried.
func (s *AnalysisService) AnalyzeProduct(ctx context.Context, productID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "AnalysisService.AnalyzeProduct", telemetry.SpanAttributes{
		ProductID: productID,
		Operation: "analyze",
	})
	defer span.End()

	offers, err := s.offers.ListByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to list offers: %w", err)
	}
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to list reviews: %w", err)
	}

	if len(offers) == 0 && len(reviews) == 0 {
		return s.store(ctx, &domain.Insight{ProductID: productID, Status: domain.AnalysisStatusNone})
	}

	gen, ok := s.generator.Generate(ctx, BuildAnalysisPrompt(BuildAnalysisCorpus(offers, reviews)))
	if !ok {
		if err := s.store(ctx, &domain.Insight{ProductID: productID, Status: domain.AnalysisStatusError}); err != nil {
			logging.L().Error("failed to mark insight as error", zap.Int64("product_id", productID), zap.Error(err))
		}
		span.SetError(ErrAnalysisUnavailable)
		return ErrAnalysisUnavailable
	}
	span.SetTag("llm_provider", gen.Provider)

	insight := ParseAnalysis(gen.Text)
	insight.ProductID = productID
	return s.store(ctx, insight)
}

func (s *AnalysisService) store(ctx context.Context, insight *domain.Insight) error {
	insight.UpdatedAt = s.now()
	if err := s.insights.Upsert(ctx, insight); err != nil {
		return fmt.Errorf("failed to upsert insight: %w", err)
	}
	return nil
}

// BuildAnalysisCorpus renders the price report and user opinions fed to the model.
func BuildAnalysisCorpus(offers []*domain.Offer, reviews []*domain.Review) string {
	var sb strings.Builder
	sb.WriteString("RAPORT CENOWY:\n")
	for _, o := range offers {
		fmt.Fprintf(&sb, "- Sklep: %s, Cena: %.2f zł\n", o.StoreName, o.Price)
	}
	sb.WriteString("\nOPINIE UŻYTKOWNIKÓW:\n")
	for _, r := range reviews {
		fmt.Fprintf(&sb, "- (Ocena: %.1f/5) %s\n", r.Rating, r.Content)
	}
	return sb.String()
}

// BuildAnalysisPrompt asks for a JSON summary of corpus.
func BuildAnalysisPrompt(corpus string) string {
	return "Przeanalizuj opinie i zwróć JSON {'summary': '...', 'pros': '...', 'cons': '...'}. Opinie: " + corpus
}

// ParseAnalysis turns model output into a completed insight. Output with
// no JSON object yields the parse-failure summary; missing keys take
// their defaults.
func ParseAnalysis(text string) *domain.Insight {
	obj, ok := guard.ExtractObject(text)
	if !ok {
		return &domain.Insight{Status: domain.AnalysisStatusCompleted, Summary: AnalysisParseFailure}
	}
	return &domain.Insight{
		Status:  domain.AnalysisStatusCompleted,
		Summary: field(obj, "summary", DefaultSummary),
		Pros:    field(obj, "pros", DefaultProsCons),
		Cons:    field(obj, "cons", DefaultProsCons),
	}
}

func field(obj map[string]any, key, def string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return def
	}
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
