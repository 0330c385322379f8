package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/domain"
	"github.com/cloo-solutions/shopmate/internal/guard"
	"github.com/cloo-solutions/shopmate/internal/llm"
	"github.com/cloo-solutions/shopmate/internal/logging"
	"github.com/cloo-solutions/shopmate/internal/telemetry"
	"github.com/cloo-solutions/shopmate/internal/tool"
)

// User-facing chat messages.
const (
	MsgProvidersOverloaded = "Serwery AI są przeciążone. Spróbuj ponownie za chwilę."
	MsgRefusal             = "Nie mogę odpowiedzieć na to pytanie."
	MsgToolTimeout         = "Baza danych odpowiada zbyt wolno. Spróbuj ponownie za chwilę."
	MsgProductNotFound     = "Nie znaleziono takiego produktu w bazie."
	MsgTechnicalError      = "Wystąpił błąd techniczny: %s"
	MsgUnknownTool         = "Model próbował użyć nieznanego narzędzia: %s"
	DefaultReportIntro     = "Oto szczegóły produktu:"

	// ProviderNone is reported when no provider produced the answer.
	ProviderNone = "none"

	// ContextTopK is the number of knowledge chunks put in the prompt.
	ContextTopK = 2
)

// Activity sources.
const (
	sourceSecurity = "security"
	sourceLLM      = "llm"
	sourceParser   = "tool_parser"
	sourceRAG      = "rag"
)

// auditSnippetRunes bounds model text copied into activity entries.
const auditSnippetRunes = 200

// KnowledgeIndexInterface retrieves knowledge chunks for a query.
type KnowledgeIndexInterface interface {
	Query(ctx context.Context, text string, k int) ([]string, error)
}

// ProviderSelectorInterface resolves a provider hint to a generator.
type ProviderSelectorInterface interface {
	For(hint string) (llm.Generator, error)
}

// ToolRegistryInterface is the tool surface the dispatcher needs.
type ToolRegistryInterface interface {
	Has(name string) bool
	Catalog() string
	Invoke(ctx context.Context, name string, rawArgs any, timeout time.Duration) tool.Result
}

// ChatInput is one chat turn request.
type ChatInput struct {
	Messages          []domain.ChatTurn
	Provider          string
	ActiveProductName string
}

// ChatOutput is the dispatcher's answer.
type ChatOutput struct {
	Response       string
	ProviderUsed   string
	RAGContextUsed bool
}

// ChatService runs the conversational dispatcher.
type ChatService struct {
	guard     *guard.Guard
	index     KnowledgeIndexInterface
	providers ProviderSelectorInterface
	tools     ToolRegistryInterface
	activity  ActivityRecorder
}

// NewChatService creates a ChatService. A nil recorder logs activity
// through the shared logger.
func NewChatService(
	g *guard.Guard,
	index KnowledgeIndexInterface,
	providers ProviderSelectorInterface,
	tools ToolRegistryInterface,
	activity ActivityRecorder,
) *ChatService {
	if activity == nil {
		activity = NewLogActivityRecorder(nil)
	}
	return &ChatService{
		guard:     g,
		index:     index,
		providers: providers,
		tools:     tools,
		activity:  activity,
	}
}

// Chat answers the latest user message of input. The only error returned
// is domain.ErrInputRejected when the message trips the inbound guard.
// Every other failure becomes a fixed user-facing message.
func (s *ChatService) Chat(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.Chat", telemetry.SpanAttributes{
		Operation: "chat",
	})
	defer span.End()

	latest := domain.LatestUserMessage(input.Messages)

	if s.guard.CheckInbound(latest).BlockedInput {
		s.record(ctx, sourceSecurity, domain.ActivityWarn, "input rejected")
		return nil, domain.ErrInputRejected
	}

	generator := s.generatorFor(ctx, input.Provider)

	chunks, err := s.index.Query(ctx, latest, ContextTopK)
	if err != nil {
		logging.L().Warn("knowledge query failed", zap.Error(err))
		s.record(ctx, sourceRAG, domain.ActivityWarn, err.Error())
		chunks = nil
	}
	ragContext := strings.Join(chunks, ragSeparator)
	out := &ChatOutput{ProviderUsed: ProviderNone, RAGContextUsed: len(chunks) > 0}

	prompt := PromptInput{
		ActiveProduct: input.ActiveProductName,
		RAGContext:    ragContext,
		History:       input.Messages,
		ToolCatalog:   s.tools.Catalog(),
	}
	if generator == nil {
		s.record(ctx, sourceLLM, domain.ActivityError, "no provider chain available")
		out.Response = MsgProvidersOverloaded
		return out, nil
	}
	gen, ok := generator.Generate(ctx, BuildChatPrompt(prompt))
	if !ok {
		s.record(ctx, sourceLLM, domain.ActivityError, "all providers failed")
		out.Response = MsgProvidersOverloaded
		return out, nil
	}
	out.ProviderUsed = gen.Provider
	span.SetTag("llm_provider", gen.Provider)

	verdict := s.guard.CheckOutbound(gen.Text)
	if verdict.Leaked {
		s.record(ctx, sourceSecurity, domain.ActivityWarn,
			"prompt leakage suppressed: "+snippet(verdict.Sanitized))
		out.Response = MsgRefusal
		return out, nil
	}

	answer, structured := s.dispatch(ctx, generator, prompt, verdict.Sanitized)
	if !structured {
		answer = s.guard.SanitizeOutput(answer)
	}
	out.Response = answer
	return out, nil
}

// dispatch handles the model's first answer. The second result reports
// whether the answer embeds a structured tool payload.
func (s *ChatService) dispatch(ctx context.Context, generator llm.Generator, prompt PromptInput, text string) (string, bool) {
	parsed := ParseToolCall(text)
	switch parsed.Kind {
	case ToolCallNone:
		s.record(ctx, sourceLLM, domain.ActivityOK, "direct answer")
		return text, false
	case ToolCallMalformed:
		s.record(ctx, sourceParser, domain.ActivityWarn, "malformed tool call: "+parsed.Err.Error())
		return text, false
	}

	call := parsed.Call
	if !s.tools.Has(call.Name) {
		s.record(ctx, sourceParser, domain.ActivityWarn, "unknown tool "+call.Name)
		return fmt.Sprintf(MsgUnknownTool, call.Name), false
	}

	res := s.tools.Invoke(ctx, call.Name, call.Args, 0)
	if !res.OK() {
		s.record(ctx, call.Name, domain.ActivityError, res.Code+": "+res.Message)
		return toolFailureMessage(res), false
	}

	payload := TruncateToolOutput(res.Payload, MaxToolOutputRunes)
	if !json.Valid([]byte(payload)) {
		s.record(ctx, call.Name, domain.ActivityOK, "plain result")
		return payload, false
	}

	intro := DefaultReportIntro
	followUp, ok := generator.Generate(ctx, BuildFollowUpPrompt(prompt, payload))
	verdict := s.guard.CheckOutbound(strings.TrimSpace(followUp.Text))
	switch {
	case !ok:
		s.record(ctx, sourceLLM, domain.ActivityWarn, "follow-up call failed, using default intro")
	case verdict.Leaked:
		s.record(ctx, sourceSecurity, domain.ActivityWarn, "prompt leakage in follow-up suppressed")
	case verdict.Sanitized != "":
		intro = verdict.Sanitized
	}

	s.record(ctx, call.Name, domain.ActivityOK, "structured result")
	return intro + "\n\n" + payload, true
}

// generatorFor resolves the provider chain for hint. Unrecognised hints
// fall back to the auto chain.
func (s *ChatService) generatorFor(ctx context.Context, hint string) llm.Generator {
	generator, err := s.providers.For(hint)
	if err == nil {
		return generator
	}
	s.record(ctx, sourceLLM, domain.ActivityWarn, "unknown provider hint, using auto: "+snippet(hint))
	generator, err = s.providers.For(llm.HintAuto)
	if err != nil {
		return nil
	}
	return generator
}

func toolFailureMessage(res tool.Result) string {
	switch res.Code {
	case domain.ErrCodeTimeout:
		return MsgToolTimeout
	case domain.ErrCodeNotFound:
		return MsgProductNotFound
	default:
		return fmt.Sprintf(MsgTechnicalError, res.Message)
	}
}

func (s *ChatService) record(ctx context.Context, source string, status domain.ActivityStatus, detail string) {
	s.activity.Record(ctx, domain.ActivityEntry{Source: source, Status: status, Detail: detail})
}

func snippet(s string) string {
	if utf8.RuneCountInString(s) <= auditSnippetRunes {
		return s
	}
	return string([]rune(s)[:auditSnippetRunes]) + "..."
}

// IsInputRejected reports whether err is the inbound guard rejection.
func IsInputRejected(err error) bool {
	return errors.Is(err, domain.ErrInputRejected)
}
