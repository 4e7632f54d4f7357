package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hackjudge",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of AI evaluation requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hackjudge",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of AI evaluation failures",
	}, []string{"model"})
)

// Providers understood by NewEvaluator.
const (
	ProviderOpenAI   = "openai"
	ProviderCerebras = "cerebras"
)

const (
	cerebrasBaseURL = "https://api.cerebras.ai/v1"
	cerebrasModel   = "llama-4-scout-17b-16e-instruct"
	openAIModel     = "gpt-4o-mini"
)

// OpenAIConfig defines configuration options for the OpenAI-compatible evaluator.
type OpenAIConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	// JSONMode asks the endpoint for a JSON object response. Not every
	// OpenAI-compatible provider supports it.
	JSONMode bool
	Logger   zerolog.Logger
}

// OpenAIEvaluator implements Evaluator against a chat completion API.
type OpenAIEvaluator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIEvaluator builds a new evaluator using the provided configuration.
func NewOpenAIEvaluator(cfg OpenAIConfig) (*OpenAIEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai api key is required")
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch cfg.Provider {
	case "", ProviderOpenAI:
		cfg.Provider = ProviderOpenAI
		if cfg.Model == "" {
			cfg.Model = openAIModel
		}
	case ProviderCerebras:
		if cfg.BaseURL == "" {
			cfg.BaseURL = cerebrasBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = cerebrasModel
		}
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/noah-isme/hackjudge/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	client := openai.NewClientWithConfig(config)

	return &OpenAIEvaluator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Provider returns the configured provider name.
func (e *OpenAIEvaluator) Provider() string {
	return e.cfg.Provider
}

// Model returns the configured model name.
func (e *OpenAIEvaluator) Model() string {
	return e.cfg.Model
}

// Evaluate sends the evaluation request and parses the verdict.
func (e *OpenAIEvaluator) Evaluate(parent context.Context, input EvaluationInput) (EvaluationResult, error) {
	ctx, span := e.tracer.Start(parent, "ai.evaluate", trace.WithAttributes(
		attribute.String("provider", e.cfg.Provider),
		attribute.String("model", e.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: judgeSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(input),
			},
		},
	}
	if e.cfg.JSONMode {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(e.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return EvaluationResult{}, e.fail(span, fmt.Errorf("ai evaluate: %w", err))
	}

	if len(resp.Choices) == 0 {
		return EvaluationResult{}, e.fail(span, fmt.Errorf("no choices returned from %s", e.cfg.Provider))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := ParseVerdict(content)
	if err != nil {
		e.logger.Warn().Err(err).Str("reply", truncate(content, 500)).Msg("unparseable verdict")
		return EvaluationResult{}, e.fail(span, &FormatError{Reply: truncate(content, 500), Err: err})
	}

	result.Raw = map[string]interface{}{
		"usage": resp.Usage,
	}

	return result, nil
}

func (e *OpenAIEvaluator) fail(span trace.Span, err error) error {
	aiFailures.WithLabelValues(e.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// FormatError carries the offending reply of an unparseable verdict.
type FormatError struct {
	Reply string
	Err   error
}

func (e *FormatError) Error() string {
	return e.Err.Error()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func judgeSystemPrompt() string {
	return "You are an expert hackathon judge. Respond with ONLY a JSON object containing score_innovation (0-10), " +
		"score_impact (0-10), justification, and decision (ACCEPTED or REJECTED)."
}

// BuildPrompt renders the user prompt for a submission.
func BuildPrompt(input EvaluationInput) string {
	builder := strings.Builder{}
	builder.WriteString("Evaluate this project based on the following criteria.\n\n")
	builder.WriteString("Judge's Criteria: ")
	builder.WriteString(input.Criteria)
	builder.WriteString("\n\nProject Information:\n")
	if input.ProjectName != "" {
		builder.WriteString("- Project Name: ")
		builder.WriteString(input.ProjectName)
		builder.WriteString("\n")
	}
	builder.WriteString("- README Content: ")
	builder.WriteString(input.Readme)
	builder.WriteString("\n- Video Title: ")
	builder.WriteString(input.VideoTitle)
	builder.WriteString("\n- Video Description: ")
	builder.WriteString(input.VideoDescription)
	builder.WriteString(`

Respond with ONLY a valid JSON object in this exact format:
{
    "score_innovation": <float between 0-10>,
    "score_impact": <float between 0-10>,
    "justification": "<detailed explanation of your evaluation>",
    "decision": "<ACCEPTED or REJECTED>"
}`)
	return builder.String()
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
