// Package transcribe turns audio clips into transcript records via
// OpenAI's speech-to-text API, with exponential-backoff retries for
// transient failures.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-voiceset/internal/apierr"
	"github.com/alnah/go-voiceset/internal/catalog"
)

// DefaultModel is the transcription model used unless overridden. Only
// whisper-1 returns the verbose timing payload the catalog stores.
const DefaultModel = openai.Whisper1

// MaxRecommendedParallel is the advisable ceiling for concurrent API
// requests. Higher values tend to trip rate limiting.
const MaxRecommendedParallel = 10

// Default retry configuration.
const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second
)

// Options configures a single transcription request.
type Options struct {
	// Prompt provides context to improve accuracy, such as expected
	// vocabulary or proper nouns.
	Prompt string

	// Language is the ISO 639-1 base code of the audio language.
	// Empty means auto-detect.
	Language string
}

// Result is one clip's transcript plus its timed segments, when the
// model reports them.
type Result struct {
	Text     string
	Segments []catalog.Segment
}

// Transcriber transcribes one audio clip.
type Transcriber interface {
	// Transcribe converts the audio file at audioPath to a transcript.
	// Supported formats: mp3, mp4, mpeg, mpga, m4a, wav, webm, ogg.
	Transcribe(ctx context.Context, audioPath string, opts Options) (Result, error)
}

// audioTranscriber is the slice of *openai.Client this package needs,
// kept narrow so tests can inject a fake.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*OpenAITranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// OpenAITranscriber transcribes audio through the OpenAI API with
// automatic retries for transient errors.
type OpenAITranscriber struct {
	client     audioTranscriber
	model      string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// TranscriberOption configures an OpenAITranscriber.
type TranscriberOption func(*OpenAITranscriber)

// WithModel overrides the transcription model.
func WithModel(model string) TranscriberOption {
	return func(t *OpenAITranscriber) {
		if model != "" {
			t.model = model
		}
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) TranscriberOption {
	return func(t *OpenAITranscriber) {
		if n >= 0 {
			t.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) TranscriberOption {
	return func(t *OpenAITranscriber) {
		if base > 0 {
			t.baseDelay = base
		}
		if max > 0 {
			t.maxDelay = max
		}
	}
}

// NewOpenAITranscriber wraps an OpenAI client. The client is injected
// to enable testing with mocks.
func NewOpenAITranscriber(client *openai.Client, opts ...TranscriberOption) *OpenAITranscriber {
	t := &OpenAITranscriber{
		client:     client,
		model:      DefaultModel,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe requests a verbose transcription so segment timings come
// back alongside the text. Transient failures (rate limits, timeouts,
// server errors) are retried with backoff; auth and quota failures are
// surfaced immediately.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) (Result, error) {
	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Prompt:   opts.Prompt,
		Language: opts.Language,
	}

	cfg := apierr.RetryConfig{
		MaxRetries: t.maxRetries,
		BaseDelay:  t.baseDelay,
		MaxDelay:   t.maxDelay,
	}
	return apierr.RetryWithBackoff(ctx, cfg, func() (Result, error) {
		resp, err := t.client.CreateTranscription(ctx, req)
		if err != nil {
			return Result{}, classifyError(err)
		}
		return resultFromResponse(resp), nil
	}, isRetryableError)
}

// resultFromResponse flattens the verbose API payload into a Result.
func resultFromResponse(resp openai.AudioResponse) Result {
	var segments []catalog.Segment
	for _, s := range resp.Segments {
		segments = append(segments, catalog.Segment{
			Text:  strings.TrimSpace(s.Text),
			Start: s.Start,
			End:   s.End,
		})
	}
	return Result{Text: strings.TrimSpace(resp.Text), Segments: segments}
}

// classifyError maps OpenAI API errors to apierr sentinels.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			// A quota hit is a billing problem, not a transient rate
			// limit, and retrying cannot fix it.
			if strings.Contains(apiErr.Message, "quota") ||
				strings.Contains(apiErr.Message, "billing") {
				return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrQuotaExceeded)
			}
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrRateLimit)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrAuthFailed)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrTimeout)
		case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrBadRequest)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	return err
}

// isRetryableError reports whether an error is transient.
func isRetryableError(err error) bool {
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrTimeout) {
		return true
	}

	// Server errors (5xx) are retryable.
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}
