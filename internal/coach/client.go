package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
)

const (
	defaultMaxAttempts    = 5
	defaultBackoffBase    = time.Second
	defaultRequestTimeout = 30 * time.Second
)

// Generator produces the text of one model turn.
type Generator interface {
	GenerateContent(ctx context.Context, req *GenerateContentRequest) (string, error)
}

type ClientConfig struct {
	BaseURL        string
	Model          string
	APIKey         string
	MaxAttempts    int
	BackoffBase    time.Duration
	RequestTimeout time.Duration
	HTTPClient     *http.Client
}

// GeminiClient calls models/{model}:generateContent over REST with
// exponential backoff on 429, 5xx and network failures.
type GeminiClient struct {
	http        *resty.Client
	endpoint    string
	apiKey      string
	maxAttempts int
	backoffBase time.Duration

	// onBackoff observes every sleep between attempts.
	onBackoff func(delay time.Duration)
}

func NewGeminiClient(cfg ClientConfig) *GeminiClient {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json").
		SetLogger(log.Default())

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(cfg.BaseURL, "/"), cfg.Model)

	return &GeminiClient{
		http:        rc,
		endpoint:    endpoint,
		apiKey:      cfg.APIKey,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
	}
}

func (c *GeminiClient) GenerateContent(ctx context.Context, req *GenerateContentRequest) (string, error) {
	var (
		body       []byte
		attempts   int
		lastStatus int
	)

	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempts++

		// The key travels in a header so it never shows up in URLs or access logs.
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("x-goog-api-key", c.apiKey).
			SetBody(req).
			Post(c.endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastStatus = 0
			log.Warn("gemini request failed", "attempt", attempts, "err", err)
			return retry.RetryableError(fmt.Errorf("gemini request failed: %w", err))
		}

		status := resp.StatusCode()
		switch {
		case status >= 200 && status < 300:
			body = resp.Body()
			return nil
		case status == http.StatusTooManyRequests || status >= 500:
			lastStatus = status
			log.Warn("gemini call failed", "status", status, "attempt", attempts)
			return retry.RetryableError(fmt.Errorf("gemini returned status %d", status))
		default:
			rejected := &UpstreamRejectedError{Status: status, Message: upstreamMessage(resp.Body(), status)}
			log.Error("gemini rejected request", "status", status, "message", rejected.Message)
			return rejected
		}
	})
	if err != nil {
		var rejected *UpstreamRejectedError
		if errors.As(err, &rejected) {
			return "", rejected
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", &TransportError{Attempts: attempts, Err: ctxErr}
		}
		if lastStatus != 0 {
			return "", &RateLimitExhaustedError{Attempts: attempts, LastStatus: lastStatus}
		}
		return "", &TransportError{Attempts: attempts, Err: err}
	}

	return extractText(body)
}

// backoff yields base, 2*base, 4*base, ... and stops after maxAttempts-1 sleeps.
func (c *GeminiClient) backoff() retry.Backoff {
	next := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewExponential(c.backoffBase))

	return retry.BackoffFunc(func() (time.Duration, bool) {
		delay, stop := next.Next()
		if stop {
			return 0, true
		}
		log.Warn("retrying gemini call", "delay", delay)
		if c.onBackoff != nil {
			c.onBackoff(delay)
		}
		return delay, false
	})
}

type generateContentResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// extractText returns candidates[0].content.parts[0].text.
func extractText(body []byte) (string, error) {
	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0].Text == nil {
		return "", fmt.Errorf("%w: first candidate has no text part", ErrMalformedResponse)
	}
	if *content.Parts[0].Text == "" {
		return "", fmt.Errorf("%w: empty text part", ErrMalformedResponse)
	}
	return *content.Parts[0].Text, nil
}

func upstreamMessage(body []byte, status int) string {
	var errBody struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &errBody) == nil && errBody.Error.Message != "" {
		return errBody.Error.Message
	}
	return fmt.Sprintf("API call failed with status %d", status)
}
