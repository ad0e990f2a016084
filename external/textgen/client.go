// Package textgen calls a Gemini-compatible generateContent endpoint to draft
// reminder and summary messages.
package textgen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/komiti/internal/domain/reminder"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/riskibarqy/komiti/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	errTransient   = crerr.New("text generation transient failure")
	ErrEmptyOutput = crerr.New("text generation returned no text")
)

const maxResponseBytes = 1 << 20

type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
}

func NewClient(httpClient *http.Client, cfg Config, logger *logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, crerr.New("text generation api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, crerr.Newf("invalid text generation base url %q", cfg.BaseURL)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, crerr.New("text generation model is required")
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      strings.TrimSpace(cfg.Model),
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		logger:     logger,
	}, nil
}

func (c *Client) GenerateReminder(ctx context.Context, req reminder.Request) (string, error) {
	return c.Generate(ctx, reminder.ReminderPrompt(req))
}

func (c *Client) GenerateSummary(ctx context.Context, req reminder.SummaryRequest) (string, error) {
	return c.Generate(ctx, reminder.SummaryPrompt(req))
}

// Generate sends one prompt and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", crerr.New("prompt is required")
	}

	var text string
	err := c.breaker.Execute(func() error {
		var callErr error
		text, callErr = c.generate(ctx, prompt)
		return callErr
	}, func(err error) bool { return crerr.Is(err, errTransient) })
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "text generation circuit breaker rejected request", "state", string(c.breaker.State()))
		return "", crerr.Wrap(err, "text generation temporarily unavailable")
	}
	return text, err
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := sonic.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", crerr.Wrap(err, "marshal generate request")
	}

	endpoint := c.baseURL + "/v1beta/models/" + url.PathEscape(c.model) + ":generateContent"
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("textgen.model", c.model),
			attribute.Int("textgen.prompt_bytes", len(prompt)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return "", crerr.Wrap(err, "create generate request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", crerr.Mark(crerr.Wrap(err, "call generate endpoint"), errTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return "", crerr.Mark(crerr.Wrap(err, "read generate response"), errTransient)
	}

	if resp.StatusCode/100 != 2 {
		statusErr := crerr.Newf("generate endpoint status %d: %s", resp.StatusCode, truncate(buf.String(), 512))
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return "", crerr.Mark(statusErr, errTransient)
		}
		return "", statusErr
	}

	var decoded generateResponse
	if err := sonic.Unmarshal(buf.Bytes(), &decoded); err != nil {
		return "", crerr.Wrap(err, "decode generate response")
	}

	text := decoded.firstText()
	if text == "" {
		return "", ErrEmptyOutput
	}
	return text, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r generateResponse) firstText() string {
	for _, cand := range r.Candidates {
		var sb strings.Builder
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...(%d bytes)", s[:n], len(s))
}
