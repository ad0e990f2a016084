// Package jobqueue publishes HTTP jobs through Upstash QStash.
package jobqueue

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/riskibarqy/komiti/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

type QStashPublisherConfig struct {
	BaseURL        string
	Token          string
	TargetBaseURL  string
	Retries        int
	ForwardToken   string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

type QStashPublisher struct {
	client        *http.Client
	baseURL       string
	token         string
	targetBaseURL string
	retries       int
	forwardToken  string
	logger        *logging.Logger
	breaker       *resilience.CircuitBreaker
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) (*QStashPublisher, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, crerr.New("QSTASH_TOKEN is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &QStashPublisher{
		client:        &http.Client{Timeout: timeout},
		baseURL:       baseURL,
		token:         strings.TrimSpace(cfg.Token),
		targetBaseURL: targetBaseURL,
		retries:       cfg.Retries,
		forwardToken:  strings.TrimSpace(cfg.ForwardToken),
		logger:        logger,
		breaker:       resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}, nil
}

// Enqueue asks QStash to POST payload to TargetBaseURL+path. A non-empty
// deduplicationID makes repeated publishes of the same job a no-op upstream.
func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}

	err := p.breaker.Execute(func() error {
		return p.publish(ctx, path, payload, delay, deduplicationID)
	}, func(err error) bool { return crerr.Is(err, errQStashTransient) })
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", string(p.breaker.State()))
		return crerr.Wrap(err, "qstash is temporarily unavailable")
	}
	return err
}

func (p *QStashPublisher) publish(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}

	targetURL := p.targetBaseURL + path
	publishURL := p.baseURL + "/v2/publish/" + targetURL

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.path", path),
			attribute.Int("qstash.body_bytes", len(body)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, strings.NewReader(string(body)))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	for k, v := range p.headers(delay, deduplicationID) {
		req.Header.Set(k, v)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Wrapf(err, "publish qstash job target_url=%s", targetURL), errQStashTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)
		_, _ = buf.ReadFrom(io.LimitReader(resp.Body, 4096))

		callErr := crerr.Newf("publish qstash job status=%d target_url=%s body=%s",
			resp.StatusCode, targetURL, strings.TrimSpace(buf.String()))
		if isRetryableStatus(resp.StatusCode) {
			return crerr.Mark(callErr, errQStashTransient)
		}
		return callErr
	}

	p.logger.InfoContext(ctx, "qstash job published",
		"path", path,
		"delay", normalizeDelay(delay),
		"deduplication_id", deduplicationID,
	)
	return nil
}

func (p *QStashPublisher) headers(delay time.Duration, deduplicationID string) map[string]string {
	h := map[string]string{
		"Content-Type":   "application/json",
		"Upstash-Method": http.MethodPost,
	}
	if p.retries > 0 {
		h["Upstash-Retries"] = strconv.Itoa(p.retries)
	}
	if delay > 0 {
		h["Upstash-Delay"] = normalizeDelay(delay)
	}
	if id := strings.TrimSpace(deduplicationID); id != "" {
		h["Upstash-Deduplication-Id"] = id
	}
	if p.forwardToken != "" {
		h["Upstash-Forward-X-Internal-Job-Token"] = p.forwardToken
	}
	return h
}

func normalizeDelay(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	return fmt.Sprintf("%ds", int(delay.Round(time.Second).Seconds()))
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
