// Package anubis verifies access tokens against an external account
// service's introspection endpoint.
package anubis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/riskibarqy/komiti/internal/platform/resilience"
	"github.com/riskibarqy/komiti/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

var errAnubisTransient = crerr.New("anubis transient failure")

type Config struct {
	BaseURL        string
	IntrospectPath string
	AdminKey       string
	Timeout        time.Duration
	CacheTTL       time.Duration
	CacheMaxItems  int
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	cache         *principalCache
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
}

func NewClient(httpClient *http.Client, cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(cfg.BaseURL, cfg.IntrospectPath),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		cache:         newPrincipalCache(cfg.CacheTTL, cfg.CacheMaxItems),
		breaker:       resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		logger:        logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	key := hashToken(token)
	if principal, ok := c.cache.Get(key); ok {
		return principal, nil
	}

	var principal user.Principal
	err := c.breaker.Execute(func() error {
		var callErr error
		principal, callErr = c.introspect(ctx, token)
		return callErr
	}, isCircuitFailure)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "anubis circuit breaker rejected request", "state", string(c.breaker.State()))
		return user.Principal{}, fmt.Errorf("%w: account service unavailable", usecase.ErrDependencyUnavailable)
	}
	if crerr.Is(err, errAnubisTransient) {
		return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
	if err != nil {
		return user.Principal{}, err
	}

	c.cache.Set(key, principal)
	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "marshal introspect request")
	}
	_, _ = buf.Write(encoded)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, strings.NewReader(buf.String()))
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "create introspect request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, crerr.Mark(crerr.Wrap(err, "request introspection"), errAnubisTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	buf.Reset()
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, 1<<20)); err != nil {
		return user.Principal{}, crerr.Mark(crerr.Wrap(err, "read introspect response"), errAnubisTransient)
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		c.logger.WarnContext(ctx, "anubis introspection failed", "status_code", resp.StatusCode)
		return user.Principal{}, crerr.Mark(crerr.Newf("introspection status %d", resp.StatusCode), errAnubisTransient)
	}
	if resp.StatusCode != http.StatusOK {
		return user.Principal{}, crerr.Newf("introspection status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(buf.Bytes(), &decoded); err != nil {
		return user.Principal{}, crerr.Wrap(err, "unmarshal introspect response")
	}
	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, crerr.New("invalid introspect response: user_id is empty")
	}

	return user.Principal{UserID: decoded.UserID, Email: decoded.Email}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
