package httpapi

import (
	"context"
	"fmt"

	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/riskibarqy/komiti/internal/usecase"
)

type contextKey string

const (
	principalContextKey contextKey = "auth_principal"
	requestInfoKey      contextKey = "request_info"
)

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(user.Principal)
	return p, ok && p.UserID != ""
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	p, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return p, nil
}

// requestInfo is filled in by inner middleware and read back by the request
// logger once the handler returns.
type requestInfo struct {
	route string
}

func withRequestInfo(ctx context.Context, info *requestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey, info)
}

func requestInfoFromContext(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey).(*requestInfo)
	return info
}
