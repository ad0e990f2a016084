package anubis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

// isCircuitFailure counts only transport and 5xx failures against the
// breaker; a rejected token is a normal answer.
func isCircuitFailure(err error) bool {
	return crerr.Is(err, errAnubisTransient)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// buildURL joins the introspection path onto the base URL. An absolute path
// replaces the base.
func buildURL(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if path = strings.TrimLeft(path, "/"); path == "" {
		return base
	}
	return base + "/" + path
}
