package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/komiti/internal/config"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

func noopShutdown(context.Context) error { return nil }

// uptraceDisabledReason is empty when exporting should start.
func uptraceDisabledReason(cfg config.Config) string {
	switch {
	case !cfg.UptraceEnabled:
		return "UPTRACE_ENABLED=false"
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		return "UPTRACE_DSN empty"
	default:
		return ""
	}
}

// InitUptrace installs the global tracer and meter providers. The returned
// func flushes them.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if reason := uptraceDisabledReason(cfg); reason != "" {
		logger.Info("uptrace disabled", "reason", reason)
		return noopShutdown, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(strings.TrimSpace(cfg.UptraceDSN)),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
	)
	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"service_version", cfg.ServiceVersion,
		"environment", cfg.AppEnv,
		"storage_driver", cfg.StorageDriver,
	)

	return uptrace.Shutdown, nil
}
