package cli

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/protocomposer/pkg/observability"
)

// RegisterHooks routes observability events to logger at debug level.
func RegisterHooks(logger *log.Logger) {
	h := &logHooks{logger: logger}
	observability.SetInstallHooks(h)
	observability.SetCommandHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnInstallStart(ctx context.Context, version, os string) {
	h.logger.Debug("install started", "version", version, "os", os)
}

func (h *logHooks) OnInstallComplete(ctx context.Context, version, os string, installed bool, failure string, d time.Duration, err error) {
	switch {
	case err != nil:
		h.logger.Debug("install aborted", "version", version, "os", os, "error", err)
	case !installed:
		h.logger.Debug("install failed", "version", version, "os", os, "reason", failure, "duration", d.Round(time.Millisecond))
	default:
		h.logger.Debug("install finished", "version", version, "os", os, "duration", d.Round(time.Millisecond))
	}
}

func (h *logHooks) OnCommand(ctx context.Context, program string, args []string, exitCode int, d time.Duration, err error) {
	h.logger.Debug("command", "cmd", program+" "+strings.Join(args, " "), "exit", exitCode, "duration", d.Round(time.Millisecond), "error", err)
}

func (h *logHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(ctx context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(ctx context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}
