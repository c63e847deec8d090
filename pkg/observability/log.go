package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level
// structured log lines. The CLI installs it in verbose mode.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnDecodeStart(_ context.Context, source string) {
	h.logger.Debug("decoding document", "source", source)
}

func (h *LogHooks) OnDecodeComplete(_ context.Context, source string, trees int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("decode failed", "source", source, "error", err)
		return
	}
	h.logger.Debug("decoded document", "source", source, "trees", trees, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, nodes int) {
	h.logger.Debug("computing layout", "nodes", nodes)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, nodes, steps int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "nodes", nodes, "error", err)
		return
	}
	h.logger.Debug("computed layout", "nodes", nodes, "contour_steps", steps, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("rendering", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "error", err)
		return
	}
	h.logger.Debug("rendered", "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnCacheError(_ context.Context, keyType string, err error) {
	h.logger.Debug("cache error", "type", keyType, "error", err)
}

func (h *LogHooks) OnRequest(_ context.Context, id, method, path string) {
	h.logger.Debug("request", "id", id, "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, id, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "id", id, "method", method, "path", path, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
