package cli

import (
	"context"
	"time"

	"github.com/matzehuels/themis/pkg/observability"
)

// logHooks reports engine and storage events to the logger attached to the
// event's context.
type logHooks struct{}

var (
	_ observability.EngineHooks  = logHooks{}
	_ observability.StorageHooks = logHooks{}
)

func (logHooks) OnResolve(ctx context.Context, instances int, d time.Duration) {
	loggerFromContext(ctx).Debug("resolve", "instances", instances, "duration", d)
}

func (logHooks) OnMove(ctx context.Context, instance string, changed bool) {
	loggerFromContext(ctx).Debug("move", "instance", instance, "changed", changed)
}

func (logHooks) OnDetach(ctx context.Context, node, template string, ok bool) {
	loggerFromContext(ctx).Debug("detach", "node", node, "template", template, "ok", ok)
}

func (logHooks) OnValidate(ctx context.Context, errors, warnings int) {
	loggerFromContext(ctx).Debug("validate", "errors", errors, "warnings", warnings)
}

func (logHooks) OnLoad(ctx context.Context, path string, d time.Duration, err error) {
	if err != nil {
		loggerFromContext(ctx).Debug("load failed", "path", path, "err", err)
		return
	}
	loggerFromContext(ctx).Debug("load", "path", path, "duration", d)
}

func (logHooks) OnSave(ctx context.Context, path string, size int, err error) {
	if err != nil {
		loggerFromContext(ctx).Debug("save failed", "path", path, "err", err)
		return
	}
	loggerFromContext(ctx).Debug("save", "path", path, "bytes", size)
}
