package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEngineHooks{}
	e.OnResolve(ctx, 26, time.Millisecond)
	e.OnMove(ctx, "0.0.0:t:1:1", true)
	e.OnDetach(ctx, "0.0.0", "STANDARD_CONTUBERNIUM", true)
	e.OnValidate(ctx, 0, 2)

	s := NoopStorageHooks{}
	s.OnLoad(ctx, "config.json", time.Millisecond, nil)
	s.OnSave(ctx, "config.json", 2048, nil)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/api/instances")
	h.OnResponse(ctx, "GET", "/api/instances", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Engine() should return NoopEngineHooks by default")
	}
	if _, ok := Storage().(NoopStorageHooks); !ok {
		t.Error("Storage() should return NoopStorageHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customEngine := &countingEngineHooks{}
	SetEngineHooks(customEngine)
	if Engine() != customEngine {
		t.Error("SetEngineHooks should set custom hooks")
	}
	Engine().OnResolve(context.Background(), 3, 0)
	if customEngine.resolves != 1 {
		t.Errorf("resolves = %d, want 1", customEngine.resolves)
	}

	customStorage := &testStorageHooks{}
	SetStorageHooks(customStorage)
	if Storage() != customStorage {
		t.Error("SetStorageHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Reset() should restore NoopEngineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &countingEngineHooks{}
	SetEngineHooks(custom)
	SetEngineHooks(nil)

	if Engine() != custom {
		t.Error("SetEngineHooks(nil) should be ignored")
	}
}

type countingEngineHooks struct {
	NoopEngineHooks
	resolves int
}

func (c *countingEngineHooks) OnResolve(context.Context, int, time.Duration) { c.resolves++ }

type testStorageHooks struct{ NoopStorageHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
