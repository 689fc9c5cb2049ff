package interp

import (
	"bytes"
	"strings"
	"testing"
)

func TestEvalContext_Scopes(t *testing.T) {
	ctx := NewEvalContext(DefaultEvalOptions())
	if ctx.ScopeDepth() != 0 {
		t.Fatalf("fresh context depth = %d", ctx.ScopeDepth())
	}
	ctx.PushScope()
	ctx.PushScope()
	inner := ctx.AllocLocal(intArrayDesc(t, 1))
	ctx.PopScope()
	if !inner.IsDead() {
		t.Error("inner local survived its scope")
	}

	outer := ctx.AllocLocal(intArrayDesc(t, 1))
	ctx.PopScope()
	if !outer.IsDead() {
		t.Error("outer local survived its scope")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on scope underflow")
		}
	}()
	ctx.PopScope()
}

func TestEvalContext_AllocWithoutScopePanics(t *testing.T) {
	ctx := NewEvalContext(DefaultEvalOptions())
	defer func() {
		if recover() == nil {
			t.Error("expected panic when allocating without a scope")
		}
	}()
	ctx.AllocLocal(intArrayDesc(t, 1))
}

func TestEvalContext_Globals(t *testing.T) {
	ctx := NewEvalContext(DefaultEvalOptions())
	b, err := ctx.AllocGlobal("g", intArrayDesc(t, 2))
	if err != nil {
		t.Fatalf("AllocGlobal: %v", err)
	}
	p := NewPointer(b)
	if !p.IsStatic() {
		t.Error("global must be static")
	}

	// Globals are not scope-bound.
	ctx.PushScope()
	ctx.PopScope()
	if !p.IsLive() {
		t.Error("global died with an unrelated scope")
	}
}

func TestEvalContext_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultEvalOptions()
	opts.LogLevel = "debug"
	opts.LogOutput = &buf
	ctx := NewEvalContext(opts)

	ctx.PushScope()
	b := ctx.AllocLocal(intArrayDesc(t, 1))
	p := NewPointer(b)
	ctx.PopScope()
	p.Release()

	out := buf.String()
	for _, want := range []string{"[DEBUG]", "alloc local", "demote block", "reclaim dead block"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogger_LevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LevelInfo, &buf, "%Y")

	l.Debugf("hidden %d", 1)
	l.With(map[string]any{"block": 3}).Infof("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message logged at info level")
	}
	if !strings.Contains(out, "[INFO] ") || !strings.Contains(out, "visible") {
		t.Errorf("info message missing: %q", out)
	}
	if !strings.Contains(out, "block=3") {
		t.Errorf("context field missing: %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want LogLevel
	}{
		{"error", LevelError},
		{"WARN", LevelWarn},
		{"warning", LevelWarn},
		{"Info", LevelInfo},
		{"debug", LevelDebug},
		{"bogus", LevelWarn},
	} {
		if got := ParseLogLevel(tc.in); got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
