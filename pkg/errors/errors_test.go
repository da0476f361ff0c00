package errors

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestVDOMErrorString(t *testing.T) {
	err := &VDOMError{
		Op:   "core.Reconcile",
		Kind: KindReconcile,
		Err:  fmt.Errorf("node not materialized"),
	}
	got := err.Error()
	want := "core.Reconcile [reconcile]: node not materialized"
	if got != want {
		t.Errorf("VDOMError.Error() = %q, want %q", got, want)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindInvalidValue, "invalid value"},
		{KindNotImplemented, "not implemented"},
		{KindReconcile, "reconcile"},
		{KindSchedule, "schedule"},
		{KindBuild, "build"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test panic", Timestamp: time.Now()}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}

	err.Op = "scheduler.drain"
	if got, want := err.Error(), "panic in scheduler.drain: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestBuildErrorString(t *testing.T) {
	err := &BuildError{View: "*app.Counter", Err: fmt.Errorf("body returned nil")}
	if got, want := err.Error(), "error in *app.Counter.Body(): body returned nil"; got != want {
		t.Errorf("BuildError.Error() = %q, want %q", got, want)
	}

	empty := &BuildError{View: "*app.Counter"}
	if got, want := empty.Error(), "unknown error in *app.Counter.Body()"; got != want {
		t.Errorf("BuildError.Error() = %q, want %q", got, want)
	}
}

func TestKindOf(t *testing.T) {
	base := New("core.Build", KindInvalidValue, fmt.Errorf("bad child"))
	wrapped := fmt.Errorf("mount: %w", base)

	if got := KindOf(wrapped); got != KindInvalidValue {
		t.Errorf("KindOf(wrapped) = %v, want %v", got, KindInvalidValue)
	}
	if got := KindOf(&PanicError{Value: 1}); got != KindPanic {
		t.Errorf("KindOf(panic) = %v, want %v", got, KindPanic)
	}
	if got := KindOf(fmt.Errorf("plain")); got != KindUnknown {
		t.Errorf("KindOf(plain) = %v, want %v", got, KindUnknown)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("KindOf(nil) = %v, want %v", got, KindUnknown)
	}
}

func TestReport(t *testing.T) {
	var captured *VDOMError
	handler := &testHandler{onError: func(err *VDOMError) { captured = err }}
	SetHandler(handler)
	defer SetHandler(nil)

	Report(&VDOMError{Op: "test.op", Kind: KindSchedule, Err: fmt.Errorf("boom")})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	handler := &testHandler{onPanic: func(err *PanicError) { captured = err }}
	SetHandler(handler)
	defer SetHandler(nil)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
}

func TestReportBuildError(t *testing.T) {
	var captured *BuildError
	handler := &testHandler{onBuildError: func(err *BuildError) { captured = err }}
	SetHandler(handler)
	defer SetHandler(nil)

	ReportBuildError(&BuildError{View: "*app.Page"})

	if captured == nil {
		t.Fatal("expected build error to be captured")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Fatal("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(&testHandler{})
	SetHandler(nil)
	if _, ok := Handler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should restore LogHandler, got %T", Handler())
	}
}

func TestLogHandlerWritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	h.HandleError(&VDOMError{Op: "core.Mount", Kind: KindInvalidValue, Err: fmt.Errorf("nil view")})
	h.HandlePanic(&PanicError{Op: "scheduler.drain", Value: "boom"})
	h.HandleBuildError(&BuildError{View: "*app.Page", Depth: 3})
	h.HandleError(nil)

	out := buf.String()
	for _, want := range []string{"op=core.Mount", `kind="invalid value"`, "value=boom", "view=*app.Page", "depth=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q should contain %q", out, want)
		}
	}
}

type testHandler struct {
	onError      func(*VDOMError)
	onPanic      func(*PanicError)
	onBuildError func(*BuildError)
}

func (h *testHandler) HandleError(err *VDOMError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}

func (h *testHandler) HandleBuildError(err *BuildError) {
	if h.onBuildError != nil {
		h.onBuildError(err)
	}
}
