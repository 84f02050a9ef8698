package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// SetDefault should properly set the default logger when custom loggers are
// provided.
func TestSetDefaultCustomLogger(t *testing.T) {
	type customLogger struct {
		Logger
	}

	prev := Root()
	defer SetDefault(prev)

	custom := &customLogger{}
	SetDefault(custom)
	if Root() != custom {
		t.Error("expected custom logger to be set as default")
	}
}

func TestNewAttachesContext(t *testing.T) {
	var buf bytes.Buffer
	prev := Root()
	defer SetDefault(prev)
	SetDefault(&slogLogger{inner: slog.New(slog.NewTextHandler(&buf, nil))})

	l := New("component", "ethash")
	l.Info("hello")

	out := buf.String()
	if !strings.Contains(out, "component=ethash") {
		t.Fatalf("expected attached context in output, got %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("expected message in output, got %q", out)
	}
}

func TestDiscardSuppressesOutput(t *testing.T) {
	l := Discard()
	// None of these should panic or write anywhere observable; this test
	// exists to pin that Discard's handler never blocks on stderr.
	l.Trace("t")
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")
}

func TestWithChaining(t *testing.T) {
	var buf bytes.Buffer
	base := &slogLogger{inner: slog.New(slog.NewTextHandler(&buf, nil))}

	child := base.With("epoch", 3).With("block", 100)
	child.Info("generated cache")

	out := buf.String()
	if !strings.Contains(out, "epoch=3") || !strings.Contains(out, "block=100") {
		t.Fatalf("expected both attached key-values in output, got %q", out)
	}
}
