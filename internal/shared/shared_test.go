package shared

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLogger(t *testing.T) {
	t.Run("SetLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		if err := SetLogLevel(logger, "WARN"); err != nil {
			t.Fatalf("SetLogLevel() error = %v", err)
		}
		if logger.GetLevel() != log.WarnLevel {
			t.Errorf("expected warn level, got %v", logger.GetLevel())
		}

		logger.Info("hidden")
		logger.Warn("shown", "key", "value")
		out := buf.String()
		if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
			t.Errorf("unexpected log output %q", out)
		}
	})

	t.Run("empty level is a no-op", func(t *testing.T) {
		logger := NewLogger(&bytes.Buffer{})
		if err := SetLogLevel(logger, " "); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
		if logger.GetLevel() != log.InfoLevel {
			t.Errorf("expected default info level, got %v", logger.GetLevel())
		}
	})

	t.Run("unknown level", func(t *testing.T) {
		err := SetLogLevel(NewLogger(&bytes.Buffer{}), "chatty")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected distinct ids")
	}
	if !IsID(a) {
		t.Errorf("expected %q to be a valid id", a)
	}
	if IsID("not-an-id") || IsID("") {
		t.Error("expected malformed ids to be rejected")
	}
}

func TestOpenBrowser(t *testing.T) {
	t.Run("rejects non-http targets", func(t *testing.T) {
		for _, target := range []string{"file:///etc/passwd", "javascript:alert(1)", "::"} {
			if err := OpenBrowser(t.Context(), target); !errors.Is(err, ErrValidation) {
				t.Errorf("OpenBrowser(%q) = %v, want ErrValidation", target, err)
			}
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		orig := getRuntime
		getRuntime = func() string { return "plan9" }
		defer func() { getRuntime = orig }()

		err := OpenBrowser(t.Context(), "http://127.0.0.1:3000")
		if err == nil || !strings.Contains(err.Error(), "unsupported platform") {
			t.Errorf("expected unsupported platform error, got %v", err)
		}
	})

	t.Run("browserCommand", func(t *testing.T) {
		tc := map[string]string{"darwin": "open", "linux": "xdg-open", "windows": "rundll32"}
		for goos, want := range tc {
			cmd, err := browserCommand(t.Context(), goos, "http://x")
			if err != nil {
				t.Fatalf("browserCommand(%s) error = %v", goos, err)
			}
			if cmd.Args[0] != want {
				t.Errorf("browserCommand(%s) = %s, want %s", goos, cmd.Args[0], want)
			}
		}
	})
}
