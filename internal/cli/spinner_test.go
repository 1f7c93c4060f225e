package cli

import (
	"context"
	"testing"
	"time"

	"github.com/camalot/fyles/pkg/icon"
	"github.com/camalot/fyles/pkg/observability"
)

func TestSpinnerStop(t *testing.T) {
	s := newSpinner("Testing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	s.Stop()
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	s := newSpinner("short")
	s.SetMessage("a much longer message")
	s.SetMessage("tiny")

	if s.message != "tiny" {
		t.Errorf("message = %q, want tiny", s.message)
	}
	if s.width != len("a much longer message") {
		t.Errorf("width = %d, should keep the widest message", s.width)
	}
}

func TestSpinnerHooks(t *testing.T) {
	s := newSpinner("start")
	h := spinnerHooks{spinner: s}

	h.OnExtensionStart(context.Background(), ".txt", 0, 3)
	if s.message != "Extracting .txt (1/3)" {
		t.Errorf("message = %q", s.message)
	}
	h.OnExtensionStart(context.Background(), icon.DefaultExtension, 2, 3)
	if s.message != "Extracting default icon (3/3)" {
		t.Errorf("message = %q", s.message)
	}
}

func TestWithSpinnerRestoresHooks(t *testing.T) {
	defer observability.Reset()
	prev := observability.Extract()

	var during observability.ExtractHooks
	err := withSpinner(context.Background(), "working", func() error {
		during = observability.Extract()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := during.(spinnerHooks); !ok {
		t.Errorf("hooks during run = %T, want spinnerHooks", during)
	}
	if observability.Extract() != prev {
		t.Error("previous hooks should be restored")
	}
}
