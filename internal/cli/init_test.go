package cli

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/PhantomExMachina/Budget-Tool/internal/log"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
}

func TestGracefulShutdown(t *testing.T) {
	// Keep an extra Notify registration alive for the whole test so a
	// SIGTERM delivered before the helper registers cannot kill the
	// process.
	guard := make(chan os.Signal, 1)
	signal.Notify(guard, syscall.SIGTERM)
	defer signal.Stop(guard)

	var cleaned atomic.Bool
	logger := quietLogger()
	ctx, done := GracefulShutdown(logger, time.Second, func() { cleaned.Store(true) })

	deadline := time.After(10 * time.Second)
	for {
		if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
			t.Fatalf("send SIGTERM: %v", err)
		}
		select {
		case <-ctx.Done():
		case <-time.After(100 * time.Millisecond):
			select {
			case <-deadline:
				t.Fatal("context was not cancelled after SIGTERM")
			default:
				continue
			}
		}
		break
	}

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("shutdown did not complete")
	}

	// Cleanup runs before the context is cancelled.
	if !cleaned.Load() {
		t.Error("cleanup function was not called")
	}

	// With both channels resolved this returns immediately.
	WaitForShutdown(ctx, done)
}
