package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/client/config"
	"github.com/dmitrijs2005/holyculture/internal/logging"
)

func TestIsLoggedIn(t *testing.T) {
	app := newTestApp(&fakeAuth{})
	if app.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == false without a user")
	}

	app = newTestApp(&fakeAuth{user: testUser})
	if !app.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == true with a user")
	}
}

func TestSetMode_ChangesAndLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(&buf, "text", "info")
	if err != nil {
		t.Fatal(err)
	}
	app := &App{log: logger}

	app.setMode(ModeOnline)
	if app.Mode() != ModeOnline {
		t.Fatalf("expected mode to be %q, got %q", ModeOnline, app.Mode())
	}
	if got := buf.String(); got == "" {
		t.Fatalf("expected log output on mode change, got empty")
	}

	buf.Reset()

	app.setMode(ModeOnline)
	if got := buf.String(); got != "" {
		t.Fatalf("expected no log output when mode doesn't change, got: %q", got)
	}

	app.setMode(ModeOffline)
	if app.Mode() != ModeOffline {
		t.Fatalf("expected mode to be %q, got %q", ModeOffline, app.Mode())
	}
	if got := buf.String(); got == "" {
		t.Fatalf("expected log output on mode change to offline, got empty")
	}
}

func TestGetStatus(t *testing.T) {
	app := newTestApp(&fakeAuth{})
	if got := app.getStatus(); got != "" {
		t.Fatalf("status = %q, want empty", got)
	}

	app.setMode(ModeOnline)
	if got := app.getStatus(); got != "(online)" {
		t.Fatalf("status = %q", got)
	}

	app.onAuthChange(true, testUser)
	if got := app.getStatus(); got != "(psalmist online)" {
		t.Fatalf("status = %q", got)
	}

	app.onAuthChange(false, nil)
	if got := app.getStatus(); got != "(online)" {
		t.Fatalf("status = %q", got)
	}
}

func TestGetStatus_UserWithoutMode(t *testing.T) {
	app := newTestApp(&fakeAuth{})
	app.onAuthChange(true, testUser)
	if got := app.getStatus(); got != "(psalmist)" {
		t.Fatalf("status = %q, want no trailing space", got)
	}
}

func TestCheckOnline(t *testing.T) {
	auth := &fakeAuth{}
	app := newTestApp(auth)

	app.checkOnline(context.Background())
	if app.Mode() != ModeOnline {
		t.Fatalf("mode = %q, want online", app.Mode())
	}

	auth.pingErr = errors.New("unreachable")
	app.checkOnline(context.Background())
	if app.Mode() != ModeOffline {
		t.Fatalf("mode = %q, want offline", app.Mode())
	}
}

func TestStartOnlineStatusWatcher_StopsOnCancel(t *testing.T) {
	app := newTestApp(&fakeAuth{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		app.StartOnlineStatusWatcher(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	if app.Mode() != ModeOnline {
		t.Fatalf("initial check did not run, mode = %q", app.Mode())
	}
}

func TestRun_RestoresSessionAndExits(t *testing.T) {
	captureOutput(t)
	auth := &fakeAuth{user: testUser}
	app := newTestApp(auth, "exit")
	app.config = &config.Config{}

	app.Run(context.Background())

	if app.getStatus() != "(psalmist)" {
		t.Fatalf("status = %q", app.getStatus())
	}
	if auth.touched != 1 {
		t.Fatalf("touched = %d, want 1", auth.touched)
	}
}
