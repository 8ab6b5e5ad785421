package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/client/biometric"
	"github.com/dmitrijs2005/holyculture/internal/client/config"
	"github.com/dmitrijs2005/holyculture/internal/client/credstore"
	"github.com/dmitrijs2005/holyculture/internal/client/gateway"
	"github.com/dmitrijs2005/holyculture/internal/client/models"
	"github.com/dmitrijs2005/holyculture/internal/client/services"
	"github.com/dmitrijs2005/holyculture/internal/logging"
	"github.com/dmitrijs2005/holyculture/internal/ratelimit"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

type App struct {
	config *config.Config
	auth   services.AuthService
	log    logging.Logger
	store  io.Closer
	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	mode     Mode
	userName string
}

// NewApp wires the client from c: logger, vault, gateway and session manager.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stderr, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger = logger.With("env", c.Environment)

	bio := biometric.NewTerminalConfirm(os.Stdin, os.Stdout)

	store, err := credstore.Open(ctx, c.VaultPath, c.DeviceKeyPath, bio)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	client, err := gateway.New(gateway.Options{
		BaseURL:           c.APIBaseURL,
		Timeout:           c.RequestTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
		ClientName:        c.ClientName,
		ClientVersion:     c.ClientVersion,
		SSLPins:           c.ActivePins(),
		Logger:            logger.With("component", "gateway"),
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	as := services.NewAuthService(services.Options{
		API:        gateway.NewAuthAPI(client),
		Store:      store,
		Biometrics: bio,
		Logger:     logger.With("component", "auth"),
		LoginLimiter: ratelimit.New(ratelimit.Policy{
			MaxAttempts: c.MaxLoginAttempts,
			Window:      c.LockoutDuration,
		}),
		ResetLimiter: ratelimit.New(ratelimit.Policy{
			MaxAttempts: c.MaxResetAttempts,
			Window:      c.ResetWindow,
		}),
		RefreshBuffer:  c.TokenRefreshBuffer,
		SessionTimeout: c.SessionTimeout,
		RefreshRetries: c.RefreshRetries,
		RequestTimeout: c.RequestTimeout,
	})

	return &App{
		config: c,
		auth:   as,
		log:    logger,
		store:  store,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// onAuthChange keeps the prompt in sync with the session.
func (a *App) onAuthChange(authenticated bool, user *models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if authenticated && user != nil {
		a.userName = user.Username
	} else {
		a.userName = ""
	}
}

// Run restores the saved session, starts the connectivity watcher and blocks
// in the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close()

	unsubscribe := a.auth.Subscribe(a.onAuthChange)
	defer unsubscribe()
	a.auth.Initialize(ctx)

	if a.config.OnlineCheckInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	printlnFn("Welcome to Holy Culture Radio (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close() {
	if err := a.auth.Close(); err != nil {
		a.log.Warn(context.Background(), "close session manager", "error", err)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn(context.Background(), "close vault", "error", err)
		}
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	parts := make([]string, 0, 2)
	if a.userName != "" {
		parts = append(parts, a.userName)
	}
	if a.mode != "" {
		parts = append(parts, string(a.mode))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// StartOnlineStatusWatcher pings the API every interval and flips the mode
// between online and offline. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.auth.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
