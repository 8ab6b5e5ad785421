package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	minIdleCheck = time.Second
	maxIdleCheck = time.Minute
)

// Touch records user activity for the inactivity timeout.
func (a *authService) Touch() {
	a.mu.Lock()
	a.lastActivity = a.clock.Now()
	a.mu.Unlock()
}

func idleCheckInterval(timeout time.Duration) time.Duration {
	return min(max(timeout/10, minIdleCheck), maxIdleCheck)
}

// startIdleWatcher schedules checkIdle on a cron ticker. It is a no-op when
// the session timeout is disabled.
func (a *authService) startIdleWatcher() {
	if a.sessionTimeout <= 0 {
		return
	}
	a.cron = cron.New()
	a.cron.Schedule(cron.Every(idleCheckInterval(a.sessionTimeout)), cron.FuncJob(func() {
		a.checkIdle(context.Background())
	}))
	a.cron.Start()
}

// checkIdle signs the user out once no activity was seen for the session
// timeout. It reports whether it did.
func (a *authService) checkIdle(ctx context.Context) bool {
	if a.sessionTimeout <= 0 {
		return false
	}

	a.mu.Lock()
	idle := a.tokens != nil && a.clock.Now().Sub(a.lastActivity) >= a.sessionTimeout
	a.mu.Unlock()
	if !idle {
		return false
	}

	a.log.Info(ctx, "session timed out after inactivity", "timeout", a.sessionTimeout)
	a.Logout(ctx)
	return true
}
