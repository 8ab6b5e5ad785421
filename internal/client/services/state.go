package services

// State is the session lifecycle:
//
//	Unauthenticated -> Authenticating -> Authenticated -> RefreshPending -> Authenticated | Unauthenticated
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateRefreshPending
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshPending:
		return "refresh_pending"
	default:
		return "unknown"
	}
}

// hasSession reports whether tokens are held in this state.
func (s State) hasSession() bool {
	return s == StateAuthenticated || s == StateRefreshPending
}
