package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/Astemirdum/library-admin/console/internal/errs"
	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DashboardPath = "/dashboard"

// entryPaths are the locations a successful silent refresh leaves for the
// dashboard.
var entryPaths = map[string]struct{}{
	"/":       {},
	"/login":  {},
	"/signup": {},
}

// Manager holds the authentication state of one browser session.
type Manager struct {
	log    *zap.Logger
	auth   AuthService
	tokens TokenStore

	mu             sync.RWMutex
	loggedIn       bool
	authenticating bool
	user           *model.User

	initOnce sync.Once
}

func NewManager(auth AuthService, tokens TokenStore, log *zap.Logger) *Manager {
	return &Manager{
		log:            log.Named("session"),
		auth:           auth,
		tokens:         tokens,
		authenticating: true,
	}
}

// Init performs the silent refresh. Only the first call does any work; it
// returns the path to navigate to, or "" to stay on location.
func (m *Manager) Init(ctx context.Context, location string) string {
	var navigate string
	m.initOnce.Do(func() {
		defer func() {
			m.mu.Lock()
			m.authenticating = false
			m.mu.Unlock()
		}()

		payload, code, err := m.auth.RefreshToken(ctx)
		if err == nil && payload.AccessToken == "" {
			err = errors.New("refresh-token: empty access token")
		}
		if err != nil {
			if errors.Is(err, errs.ErrUnauthorized) {
				m.log.Debug("no session to refresh", zap.Int("status", code))
			} else {
				m.log.Warn("silent refresh failed", zap.Int("status", code), zap.Error(err))
			}
			m.tokens.SetToken("")
			m.mu.Lock()
			m.loggedIn = false
			m.mu.Unlock()
			return
		}

		m.tokens.SetToken(payload.AccessToken)
		m.mu.Lock()
		m.loggedIn = true
		m.user = profile(payload)
		m.mu.Unlock()

		if _, ok := entryPaths[location]; ok {
			navigate = DashboardPath
		}
	})
	return navigate
}

// Authenticate logs in with credentials.
func (m *Manager) Authenticate(ctx context.Context, req model.LoginRequest) (int, error) {
	payload, code, err := m.auth.Login(ctx, req)
	if err != nil {
		return code, err
	}
	if payload.AccessToken == "" {
		return http.StatusBadGateway, errors.New("login: empty access token")
	}
	m.Login(payload.AccessToken)
	m.SetUser(profile(payload))
	return code, nil
}

// Login marks the session logged in and makes all later requests carry token.
func (m *Manager) Login(token string) {
	m.tokens.SetToken(token)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggedIn = true
	m.authenticating = false
}

// Logout only flips the flag; the token stays on the client until Dispose.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggedIn = false
}

// Dispose ends the session: token and user are dropped.
func (m *Manager) Dispose() {
	m.tokens.SetToken("")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggedIn = false
	m.authenticating = false
	m.user = nil
}

func (m *Manager) IsLoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loggedIn
}

func (m *Manager) IsAuthenticating() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticating
}

func (m *Manager) User() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) SetUser(u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u == nil {
		m.user = nil
		return
	}
	cp := *u
	m.user = &cp
}

func profile(payload model.SessionPayload) *model.User {
	var u *model.User
	if payload.User != nil {
		cp := *payload.User
		u = &cp
	} else if fromToken, ok := userFromToken(payload.AccessToken); ok {
		u = fromToken
	} else {
		u = &model.User{}
	}
	u.AccessToken = payload.AccessToken
	return u
}
