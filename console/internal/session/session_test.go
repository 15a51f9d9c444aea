package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Astemirdum/library-admin/console/config"
	"github.com/Astemirdum/library-admin/console/internal/errs"
	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/Astemirdum/library-admin/console/internal/service/api"
	"github.com/Astemirdum/library-admin/console/internal/service/auth"
	"github.com/Astemirdum/library-admin/console/internal/session"
	"github.com/golang-jwt/jwt/v4"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	session_mocks "github.com/Astemirdum/library-admin/console/internal/session/mocks"
)

func TestManager_Init(t *testing.T) {
	t.Parallel()
	type mockBehavior func(a *session_mocks.MockAuthService, ts *session_mocks.MockTokenStore)
	user := &model.User{FirstName: "Ann", LastName: "Lee", Email: "ann@lib.org"}

	tests := []struct {
		name         string
		location     string
		mockBehavior mockBehavior
		wantNavigate string
		wantLoggedIn bool
		wantUser     *model.User
	}{
		{
			name:     "ok. from root",
			location: "/",
			mockBehavior: func(a *session_mocks.MockAuthService, ts *session_mocks.MockTokenStore) {
				a.EXPECT().RefreshToken(gomock.Any()).Return(model.SessionPayload{AccessToken: "tok", User: user}, http.StatusOK, nil)
				ts.EXPECT().SetToken("tok")
			},
			wantNavigate: session.DashboardPath,
			wantLoggedIn: true,
			wantUser:     &model.User{FirstName: "Ann", LastName: "Lee", Email: "ann@lib.org", AccessToken: "tok"},
		},
		{
			name:     "ok. from login",
			location: "/login",
			mockBehavior: func(a *session_mocks.MockAuthService, ts *session_mocks.MockTokenStore) {
				a.EXPECT().RefreshToken(gomock.Any()).Return(model.SessionPayload{AccessToken: "tok", User: user}, http.StatusOK, nil)
				ts.EXPECT().SetToken("tok")
			},
			wantNavigate: session.DashboardPath,
			wantLoggedIn: true,
			wantUser:     &model.User{FirstName: "Ann", LastName: "Lee", Email: "ann@lib.org", AccessToken: "tok"},
		},
		{
			name:     "ok. deep link stays",
			location: "/dashboard/books",
			mockBehavior: func(a *session_mocks.MockAuthService, ts *session_mocks.MockTokenStore) {
				a.EXPECT().RefreshToken(gomock.Any()).Return(model.SessionPayload{AccessToken: "tok", User: user}, http.StatusOK, nil)
				ts.EXPECT().SetToken("tok")
			},
			wantNavigate: "",
			wantLoggedIn: true,
			wantUser:     &model.User{FirstName: "Ann", LastName: "Lee", Email: "ann@lib.org", AccessToken: "tok"},
		},
		{
			name:     "err. unauthorized",
			location: "/",
			mockBehavior: func(a *session_mocks.MockAuthService, ts *session_mocks.MockTokenStore) {
				a.EXPECT().RefreshToken(gomock.Any()).Return(model.SessionPayload{}, http.StatusUnauthorized, &errs.StatusError{Code: http.StatusUnauthorized})
				ts.EXPECT().SetToken("")
			},
			wantNavigate: "",
			wantLoggedIn: false,
		},
		{
			name:     "err. empty token",
			location: "/",
			mockBehavior: func(a *session_mocks.MockAuthService, ts *session_mocks.MockTokenStore) {
				a.EXPECT().RefreshToken(gomock.Any()).Return(model.SessionPayload{}, http.StatusOK, nil)
				ts.EXPECT().SetToken("")
			},
			wantNavigate: "",
			wantLoggedIn: false,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			authSvc := session_mocks.NewMockAuthService(c)
			tokens := session_mocks.NewMockTokenStore(c)
			tt.mockBehavior(authSvc, tokens)

			m := session.NewManager(authSvc, tokens, zap.NewExample().Named("test"))
			require.True(t, m.IsAuthenticating())

			navigate := m.Init(context.Background(), tt.location)
			require.Equal(t, tt.wantNavigate, navigate)
			require.Equal(t, tt.wantLoggedIn, m.IsLoggedIn())
			require.False(t, m.IsAuthenticating())
			require.Equal(t, tt.wantUser, m.User())

			// only the first Init talks to the API
			require.Equal(t, "", m.Init(context.Background(), tt.location))
		})
	}
}

func TestManager_LoginLogout(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	authSvc := session_mocks.NewMockAuthService(c)
	tokens := session_mocks.NewMockTokenStore(c)

	m := session.NewManager(authSvc, tokens, zap.NewNop())

	tokens.EXPECT().SetToken("tok")
	m.Login("tok")
	require.True(t, m.IsLoggedIn())

	// Logout keeps the token: no SetToken call is expected here.
	m.Logout()
	require.False(t, m.IsLoggedIn())

	tokens.EXPECT().SetToken("")
	m.Dispose()
	require.False(t, m.IsLoggedIn())
	require.Nil(t, m.User())
}

func TestManager_Authenticate(t *testing.T) {
	t.Parallel()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":     "ann@lib.org",
		"firstName": "Ann",
		"exp":       time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	req := model.LoginRequest{Email: "ann@lib.org", Password: "secret1"}
	tests := []struct {
		name     string
		payload  model.SessionPayload
		code     int
		err      error
		wantErr  bool
		wantUser *model.User
	}{
		{
			name:     "ok. user from payload",
			payload:  model.SessionPayload{AccessToken: signed, User: &model.User{FirstName: "Bob", Email: "bob@lib.org"}},
			code:     http.StatusOK,
			wantUser: &model.User{FirstName: "Bob", Email: "bob@lib.org", AccessToken: signed},
		},
		{
			name:     "ok. user from token claims",
			payload:  model.SessionPayload{AccessToken: signed},
			code:     http.StatusOK,
			wantUser: &model.User{FirstName: "Ann", Email: "ann@lib.org", AccessToken: signed},
		},
		{
			name:    "err. bad credentials",
			code:    http.StatusUnauthorized,
			err:     &errs.StatusError{Code: http.StatusUnauthorized, Message: "Invalid credentials"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			authSvc := session_mocks.NewMockAuthService(c)
			tokens := session_mocks.NewMockTokenStore(c)
			authSvc.EXPECT().Login(gomock.Any(), req).Return(tt.payload, tt.code, tt.err)
			if !tt.wantErr {
				tokens.EXPECT().SetToken(tt.payload.AccessToken)
			}

			m := session.NewManager(authSvc, tokens, zap.NewNop())
			code, err := m.Authenticate(context.Background(), req)
			require.Equal(t, tt.code, code)
			if tt.wantErr {
				require.Error(t, err)
				require.False(t, m.IsLoggedIn())
				return
			}
			require.NoError(t, err)
			require.True(t, m.IsLoggedIn())
			require.Equal(t, tt.wantUser, m.User())
		})
	}
}

func TestManager_InitOverHTTP(t *testing.T) {
	t.Parallel()
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/refresh-token", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"no refresh token"}`))
	}))
	defer srv.Close()

	remote, err := api.NewRemote(zap.NewNop(), config.RemoteAPI{BaseURL: srv.URL + "/api", Timeout: time.Second})
	require.NoError(t, err)
	client := remote.NewClient()
	client.SetToken("stale")

	m := session.NewManager(auth.NewService(zap.NewNop(), client), client, zap.NewNop())
	navigate := m.Init(context.Background(), "/")

	require.Equal(t, 1, calls)
	require.Equal(t, "", navigate)
	require.False(t, m.IsLoggedIn())
	require.False(t, m.IsAuthenticating())
	require.Equal(t, "", client.Token())
}
