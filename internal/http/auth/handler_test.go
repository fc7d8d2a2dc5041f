package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	httpauth "github.com/MrJamesThe3rd/pocketbook/internal/http/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/user"
)

func newRouter(t *testing.T, setupMock func(m *user.MockRepository)) (http.Handler, *auth.Issuer) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := user.NewMockRepository(ctrl)

	if setupMock != nil {
		setupMock(repo)
	}

	issuer := auth.NewIssuer("test-secret", time.Hour)
	h := httpauth.NewHandler(user.NewService(repo, user.WithCost(bcrypt.MinCost)), issuer)

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		h.Routes(r)
		r.Group(func(r chi.Router) {
			r.Use(httpauth.Middleware(issuer))
			h.ProtectedRoutes(r)
		})
	})

	return r, issuer
}

func TestHandler_Login(t *testing.T) {
	id := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	type testCase struct {
		name       string
		body       string
		setupMock  func(m *user.MockRepository)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "Success",
			body: `{"email":"ana@example.com","password":"secret1"}`,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetUserByEmail(gomock.Any(), "ana@example.com").
					Return(&user.User{ID: id, Email: "ana@example.com", PasswordHash: string(hash)}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "WrongPassword",
			body: `{"email":"ana@example.com","password":"nope"}`,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetUserByEmail(gomock.Any(), "ana@example.com").
					Return(&user.User{ID: id, Email: "ana@example.com", PasswordHash: string(hash)}, nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "MalformedBody",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, issuer := newRouter(t, tt.setupMock)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			var body struct {
				Token string `json:"token"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

			got, err := issuer.Verify(body.Token)
			require.NoError(t, err)
			assert.Equal(t, id, got)
		})
	}
}

func TestMiddleware(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name       string
		header     func(issuer *auth.Issuer) string
		setupMock  func(m *user.MockRepository)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "ValidToken",
			header: func(issuer *auth.Issuer) string {
				token, _, err := issuer.Issue(id)
				require.NoError(t, err)

				return "Bearer " + token
			},
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetUser(gomock.Any(), id).Return(&user.User{ID: id, Email: "ana@example.com"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "MissingHeader",
			header:     func(*auth.Issuer) string { return "" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "ForeignToken",
			header:     func(*auth.Issuer) string { return "Bearer " + foreignToken(t, id) },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, issuer := newRouter(t, tt.setupMock)

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if h := tt.header(issuer); h != "" {
				req.Header.Set("Authorization", h)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func foreignToken(t *testing.T, id uuid.UUID) string {
	t.Helper()

	token, _, err := auth.NewIssuer("another-secret", time.Hour).Issue(id)
	require.NoError(t, err)

	return token
}
