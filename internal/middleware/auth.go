package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/response"
	"github.com/GregMSThompson/expenseflow/pkg/logger"
)

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type Middleware struct {
	AuthClient      tokenVerifier
	Sessions        sessionResolver
	ResponseHandler response.ResponseHandler
}

func NewMiddleware(client tokenVerifier, sessions sessionResolver, rh response.ResponseHandler) *Middleware {
	return &Middleware{AuthClient: client, Sessions: sessions, ResponseHandler: rh}
}

// context key
type contextKey string

const (
	IdentityKey contextKey = "identity"
	SessionKey  contextKey = "session"
)

// OptionalAuth verifies a bearer token when one is sent. Requests without an
// Authorization header continue as guests; a bad token is rejected.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.ResponseHandler.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "invalid Authorization header")
			return
		}

		token, err := m.AuthClient.VerifyIDToken(r.Context(), parts[1])
		if err != nil {
			logger.FromContext(r.Context()).Warn("token verification failed", "error", err)
			m.ResponseHandler.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
			return
		}

		id := identityFromToken(token)
		_, ctx := logger.With(r.Context(), "uid", id.UID)
		ctx = WithIdentity(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests that OptionalAuth left as guests.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Identity(r.Context()) == nil {
			m.ResponseHandler.HandleError(w, r, errs.NewUnauthenticatedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFromToken(token *auth.Token) models.Identity {
	id := models.Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.DisplayName = name
	}
	return id
}

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, &id)
}

// Identity returns the verified caller, or nil for a guest.
func Identity(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(IdentityKey).(*models.Identity)
	return id
}

// Helper to extract UID
func UID(ctx context.Context) string {
	if id := Identity(ctx); id != nil {
		return id.UID
	}
	return ""
}
