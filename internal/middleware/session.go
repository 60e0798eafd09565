package middleware

import (
	"context"
	"net/http"

	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/session"
)

type sessionResolver interface {
	Resolve(ctx context.Context, id *models.Identity) (*session.Session, error)
}

// Session attaches the caller's session: the guest session when signed
// out, the synced per-user session otherwise.
func (m *Middleware) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Sessions.Resolve(r.Context(), Identity(r.Context()))
		if err != nil {
			m.ResponseHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, SessionKey, sess)
}

func SessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(SessionKey).(*session.Session)
	return sess
}
