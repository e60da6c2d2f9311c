package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xavierca1/pecapital-crm/internal/entity"
	"github.com/xavierca1/pecapital-crm/internal/storage"
)

// SessionCookieName is shared with the auth handler that sets it.
const SessionCookieName = "pe_session"

type contextKey string

const sessionKey contextKey = "session"

// SessionAuth rejects requests without a live session row. The dashboard and
// the portal both sit behind it; the capture forms do not.
func SessionAuth(store storage.Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := store.GetSession(r.Context(), cookie.Value)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionFromContext(ctx context.Context) (*entity.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*entity.Session)
	return sess, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized"})
}
