package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/hackboard/hackboard/internal/store"
	users "github.com/hackboard/hackboard/internal/user"
)

type ContextKey string

const ViewerKey ContextKey = "viewer"

// SessionUsernameKey is where the claimed username lives in the scs session.
const SessionUsernameKey = "username"

// LoadViewer resolves the requesting user, if any, so idea reads can
// annotate the viewer's own vote. The X-Username header wins over the
// session for session-less clients. Unknown usernames resolve to no viewer;
// only mutating endpoints get-or-create users.
func LoadViewer(sessionManager *scs.SessionManager, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := r.Header.Get("X-Username")
			if username == "" {
				username = sessionManager.GetString(r.Context(), SessionUsernameKey)
			}
			if username == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := userStore.GetUserByUsername(r.Context(), username)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ViewerKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetViewerFromContext(ctx context.Context) *users.User {
	val := ctx.Value(ViewerKey)
	if val == nil {
		return nil
	}
	user, ok := val.(*users.User)
	if !ok {
		return nil
	}
	return user
}

// GetViewerIDFromContext is a convenience for callers that only need the
// optional user ID.
func GetViewerIDFromContext(ctx context.Context) *uuid.UUID {
	user := GetViewerFromContext(ctx)
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}
