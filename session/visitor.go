package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CookieName holds the visitor ID
const CookieName = "caremate_visitor"

type ctxKeyVisitor struct{}

// VisitorMiddleware makes sure every request carries a visitor ID, issuing a
// new cookie when the header is missing or does not hold a UUID.
func VisitorMiddleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(CookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithVisitorID(r.Context(), id)))
		})
	}
}

// WithVisitorID returns a context carrying id
func WithVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyVisitor{}, id)
}

// VisitorID returns the visitor ID set by VisitorMiddleware, or ""
func VisitorID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyVisitor{}).(string)
	return id
}
