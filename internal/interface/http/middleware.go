package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	domuser "example.com/storefront/internal/domain/user"
)

type ctxSessionKey struct{}

var errUnauthenticated = errors.New("unauthenticated")

// requireSession lets the request through only while someone is signed in.
func (a *API) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.authSvc.RequireSession()
		if err != nil {
			handleDomainError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, &sess)))
	})
}

// requireAdmin hides the admin routes from non-admins. The services check
// again through the same guard before touching the API.
func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.authSvc.RequireAdmin()
		if err != nil {
			handleDomainError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, &sess)))
	})
}

func getSession(ctx context.Context) *domuser.Session {
	if sess, ok := ctx.Value(ctxSessionKey{}).(*domuser.Session); ok {
		return sess
	}
	return nil
}

func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := a.log.WithField(r.Context(), "request_id", chimw.GetReqID(r.Context()))

		next.ServeHTTP(ww, r.WithContext(ctx))

		a.log.Info(a.log.WithFields(ctx, map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
		}), "http request")
	})
}
