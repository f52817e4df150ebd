package contexthelpers

import (
	"context"
	"net/http"
)

func AuthenticateAdmin(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), isAdminContextKey, true)
	return r.WithContext(ctx)
}

func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	ctx := context.WithValue(r.Context(), currentPathContextKey, currentPath)
	return r.WithContext(ctx)
}

func SetCSRFToken(r *http.Request, token string) *http.Request {
	ctx := context.WithValue(r.Context(), csrfTokenContextKey, token)
	return r.WithContext(ctx)
}
