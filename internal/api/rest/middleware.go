package rest

import (
	"net/http"
	"strings"

	apperrors "github.com/taskdeck/taskdeck/internal/platform/errors"
	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	"github.com/taskdeck/taskdeck/internal/platform/requestctx"
	"github.com/taskdeck/taskdeck/internal/services/auth/token"
)

// errNoToken indicates the request carried no usable bearer credential.
var errNoToken = apperrors.New(apperrors.CodeNoToken, "authorization bearer token is required")

// bearerToken extracts the credential from an Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errNoToken
	}
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errNoToken
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errNoToken
	}
	return raw, nil
}

// requireAuth verifies the bearer token and attaches the caller identity to
// the request context. Verification failures short-circuit with the token's
// own error code so clients can tell a stale login from a forged token.
func requireAuth(tokens *token.Service) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeError(w, r, err)
				return
			}
			claims, err := tokens.Verify(raw)
			if err != nil {
				writeError(w, r, err)
				return
			}
			ctx := requestctx.WithIdentity(httpx.RequestContext(r), requestctx.Identity{
				UserID: claims.UserID,
				Email:  claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// callerIdentity resolves the identity requireAuth attached earlier.
func callerIdentity(r *http.Request) (requestctx.Identity, error) {
	identity, ok := requestctx.IdentityFromContext(httpx.RequestContext(r))
	if !ok {
		return requestctx.Identity{}, errNoToken
	}
	return identity, nil
}
