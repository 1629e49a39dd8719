package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/jcpaschoal/dealerdesk/app/sdk/auth"
	"github.com/jcpaschoal/dealerdesk/app/sdk/errs"
	"github.com/jcpaschoal/dealerdesk/business/sdk/web"
)

// Authenticate requires a valid credential. The token is read from the
// Authorization header or the token query parameter.
func Authenticate(ath *auth.Auth) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			token := web.BearerToken(r)
			if token == "" {
				return errs.Errorf(errs.Unauthenticated, "Unauthorized")
			}

			usr, p, err := ath.Authenticate(ctx, token)
			if err != nil {
				if !isAuthFailure(err) {
					return errs.Errorf(errs.Internal, "authenticate: %s", err)
				}
				return errs.Errorf(errs.Unauthenticated, "Unauthorized")
			}

			ctx = setUser(ctx, usr)
			ctx = setPrincipal(ctx, p)

			return next(ctx, r)
		}

		return h
	}

	return m
}

// AuthenticateOptional resolves the principal when a valid credential is
// present and lets the request through as anonymous otherwise.
func AuthenticateOptional(ath *auth.Auth) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			token := web.BearerToken(r)
			if token == "" {
				return next(ctx, r)
			}

			usr, p, err := ath.Authenticate(ctx, token)
			if err != nil {
				if !isAuthFailure(err) {
					return errs.Errorf(errs.Internal, "authenticate: %s", err)
				}
				return next(ctx, r)
			}

			ctx = setUser(ctx, usr)
			ctx = setPrincipal(ctx, p)

			return next(ctx, r)
		}

		return h
	}

	return m
}

func isAuthFailure(err error) bool {
	return errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrUserDisabled)
}
