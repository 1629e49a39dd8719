// Package authapp maintains the app layer api for signing up, signing in and
// recovering an account.
package authapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/jcpaschoal/dealerdesk/app/sdk/auth"
	"github.com/jcpaschoal/dealerdesk/app/sdk/errs"
	"github.com/jcpaschoal/dealerdesk/app/sdk/mid"
	"github.com/jcpaschoal/dealerdesk/app/sdk/query"
	"github.com/jcpaschoal/dealerdesk/app/sdk/userview"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/web"
	"github.com/jcpaschoal/dealerdesk/business/types/password"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
)

type app struct {
	log      *logger.Logger
	auth     *auth.Auth
	userBus  *userbus.Core
	hydrator *userview.Hydrator
}

func newApp(log *logger.Logger, ath *auth.Auth, userBus *userbus.Core, hydrator *userview.Hydrator) *app {
	return &app{
		log:      log,
		auth:     ath,
		userBus:  userBus,
		hydrator: hydrator,
	}
}

func (a *app) register(ctx context.Context, r *http.Request) web.Encoder {
	var app Register
	if err := web.Decode(r, &app); err != nil {
		return errs.NewDecode(err)
	}

	nu, err := toBusNewUser(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := a.userBus.Create(ctx, nu)
	if err != nil {
		switch {
		case errors.Is(err, userbus.ErrUniqueEmail):
			return errs.Errorf(errs.AlreadyExists, "Email is already registered.")
		case errors.Is(err, userbus.ErrUniquePhone):
			return errs.Errorf(errs.AlreadyExists, "Email or phone already exists.")
		}
		return errs.Errorf(errs.Internal, "create: email[%s]: %s", nu.Email.Address, err)
	}

	view, err := a.hydrator.One(ctx, usr)
	if err != nil {
		return errs.Errorf(errs.Internal, "hydrate: userID[%d]: %s", usr.ID, err)
	}

	return Session{Success: true, Message: "User registered", User: view, status: http.StatusCreated}
}

// login signs a user in. Unknown accounts, wrong passwords and accounts that
// are not active all fail the same way.
func (a *app) login(ctx context.Context, r *http.Request) web.Encoder {
	var app Login
	if err := web.Decode(r, &app); err != nil {
		return errs.NewDecode(err)
	}

	addr, err := parseEmail(app.Email)
	if err != nil {
		return errs.Errorf(errs.Unauthenticated, "Invalid credentials.")
	}

	usr, err := a.userBus.Authenticate(ctx, addr, app.Password)
	if err != nil {
		if errors.Is(err, userbus.ErrAuthenticationFailure) || errors.Is(err, userbus.ErrUserInactive) {
			a.log.Info(ctx, "login rejected", "email", addr.Address, "reason", err)
			return errs.Errorf(errs.Unauthenticated, "Invalid credentials.")
		}
		return errs.Errorf(errs.Internal, "authenticate: email[%s]: %s", addr.Address, err)
	}

	token, err := a.auth.GenerateToken(usr)
	if err != nil {
		return errs.Errorf(errs.Internal, "token: userID[%d]: %s", usr.ID, err)
	}

	view, err := a.hydrator.One(ctx, usr)
	if err != nil {
		return errs.Errorf(errs.Internal, "hydrate: userID[%d]: %s", usr.ID, err)
	}

	return Session{Success: true, Message: "Logged in", Token: token, User: view, status: http.StatusOK}
}

func (a *app) validUser(ctx context.Context, _ *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Unauthenticated, "Invalid token")
	}

	view, err := a.hydrator.One(ctx, usr)
	if err != nil {
		return errs.Errorf(errs.Internal, "hydrate: userID[%d]: %s", usr.ID, err)
	}

	return query.NewData(view)
}

func (a *app) forgotPassword(ctx context.Context, r *http.Request) web.Encoder {
	var app ForgotPassword
	if err := web.Decode(r, &app); err != nil {
		return errs.NewDecode(err)
	}

	notFound := errs.Errorf(errs.NotFound, "We could not find an account with that email.")

	addr, err := parseEmail(app.Email)
	if err != nil {
		return notFound
	}

	token, err := a.userBus.StartPasswordReset(ctx, addr)
	if err != nil {
		if errors.Is(err, userbus.ErrNotFound) {
			return notFound
		}
		return errs.Errorf(errs.Internal, "start reset: email[%s]: %s", addr.Address, err)
	}

	a.log.Info(ctx, "password reset issued", "email", addr.Address)

	return ResetIssued{
		Success:       true,
		Message:       "If the account exists, we have sent password reset instructions.",
		DevResetToken: token,
		EmailSent:     false,
	}
}

func (a *app) resetPassword(ctx context.Context, r *http.Request) web.Encoder {
	var app ResetPassword
	if err := web.Decode(r, &app); err != nil {
		return errs.NewDecode(err)
	}

	pw, err := password.Parse(app.Password)
	if err != nil {
		return errs.Errorf(errs.InvalidArgument, "Token and new password are required.")
	}

	if err := a.userBus.ResetPassword(ctx, app.Token, pw); err != nil {
		if errors.Is(err, userbus.ErrResetTokenInvalid) {
			return errs.Errorf(errs.InvalidArgument, "Reset link is invalid or has expired.")
		}
		return errs.Errorf(errs.Internal, "reset password: %s", err)
	}

	return query.NewMessage("Password has been reset successfully.")
}
