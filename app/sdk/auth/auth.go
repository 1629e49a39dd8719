// Package auth provides token based authentication of requests.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcpaschoal/dealerdesk/business/domain/aclbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/types/userstatus"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
)

// ErrUserDisabled is returned when the token belongs to a user that is not
// active.
var ErrUserDisabled = errors.New("user is disabled")

// Config represents information required to initialize auth.
type Config struct {
	Log     *logger.Logger
	Codec   *TokenCodec
	UserBus *userbus.Core
	ACLBus  *aclbus.Core
}

// Auth is used to authenticate clients.
type Auth struct {
	log     *logger.Logger
	codec   *TokenCodec
	userBus *userbus.Core
	aclBus  *aclbus.Core
}

// New creates an Auth to support authentication.
func New(cfg Config) *Auth {
	return &Auth{
		log:     cfg.Log,
		codec:   cfg.Codec,
		userBus: cfg.UserBus,
		aclBus:  cfg.ACLBus,
	}
}

// GenerateToken returns a signed token for the user.
func (a *Auth) GenerateToken(usr userbus.User) (string, error) {
	claims := Claims{
		UserID: usr.ID,
		Email:  usr.Email.Address,
		Role:   usr.Role.String(),
	}

	token, err := a.codec.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

// Authenticate verifies the token, reloads its user and resolves the
// principal the request acts as.
func (a *Auth) Authenticate(ctx context.Context, token string) (userbus.User, aclbus.Principal, error) {
	claims, err := a.codec.Verify(token)
	if err != nil {
		return userbus.User{}, aclbus.Principal{}, err
	}

	usr, err := a.userBus.QueryByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, userbus.ErrNotFound) {
			return userbus.User{}, aclbus.Principal{}, fmt.Errorf("%w: unknown user", ErrInvalidToken)
		}
		return userbus.User{}, aclbus.Principal{}, fmt.Errorf("query user: userID[%d]: %w", claims.UserID, err)
	}

	if usr.Status != userstatus.Active {
		a.log.Info(ctx, "auth: rejected", "user_id", usr.ID, "status", usr.Status)
		return userbus.User{}, aclbus.Principal{}, ErrUserDisabled
	}

	p, err := a.aclBus.Resolve(ctx, usr)
	if err != nil {
		return userbus.User{}, aclbus.Principal{}, fmt.Errorf("resolve: %w", err)
	}

	return usr, p, nil
}
