// Package userbus provides business access to user domain.
package userbus

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/jcpaschoal/dealerdesk/business/sdk/order"
	"github.com/jcpaschoal/dealerdesk/business/sdk/page"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
	"github.com/jcpaschoal/dealerdesk/business/types/password"
	"github.com/jcpaschoal/dealerdesk/business/types/userstatus"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/jcpaschoal/dealerdesk/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound              = errors.New("user not found")
	ErrUniqueEmail           = errors.New("email is not unique")
	ErrUniquePhone           = errors.New("phone is not unique")
	ErrUniqueBranchRole      = errors.New("branch already has this role assigned")
	ErrAuthenticationFailure = errors.New("authentication failed")
	ErrUserInactive          = errors.New("user is not active")
	ErrResetTokenInvalid     = errors.New("reset token is invalid or has expired")
)

// ResetTokenTTL is how long a password reset token stays usable.
const ResetTokenTTL = 30 * time.Minute

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, usr User) (int64, error)
	Update(ctx context.Context, usr User) error
	UpdateReset(ctx context.Context, usr User) error
	Delete(ctx context.Context, usr User) error
	Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]User, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, userID int64) (User, error)
	QueryByEmail(ctx context.Context, email mail.Address) (User, error)
	QueryByResetToken(ctx context.Context, tokenHash string) (User, error)
}

// Core manages the set of APIs for user access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs a core for user api access.
func NewCore(log *logger.Logger, storer Storer) *Core {
	return &Core{
		log:    log,
		storer: storer,
	}
}

// NewWithTx constructs a new Core value replacing the Storer
// value with a Storer value that is currently inside a transaction.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(c.log, storer), nil
}

// Create adds a new user to the system.
func (c *Core) Create(ctx context.Context, nu NewUser) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.create")
	defer span.End()

	hash, err := nu.Password.Hash()
	if err != nil {
		return User{}, fmt.Errorf("hash: %w", err)
	}

	status := nu.Status
	if status == (userstatus.UserStatus{}) {
		status = userstatus.Active
	}

	now := time.Now()

	usr := User{
		Name:         nu.Name,
		Email:        nu.Email,
		Phone:        nu.Phone,
		PasswordHash: hash,
		Role:         nu.Role,
		Status:       status,
		TenantID:     nu.TenantID,
		BranchID:     nu.BranchID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	id, err := c.storer.Create(ctx, usr)
	if err != nil {
		return User{}, fmt.Errorf("create: %w", err)
	}
	usr.ID = id

	return usr, nil
}

// Update modifies information about a user.
func (c *Core) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.update")
	defer span.End()

	if uu.Name != nil {
		usr.Name = *uu.Name
	}

	if uu.Email != nil {
		usr.Email = *uu.Email
	}

	if uu.Phone != nil {
		usr.Phone = *uu.Phone
	}

	if uu.Password != nil {
		hash, err := uu.Password.Hash()
		if err != nil {
			return User{}, fmt.Errorf("hash: %w", err)
		}
		usr.PasswordHash = hash
	}

	if uu.Role != nil {
		usr.Role = *uu.Role
	}

	if uu.Status != nil {
		usr.Status = *uu.Status
	}

	if uu.TenantID != nil {
		usr.TenantID = *uu.TenantID
	}

	if uu.BranchID != nil {
		usr.BranchID = *uu.BranchID
	}

	usr.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, usr); err != nil {
		return User{}, fmt.Errorf("update: %w", err)
	}

	return usr, nil
}

// Delete removes the specified user.
func (c *Core) Delete(ctx context.Context, usr User) error {
	ctx, span := otel.AddSpan(ctx, "business.userbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, usr); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// Query retrieves a list of existing users.
func (c *Core) Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.query")
	defer span.End()

	users, err := c.storer.Query(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return users, nil
}

// Count returns the total number of users.
func (c *Core) Count(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.count")
	defer span.End()

	return c.storer.Count(ctx, filter)
}

// QueryByID finds the user by the specified ID.
func (c *Core) QueryByID(ctx context.Context, userID int64) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.queryByID")
	defer span.End()

	user, err := c.storer.QueryByID(ctx, userID)
	if err != nil {
		return User{}, fmt.Errorf("query: userID[%d]: %w", userID, err)
	}

	return user, nil
}

// QueryByEmail finds the user by a specified user email.
func (c *Core) QueryByEmail(ctx context.Context, email mail.Address) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.queryByEmail")
	defer span.End()

	user, err := c.storer.QueryByEmail(ctx, email)
	if err != nil {
		return User{}, fmt.Errorf("query: email[%s]: %w", email.Address, err)
	}

	return user, nil
}

// Authenticate finds a user by their email and verifies their password. An
// unknown email and a wrong password fail the same way.
func (c *Core) Authenticate(ctx context.Context, email mail.Address, plain string) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.authenticate")
	defer span.End()

	usr, err := c.QueryByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrAuthenticationFailure
		}
		return User{}, err
	}

	if !password.Verify(plain, usr.PasswordHash) {
		return User{}, ErrAuthenticationFailure
	}

	if usr.Status != userstatus.Active {
		return User{}, ErrUserInactive
	}

	return usr, nil
}

// StartPasswordReset issues a single use reset token for the user with the
// given email. Only the sha256 of the token is stored; the raw token is
// returned for delivery.
func (c *Core) StartPasswordReset(ctx context.Context, email mail.Address) (string, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.startPasswordReset")
	defer span.End()

	usr, err := c.QueryByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("token: %w", err)
	}
	token := hex.EncodeToString(raw)

	now := time.Now()
	usr.ResetTokenHash = HashResetToken(token)
	usr.ResetExpiresAt = now.Add(ResetTokenTTL)
	usr.UpdatedAt = now

	if err := c.storer.UpdateReset(ctx, usr); err != nil {
		return "", fmt.Errorf("updatereset: %w", err)
	}

	return token, nil
}

// ResetPassword replaces the password of the user holding the token and
// clears the token.
func (c *Core) ResetPassword(ctx context.Context, token string, pw password.Password) error {
	ctx, span := otel.AddSpan(ctx, "business.userbus.resetPassword")
	defer span.End()

	usr, err := c.storer.QueryByResetToken(ctx, HashResetToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("query: %w", err)
	}

	now := time.Now()
	if usr.ResetExpiresAt.IsZero() || !usr.ResetExpiresAt.After(now) {
		return ErrResetTokenInvalid
	}

	hash, err := pw.Hash()
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	usr.PasswordHash = hash
	usr.ResetTokenHash = ""
	usr.ResetExpiresAt = time.Time{}
	usr.UpdatedAt = now

	if err := c.storer.UpdateReset(ctx, usr); err != nil {
		return fmt.Errorf("updatereset: %w", err)
	}

	return nil
}

// HashResetToken returns the stored form of a reset token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
