// Package tenantbus provides business access to tenant domain.
package tenantbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/jcpaschoal/dealerdesk/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound     = errors.New("tenant not found")
	ErrInvalidQuota = errors.New("branch quota must be at least 1")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Upsert(ctx context.Context, userID int64, quota *int) (Tenant, error)
	Update(ctx context.Context, t Tenant) error
	QueryByID(ctx context.Context, tenantID int64) (Tenant, error)
	QueryByUserID(ctx context.Context, userID int64) (Tenant, error)
}

// Core manages the set of APIs for tenant access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs a core for tenant api access.
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
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	return NewCore(c.log, storer), nil
}

// EnsureForUser returns the tenant owned by the user, creating it when it
// does not exist yet. A non-nil quota is applied in both cases; a new tenant
// without one starts at DefaultBranchQuota.
func (c *Core) EnsureForUser(ctx context.Context, userID int64, quota *int) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.ensureForUser")
	defer span.End()

	if quota != nil && *quota < 1 {
		return Tenant{}, ErrInvalidQuota
	}

	t, err := c.storer.Upsert(ctx, userID, quota)
	if err != nil {
		return Tenant{}, fmt.Errorf("upsert: userID[%d]: %w", userID, err)
	}

	return t, nil
}

// Update modifies data about a tenant.
func (c *Core) Update(ctx context.Context, t Tenant, ut UpdateTenant) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.update")
	defer span.End()

	if ut.WebAppURL != nil {
		t.WebAppURL = *ut.WebAppURL
	}

	if ut.LogoURL != nil {
		t.LogoURL = *ut.LogoURL
	}

	if ut.BranchQuota != nil {
		if *ut.BranchQuota < 1 {
			return Tenant{}, ErrInvalidQuota
		}
		t.BranchQuota = *ut.BranchQuota
	}

	t.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, t); err != nil {
		return Tenant{}, fmt.Errorf("update: %w", err)
	}

	return t, nil
}

// QueryByID finds the tenant by the specified ID.
func (c *Core) QueryByID(ctx context.Context, tenantID int64) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.queryByID")
	defer span.End()

	t, err := c.storer.QueryByID(ctx, tenantID)
	if err != nil {
		return Tenant{}, fmt.Errorf("query: tenantID[%d]: %w", tenantID, err)
	}

	return t, nil
}

// QueryByUserID finds the tenant owned by the specified user.
func (c *Core) QueryByUserID(ctx context.Context, userID int64) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.queryByUserID")
	defer span.End()

	t, err := c.storer.QueryByUserID(ctx, userID)
	if err != nil {
		return Tenant{}, fmt.Errorf("query: userID[%d]: %w", userID, err)
	}

	return t, nil
}
