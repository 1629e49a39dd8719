// Package branchbus provides business access to branch domain.
package branchbus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jcpaschoal/dealerdesk/business/sdk/order"
	"github.com/jcpaschoal/dealerdesk/business/sdk/page"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/jcpaschoal/dealerdesk/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound      = errors.New("branch not found")
	ErrUniqueCode    = errors.New("branch code already exists for this tenant")
	ErrQuotaExceeded = errors.New("branch limit reached")
)

// QuotaError is returned by Create when the tenant is at its branch limit.
// The request for approval it carries has already been recorded.
type QuotaError struct {
	RequestID      int64
	RequestedCount int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("branch limit reached: request[%d] for %d branches", e.RequestID, e.RequestedCount)
}

// Is makes errors.Is(err, ErrQuotaExceeded) hold for a QuotaError.
func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	LockTenant(ctx context.Context, tenantID int64) error
	Create(ctx context.Context, b Branch) (int64, error)
	Update(ctx context.Context, b Branch) error
	Delete(ctx context.Context, b Branch) error
	Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Branch, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, branchID int64) (Branch, error)
	CreateRequest(ctx context.Context, r Request) (int64, error)
	QueryRequests(ctx context.Context, filter RequestFilter, page page.Page) ([]Request, error)
	CountRequests(ctx context.Context, filter RequestFilter) (int, error)
}

// Core manages the set of APIs for branch access.
type Core struct {
	log      *logger.Logger
	beginner sqldb.Beginner
	storer   Storer
}

// NewCore constructs a core for branch api access.
func NewCore(log *logger.Logger, beginner sqldb.Beginner, storer Storer) *Core {
	return &Core{
		log:      log,
		beginner: beginner,
		storer:   storer,
	}
}

// NewWithTx constructs a new Core value replacing the Storer
// value with a Storer value that is currently inside a transaction.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(c.log, c.beginner, storer), nil
}

// Create adds a new branch for the tenant. When the quota is enforced and
// the tenant already holds Limit branches the branch is not created;
// instead a pending Request is recorded and a *QuotaError returned. The
// count and the insert run in their own transaction under a per tenant
// lock, so concurrent creations cannot both pass the check.
func (c *Core) Create(ctx context.Context, nb NewBranch, quota Quota) (Branch, error) {
	ctx, span := otel.AddSpan(ctx, "business.branchbus.create")
	defer span.End()

	tx, err := c.beginner.Begin(ctx)
	if err != nil {
		return Branch{}, fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			c.log.Error(ctx, "branchbus: rollback", "ERROR", err)
		}
	}()

	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return Branch{}, fmt.Errorf("newWithTx: %w", err)
	}

	if err := storer.LockTenant(ctx, nb.TenantID); err != nil {
		return Branch{}, fmt.Errorf("lock: tenantID[%d]: %w", nb.TenantID, err)
	}

	now := time.Now()

	if quota.Enforce {
		count, err := storer.Count(ctx, QueryFilter{TenantID: &nb.TenantID})
		if err != nil {
			return Branch{}, fmt.Errorf("count: %w", err)
		}

		if count >= quota.Limit {
			req := Request{
				TenantID:       nb.TenantID,
				RequestedCount: count + 1,
				Reason:         strings.TrimSpace(quota.Reason),
				Status:         RequestStatusPending,
				CreatedAt:      now,
			}

			id, err := storer.CreateRequest(ctx, req)
			if err != nil {
				return Branch{}, fmt.Errorf("create request: %w", err)
			}

			if err := tx.Commit(); err != nil {
				return Branch{}, fmt.Errorf("commit: %w", err)
			}

			c.log.Info(ctx, "branchbus: quota reached", "tenant_id", nb.TenantID, "limit", quota.Limit, "request_id", id)

			return Branch{}, &QuotaError{RequestID: id, RequestedCount: req.RequestedCount}
		}
	}

	b := Branch{
		TenantID:  nb.TenantID,
		Code:      nb.Code,
		Name:      nb.Name,
		Type:      nb.Type,
		Status:    nb.Status,
		Team:      nb.Team,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := storer.Create(ctx, b)
	if err != nil {
		return Branch{}, fmt.Errorf("create: %w", err)
	}
	b.ID = id

	if err := tx.Commit(); err != nil {
		return Branch{}, fmt.Errorf("commit: %w", err)
	}

	return b, nil
}

// Update modifies information about a branch.
func (c *Core) Update(ctx context.Context, b Branch, ub UpdateBranch) (Branch, error) {
	ctx, span := otel.AddSpan(ctx, "business.branchbus.update")
	defer span.End()

	if ub.Code != nil {
		b.Code = *ub.Code
	}

	if ub.Name != nil {
		b.Name = *ub.Name
	}

	if ub.Type != nil {
		b.Type = *ub.Type
	}

	if ub.Status != nil {
		b.Status = *ub.Status
	}

	if ub.Team != nil {
		b.Team = *ub.Team
	}

	b.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, b); err != nil {
		return Branch{}, fmt.Errorf("update: %w", err)
	}

	return b, nil
}

// Delete removes the specified branch.
func (c *Core) Delete(ctx context.Context, b Branch) error {
	ctx, span := otel.AddSpan(ctx, "business.branchbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, b); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// Query retrieves a list of existing branches.
func (c *Core) Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Branch, error) {
	ctx, span := otel.AddSpan(ctx, "business.branchbus.query")
	defer span.End()

	branches, err := c.storer.Query(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return branches, nil
}

// Count returns the total number of branches.
func (c *Core) Count(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.branchbus.count")
	defer span.End()

	return c.storer.Count(ctx, filter)
}

// QueryByID finds the branch by the specified ID.
func (c *Core) QueryByID(ctx context.Context, branchID int64) (Branch, error) {
	ctx, span := otel.AddSpan(ctx, "business.branchbus.queryByID")
	defer span.End()

	b, err := c.storer.QueryByID(ctx, branchID)
	if err != nil {
		return Branch{}, fmt.Errorf("query: branchID[%d]: %w", branchID, err)
	}

	return b, nil
}

// QueryRequests retrieves the recorded quota requests.
func (c *Core) QueryRequests(ctx context.Context, filter RequestFilter, page page.Page) ([]Request, error) {
	ctx, span := otel.AddSpan(ctx, "business.branchbus.queryRequests")
	defer span.End()

	reqs, err := c.storer.QueryRequests(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return reqs, nil
}

// CountRequests returns the total number of quota requests.
func (c *Core) CountRequests(ctx context.Context, filter RequestFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.branchbus.countRequests")
	defer span.End()

	return c.storer.CountRequests(ctx, filter)
}
