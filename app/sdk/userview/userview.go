// Package userview builds the client representation of a user together with
// the tenant and branch it is attached to.
package userview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/types/team"
	"golang.org/x/sync/errgroup"
)

// Owner is the tenant summary carried by a user.
type Owner struct {
	ID          int64  `json:"id"`
	WebAppURL   string `json:"webAppUrl"`
	LogoURL     string `json:"logoUrl"`
	MaxBranches int    `json:"maxBranches"`
}

// Branch is the branch summary carried by a user.
type Branch struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Code   string    `json:"code"`
	Type   string    `json:"type"`
	Status string    `json:"status"`
	Team   team.Team `json:"team"`
}

// FormDefaults prefills client forms for the user.
type FormDefaults struct {
	StaffName  string `json:"staffName"`
	BranchID   int64  `json:"branchId,omitempty"`
	BranchName string `json:"branchName,omitempty"`
	BranchCode string `json:"branchCode,omitempty"`
}

// User is the client representation of a user. Credentials and reset state
// are never part of it.
type User struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	Role          string       `json:"role"`
	Status        string       `json:"status"`
	OwnerID       int64        `json:"ownerId,omitempty"`
	BranchID      int64        `json:"branchId,omitempty"`
	Owner         *Owner       `json:"owner"`
	PrimaryBranch *Branch      `json:"primaryBranch"`
	Branches      []Branch     `json:"branches"`
	FormDefaults  FormDefaults `json:"formDefaults"`
}

// Encode implements the web.Encoder interface.
func (app User) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

// =============================================================================

// TenantFinder reads the tenant of a user.
type TenantFinder interface {
	QueryByID(ctx context.Context, tenantID int64) (tenantbus.Tenant, error)
	QueryByUserID(ctx context.Context, userID int64) (tenantbus.Tenant, error)
}

// BranchFinder reads the branch of a user.
type BranchFinder interface {
	QueryByID(ctx context.Context, branchID int64) (branchbus.Branch, error)
}

// Hydrator loads what a user refers to.
type Hydrator struct {
	tenants  TenantFinder
	branches BranchFinder
}

// NewHydrator constructs a hydrator.
func NewHydrator(tenants TenantFinder, branches BranchFinder) *Hydrator {
	return &Hydrator{
		tenants:  tenants,
		branches: branches,
	}
}

// maxConcurrent bounds the lookups of a single listing.
const maxConcurrent = 8

// One hydrates a single user. The tenant is the one recorded on the user,
// or the one the user owns when none is recorded.
func (h *Hydrator) One(ctx context.Context, usr userbus.User) (User, error) {
	var tnt *tenantbus.Tenant

	switch {
	case usr.TenantID != 0:
		t, err := h.tenants.QueryByID(ctx, usr.TenantID)
		if err != nil && !errors.Is(err, tenantbus.ErrNotFound) {
			return User{}, fmt.Errorf("query tenant: tenantID[%d]: %w", usr.TenantID, err)
		}
		if err == nil {
			tnt = &t
		}

	default:
		t, err := h.tenants.QueryByUserID(ctx, usr.ID)
		if err != nil && !errors.Is(err, tenantbus.ErrNotFound) {
			return User{}, fmt.Errorf("query tenant: userID[%d]: %w", usr.ID, err)
		}
		if err == nil {
			tnt = &t
		}
	}

	var brn *branchbus.Branch
	if usr.BranchID != 0 {
		b, err := h.branches.QueryByID(ctx, usr.BranchID)
		if err != nil && !errors.Is(err, branchbus.ErrNotFound) {
			return User{}, fmt.Errorf("query branch: branchID[%d]: %w", usr.BranchID, err)
		}
		if err == nil {
			brn = &b
		}
	}

	return toUser(usr, tnt, brn), nil
}

// Many hydrates the users concurrently and keeps their order.
func (h *Hydrator) Many(ctx context.Context, usrs []userbus.User) ([]User, error) {
	app := make([]User, len(usrs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, usr := range usrs {
		g.Go(func() error {
			u, err := h.One(ctx, usr)
			if err != nil {
				return err
			}
			app[i] = u
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return app, nil
}

// OwnerOf returns the tenant summary of the tenant.
func OwnerOf(tnt tenantbus.Tenant) *Owner {
	return &Owner{
		ID:          tnt.ID,
		WebAppURL:   tnt.WebAppURL,
		LogoURL:     tnt.LogoURL,
		MaxBranches: tnt.BranchQuota,
	}
}

func toUser(usr userbus.User, tnt *tenantbus.Tenant, brn *branchbus.Branch) User {
	app := User{
		ID:       usr.ID,
		Name:     usr.Name.String(),
		Email:    usr.Email.Address,
		Phone:    usr.Phone.String(),
		Role:     usr.Role.String(),
		Status:   usr.Status.String(),
		OwnerID:  usr.TenantID,
		BranchID: usr.BranchID,
		Branches: []Branch{},
		FormDefaults: FormDefaults{
			StaffName: usr.Name.String(),
		},
	}

	if tnt != nil {
		app.OwnerID = tnt.ID
		app.Owner = OwnerOf(*tnt)
	}

	if brn != nil {
		b := Branch{
			ID:     brn.ID,
			Name:   brn.Name.String(),
			Code:   brn.Code.String(),
			Type:   brn.Type.String(),
			Status: brn.Status.String(),
			Team:   brn.Team,
		}

		app.PrimaryBranch = &b
		app.Branches = []Branch{b}
		app.FormDefaults.BranchID = b.ID
		app.FormDefaults.BranchName = b.Name
		app.FormDefaults.BranchCode = b.Code
	}

	return app
}
