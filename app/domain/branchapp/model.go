package branchapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jcpaschoal/dealerdesk/app/sdk/errs"
	"github.com/jcpaschoal/dealerdesk/app/sdk/ids"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/types/branchcode"
	"github.com/jcpaschoal/dealerdesk/business/types/branchstatus"
	"github.com/jcpaschoal/dealerdesk/business/types/branchtype"
	"github.com/jcpaschoal/dealerdesk/business/types/name"
	"github.com/jcpaschoal/dealerdesk/business/types/team"
)

// Branch represents information about an individual branch.
type Branch struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Team      team.Team `json:"team"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// Encode implements the web.Encoder interface.
func (app Branch) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toAppBranch(bus branchbus.Branch) Branch {
	return Branch{
		ID:        bus.ID,
		OwnerID:   bus.TenantID,
		Code:      bus.Code.String(),
		Name:      bus.Name.String(),
		Type:      bus.Type.String(),
		Status:    bus.Status.String(),
		Team:      bus.Team,
		CreatedAt: bus.CreatedAt.Format(time.RFC3339),
		UpdatedAt: bus.UpdatedAt.Format(time.RFC3339),
	}
}

func toAppBranches(bus []branchbus.Branch) []Branch {
	app := make([]Branch, len(bus))
	for i, b := range bus {
		app[i] = toAppBranch(b)
	}

	return app
}

// =============================================================================

// Request represents a tenant's pending ask to exceed its branch quota.
type Request struct {
	ID             int64  `json:"id"`
	OwnerID        int64  `json:"owner_id"`
	RequestedCount int    `json:"requested_count"`
	Reason         string `json:"requested_reason"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

func toAppRequests(bus []branchbus.Request) []Request {
	app := make([]Request, len(bus))
	for i, r := range bus {
		app[i] = Request{
			ID:             r.ID,
			OwnerID:        r.TenantID,
			RequestedCount: r.RequestedCount,
			Reason:         r.Reason,
			Status:         r.Status,
			CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		}
	}

	return app
}

// =============================================================================

// teamInput is the roster part of a branch payload. A top level category
// overrides the same category inside the team object.
type teamInput struct {
	Team       map[string]any `json:"team"`
	Executives any            `json:"executives"`
	Mechanics  any            `json:"mechanics"`
	Callboys   any            `json:"callboys"`
	Staff      any            `json:"staff"`
}

func (ti teamInput) parse() team.Team {
	overrides := map[string]any{
		team.Executives.String(): ti.Executives,
		team.Mechanics.String():  ti.Mechanics,
		team.Callboys.String():   ti.Callboys,
		team.Staff.String():      ti.Staff,
	}

	return team.Parse(ti.Team, overrides)
}

// NewBranch defines the data needed to add a new branch.
type NewBranch struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	OwnerID       ids.ID `json:"ownerId"`
	RequestReason string `json:"requestReason"`
	teamInput
}

// Decode implements the web.Decoder interface.
func (app *NewBranch) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewBranch) Validate() error {
	if strings.TrimSpace(app.Code) == "" || strings.TrimSpace(app.Name) == "" {
		return errs.New(errs.InvalidArgument, errors.New("code and name are required"))
	}

	return nil
}

func toBusNewBranch(app NewBranch, tenantID int64) (branchbus.NewBranch, error) {
	code, err := branchcode.Parse(app.Code)
	if err != nil {
		return branchbus.NewBranch{}, fmt.Errorf("parse code: %w", err)
	}

	nme, err := name.Parse(app.Name)
	if err != nil {
		return branchbus.NewBranch{}, fmt.Errorf("parse name: %w", err)
	}

	bus := branchbus.NewBranch{
		TenantID: tenantID,
		Code:     code,
		Name:     nme,
		Type:     branchtype.Normalize(app.Type),
		Status:   branchstatus.Normalize(app.Status),
		Team:     app.parse(),
	}

	return bus, nil
}

// =============================================================================

// UpdateBranch defines the data needed to update a branch. Empty values
// leave the stored value unchanged; the roster is replaced only when the
// payload carries at least one member.
type UpdateBranch struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
	teamInput
}

// Decode implements the web.Decoder interface.
func (app *UpdateBranch) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

func toBusUpdateBranch(app UpdateBranch) (branchbus.UpdateBranch, error) {
	var bus branchbus.UpdateBranch

	if strings.TrimSpace(app.Code) != "" {
		code, err := branchcode.Parse(app.Code)
		if err != nil {
			return branchbus.UpdateBranch{}, fmt.Errorf("parse code: %w", err)
		}
		bus.Code = &code
	}

	if strings.TrimSpace(app.Name) != "" {
		nme, err := name.Parse(app.Name)
		if err != nil {
			return branchbus.UpdateBranch{}, fmt.Errorf("parse name: %w", err)
		}
		bus.Name = &nme
	}

	if strings.TrimSpace(app.Type) != "" {
		t := branchtype.Normalize(app.Type)
		bus.Type = &t
	}

	if strings.TrimSpace(app.Status) != "" {
		s := branchstatus.Normalize(app.Status)
		bus.Status = &s
	}

	if t := app.parse(); !t.IsEmpty() {
		bus.Team = &t
	}

	return bus, nil
}
