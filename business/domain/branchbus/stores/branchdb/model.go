package branchdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/types/branchcode"
	"github.com/jcpaschoal/dealerdesk/business/types/branchstatus"
	"github.com/jcpaschoal/dealerdesk/business/types/branchtype"
	"github.com/jcpaschoal/dealerdesk/business/types/name"
	"github.com/jcpaschoal/dealerdesk/business/types/team"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
)

type branchDB struct {
	ID        int64          `db:"id"`
	OwnerID   int64          `db:"owner_id"`
	Code      string         `db:"code"`
	Name      string         `db:"name"`
	Type      sql.NullString `db:"type"`
	Status    sql.NullString `db:"status"`
	Team      []byte         `db:"team"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt sql.NullTime   `db:"updated_at"`
}

func toDBBranch(bus branchbus.Branch) (branchDB, error) {
	tm, err := bus.Team.Marshal()
	if err != nil {
		return branchDB{}, fmt.Errorf("marshal team: %w", err)
	}

	db := branchDB{
		ID:        bus.ID,
		OwnerID:   bus.TenantID,
		Code:      bus.Code.String(),
		Name:      bus.Name.String(),
		Type:      sql.NullString{String: bus.Type.String(), Valid: true},
		Status:    sql.NullString{String: bus.Status.String(), Valid: true},
		Team:      tm,
		CreatedAt: bus.CreatedAt.UTC(),
		UpdatedAt: sql.NullTime{Time: bus.UpdatedAt.UTC(), Valid: true},
	}

	return db, nil
}

// toBusBranch reads legacy rows leniently: a roster that is not a JSON
// object is logged and reads as an empty team.
func toBusBranch(ctx context.Context, log *logger.Logger, db branchDB) (branchbus.Branch, error) {
	code, err := branchcode.Parse(db.Code)
	if err != nil {
		return branchbus.Branch{}, fmt.Errorf("parse code: %w", err)
	}

	nme, err := name.Parse(db.Name)
	if err != nil {
		return branchbus.Branch{}, fmt.Errorf("parse name: %w", err)
	}

	tm, err := team.Unmarshal(db.Team)
	if err != nil {
		log.Warn(ctx, "branchdb: decode team", "branch_id", db.ID, "ERROR", err)
		tm = team.Team{}
	}

	bus := branchbus.Branch{
		ID:        db.ID,
		TenantID:  db.OwnerID,
		Code:      code,
		Name:      nme,
		Type:      branchtype.Normalize(db.Type.String),
		Status:    branchstatus.Normalize(db.Status.String),
		Team:      tm,
		CreatedAt: db.CreatedAt.In(time.Local),
	}

	if db.UpdatedAt.Valid {
		bus.UpdatedAt = db.UpdatedAt.Time.In(time.Local)
	}

	return bus, nil
}

func toBusBranches(ctx context.Context, log *logger.Logger, dbs []branchDB) ([]branchbus.Branch, error) {
	bus := make([]branchbus.Branch, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusBranch(ctx, log, db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}

// =============================================================================

type requestDB struct {
	ID             int64          `db:"id"`
	OwnerID        int64          `db:"owner_id"`
	RequestedCount sql.NullInt64  `db:"requested_count"`
	Reason         sql.NullString `db:"requested_reason"`
	Status         string         `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
}

func toDBRequest(bus branchbus.Request) requestDB {
	return requestDB{
		ID:             bus.ID,
		OwnerID:        bus.TenantID,
		RequestedCount: sql.NullInt64{Int64: int64(bus.RequestedCount), Valid: true},
		Reason:         sql.NullString{String: bus.Reason, Valid: bus.Reason != ""},
		Status:         bus.Status,
		CreatedAt:      bus.CreatedAt.UTC(),
	}
}

func toBusRequests(dbs []requestDB) []branchbus.Request {
	bus := make([]branchbus.Request, len(dbs))

	for i, db := range dbs {
		bus[i] = branchbus.Request{
			ID:             db.ID,
			TenantID:       db.OwnerID,
			RequestedCount: int(db.RequestedCount.Int64),
			Reason:         db.Reason.String,
			Status:         db.Status,
			CreatedAt:      db.CreatedAt.In(time.Local),
		}
	}

	return bus
}
