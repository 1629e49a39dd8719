package tenantdb

import (
	"database/sql"
	"time"

	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
)

type tenantDB struct {
	ID          int64          `db:"id"`
	UserID      sql.NullInt64  `db:"user_id"`
	WebAppURL   sql.NullString `db:"web_app_url"`
	LogoURL     sql.NullString `db:"logo_url"`
	MaxBranches int            `db:"max_branches"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func toDBTenant(bus tenantbus.Tenant) tenantDB {
	return tenantDB{
		ID:          bus.ID,
		UserID:      sql.NullInt64{Int64: bus.UserID, Valid: bus.UserID != 0},
		WebAppURL:   sql.NullString{String: bus.WebAppURL, Valid: bus.WebAppURL != ""},
		LogoURL:     sql.NullString{String: bus.LogoURL, Valid: bus.LogoURL != ""},
		MaxBranches: bus.BranchQuota,
		CreatedAt:   bus.CreatedAt.UTC(),
		UpdatedAt:   bus.UpdatedAt.UTC(),
	}
}

func toBusTenant(db tenantDB) tenantbus.Tenant {
	return tenantbus.Tenant{
		ID:          db.ID,
		UserID:      db.UserID.Int64,
		WebAppURL:   db.WebAppURL.String,
		LogoURL:     db.LogoURL.String,
		BranchQuota: db.MaxBranches,
		CreatedAt:   db.CreatedAt.In(time.Local),
		UpdatedAt:   db.UpdatedAt.In(time.Local),
	}
}
