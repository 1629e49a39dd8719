package userdb

import (
	"database/sql"
	"fmt"
	"net/mail"
	"time"

	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/types/name"
	"github.com/jcpaschoal/dealerdesk/business/types/phone"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/jcpaschoal/dealerdesk/business/types/userstatus"
)

type userDB struct {
	ID             int64          `db:"id"`
	Name           string         `db:"name"`
	Email          string         `db:"email"`
	Phone          sql.NullString `db:"phone"`
	PasswordHash   string         `db:"password"`
	Role           string         `db:"role"`
	Status         sql.NullString `db:"status"`
	OwnerID        sql.NullInt64  `db:"owner_id"`
	BranchID       sql.NullInt64  `db:"branch_id"`
	ResetToken     sql.NullString `db:"reset_token"`
	ResetExpiresAt sql.NullTime   `db:"reset_expires_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      sql.NullTime   `db:"updated_at"`
}

func toDBUser(bus userbus.User) userDB {
	return userDB{
		ID:             bus.ID,
		Name:           bus.Name.String(),
		Email:          bus.Email.Address,
		Phone:          phone.ToSQLNullString(bus.Phone),
		PasswordHash:   bus.PasswordHash,
		Role:           bus.Role.String(),
		Status:         sql.NullString{String: bus.Status.String(), Valid: true},
		OwnerID:        nullID(bus.TenantID),
		BranchID:       nullID(bus.BranchID),
		ResetToken:     sql.NullString{String: bus.ResetTokenHash, Valid: bus.ResetTokenHash != ""},
		ResetExpiresAt: sql.NullTime{Time: bus.ResetExpiresAt.UTC(), Valid: !bus.ResetExpiresAt.IsZero()},
		CreatedAt:      bus.CreatedAt.UTC(),
		UpdatedAt:      sql.NullTime{Time: bus.UpdatedAt.UTC(), Valid: true},
	}
}

// toBusUser is lenient with legacy rows: unknown roles drop to user and a
// missing status reads as active.
func toBusUser(db userDB) (userbus.User, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return userbus.User{}, fmt.Errorf("parse name: %w", err)
	}

	bus := userbus.User{
		ID:             db.ID,
		Name:           nme,
		Email:          mail.Address{Address: db.Email},
		Phone:          phone.FromSQL(db.Phone),
		PasswordHash:   db.PasswordHash,
		Role:           role.Normalize(db.Role),
		Status:         userstatus.Normalize(db.Status.String),
		TenantID:       db.OwnerID.Int64,
		BranchID:       db.BranchID.Int64,
		ResetTokenHash: db.ResetToken.String,
		CreatedAt:      db.CreatedAt.In(time.Local),
	}

	if db.ResetExpiresAt.Valid {
		bus.ResetExpiresAt = db.ResetExpiresAt.Time.In(time.Local)
	}

	if db.UpdatedAt.Valid {
		bus.UpdatedAt = db.UpdatedAt.Time.In(time.Local)
	}

	return bus, nil
}

func toBusUsers(dbs []userDB) ([]userbus.User, error) {
	bus := make([]userbus.User, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusUser(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
