package userbus

import (
	"net/mail"
	"time"

	"github.com/jcpaschoal/dealerdesk/business/types/name"
	"github.com/jcpaschoal/dealerdesk/business/types/password"
	"github.com/jcpaschoal/dealerdesk/business/types/phone"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/jcpaschoal/dealerdesk/business/types/userstatus"
)

// User represents information about an individual user. TenantID and
// BranchID are zero when the user is not attached to a tenant or branch.
type User struct {
	ID             int64
	Name           name.Name
	Email          mail.Address
	Phone          phone.Null
	PasswordHash   string
	Role           role.Role
	Status         userstatus.UserStatus
	TenantID       int64
	BranchID       int64
	ResetTokenHash string
	ResetExpiresAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUser contains information needed to create a new user.
type NewUser struct {
	Name     name.Name
	Email    mail.Address
	Phone    phone.Null
	Password password.Password
	Role     role.Role
	Status   userstatus.UserStatus
	TenantID int64
	BranchID int64
}

// UpdateUser contains information needed to update a user. A pointer to a
// zero id detaches the user from its tenant or branch.
type UpdateUser struct {
	Name     *name.Name
	Email    *mail.Address
	Phone    *phone.Null
	Password *password.Password
	Role     *role.Role
	Status   *userstatus.UserStatus
	TenantID *int64
	BranchID *int64
}
