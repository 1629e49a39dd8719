package userapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jcpaschoal/dealerdesk/app/sdk/errs"
	"github.com/jcpaschoal/dealerdesk/app/sdk/ids"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/types/name"
	"github.com/jcpaschoal/dealerdesk/business/types/password"
	"github.com/jcpaschoal/dealerdesk/business/types/phone"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/jcpaschoal/dealerdesk/business/types/userstatus"
)

// branchRef holds the ways a payload names a branch.
type branchRef struct {
	PrimaryBranch ids.ID   `json:"primaryBranch"`
	Branches      []ids.ID `json:"branches"`
	BranchID      ids.ID   `json:"branchId"`
}

func (br branchRef) first() ids.ID {
	if len(br.Branches) > 0 {
		return br.Branches[0]
	}

	return 0
}

// =============================================================================

// NewUser defines the data needed to add a new user.
type NewUser struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	OwnerID     ids.ID `json:"ownerId"`
	MaxBranches *int   `json:"maxBranches"`
	branchRef
}

// Decode implements the web.Decoder interface.
func (app *NewUser) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewUser) Validate() error {
	if strings.TrimSpace(app.Name) == "" || strings.TrimSpace(app.Email) == "" || app.Password == "" {
		return errs.New(errs.InvalidArgument, errors.New("name, email, password are required"))
	}

	return nil
}

// branch resolves the requested branch, preferring the primary branch.
func (app NewUser) branch() int64 {
	return ids.First(app.PrimaryBranch, app.first(), app.BranchID)
}

func toBusNewUser(app NewUser) (userbus.NewUser, error) {
	nme, err := name.Parse(app.Name)
	if err != nil {
		return userbus.NewUser{}, fmt.Errorf("parse name: %w", err)
	}

	addr, err := parseEmail(app.Email)
	if err != nil {
		return userbus.NewUser{}, err
	}

	pw, err := password.Parse(app.Password)
	if err != nil {
		return userbus.NewUser{}, fmt.Errorf("parse password: %w", err)
	}

	ph, err := phone.ParseNull(app.Phone)
	if err != nil {
		return userbus.NewUser{}, fmt.Errorf("parse phone: %w", err)
	}

	bus := userbus.NewUser{
		Name:     nme,
		Email:    addr,
		Phone:    ph,
		Password: pw,
		Role:     role.Normalize(app.Role),
		Status:   userstatus.Normalize(app.Status),
	}

	return bus, nil
}

// =============================================================================

// UpdateUser defines the data needed to update a user. Empty values leave
// the stored value unchanged.
type UpdateUser struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Phone       *string `json:"phone"`
	Role        string  `json:"role"`
	Status      string  `json:"status"`
	OwnerID     ids.ID  `json:"ownerId"`
	MaxBranches *int    `json:"maxBranches"`
	branchRef
}

// Decode implements the web.Decoder interface.
func (app *UpdateUser) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// branch resolves the requested branch. The explicit branchId wins over
// the branch list, which wins over the primary branch.
func (app UpdateUser) branch() int64 {
	return ids.First(app.BranchID, app.first(), app.PrimaryBranch)
}

func toBusUpdateUser(app UpdateUser) (userbus.UpdateUser, error) {
	var bus userbus.UpdateUser

	if strings.TrimSpace(app.Name) != "" {
		nme, err := name.Parse(app.Name)
		if err != nil {
			return userbus.UpdateUser{}, fmt.Errorf("parse name: %w", err)
		}
		bus.Name = &nme
	}

	if strings.TrimSpace(app.Email) != "" {
		addr, err := parseEmail(app.Email)
		if err != nil {
			return userbus.UpdateUser{}, err
		}
		bus.Email = &addr
	}

	if app.Password != "" {
		pw, err := password.Parse(app.Password)
		if err != nil {
			return userbus.UpdateUser{}, fmt.Errorf("parse password: %w", err)
		}
		bus.Password = &pw
	}

	if app.Phone != nil {
		ph, err := phone.ParseNull(*app.Phone)
		if err != nil {
			return userbus.UpdateUser{}, fmt.Errorf("parse phone: %w", err)
		}
		bus.Phone = &ph
	}

	if strings.TrimSpace(app.Status) != "" {
		s := userstatus.Normalize(app.Status)
		bus.Status = &s
	}

	return bus, nil
}

// =============================================================================

// UpdateProfile defines the data an owner or admin may change about
// themselves and their tenant.
type UpdateProfile struct {
	Name        string  `json:"name"`
	Phone       *string `json:"phone"`
	WebAppURL   string  `json:"webAppUrl" validate:"omitempty,url"`
	LogoURL     string  `json:"logoUrl" validate:"omitempty,url"`
	OwnerID     ids.ID  `json:"ownerId"`
	MaxBranches *int    `json:"maxBranches" validate:"omitempty,min=1"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateProfile) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateProfile) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	return nil
}

func (app UpdateProfile) toBusUpdateUser() (userbus.UpdateUser, bool, error) {
	var bus userbus.UpdateUser

	if strings.TrimSpace(app.Name) != "" {
		nme, err := name.Parse(app.Name)
		if err != nil {
			return userbus.UpdateUser{}, false, fmt.Errorf("parse name: %w", err)
		}
		bus.Name = &nme
	}

	if app.Phone != nil {
		ph, err := phone.ParseNull(*app.Phone)
		if err != nil {
			return userbus.UpdateUser{}, false, fmt.Errorf("parse phone: %w", err)
		}
		bus.Phone = &ph
	}

	return bus, bus.Name != nil || bus.Phone != nil, nil
}

// =============================================================================

// BecomeOwner defines the data a user supplies when opening a tenant.
type BecomeOwner struct {
	WebAppURL   string `json:"webAppUrl" validate:"omitempty,url"`
	LogoURL     string `json:"logoUrl" validate:"omitempty,url"`
	MaxBranches *int   `json:"maxBranches" validate:"omitempty,min=1"`
}

// Decode implements the web.Decoder interface.
func (app *BecomeOwner) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app BecomeOwner) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	return nil
}

// =============================================================================

// toBusUpdateTenant keeps only the url values that carry text.
func toBusUpdateTenant(webAppURL string, logoURL string) tenantbus.UpdateTenant {
	var bus tenantbus.UpdateTenant

	if v := strings.TrimSpace(webAppURL); v != "" {
		bus.WebAppURL = &v
	}

	if v := strings.TrimSpace(logoURL); v != "" {
		bus.LogoURL = &v
	}

	return bus
}

func parseEmail(value string) (mail.Address, error) {
	addr, err := mail.ParseAddress(strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		return mail.Address{}, fmt.Errorf("parse email: %w", err)
	}

	return *addr, nil
}
