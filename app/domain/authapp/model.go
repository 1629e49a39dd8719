package authapp

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jcpaschoal/dealerdesk/app/sdk/errs"
	"github.com/jcpaschoal/dealerdesk/app/sdk/userview"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/types/name"
	"github.com/jcpaschoal/dealerdesk/business/types/password"
	"github.com/jcpaschoal/dealerdesk/business/types/phone"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/jcpaschoal/dealerdesk/business/types/userstatus"
)

// Session is returned after a successful login or registration. Token is
// empty for a registration.
type Session struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Token   string        `json:"token,omitempty"`
	User    userview.User `json:"user"`
	status  int
}

// Encode implements the web.Encoder interface.
func (app Session) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface.
func (app Session) HTTPStatus() int {
	return app.status
}

// ResetIssued answers a password reset request. There is no mail delivery so
// the token is handed back for the client to use.
type ResetIssued struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	DevResetToken string `json:"devResetToken"`
	EmailSent     bool   `json:"emailSent"`
}

// Encode implements the web.Encoder interface.
func (app ResetIssued) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

// =============================================================================

// Register defines the data needed to sign up.
type Register struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// Decode implements the web.Decoder interface.
func (app *Register) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Register) Validate() error {
	if strings.TrimSpace(app.Name) == "" || strings.TrimSpace(app.Email) == "" || len(app.Password) < password.MinLength {
		return errs.Errorf(errs.InvalidArgument, "Name, email and password (min 6 chars) are required.")
	}

	return nil
}

func toBusNewUser(app Register) (userbus.NewUser, error) {
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
		Role:     role.User,
		Status:   userstatus.Active,
	}

	return bus, nil
}

// =============================================================================

// Login defines the credentials of a sign in.
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Decode implements the web.Decoder interface.
func (app *Login) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Login) Validate() error {
	if strings.TrimSpace(app.Email) == "" || app.Password == "" {
		return errs.Errorf(errs.InvalidArgument, "Email and password are required.")
	}

	return nil
}

// =============================================================================

// ForgotPassword names the account to reset.
type ForgotPassword struct {
	Email string `json:"email"`
}

// Decode implements the web.Decoder interface.
func (app *ForgotPassword) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app ForgotPassword) Validate() error {
	if strings.TrimSpace(app.Email) == "" {
		return errs.Errorf(errs.InvalidArgument, "Email is required.")
	}

	return nil
}

// ResetPassword carries the reset token and the replacement password.
type ResetPassword struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Decode implements the web.Decoder interface.
func (app *ResetPassword) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app ResetPassword) Validate() error {
	if strings.TrimSpace(app.Token) == "" || len(app.Password) < password.MinLength {
		return errs.Errorf(errs.InvalidArgument, "Token and new password are required.")
	}

	return nil
}

// =============================================================================

func parseEmail(value string) (mail.Address, error) {
	addr, err := mail.ParseAddress(strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		return mail.Address{}, fmt.Errorf("parse email: %w", err)
	}

	return *addr, nil
}
