package authapp

import (
	"net/http"

	"github.com/jcpaschoal/dealerdesk/app/sdk/auth"
	"github.com/jcpaschoal/dealerdesk/app/sdk/mid"
	"github.com/jcpaschoal/dealerdesk/app/sdk/userview"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/web"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log       *logger.Logger
	Auth      *auth.Auth
	UserBus   *userbus.Core
	TenantBus *tenantbus.Core
	BranchBus *branchbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const group = ""

	optional := mid.AuthenticateOptional(cfg.Auth)

	api := newApp(cfg.Log, cfg.Auth, cfg.UserBus, userview.NewHydrator(cfg.TenantBus, cfg.BranchBus))

	app.HandlerFunc(http.MethodPost, group, "/users/register", api.register)
	app.HandlerFunc(http.MethodPost, group, "/users/login", api.login)
	app.HandlerFunc(http.MethodGet, group, "/users/get-valid-user", api.validUser, optional)
	app.HandlerFunc(http.MethodPost, group, "/users/forgot-password", api.forgotPassword)
	app.HandlerFunc(http.MethodPost, group, "/users/reset-password", api.resetPassword)
}
