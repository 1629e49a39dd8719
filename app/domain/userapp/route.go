package userapp

import (
	"net/http"

	"github.com/jcpaschoal/dealerdesk/app/sdk/auth"
	"github.com/jcpaschoal/dealerdesk/app/sdk/mid"
	"github.com/jcpaschoal/dealerdesk/business/domain/aclbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
	"github.com/jcpaschoal/dealerdesk/business/sdk/web"
	"github.com/jcpaschoal/dealerdesk/business/types/actions"
	"github.com/jcpaschoal/dealerdesk/business/types/resource"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log       *logger.Logger
	Beginner  sqldb.Beginner
	Auth      *auth.Auth
	ACLBus    *aclbus.Core
	UserBus   *userbus.Core
	TenantBus *tenantbus.Core
	BranchBus *branchbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const group = ""

	authen := mid.Authenticate(cfg.Auth)
	optional := mid.AuthenticateOptional(cfg.Auth)
	transaction := mid.BeginCommitRollback(cfg.Log, cfg.Beginner)
	can := func(act actions.Action) web.MidFunc {
		return mid.Authorize(cfg.ACLBus, resource.User, act)
	}

	api := newApp(cfg.UserBus, cfg.TenantBus, cfg.BranchBus, cfg.ACLBus)

	app.HandlerFunc(http.MethodGet, group, "/users/public", api.queryPublic, optional)
	app.HandlerFunc(http.MethodPatch, group, "/users/profile", api.updateProfile, authen, transaction)
	app.HandlerFunc(http.MethodPut, group, "/users/profile", api.updateProfile, authen, transaction)
	app.HandlerFunc(http.MethodPost, group, "/users/become-owner", api.becomeOwner, authen, transaction)
	app.HandlerFunc(http.MethodGet, group, "/users", api.query, authen, can(actions.List))
	app.HandlerFunc(http.MethodGet, group, "/users/{id}", api.queryByID, authen, can(actions.Get))
	app.HandlerFunc(http.MethodPost, group, "/users", api.create, authen, can(actions.Create), transaction)
	app.HandlerFunc(http.MethodPut, group, "/users/{id}", api.update, authen, can(actions.Update), transaction)
	app.HandlerFunc(http.MethodDelete, group, "/users/{id}", api.delete, authen, can(actions.Delete))
}
