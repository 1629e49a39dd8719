package branchapp

import (
	"net/http"

	"github.com/jcpaschoal/dealerdesk/app/sdk/auth"
	"github.com/jcpaschoal/dealerdesk/app/sdk/mid"
	"github.com/jcpaschoal/dealerdesk/business/domain/aclbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/web"
	"github.com/jcpaschoal/dealerdesk/business/types/actions"
	"github.com/jcpaschoal/dealerdesk/business/types/resource"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth      *auth.Auth
	ACLBus    *aclbus.Core
	BranchBus *branchbus.Core
	TenantBus *tenantbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const group = ""

	authen := mid.Authenticate(cfg.Auth)
	optional := mid.AuthenticateOptional(cfg.Auth)
	can := func(act actions.Action) web.MidFunc {
		return mid.Authorize(cfg.ACLBus, resource.Branch, act)
	}

	api := newApp(cfg.BranchBus, cfg.TenantBus, cfg.ACLBus)

	app.HandlerFunc(http.MethodGet, group, "/branches/public", api.queryPublic, optional)
	app.HandlerFunc(http.MethodGet, group, "/branches/requests", api.queryRequests, authen)
	app.HandlerFunc(http.MethodGet, group, "/branches", api.query, authen, can(actions.List))
	app.HandlerFunc(http.MethodGet, group, "/branches/{id}", api.queryByID, authen, can(actions.Get))
	app.HandlerFunc(http.MethodPost, group, "/branches", api.create, authen, can(actions.Create))
	app.HandlerFunc(http.MethodPut, group, "/branches/{id}", api.update, authen, can(actions.Update))
	app.HandlerFunc(http.MethodDelete, group, "/branches/{id}", api.delete, authen, can(actions.Delete))
}
