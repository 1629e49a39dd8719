// Package all binds all the routes into the specified app.
package all

import (
	"github.com/jcpaschoal/dealerdesk/app/domain/authapp"
	"github.com/jcpaschoal/dealerdesk/app/domain/branchapp"
	"github.com/jcpaschoal/dealerdesk/app/domain/checkapp"
	"github.com/jcpaschoal/dealerdesk/app/domain/userapp"
	"github.com/jcpaschoal/dealerdesk/app/sdk/mux"
	"github.com/jcpaschoal/dealerdesk/business/sdk/web"
)

// Routes constructs the add value which provides the implementation of
// of RouteAdder for specifying what routes to bind to this instance.
func Routes() add {
	return add{}
}

type add struct{}

// Add implements the RouterAdder interface.
func (add) Add(app *web.App, cfg mux.Config) {
	checkapp.Routes(app, checkapp.Config{
		Build: cfg.Build,
		Log:   cfg.Log,
		DB:    cfg.DB,
	})

	authapp.Routes(app, authapp.Config{
		Log:       cfg.Log,
		Auth:      cfg.Auth,
		UserBus:   cfg.Bus.UserBus,
		TenantBus: cfg.Bus.TenantBus,
		BranchBus: cfg.Bus.BranchBus,
	})

	userapp.Routes(app, userapp.Config{
		Log:       cfg.Log,
		Beginner:  cfg.Beginner,
		Auth:      cfg.Auth,
		ACLBus:    cfg.Bus.ACLBus,
		UserBus:   cfg.Bus.UserBus,
		TenantBus: cfg.Bus.TenantBus,
		BranchBus: cfg.Bus.BranchBus,
	})

	branchapp.Routes(app, branchapp.Config{
		Auth:      cfg.Auth,
		ACLBus:    cfg.Bus.ACLBus,
		BranchBus: cfg.Bus.BranchBus,
		TenantBus: cfg.Bus.TenantBus,
	})
}
