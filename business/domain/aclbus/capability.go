package aclbus

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/jcpaschoal/dealerdesk/business/types/actions"
	"github.com/jcpaschoal/dealerdesk/business/types/resource"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
)

// Admin matches every request. Roles reach their policies through the
// grouping relation, which also holds reflexively.
const casbinModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == "admin" || (g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act)
`

// crew groups the roles that work inside a tenant without managing it.
const crew = "crew"

var everything = []actions.Action{actions.List, actions.Get, actions.Create, actions.Update, actions.Delete}

var reads = []actions.Action{actions.List, actions.Get}

type grant struct {
	sub  string
	res  resource.Resource
	acts []actions.Action
}

var grants = []grant{
	{role.Owner.String(), resource.Branch, everything},
	{role.Owner.String(), resource.User, everything},
	{role.Owner.String(), resource.Tenant, []actions.Action{actions.Get, actions.Update}},

	{crew, resource.Branch, reads},
	{crew, resource.User, []actions.Action{actions.Get}},

	{role.User.String(), resource.Branch, reads},
	{role.User.String(), resource.User, []actions.Action{actions.Get}},
	{role.User.String(), resource.Tenant, []actions.Action{actions.Create}},
}

var crewRoles = []role.Role{role.Staff, role.Mechanic, role.Callboy, role.Backend}

// capabilities answers which role may attempt which action on which
// resource, before any record level scope is applied.
type capabilities struct {
	enforcer *casbin.SyncedEnforcer
}

func newCapabilities() (*capabilities, error) {
	m, err := model.NewModelFromString(casbinModel)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	var rules [][]string
	for _, g := range grants {
		for _, act := range g.acts {
			rules = append(rules, []string{g.sub, g.res.String(), act.String()})
		}
	}

	if _, err := e.AddPolicies(rules); err != nil {
		return nil, fmt.Errorf("add policies: %w", err)
	}

	for _, r := range crewRoles {
		if _, err := e.AddGroupingPolicy(r.String(), crew); err != nil {
			return nil, fmt.Errorf("add grouping %s: %w", r, err)
		}
	}

	return &capabilities{enforcer: e}, nil
}

func (c *capabilities) allowed(r role.Role, res resource.Resource, act actions.Action) (bool, error) {
	ok, err := c.enforcer.Enforce(r.String(), res.String(), act.String())
	if err != nil {
		return false, fmt.Errorf("enforce: %w", err)
	}

	return ok, nil
}
