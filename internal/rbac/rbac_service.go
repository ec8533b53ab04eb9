// Package rbac enforces the fixed endpoint permission matrix. Roles come
// from the session claims; the policy is code, not configuration, because
// routing and authorization rules are fixed company policy.
package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/domain"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// policyMatrix is the fixed role/resource/action grant table.
var policyMatrix = [][3]string{
	{string(domain.RoleEmployee), "leave", "create"},
	{string(domain.RoleEmployee), "leave", "read"},
	{string(domain.RoleAccountant), "leave", "create"},
	{string(domain.RoleAccountant), "leave", "read"},
	{string(domain.RoleAccountant), "leave", "decide"},
	{string(domain.RoleDeptHead), "leave", "create"},
	{string(domain.RoleDeptHead), "leave", "read"},
	{string(domain.RoleDeptHead), "leave", "decide"},
	{string(domain.RoleServiceHead), "leave", "create"},
	{string(domain.RoleServiceHead), "leave", "read"},
	{string(domain.RoleServiceHead), "leave", "decide"},
	{string(domain.RoleCEO), "leave", "read"},
	{string(domain.RoleCEO), "leave", "decide"},

	{string(domain.RoleEmployee), "blackout", "read"},
	{string(domain.RoleAccountant), "blackout", "read"},
	{string(domain.RoleDeptHead), "blackout", "read"},
	{string(domain.RoleServiceHead), "blackout", "read"},
	{string(domain.RoleCEO), "blackout", "read"},
	{string(domain.RoleAccountant), "blackout", "manage"},
	{string(domain.RoleCEO), "blackout", "manage"},

	{string(domain.RoleAccountant), "employee", "read"},
	{string(domain.RoleDeptHead), "employee", "read"},
	{string(domain.RoleServiceHead), "employee", "read"},
	{string(domain.RoleCEO), "employee", "read"},
	{string(domain.RoleCEO), "employee", "manage"},
}

type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range policyMatrix {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enforcer.Enforce(string(req.Role), req.Resource, req.Action)
}
