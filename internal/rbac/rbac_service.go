package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
)

type EnforceRequest struct {
	Role     string
	Resource string
	Action   string
}

type Service interface {
	Enforce(req EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService(enforcer *casbin.Enforcer) (Service, error) {
	s := &service{enforcer: enforcer}
	if err := s.seedPolicy(); err != nil {
		return nil, err
	}
	return s, nil
}

// seedPolicy loads the static permission matrix for the six role tags.
// The tags are a closed set with stable literal values, so the policy
// ships with the binary instead of living in a table.
func (s *service) seedPolicy() error {
	policies := [][]string{
		{"ADMIN", "hierarchy", "create"},
		{"ADMIN", "hierarchy", "read"},
		{"ADMIN", "hierarchy", "update"},
		{"ADMIN", "hierarchy", "delete"},
		{"ADMIN", "personnel", "create"},
		{"ADMIN", "personnel", "read"},
		{"ADMIN", "personnel", "update"},
		{"ADMIN", "personnel", "delete"},
		{"ADMIN", "shift", "create"},
		{"ADMIN", "shift", "read"},
		{"ADMIN", "shift", "update"},
		{"ADMIN", "shift", "delete"},
		{"ADMIN", "production", "create"},
		{"ADMIN", "production", "read"},
		{"ADMIN", "production", "update"},
		{"ADMIN", "production", "delete"},
		{"ADMIN", "attendance", "create"},
		{"ADMIN", "attendance", "read"},
		{"ADMIN", "attendance", "update"},
		{"ADMIN", "attendance", "delete"},

		{"PLANT_ADMIN", "hierarchy", "create"},
		{"PLANT_ADMIN", "hierarchy", "read"},
		{"PLANT_ADMIN", "hierarchy", "update"},
		{"PLANT_ADMIN", "hierarchy", "delete"},
		{"PLANT_ADMIN", "personnel", "read"},
		{"PLANT_ADMIN", "shift", "read"},
		{"PLANT_ADMIN", "production", "read"},
		{"PLANT_ADMIN", "attendance", "read"},

		{"PLANNER", "hierarchy", "read"},
		{"PLANNER", "shift", "create"},
		{"PLANNER", "shift", "read"},
		{"PLANNER", "shift", "update"},
		{"PLANNER", "production", "create"},
		{"PLANNER", "production", "read"},
		{"PLANNER", "production", "update"},

		{"TEAM_LEADER", "hierarchy", "read"},
		{"TEAM_LEADER", "shift", "read"},
		{"TEAM_LEADER", "production", "read"},
		{"TEAM_LEADER", "production", "update"},
		{"TEAM_LEADER", "attendance", "create"},
		{"TEAM_LEADER", "attendance", "read"},
		{"TEAM_LEADER", "attendance", "update"},

		{"MEMBER", "hierarchy", "read"},
		{"MEMBER", "shift", "read"},
		{"MEMBER", "attendance", "read"},
	}

	for _, p := range policies {
		if _, err := s.enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}

	// SUPER_ADMIN inherits everything ADMIN can do.
	if _, err := s.enforcer.AddGroupingPolicy("SUPER_ADMIN", "ADMIN"); err != nil {
		return err
	}

	return nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enforcer.Enforce(req.Role, req.Resource, req.Action)
}
