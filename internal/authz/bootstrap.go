package authz

import "fmt"

// 预置角色
const (
	RoleReadonlyAuditor      = "readonly_auditor"
	RoleOperations           = "operations"
	RoleFinance              = "finance"
	RoleVolunteerCoordinator = "volunteer_coordinator"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleReadonlyAuditor,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     RoleOperations,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/members", Action: "POST"},
				{Object: "/admin/members/:id/token", Action: "POST"},
				{Object: "/admin/merchants", Action: "POST"},
				{Object: "/admin/merchants/:id/token", Action: "POST"},
				{Object: "/admin/tiers", Action: "POST"},
				{Object: "/admin/goods", Action: "POST"},
				{Object: "/admin/activities", Action: "POST"},
				{Object: "/admin/coupon-templates", Action: "POST"},
				{Object: "/admin/coupon-templates/:id/audit", Action: "POST"},
				{Object: "/admin/coupon-templates/:id/issue", Action: "POST"},
				{Object: "/admin/settings/:key", Action: "PUT"},
			},
			Immutable: true,
		},
		{
			Role:     RoleFinance,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/orders/:id/ship", Action: "POST"},
				{Object: "/admin/orders/:id/refund", Action: "POST"},
				{Object: "/admin/orders/:id/cancel", Action: "POST"},
				{Object: "/admin/orders/:id/mark-paid", Action: "POST"},
				{Object: "/admin/members/:id/points", Action: "POST"},
				{Object: "/admin/reconcile", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     RoleVolunteerCoordinator,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/volunteers/:id/check-out", Action: "POST"},
				{Object: "/admin/volunteers/:id/audit", Action: "POST"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor); err != nil {
			return fmt.Errorf("create builtin role failed: %w", err)
		}
		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}

// IsBuiltinRole 判断是否为不可删除的预置角色
func IsBuiltinRole(role string) bool {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return false
	}
	for _, seed := range BuiltinRoleSeeds() {
		if seedRole, _ := NormalizeRole(seed.Role); seedRole == normalized {
			return seed.Immutable
		}
	}
	return false
}
