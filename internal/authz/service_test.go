package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	svc, err := NewService(db)
	require.NoError(t, err)
	return svc
}

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	require.NoError(t, svc.GrantRolePolicy("ops", "/admin/coupon-templates/:id/audit", "POST"))
	require.NoError(t, svc.SetAdminRoles(1, []string{"ops"}))

	allow, err := svc.EnforceAdmin(1, "/api/v1/admin/coupon-templates/42/audit", "post")
	require.NoError(t, err)
	require.True(t, allow)

	allow, err = svc.EnforceAdmin(1, "/api/v1/admin/coupon-templates/42/issue", "POST")
	require.NoError(t, err)
	require.False(t, allow)

	require.NoError(t, svc.RevokeRolePolicy("ops", "/admin/coupon-templates/:id/audit", "POST"))
	allow, err = svc.EnforceAdmin(1, "/api/v1/admin/coupon-templates/42/audit", "POST")
	require.NoError(t, err)
	require.False(t, allow)
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	require.NoError(t, svc.GrantRolePolicy("ops", "/admin/goods", "POST"))
	require.NoError(t, svc.GrantRolePolicy("finance", "/admin/reconcile", "POST"))

	require.NoError(t, svc.SetAdminRoles(2, []string{"ops"}))
	roles, err := svc.GetAdminRoles(2)
	require.NoError(t, err)
	require.Equal(t, []string{"role:ops"}, roles)

	require.NoError(t, svc.SetAdminRoles(2, []string{"finance"}))
	roles, err = svc.GetAdminRoles(2)
	require.NoError(t, err)
	require.Equal(t, []string{"role:finance"}, roles)

	allow, err := svc.EnforceAdmin(2, "/admin/goods", "POST")
	require.NoError(t, err)
	require.False(t, allow)
	allow, err = svc.EnforceAdmin(2, "/admin/reconcile", "POST")
	require.NoError(t, err)
	require.True(t, allow)
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/orders/:id", want: "/admin/orders/:id"},
		{in: "/admin/orders/:id", want: "/admin/orders/:id"},
		{in: "admin/orders", want: "/admin/orders"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		require.Equal(t, item.want, NormalizeObject(item.in), item.in)
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	require.NoError(t, svc.BootstrapBuiltinRoles())
	require.NoError(t, svc.BootstrapBuiltinRoles())

	roles, err := svc.ListRoles()
	require.NoError(t, err)
	require.Subset(t, roles, []string{
		"role:readonly_auditor",
		"role:operations",
		"role:finance",
		"role:volunteer_coordinator",
	})

	require.NoError(t, svc.AssignAdminRole(3, RoleFinance))

	allow, err := svc.EnforceAdmin(3, "/api/v1/admin/orders", "GET")
	require.NoError(t, err)
	require.True(t, allow, "inherited readonly access")

	allow, err = svc.EnforceAdmin(3, "/api/v1/admin/orders/7/refund", "POST")
	require.NoError(t, err)
	require.True(t, allow)

	allow, err = svc.EnforceAdmin(3, "/api/v1/admin/coupon-templates", "POST")
	require.NoError(t, err)
	require.False(t, allow)

	require.True(t, IsBuiltinRole("finance"))
	require.False(t, IsBuiltinRole("custom"))
}
