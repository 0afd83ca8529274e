package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-api/internal/models"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
	"github.com/noah-isme/hostel-api/pkg/response"
)

// Self lets the caller through when the :id path parameter is their own profile ID.
const Self = "SELF"

type policy struct {
	roles     map[models.UserRole]struct{}
	allowSelf bool
}

func newPolicy(allowed []string) policy {
	p := policy{roles: make(map[models.UserRole]struct{}, len(allowed))}
	for _, a := range allowed {
		if a == Self {
			p.allowSelf = true
			continue
		}
		p.roles[models.UserRole(a)] = struct{}{}
	}
	return p
}

func (p policy) permits(c *gin.Context, claims *models.JWTClaims) bool {
	if _, ok := p.roles[claims.Role]; ok {
		return true
	}
	if !p.allowSelf || claims.UserID == "" {
		return false
	}
	return c.Param("id") == claims.UserID
}

// RBAC admits callers whose role is listed, or who own the :id resource when Self is listed.
func RBAC(allowed ...string) gin.HandlerFunc {
	p := newPolicy(allowed)
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !p.permits(c, claims) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *models.JWTClaims {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*models.JWTClaims)
	return claims
}

func roleNames(roles []models.UserRole) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// RequireRoles admits only the listed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return RBAC(roleNames(roles)...)
}

// RequireSelfOr admits the listed roles plus the owner of the :id resource.
func RequireSelfOr(roles ...models.UserRole) gin.HandlerFunc {
	return RBAC(append(roleNames(roles), Self)...)
}

// RequireStaff admits staff and admins.
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(models.RoleStaff, models.RoleAdmin)
}
