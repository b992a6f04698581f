package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fanhub/fanhub-core/internal/db/models"
)

const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"

	principalContextKey = "principal"
)

// Principal identifies the authenticated caller as asserted by the
// fronting auth proxy. Requests without identity headers are anonymous
// and carry no principal.
type Principal struct {
	SubjectKey string
	Role       string
}

// IsAdmin reports whether the principal carries an administrative role.
func (p *Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin || p.Role == models.RoleSuperAdmin
}

// Identity reads the identity headers into the request context. It
// never rejects: anonymous requests pass through without a principal
// and each handler decides what anonymity means for it.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		subjectKey := c.GetHeader(headerUserID)
		if subjectKey != "" {
			role := c.GetHeader(headerUserRole)
			if role == "" {
				role = models.RoleUser
			}
			c.Set(principalContextKey, &Principal{SubjectKey: subjectKey, Role: role})
		}
		c.Next()
	}
}

// PrincipalFrom returns the request's principal, or nil for anonymous
// requests.
func PrincipalFrom(c *gin.Context) *Principal {
	v, ok := c.Get(principalContextKey)
	if !ok {
		return nil
	}
	p, ok := v.(*Principal)
	if !ok {
		return nil
	}
	return p
}
