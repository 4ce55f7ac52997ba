package handlers

import (
	"net/http"
	"strings"

	"lexdesk-backend/models"
	"lexdesk-backend/service"

	"github.com/gin-gonic/gin"
)

const contextUserKey = "auth_user"

// Auth validates the bearer token and loads the authenticated user into the
// request context. Every tenant-scoped route sits behind this middleware;
// the tenant id is always taken from the user record, never from the request.
func Auth(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Token de acesso ausente")
			c.Abort()
			return
		}

		uid, err := users.VerifyToken(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Token de acesso inválido")
			c.Abort()
			return
		}

		user, err := users.ResolveUser(c.Request.Context(), uid)
		if err != nil {
			respondServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireAdmin restricts a route to tenant admins
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			respondError(c, http.StatusForbidden, "PERMISSION_DENIED", "Apenas administradores podem executar esta ação")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
