package middleware

import (
	"errors"
	"net/http"
	"strings"

	autherrors "aisg-audit/internal/auth/errors"
	"aisg-audit/internal/auth/token"
	"aisg-audit/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func abortWith(c *gin.Context, status int, code, message string) {
	response.Error(c, status, code, message, nil)
	c.Abort()
}

// AuthMiddleware membaca access token dari header Bearer atau cookie access_token,
// lalu mengisi user_id, employee_id, company_id, dan role di gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			raw = ""
		}
		if raw == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				raw = cookie
			}
		}
		if raw == "" {
			abortWith(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token not found")
			return
		}

		claims, err := token.Parse(token.Secret(), raw, token.TypeAccess)
		if err != nil {
			errObj := autherrors.ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				errObj = autherrors.ErrTokenExpired
			}
			abortWith(c, errObj.HTTPStatus, errObj.Code, errObj.Message)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("employee_id", claims.EmployeeID)
		c.Set("company_id", claims.CompanyID)
		c.Set("role", strings.ToUpper(claims.Role))

		c.Next()
	}
}

func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("role")
		for _, role := range allowedRoles {
			if strings.EqualFold(userRole, role) {
				c.Next()
				return
			}
		}

		errObj := autherrors.ErrForbidden
		abortWith(c, errObj.HTTPStatus, errObj.Code, errObj.Message)
	}
}
