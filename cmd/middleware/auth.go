package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"eventify/internal/dto"
	"eventify/internal/model"
	"eventify/internal/service"
)

// Auth validates a Bearer access token signed with HS256 and stores the
// caller identity in the request context under service.IdentityKey.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.FieldIncorrect, Desc: "Missing bearer token"},
			})
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.FieldIncorrect, Desc: "Invalid token"},
			})
			return
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.FieldIncorrect, Desc: "Invalid claims"},
			})
			return
		}

		sub, ok := claims["sub"].(float64)
		if !ok || sub <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.FieldIncorrect, Desc: "Invalid subject claim"},
			})
			return
		}

		identity := model.Identity{UserID: int64(sub)}
		if name, ok := claims["name"].(string); ok {
			identity.Name = name
		}
		if email, ok := claims["email"].(string); ok {
			identity.Email = email
		}
		if role, ok := claims["role"].(string); ok {
			identity.Role = role
		}

		c.Set(service.IdentityKey, identity)
		c.Next()
	}
}

// RequireAdmin blocks callers whose token does not carry the admin role.
// Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(service.IdentityKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.FieldIncorrect, Desc: "Missing bearer token"},
			})
			return
		}
		id, ok := v.(model.Identity)
		if !ok || !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.FieldIncorrect, Desc: "Admin role required"},
			})
			return
		}
		c.Next()
	}
}
