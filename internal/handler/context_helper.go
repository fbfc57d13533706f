package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dentalcare-api/internal/middleware"
	"github.com/noah-isme/dentalcare-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// queryInt reads an integer query parameter, falling back on absent or malformed values.
func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
