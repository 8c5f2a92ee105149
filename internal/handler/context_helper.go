package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-enroll-api/internal/middleware"
	"github.com/noah-isme/campus-enroll-api/internal/models"
)

// CurrentUser returns the JWT claims attached by the auth middleware, or nil.
func CurrentUser(c *gin.Context) *models.JWTClaims {
	v, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := v.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
