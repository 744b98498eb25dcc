package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/workforce-api/internal/middleware"
	"github.com/noah-isme/workforce-api/internal/models"
	"github.com/noah-isme/workforce-api/internal/service"
	appErrors "github.com/noah-isme/workforce-api/pkg/errors"
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

func actorFromContext(c *gin.Context) (service.Actor, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return service.Actor{}, appErrors.ErrUnauthorized
	}
	return service.Actor{
		UserID:         claims.UserID,
		OrganizationID: claims.OrganizationID,
		Role:           claims.Role,
	}, nil
}

// TenantLogFields adds the caller's organization and user to access logs.
func TenantLogFields(c *gin.Context) []zap.Field {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil
	}
	return []zap.Field{
		zap.String("organization_id", claims.OrganizationID),
		zap.String("user_id", claims.UserID),
	}
}
