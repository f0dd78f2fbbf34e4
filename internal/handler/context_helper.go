package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ecolearn/ecolearn-api/internal/middleware"
	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/policy"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
	"github.com/ecolearn/ecolearn-api/pkg/response"
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

type actorResolver interface {
	ResolveActor(ctx context.Context, claims *models.JWTClaims) (policy.Actor, error)
}

// resolveActor turns the request's claims into a policy actor, writing the
// error response itself when that is not possible.
func resolveActor(c *gin.Context, resolver actorResolver) (policy.Actor, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return policy.Actor{}, false
	}
	actor, err := resolver.ResolveActor(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return policy.Actor{}, false
	}
	return actor, true
}
