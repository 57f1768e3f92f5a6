package v1

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/stocksim/api/internal/api/handler/v1/response"
	"github.com/stocksim/api/internal/api/middleware"
)

// getUserIDFromContext returns the authenticated user id injected by the
// JWT middleware.
func getUserIDFromContext(ctx *gin.Context) (uint, *response.Err) {
	value, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return 0, response.ErrUnauthorized(errors.New("user not authenticated"))
	}

	userID, ok := value.(uint)
	if !ok || userID == 0 {
		return 0, response.ErrUnauthorized(errors.New("invalid user identity"))
	}

	return userID, nil
}
