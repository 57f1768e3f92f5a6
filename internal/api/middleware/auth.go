package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stocksim/api/internal/api/handler/v1/response"
	"github.com/stocksim/api/internal/pkg/jwthelper"
)

// ContextKeyUserID is the gin context key under which the authenticated
// user's id is injected for downstream handlers.
const ContextKeyUserID = "userID"

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// VerifyJWT rejects requests without a valid bearer token and stores the
// authenticated user id in the request context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")

		segments := strings.Split(header, " ")
		if len(segments) != 2 || segments[0] != "Bearer" {
			response.RenderErr(ctx, response.ErrUnauthorized(errors.New("missing bearer token")))
			ctx.Abort()

			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, segments[1], ctx.Request.UserAgent())
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			ctx.Abort()

			return
		}

		ctx.Set(ContextKeyUserID, claims.UserID)
		ctx.Next()
	}
}
