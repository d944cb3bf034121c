package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/slidewise/slidewise-server/models"
)

// TokenHeader carries the bearer token on requests and on auth responses.
const TokenHeader = "auth-token"

const CtxUser = "user"

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthToken validates the auth-token header and injects the user into the context.
func AuthToken(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authenticate(c.Request.Context(), c.GetHeader(TokenHeader))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Set(CtxUser, user)
		c.Next()
	}
}

// CurrentUser returns the user injected by AuthToken.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}
