package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/slidewise/slidewise-server/middleware"
	"github.com/slidewise/slidewise-server/models"
	"github.com/slidewise/slidewise-server/services"
)

var errInvalidBody = services.Validation("Invalid request body")

// mustUser returns the authenticated user; routes using it sit behind AuthToken.
func mustUser(c *gin.Context) (*models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.AbortWithError(c, services.ErrMissingToken)
		return nil, false
	}
	return u, true
}

// pathID parses the :id param; a malformed id is reported as notFound.
func pathID(c *gin.Context, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, notFound)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.AbortWithError(c, errInvalidBody)
		return false
	}
	return true
}
