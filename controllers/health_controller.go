package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/slidewise/slidewise-server/store"
)

type HealthController struct {
	db store.Pinger
}

func NewHealthController(db store.Pinger) *HealthController {
	return &HealthController{db: db}
}

func (hc *HealthController) Root(c *gin.Context) {
	c.String(http.StatusOK, "SlideWise server is running")
}

func (hc *HealthController) HealthCheck(c *gin.Context) {
	response := gin.H{
		"status":  "ok",
		"message": "Service is healthy",
		"db":      "ok",
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := hc.db.Ping(ctx); err != nil {
		response["status"] = "error"
		response["db"] = "error: cannot connect to DB"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
