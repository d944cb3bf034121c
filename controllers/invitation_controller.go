package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slidewise/slidewise-server/middleware"
	"github.com/slidewise/slidewise-server/services"
)

type InvitationController struct {
	invitations services.InvitationService
}

func NewInvitationController(invitations services.InvitationService) *InvitationController {
	return &InvitationController{invitations: invitations}
}

func (ic *InvitationController) Create(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var req services.CreateInvitationInput
	if !bindJSON(c, &req) {
		return
	}
	inv, err := ic.invitations.Create(c.Request.Context(), user, req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (ic *InvitationController) ListMine(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	invs, err := ic.invitations.ListMine(c.Request.Context(), user)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, invs)
}

func (ic *InvitationController) Accept(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, services.ErrInvitationNotFound)
	if !ok {
		return
	}
	ws, err := ic.invitations.Accept(c.Request.Context(), user, id)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Invitation accepted successfully",
		"workspace": ws,
	})
}
