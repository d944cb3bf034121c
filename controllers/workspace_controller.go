package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slidewise/slidewise-server/middleware"
	"github.com/slidewise/slidewise-server/services"
)

type WorkspaceController struct {
	workspaces services.WorkspaceService
}

func NewWorkspaceController(workspaces services.WorkspaceService) *WorkspaceController {
	return &WorkspaceController{workspaces: workspaces}
}

func (wc *WorkspaceController) Get(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, services.ErrWorkspaceNotFound)
	if !ok {
		return
	}
	ws, err := wc.workspaces.Get(c.Request.Context(), id, user.ID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

type renameWorkspaceReq struct {
	Name string `json:"name"`
}

func (wc *WorkspaceController) Rename(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, services.ErrWorkspaceNotFound)
	if !ok {
		return
	}
	var req renameWorkspaceReq
	if !bindJSON(c, &req) {
		return
	}
	ws, err := wc.workspaces.Rename(c.Request.Context(), id, user.ID, req.Name)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (wc *WorkspaceController) ListInvitations(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, services.ErrWorkspaceNotFound)
	if !ok {
		return
	}
	invs, err := wc.workspaces.ListInvitations(c.Request.Context(), id, user.ID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, invs)
}
