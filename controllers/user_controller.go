package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/slidewise/slidewise-server/middleware"
	"github.com/slidewise/slidewise-server/services"
)

// MaxLogoSize caps logo uploads.
const MaxLogoSize = 5 << 20

// maxProfileBody leaves room for the text fields and multipart framing.
const maxProfileBody = MaxLogoSize + 64<<10

var errLogoTooLarge = services.Validation(fmt.Sprintf(`"logo" must be at most %d bytes`, MaxLogoSize))

type UserController struct {
	users services.UserService
}

func NewUserController(users services.UserService) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) Me(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	profile, err := uc.users.Profile(c.Request.Context(), user.ID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type updateMeReq struct {
	WorkspaceID   string  `json:"workspaceId"`
	WorkspaceName *string `json:"workspaceName"`
}

// UpdateMe accepts multipart (workspaceName, workspaceId, logo) or JSON.
func (uc *UserController) UpdateMe(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req updateMeReq
	var in services.ProfileUpdate
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxProfileBody)
		if err := c.Request.ParseMultipartForm(MaxLogoSize); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				middleware.AbortWithError(c, errLogoTooLarge)
				return
			}
			middleware.AbortWithError(c, errInvalidBody)
			return
		}
		req.WorkspaceID = c.PostForm("workspaceId")
		if name, ok := c.GetPostForm("workspaceName"); ok {
			req.WorkspaceName = &name
		}
		fh, err := c.FormFile("logo")
		if err == nil {
			if fh.Size > MaxLogoSize {
				middleware.AbortWithError(c, errLogoTooLarge)
				return
			}
			f, err := fh.Open()
			if err != nil {
				middleware.AbortWithError(c, errInvalidBody)
				return
			}
			defer f.Close()
			in.Logo = &services.Upload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Body:        f,
			}
		} else if err != http.ErrMissingFile {
			middleware.AbortWithError(c, errInvalidBody)
			return
		}
	} else if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req) {
			return
		}
	}

	in.WorkspaceName = req.WorkspaceName
	if req.WorkspaceID != "" {
		id, err := uuid.Parse(req.WorkspaceID)
		if err != nil {
			middleware.AbortWithError(c, services.ErrWorkspaceNotFound)
			return
		}
		in.WorkspaceID = &id
	}

	profile, err := uc.users.UpdateProfile(c.Request.Context(), user.ID, in)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (uc *UserController) ChangePassword(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var req services.ChangePasswordInput
	if !bindJSON(c, &req) {
		return
	}
	if err := uc.users.ChangePassword(c.Request.Context(), user.ID, req); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully."})
}
