package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slidewise/slidewise-server/middleware"
	"github.com/slidewise/slidewise-server/services"
)

type PresentationController struct {
	presentations services.PresentationService
}

func NewPresentationController(presentations services.PresentationService) *PresentationController {
	return &PresentationController{presentations: presentations}
}

// List handles GET /api/presentations?workspaceId=...
func (pc *PresentationController) List(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	ps, err := pc.presentations.List(c.Request.Context(), user.ID, c.Query("workspaceId"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

func (pc *PresentationController) Get(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, services.ErrPresentationNotFound)
	if !ok {
		return
	}
	p, err := pc.presentations.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pc *PresentationController) Create(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var req services.CreatePresentationInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := pc.presentations.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (pc *PresentationController) Update(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, services.ErrPresentationNotFound)
	if !ok {
		return
	}
	var req services.UpdatePresentationInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := pc.presentations.Update(c.Request.Context(), user.ID, id, req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pc *PresentationController) Delete(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, services.ErrPresentationNotFound)
	if !ok {
		return
	}
	if err := pc.presentations.Delete(c.Request.Context(), user.ID, id); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Presentation deleted successfully"})
}

type storylineReq struct {
	Topic string `json:"topic"`
}

func (pc *PresentationController) GenerateStoryline(c *gin.Context) {
	if _, ok := mustUser(c); !ok {
		return
	}
	var req storylineReq
	if !bindJSON(c, &req) {
		return
	}
	storyline, err := pc.presentations.GenerateStoryline(c.Request.Context(), req.Topic)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, storyline)
}

func (pc *PresentationController) Generate(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var req services.GeneratePresentationInput
	if !bindJSON(c, &req) {
		return
	}
	p, deck, err := pc.presentations.GeneratePresentation(c.Request.Context(), user.ID, req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"presentation": p,
		"aiContent":    deck,
	})
}

func (pc *PresentationController) GenerateSlide(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, services.ErrPresentationNotFound)
	if !ok {
		return
	}
	var req services.GenerateSlideInput
	if !bindJSON(c, &req) {
		return
	}
	content, slideType, err := pc.presentations.GenerateSlideContent(c.Request.Context(), user.ID, id, req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"slideContent": content,
		"slideType":    slideType,
	})
}

type imageReq struct {
	Prompt string `json:"prompt"`
}

func (pc *PresentationController) GenerateImage(c *gin.Context) {
	if _, ok := mustUser(c); !ok {
		return
	}
	var req imageReq
	if !bindJSON(c, &req) {
		return
	}
	url, err := pc.presentations.GenerateImage(c.Request.Context(), req.Prompt)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}
