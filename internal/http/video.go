package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clipstream/internal/domain"
	"clipstream/internal/service"
)

type transformationRequest struct {
	Height  int `json:"height" binding:"omitempty,min=1"`
	Width   int `json:"width" binding:"omitempty,min=1"`
	Quality int `json:"quality" binding:"omitempty,min=1,max=100"`
}

// createVideoRequest deliberately has no owner field: ownership comes from
// the session, and anything the client sends for it is ignored.
type createVideoRequest struct {
	Title          string                 `json:"title" binding:"required"`
	Description    string                 `json:"description"`
	VideoURL       string                 `json:"videoUrl" binding:"required"`
	ThumbnailURL   string                 `json:"thumbnailUrl" binding:"omitempty,imageurl"`
	Controls       *bool                  `json:"controls"`
	Transformation *transformationRequest `json:"transformation"`
}

func (h *Handler) createVideo(c *gin.Context) {
	userID, ok := sessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.CreateVideoInput{
		Title:        req.Title,
		Description:  req.Description,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		Controls:     req.Controls,
	}
	if req.Transformation != nil {
		input.Transformation = domain.Transformation{
			Height:  req.Transformation.Height,
			Width:   req.Transformation.Width,
			Quality: req.Transformation.Quality,
		}
	}

	video, err := h.videos.Create(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.internalError(c, "create video", err)
		return
	}

	c.JSON(http.StatusCreated, videoToResponse(*video))
}

func (h *Handler) listVideos(c *gin.Context) {
	videos, err := h.videos.ListAll(c.Request.Context())
	if err != nil {
		h.internalError(c, "list videos", err)
		return
	}

	resp := make([]VideoResponse, len(videos))
	for i := range videos {
		resp[i] = videoToResponse(videos[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) myVideos(c *gin.Context) {
	userID, ok := sessionUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	videos, err := h.videos.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, "list own videos", err)
		return
	}

	resp := make([]VideoResponse, len(videos))
	for i := range videos {
		resp[i] = videoToResponse(videos[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getVideo(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}

	video, err := h.videos.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		h.internalError(c, "fetch video", err)
		return
	}

	c.JSON(http.StatusOK, videoToResponse(*video))
}
