package http

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"clipstream/internal/auth"
	"clipstream/internal/domain"
	"clipstream/internal/media"
	"clipstream/internal/service"
	"clipstream/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	videos     service.VideoService
	issuer     *auth.Issuer
	signer     *media.Signer
	storage    storage.Service
	bucket     string
	keyPrefix  string
	cookieName string
	logger     *logrus.Logger
}

func NewHandler(
	users service.UserService,
	videos service.VideoService,
	issuer *auth.Issuer,
	signer *media.Signer,
	store storage.Service,
	bucket, keyPrefix, cookieName string,
	logger *logrus.Logger,
) *Handler {
	registerValidations()
	return &Handler{
		users:      users,
		videos:     videos,
		issuer:     issuer,
		signer:     signer,
		storage:    store,
		bucket:     bucket,
		keyPrefix:  keyPrefix,
		cookieName: cookieName,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/register/username", h.usernameAvailability)
		authGroup.POST("/login", h.login)
		authGroup.POST("/logout", h.logout)
		authGroup.GET("/me", h.authRequired(), h.me)
		authGroup.PUT("/me", h.authRequired(), h.updateProfile)
	}

	videos := router.Group("/videos")
	{
		videos.GET("", h.listVideos)
		videos.GET("/:id", h.getVideo)
		videos.GET("/me", h.authRequired(), h.myVideos)
		videos.POST("", h.authRequired(), h.createVideo)
	}

	mediaGroup := router.Group("/media", h.authRequired())
	{
		mediaGroup.GET("/auth", h.mediaAuth)
		mediaGroup.POST("/upload", h.mediaUpload)
		mediaGroup.GET("/objects", h.listObjects)
		mediaGroup.DELETE("/objects", h.deleteObjects)
	}

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
}

var imageURLPattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp)(\?.*)?$`)

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("imageurl", func(fl validator.FieldLevel) bool {
			return imageURLPattern.MatchString(fl.Field().String())
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// internalError hides backend detail from clients; the cause only goes to the log.
func (h *Handler) internalError(c *gin.Context, action string, err error) {
	if h.logger != nil {
		h.logger.WithError(err).Errorf("%s failed", action)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

type UserResponse struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

func userToResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		Username:       user.Username,
		ProfilePicture: user.ProfilePicture,
	}
	if !user.CreatedAt.IsZero() {
		resp.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	}
	if !user.UpdatedAt.IsZero() {
		resp.UpdatedAt = user.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

type TransformationResponse struct {
	Height  int `json:"height"`
	Width   int `json:"width"`
	Quality int `json:"quality,omitempty"`
}

type VideoResponse struct {
	ID             int64                  `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	VideoURL       string                 `json:"videoUrl"`
	ThumbnailURL   string                 `json:"thumbnailUrl,omitempty"`
	Controls       bool                   `json:"controls"`
	Transformation TransformationResponse `json:"transformation"`
	OwnerID        int64                  `json:"ownerId"`
	ViewsCount     int64                  `json:"viewsCount"`
	LikesCount     int64                  `json:"likesCount"`
	DislikesCount  int64                  `json:"dislikesCount"`
	SavedCount     int64                  `json:"savedCount"`
	CreatedAt      string                 `json:"created_at"`
	UpdatedAt      string                 `json:"updated_at"`
}

func videoToResponse(video domain.Video) VideoResponse {
	return VideoResponse{
		ID:           video.ID,
		Title:        video.Title,
		Description:  video.Description,
		VideoURL:     video.VideoURL,
		ThumbnailURL: video.ThumbnailURL,
		Controls:     video.Controls,
		Transformation: TransformationResponse{
			Height:  video.Transformation.Height,
			Width:   video.Transformation.Width,
			Quality: video.Transformation.Quality,
		},
		OwnerID:       video.OwnerID,
		ViewsCount:    video.ViewsCount,
		LikesCount:    video.LikesCount,
		DislikesCount: video.DislikesCount,
		SavedCount:    video.SavedCount,
		CreatedAt:     video.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     video.UpdatedAt.Format(time.RFC3339),
	}
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
