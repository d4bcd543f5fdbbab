package http

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clipstream/internal/storage"
)

// mediaAuth hands the client short-lived parameters for a direct CDN upload.
func (h *Handler) mediaAuth(c *gin.Context) {
	if h.signer == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "media signing not configured"})
		return
	}
	c.JSON(http.StatusOK, h.signer.AuthParams())
}

// mediaUpload is the server-side passthrough path for clients that cannot
// upload directly.
func (h *Handler) mediaUpload(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.internalError(c, "open uploaded file", err)
		return
	}
	defer src.Close()

	key := fmt.Sprintf("%s/%s/%s", h.keyPrefix, uuid.NewString(), filepath.Base(fileHeader.Filename))
	url, err := h.storage.UploadObject(c.Request.Context(), src, storage.UploadOptions{
		Bucket:      h.bucket,
		Key:         key,
		ContentType: mime.TypeByExtension(filepath.Ext(fileHeader.Filename)),
	})
	if err != nil {
		h.internalError(c, "upload media", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url, "key": key})
}

func (h *Handler) listObjects(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	prefix := c.Query("prefix")
	objects, err := h.storage.ListObjects(c.Request.Context(), h.bucket, prefix)
	if err != nil {
		h.internalError(c, "list storage objects", err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

// deleteObjects removes every stored object under the given prefix. The
// prefix is mandatory so a stray request cannot wipe the whole bucket.
func (h *Handler) deleteObjects(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	prefix := c.Query("prefix")
	if prefix == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prefix is required"})
		return
	}

	if err := h.storage.DeletePrefix(c.Request.Context(), h.bucket, prefix); err != nil {
		h.internalError(c, "delete storage objects", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "objects deleted", "prefix": prefix})
}
