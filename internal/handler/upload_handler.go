package handler

import (
	"net/http"

	"keepsake/internal/services"
	"keepsake/internal/storage"
	"keepsake/internal/transport/httpdto"
	keepsake_errors "keepsake/pkg/errors"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps attachment size at 25 MB.
const maxUploadBytes = 25 << 20

type UploadHandler struct {
	storage *storage.Client
}

func NewUploadHandler(storage *storage.Client) *UploadHandler {
	return &UploadHandler{storage: storage}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	if h.storage == nil {
		abortWithError(c, keepsake_errors.ErrServiceUnavailable)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("file is required", "INVALID_REQUEST"))
		return
	}
	if header.Size > maxUploadBytes {
		abortWithError(c, keepsake_errors.ErrTooLarge)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if err := h.storage.ValidateContentType(contentType); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_REQUEST"))
		return
	}

	file, err := header.Open()
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer file.Close()

	fileURL, err := h.storage.Upload(c.Request.Context(), userID, header.Filename, contentType, file)
	if err != nil {
		abortWithError(c, keepsake_errors.ErrUploadFailed)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{
		"url":          fileURL,
		"content_type": contentType,
		"size":         header.Size,
	}))
}
