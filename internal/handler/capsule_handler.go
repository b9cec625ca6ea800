package handler

import (
	"net/http"
	"strconv"

	"keepsake/internal/services"
	"keepsake/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type CapsuleHandler struct {
	service *services.CapsuleService
}

func NewCapsuleHandler(service *services.CapsuleService) *CapsuleHandler {
	return &CapsuleHandler{service: service}
}

func (h *CapsuleHandler) Create(c *gin.Context) {
	var req httpdto.CreateCapsuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	post, err := h.service.Create(c.Request.Context(), services.CreateCapsuleInput{
		AuthorID: userID,
		Title:    req.Title,
		Body:     req.Body,
		MediaURL: req.MediaURL,
		UnlockAt: req.UnlockAt,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(post))
}

func (h *CapsuleHandler) Timeline(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	posts, total, err := h.service.GetTimeline(c.Request.Context(), userID, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{
		"posts": posts,
		"total": total,
		"page":  page,
		"limit": limit,
	}))
}

func (h *CapsuleHandler) Get(c *gin.Context) {
	capsuleID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid capsule id", "INVALID_REQUEST"))
		return
	}
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	post, err := h.service.GetByID(c.Request.Context(), capsuleID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(post))
}

func (h *CapsuleHandler) Update(c *gin.Context) {
	capsuleID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid capsule id", "INVALID_REQUEST"))
		return
	}
	var req httpdto.UpdateCapsuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	post, err := h.service.Update(c.Request.Context(), capsuleID, userID, req.Title, req.Body, req.UnlockAt)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(post))
}

func (h *CapsuleHandler) Delete(c *gin.Context) {
	capsuleID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid capsule id", "INVALID_REQUEST"))
		return
	}
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), capsuleID, userID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": true}))
}
