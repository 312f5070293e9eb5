package personnel

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-mes/internal/ancestry"
	"go-mes/internal/audit"
	"go-mes/internal/shared/apperror"
	"go-mes/internal/shared/response"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func livenessQuery(c *gin.Context) audit.Liveness {
	if c.Query("include_deleted") == "true" {
		return audit.IncludeDeleted
	}
	return audit.LiveOnly
}

func walkQuery(c *gin.Context) ancestry.Mode {
	if c.DefaultQuery("walk", "live") == "raw" {
		return ancestry.Raw
	}
	return ancestry.Live
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) AttachSpecialization(c *gin.Context) {
	var req AttachSpecializationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.AttachSpecialization(c.Request.Context(), c.Param("sap_id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Get(c *gin.Context) {
	resp, err := h.service.GetUser(c.Request.Context(), c.Param("sap_id"), livenessQuery(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	resp, err := h.service.ListUsers(c.Request.Context(), livenessQuery(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.UpdateUser(c.Request.Context(), c.Param("sap_id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) SoftDelete(c *gin.Context) {
	if err := h.service.SoftDeleteUser(c.Request.Context(), c.Param("sap_id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) Ancestors(c *gin.Context) {
	resp, err := h.service.Resolve(
		c.Request.Context(),
		c.Param("sap_id"),
		c.Param("target"),
		walkQuery(c),
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
