package shift

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
	var req CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Get(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context(), c.Param("id"), livenessQuery(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// List filters by plant_id or date; exactly one is required.
func (h *Handler) List(c *gin.Context) {
	plantID := c.Query("plant_id")
	date := c.Query("date")

	var (
		resp []ShiftResponse
		err  error
	)
	switch {
	case plantID != "":
		resp, err = h.service.ListByPlant(c.Request.Context(), plantID, livenessQuery(c))
	case date != "":
		resp, err = h.service.ListByDate(c.Request.Context(), date, livenessQuery(c))
	default:
		writeServiceError(c, apperror.Validation("either plant_id or date is required"))
		return
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) SoftDelete(c *gin.Context) {
	if err := h.service.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) Ancestors(c *gin.Context) {
	resp, err := h.service.Resolve(
		c.Request.Context(),
		c.Param("id"),
		c.Param("target"),
		walkQuery(c),
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
