package attendance

import (
	"net/http"
	"strconv"

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
	var req CreateAttendanceRequest
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

// List filters by shift_id or member_id; exactly one is required.
func (h *Handler) List(c *gin.Context) {
	shiftID := c.Query("shift_id")
	memberID := c.Query("member_id")

	var (
		rows []AttendanceResponse
		err  error
	)
	switch {
	case shiftID != "":
		rows, err = h.service.ListByShift(c.Request.Context(), shiftID, livenessQuery(c))
	case memberID != "":
		rows, err = h.service.ListByMember(c.Request.Context(), memberID, livenessQuery(c))
	default:
		writeServiceError(c, apperror.Validation("either shift_id or member_id is required"))
		return
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateAttendanceRequest
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

func (h *Handler) AssignedAncestors(c *gin.Context) {
	resp, err := h.service.ResolveAssigned(
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

func (h *Handler) WorkingAncestors(c *gin.Context) {
	resp, err := h.service.ResolveWorking(
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

func (h *Handler) CreateType(c *gin.Context) {
	var req CreateAttendanceTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CreateType(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListTypes(c *gin.Context) {
	resp, err := h.service.ListTypes(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) SoftDeleteType(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeServiceError(c, apperror.InvalidField("id"))
		return
	}
	if err := h.service.SoftDeleteType(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
