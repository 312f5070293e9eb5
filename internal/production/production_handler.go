package production

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
	var req CreateProductionRequest
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

// List filters by line_id or shift_id; exactly one is required.
func (h *Handler) List(c *gin.Context) {
	lineID := c.Query("line_id")
	shiftID := c.Query("shift_id")

	var (
		rows []ProductionResponse
		err  error
	)
	switch {
	case lineID != "":
		rows, err = h.service.ListByLine(c.Request.Context(), lineID, livenessQuery(c))
	case shiftID != "":
		rows, err = h.service.ListByShift(c.Request.Context(), shiftID, livenessQuery(c))
	default:
		writeServiceError(c, apperror.Validation("either line_id or shift_id is required"))
		return
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateProductionRequest
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

func (h *Handler) CreateLoss(c *gin.Context) {
	var req CreateLossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CreateLoss(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetLoss(c *gin.Context) {
	resp, err := h.service.GetLoss(c.Request.Context(), c.Param("id"), livenessQuery(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListLosses(c *gin.Context) {
	productionID := c.Query("production_id")
	if productionID == "" {
		writeServiceError(c, apperror.RequiredField("production_id"))
		return
	}

	rows, err := h.service.ListLossesByProduction(c.Request.Context(), productionID, livenessQuery(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows, nil)
}

func (h *Handler) SoftDeleteLoss(c *gin.Context) {
	if err := h.service.SoftDeleteLoss(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) LossAncestors(c *gin.Context) {
	resp, err := h.service.ResolveLoss(
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

func (h *Handler) CreateLossReason(c *gin.Context) {
	var req CreateLossReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CreateLossReason(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListLossReasons(c *gin.Context) {
	resp, err := h.service.ListLossReasons(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) SoftDeleteLossReason(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeServiceError(c, apperror.InvalidField("id"))
		return
	}
	if err := h.service.SoftDeleteLossReason(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
