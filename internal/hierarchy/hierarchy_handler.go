package hierarchy

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
	level := c.Param("level")

	lvl, err := ParseLevel(level)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	var (
		resp NodeResponse
		serr error
	)
	if lvl == ancestry.LevelPlant {
		var req CreatePlantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeServiceError(c, apperror.MapValidationError(err))
			return
		}
		resp, serr = h.service.CreatePlant(c.Request.Context(), req)
	} else {
		var req CreateNodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeServiceError(c, apperror.MapValidationError(err))
			return
		}
		switch lvl {
		case ancestry.LevelZone:
			resp, serr = h.service.CreateZone(c.Request.Context(), req)
		case ancestry.LevelLoop:
			resp, serr = h.service.CreateLoop(c.Request.Context(), req)
		case ancestry.LevelLine:
			resp, serr = h.service.CreateLine(c.Request.Context(), req)
		default:
			resp, serr = h.service.CreateCell(c.Request.Context(), req)
		}
	}
	if serr != nil {
		writeServiceError(c, serr)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Get(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context(), c.Param("level"), c.Param("id"), livenessQuery(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	level := c.Param("level")

	lvl, err := ParseLevel(level)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	var (
		rows []NodeResponse
		serr error
	)
	if lvl == ancestry.LevelPlant {
		rows, serr = h.service.ListPlants(c.Request.Context(), livenessQuery(c))
	} else {
		parentID := c.Query("parent_id")
		if parentID == "" {
			writeServiceError(c, apperror.RequiredField("parent_id"))
			return
		}
		rows, serr = h.service.ListChildren(c.Request.Context(), level, parentID, livenessQuery(c))
	}
	if serr != nil {
		writeServiceError(c, serr)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if pageSize < 1 {
		pageSize = 50
	}

	total := int64(len(rows))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, rows[start:end], &meta)
}

func (h *Handler) Rename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Rename(c.Request.Context(), c.Param("level"), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reparent(c *gin.Context) {
	var req ReparentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Reparent(c.Request.Context(), c.Param("level"), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) SoftDelete(c *gin.Context) {
	if err := h.service.SoftDelete(c.Request.Context(), c.Param("level"), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) Ancestors(c *gin.Context) {
	resp, err := h.service.Resolve(
		c.Request.Context(),
		c.Param("level"),
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
