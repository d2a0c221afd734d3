package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"backoffice_backend/internal/audit/repository"
	"backoffice_backend/internal/audit/service"
	"backoffice_backend/platform/httpkit"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
}

func (h *Handler) List(c *gin.Context) {
	filters := repository.ListFilters{
		EntityKind: c.Query("entity"),
		Status:     c.Query("status"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "pageSize", 25),
	}

	runs, total, err := h.svc.List(c.Request.Context(), filters)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{
		"runs":     runs,
		"page":     filters.Page,
		"pageSize": filters.PageSize,
		"total":    total,
	})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
