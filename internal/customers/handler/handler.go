package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"backoffice_backend/internal/customers/service"
	"backoffice_backend/internal/customers/transport"
	"backoffice_backend/platform/httpkit"
	"backoffice_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Upsert)
	rg.GET("/:documentId", h.Get)
	rg.PUT("/:documentId", h.Update)
	rg.DELETE("/:documentId", httpkit.RequireRole("admin"), h.Delete)
}

func (h *Handler) Upsert(c *gin.Context) {
	var req transport.UpsertCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.Upsert(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, resp)
}

func (h *Handler) Update(c *gin.Context) {
	var req transport.UpsertCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), c.Param("documentId"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Get(c *gin.Context) {
	person, err := h.svc.Get(c.Request.Context(), c.Param("documentId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.CustomerResponse{Person: person})
}

func (h *Handler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "pageSize", 25)

	people, pagination, err := h.svc.List(c.Request.Context(), page, pageSize)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ListCustomersResponse{
		Customers: people,
		Page:      pagination.Page,
		PageSize:  pagination.PageSize,
		Total:     pagination.Total,
	})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("documentId")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
