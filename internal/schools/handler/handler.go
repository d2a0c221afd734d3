package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"backoffice_backend/internal/schools/service"
	"backoffice_backend/internal/schools/transport"
	"backoffice_backend/platform/httpkit"
	"backoffice_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc         *service.Service
	val         *validator.Validator
	maxFileSize int64
}

func New(svc *service.Service, val *validator.Validator, maxFileSize int64) *Handler {
	return &Handler{svc: svc, val: val, maxFileSize: maxFileSize}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/import", httpkit.RequireRole("admin"), h.Import)
	rg.GET("/:documentId", h.Get)
	rg.PUT("/:documentId", h.Update)
	rg.DELETE("/:documentId", httpkit.RequireRole("admin"), h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	filters := transport.ListSchoolsFilters{
		Region:   c.Query("region"),
		Comuna:   c.Query("comuna"),
		Name:     c.Query("nombre"),
		RBD:      c.Query("rbd"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 25),
	}

	resp, err := h.svc.List(c.Request.Context(), filters)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Get(c *gin.Context) {
	school, err := h.svc.Get(c.Request.Context(), c.Param("documentId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SchoolResponse{School: school})
}

func (h *Handler) Create(c *gin.Context) {
	var input transport.SchoolInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(input); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	school, err := h.svc.Create(c.Request.Context(), input)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.SchoolResponse{School: school})
}

func (h *Handler) Update(c *gin.Context) {
	var input transport.SchoolInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(input); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	school, err := h.svc.Update(c.Request.Context(), c.Param("documentId"), input)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SchoolResponse{School: school})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("documentId")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Import accepts a multipart spreadsheet upload under the "file" field.
func (h *Handler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "a file upload is required", nil)
		return
	}
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		httpkit.Error(c, http.StatusBadRequest, "the uploaded file is too large", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not open the uploaded file", nil)
		return
	}
	defer file.Close()

	result, err := h.svc.Import(c.Request.Context(), fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), file)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
