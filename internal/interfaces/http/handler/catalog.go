package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	listingapp "github.com/ryznreal/offers/internal/application/listing"
	"github.com/ryznreal/offers/internal/infrastructure/csvimport"
	"github.com/ryznreal/offers/internal/interfaces/http/dto"
	"github.com/ryznreal/offers/internal/interfaces/http/router"
)

const csvContentType = "text/csv"

// CatalogHandler serves the buyer catalog and the standalone properties
type CatalogHandler struct {
	BaseHandler
	catalogService *listingapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *listingapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// Routes returns the /catalog and /properties route groups
func (h *CatalogHandler) Routes() []*router.DomainGroup {
	catalog := router.NewDomainGroup("catalog", "/catalog")
	catalog.GET("", h.Catalog)

	properties := router.NewDomainGroup("properties", "/properties")
	properties.POST("", h.CreateProperty)
	properties.POST("/import", h.ImportProperties)
	properties.GET("/:id", h.GetProperty)
	properties.DELETE("/:id", h.DeleteProperty)

	return []*router.DomainGroup{catalog, properties}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	for _, group := range h.Routes() {
		group.RegisterRoutes(rg)
	}
}

// Catalog handles GET /catalog. Entries for project models are derived
// from current inventory on every call.
// @ID           getCatalog
// @Summary      Buyer catalog
// @Description  Standalone properties plus one entry per assigned project model, derived on every call.
// @Tags         catalog
// @Produce      json
// @Param        filter query listingapp.CatalogFilter false "Catalog filters"
// @Success      200 {object} dto.Response{data=listingapp.CatalogResponse}
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /catalog [get]
func (h *CatalogHandler) Catalog(c *gin.Context) {
	var filter listingapp.CatalogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	catalog, err := h.catalogService.Catalog(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, catalog)
}

// GetProperty handles GET /properties/:id for synthesized and standalone IDs
// @ID           getProperty
// @Summary      Get a property
// @Tags         properties
// @Produce      json
// @Param        id path string true "Property ID"
// @Success      200 {object} dto.Response{data=listingapp.PropertyResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /properties/{id} [get]
func (h *CatalogHandler) GetProperty(c *gin.Context) {
	prop, err := h.catalogService.GetProperty(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prop)
}

// CreateProperty handles POST /properties
// @ID           createProperty
// @Summary      Create a standalone property
// @Tags         properties
// @Accept       json
// @Produce      json
// @Param        request body listingapp.PropertyRequest true "Property"
// @Success      201 {object} dto.Response{data=listingapp.PropertyResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /properties [post]
func (h *CatalogHandler) CreateProperty(c *gin.Context) {
	var req listingapp.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	prop, err := h.catalogService.CreateProperty(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, prop)
}

// ImportProperties handles POST /properties/import. The batch is either a
// JSON body or a CSV file sent as text/csv with one property per row.
// @ID           importProperties
// @Summary      Import standalone properties
// @Tags         properties
// @Accept       json,text/csv
// @Produce      json
// @Param        request body listingapp.ImportPropertiesRequest true "Properties; a text/csv body is also accepted"
// @Success      201 {object} dto.Response{data=[]listingapp.PropertyResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /properties/import [post]
func (h *CatalogHandler) ImportProperties(c *gin.Context) {
	var req listingapp.ImportPropertiesRequest
	if c.ContentType() == csvContentType {
		props, err := csvimport.ParseProperties(c.Request.Body, csvimport.DefaultMaxRows)
		if err != nil {
			h.csvError(c, err)
			return
		}
		req.Properties = props
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			h.BindingError(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	props, err := h.catalogService.ImportProperties(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, props)
}

// DeleteProperty handles DELETE /properties/:id
// @ID           deleteProperty
// @Summary      Delete a standalone property
// @Tags         properties
// @Produce      json
// @Param        id path string true "Property ID"
// @Success      204
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /properties/{id} [delete]
func (h *CatalogHandler) DeleteProperty(c *gin.Context) {
	if err := h.catalogService.DeleteProperty(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// csvError answers 400. Row problems are listed one detail per cell.
func (h *CatalogHandler) csvError(c *gin.Context, err error) {
	var rowErrs *csvimport.RowErrors
	if !errors.As(err, &rowErrs) {
		h.BadRequest(c, "Invalid CSV file: "+err.Error())
		return
	}

	details := make([]dto.ValidationDetail, 0, len(rowErrs.Errors()))
	for _, re := range rowErrs.Errors() {
		field := fmt.Sprintf("row %d", re.Row)
		if re.Column != "" {
			field += "." + re.Column
		}
		details = append(details, dto.ValidationDetail{Field: field, Message: re.Message})
	}
	msg := fmt.Sprintf("CSV file has %d invalid value(s)", rowErrs.TotalCount())
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(msg, getRequestID(c), details))
}
