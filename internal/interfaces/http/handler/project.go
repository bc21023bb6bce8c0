package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/ryznreal/offers/internal/application/inventory"
	"github.com/ryznreal/offers/internal/interfaces/http/router"
)

// BrochureFormField is the multipart field carrying the brochure file
const BrochureFormField = "file"

// ProjectHandler handles project inventory endpoints
type ProjectHandler struct {
	BaseHandler
	projectService *inventoryapp.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *inventoryapp.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// Routes returns the /projects route group
func (h *ProjectHandler) Routes() *router.DomainGroup {
	projects := router.NewDomainGroup("projects", "/projects")
	projects.POST("", h.Create)
	projects.GET("", h.List)
	projects.GET("/:id", h.GetByID)
	projects.PUT("/:id", h.UpdateDetails)
	projects.PUT("/:id/structure", h.Restructure)
	projects.GET("/:id/stats", h.Stats)
	projects.GET("/:id/blueprint", h.Blueprint)
	projects.GET("/:id/bookings", h.ListBookings)
	projects.POST("/:id/brochure", h.UploadBrochure)
	projects.POST("/:id/assignments", h.AssignUnit)

	models := projects.Group("models", "/:id/models")
	models.POST("", h.AddModel)
	models.PUT("/:modelId", h.UpdateModel)
	models.DELETE("/:modelId", h.RemoveModel)

	units := projects.Group("units", "/:id/units")
	units.PUT("/:key/status", h.SetUnitStatus)
	units.POST("/:key/booking", h.RecordBooking)

	return projects
}

// RegisterRoutes implements router.RouteRegistrar
func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	h.Routes().RegisterRoutes(rg)
}

// Create handles POST /projects
// @ID           createProject
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateProjectRequest true "Project details and structure"
// @Success      201 {object} dto.Response{data=inventoryapp.ProjectResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, project)
}

// List handles GET /projects
// @ID           listProjects
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Param        filter query inventoryapp.ProjectListFilter false "Search and paging"
// @Success      200 {object} dto.Response{data=[]inventoryapp.ProjectListItemResponse}
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	var filter inventoryapp.ProjectListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	projects, total, err := h.projectService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page := filter.ToDomain()
	h.SuccessWithMeta(c, projects, total, page.Page, page.PageSize)
}

// GetByID handles GET /projects/:id
// @ID           getProject
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.ProjectResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// UpdateDetails handles PUT /projects/:id
// @ID           updateProject
// @Summary      Update project details
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body inventoryapp.UpdateProjectRequest true "Project details"
// @Success      200 {object} dto.Response{data=inventoryapp.ProjectResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id} [put]
func (h *ProjectHandler) UpdateDetails(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}
	var req inventoryapp.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := h.projectService.UpdateDetails(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// Restructure handles PUT /projects/:id/structure
// @ID           restructureProject
// @Summary      Change the building structure
// @Description  Counts above the ceilings are rejected. Mappings of units outside the new structure are dropped.
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body inventoryapp.RestructureRequest true "New structure"
// @Success      200 {object} dto.Response{data=inventoryapp.ProjectResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id}/structure [put]
func (h *ProjectHandler) Restructure(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}
	var req inventoryapp.RestructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := h.projectService.Restructure(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// AddModel handles POST /projects/:id/models
// @ID           addModel
// @Summary      Add a unit model
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body inventoryapp.ModelRequest true "Model"
// @Success      201 {object} dto.Response{data=inventoryapp.ProjectResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id}/models [post]
func (h *ProjectHandler) AddModel(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}
	var req inventoryapp.ModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := h.projectService.AddModel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, project)
}

// UpdateModel handles PUT /projects/:id/models/:modelId
// @ID           updateModel
// @Summary      Update a unit model
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        modelId path string true "Model ID"
// @Param        request body inventoryapp.ModelRequest true "Model"
// @Success      200 {object} dto.Response{data=inventoryapp.ProjectResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id}/models/{modelId} [put]
func (h *ProjectHandler) UpdateModel(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}
	var req inventoryapp.ModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := h.projectService.UpdateModel(c.Request.Context(), id, c.Param("modelId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// RemoveModel handles DELETE /projects/:id/models/:modelId. Units bound to
// the model are unassigned.
// @ID           removeModel
// @Summary      Remove a unit model
// @Tags         models
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        modelId path string true "Model ID"
// @Success      200 {object} dto.Response{data=inventoryapp.ProjectResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id}/models/{modelId} [delete]
func (h *ProjectHandler) RemoveModel(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	project, err := h.projectService.RemoveModel(c.Request.Context(), id, c.Param("modelId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// AssignUnit handles POST /projects/:id/assignments. Posting the model a
// unit is already bound to unbinds it.
// @ID           assignUnit
// @Summary      Assign or unassign a unit
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body inventoryapp.AssignUnitRequest true "Unit key and model"
// @Success      200 {object} dto.Response{data=inventoryapp.ProjectResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id}/assignments [post]
func (h *ProjectHandler) AssignUnit(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}
	var req inventoryapp.AssignUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := h.projectService.AssignUnit(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// SetUnitStatus handles PUT /projects/:id/units/:key/status
// @ID           setUnitStatus
// @Summary      Set unit availability
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        key path string true "Unit key" example(F2-U3)
// @Param        request body inventoryapp.SetUnitStatusRequest true "Availability"
// @Success      200 {object} dto.Response{data=inventoryapp.ProjectResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id}/units/{key}/status [put]
func (h *ProjectHandler) SetUnitStatus(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}
	var req inventoryapp.SetUnitStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := h.projectService.SetUnitStatus(c.Request.Context(), id, c.Param("key"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// RecordBooking handles POST /projects/:id/units/:key/booking
// @ID           recordBooking
// @Summary      Record a booking
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        key path string true "Unit key" example(F2-U3)
// @Param        request body inventoryapp.RecordBookingRequest true "Booking"
// @Success      200 {object} dto.Response{data=inventoryapp.ProjectResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id}/units/{key}/booking [post]
func (h *ProjectHandler) RecordBooking(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}
	var req inventoryapp.RecordBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := h.projectService.RecordBooking(c.Request.Context(), id, c.Param("key"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// ListBookings handles GET /projects/:id/bookings
// @ID           listBookings
// @Summary      List bookings of a project
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]inventoryapp.BookingResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id}/bookings [get]
func (h *ProjectHandler) ListBookings(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	bookings, err := h.projectService.ListBookings(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bookings)
}

// Stats handles GET /projects/:id/stats
// @ID           projectStats
// @Summary      Unit totals of a project
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.StatsResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id}/stats [get]
func (h *ProjectHandler) Stats(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	stats, err := h.projectService.Stats(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Blueprint handles GET /projects/:id/blueprint
// @ID           projectBlueprint
// @Summary      Unit grid of a project
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.BlueprintResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id}/blueprint [get]
func (h *ProjectHandler) Blueprint(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	blueprint, err := h.projectService.Blueprint(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, blueprint)
}

// UploadBrochure handles POST /projects/:id/brochure (multipart, field "file")
// @ID           uploadBrochure
// @Summary      Upload a project brochure
// @Tags         projects
// @Accept       mpfd
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        file formData file true "Brochure file"
// @Success      200 {object} dto.Response{data=inventoryapp.ProjectResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      413 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /projects/{id}/brochure [post]
func (h *ProjectHandler) UploadBrochure(c *gin.Context) {
	id, ok := h.parseProjectID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(BrochureFormField)
	if err != nil {
		h.BadRequest(c, "A brochure file is required in the \""+BrochureFormField+"\" field")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	project, err := h.projectService.UploadBrochure(c.Request.Context(), id, inventoryapp.BrochureUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}
