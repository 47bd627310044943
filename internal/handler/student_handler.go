package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/athlete-records-api/internal/form"
	"github.com/noah-isme/athlete-records-api/internal/middleware"
	"github.com/noah-isme/athlete-records-api/internal/models"
	"github.com/noah-isme/athlete-records-api/internal/service"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
	"github.com/noah-isme/athlete-records-api/pkg/response"
)

type studentService interface {
	Search(ctx context.Context, nationalID string) (*service.SearchResult, error)
	Detail(ctx context.Context, nationalID string) (*service.StudentView, error)
	Create(ctx context.Context, state form.WorkingCopy) (*service.SubmitResult, error)
	Update(ctx context.Context, nationalID string, state form.WorkingCopy) (*service.SubmitResult, error)
}

type listService interface {
	Load(ctx context.Context, filter models.ListFilter) (*service.ListPage, bool)
	DeleteFromPage(ctx context.Context, page *service.ListPage, id string, confirmed bool) error
}

type printService interface {
	PrintStudent(view *service.StudentView) ([]byte, error)
	ExportList(page *service.ListPage, format service.ExportFormat) ([]byte, error)
}

// StudentHandler exposes the home search, list, detail and stateless form endpoints.
type StudentHandler struct {
	students studentService
	list     listService
	printer  printService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, list listService, printer printService) *StudentHandler {
	return &StudentHandler{students: students, list: list, printer: printer}
}

func listFilter(c *gin.Context) models.ListFilter {
	return models.ListFilter{
		Search: c.Query("search"),
		Sport:  c.Query("sport"),
		Belt:   c.Query("belt"),
	}
}

// Search godoc
// @Summary Find a student by national ID
// @Tags Students
// @Produce json
// @Param cedula query string true "National ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /students/search [get]
func (h *StudentHandler) Search(c *gin.Context) {
	result, err := h.students.Search(c.Request.Context(), c.Query("cedula"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// List godoc
// @Summary List students
// @Description Rows, filter options and the filtered subset. Sources that failed are reported in meta.warnings.
// @Tags Students
// @Produce json
// @Param search query string false "Name (case-insensitive) or national ID fragment"
// @Param sport query string false "Exact sport name"
// @Param belt query string false "Exact belt colour"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	page, hit := h.list.Load(c.Request.Context(), listFilter(c))
	middleware.SetCacheHit(c, hit)
	middleware.SetWarnings(c, page.Warnings)
	response.JSON(c, http.StatusOK, page, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export the filtered student list
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param search query string false "Name or national ID fragment"
// @Param sport query string false "Exact sport name"
// @Param belt query string false "Exact belt colour"
// @Success 200 {file} file
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	page, _ := h.list.Load(c.Request.Context(), listFilter(c))
	if _, failed := page.Warnings["students"]; failed {
		response.Error(c, appErrors.Clone(appErrors.ErrGateway, page.Warnings["students"]))
		return
	}
	body, err := h.printer.ExportList(page, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "estudiantes-" + time.Now().Format("20060102") + "." + string(format)
	response.File(c, format.ContentType(), filename, false, body)
}

// Delete godoc
// @Summary Delete a student
// @Description Requires confirm=true. The row leaves the returned list only after the data service accepted the deletion.
// @Tags Students
// @Produce json
// @Param id path string true "Internal student ID (UUID)"
// @Param confirm query bool true "Explicit confirmation"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	page, _ := h.list.Load(c.Request.Context(), listFilter(c))
	if err := h.list.DeleteFromPage(c.Request.Context(), page, c.Param("id"), confirmed); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// Get godoc
// @Summary Student detail
// @Tags Students
// @Produce json
// @Param cedula path string true "National ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{cedula} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	view, err := h.students.Detail(c.Request.Context(), c.Param("cedula"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Print godoc
// @Summary Printable student sheet
// @Tags Students
// @Produce application/pdf
// @Param cedula path string true "National ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /students/{cedula}/print [get]
func (h *StudentHandler) Print(c *gin.Context) {
	view, err := h.students.Detail(c.Request.Context(), c.Param("cedula"))
	if err != nil {
		response.Error(c, err)
		return
	}
	body, err := h.printer.PrintStudent(view)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, "application/pdf", "ficha-"+view.Student.NationalID+".pdf", true, body)
}

// Create godoc
// @Summary Register a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body form.WorkingCopy true "Complete form state"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req form.WorkingCopy
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Location", result.Path)
	response.Created(c, result)
}

// Update godoc
// @Summary Edit a student
// @Description Child rows with an id must come from the current record; loaded rows left out are deleted.
// @Tags Students
// @Accept json
// @Produce json
// @Param cedula path string true "National ID"
// @Param payload body form.WorkingCopy true "Complete form state"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{cedula} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req form.WorkingCopy
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.students.Update(c.Request.Context(), c.Param("cedula"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
