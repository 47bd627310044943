package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/athlete-records-api/internal/middleware"
	"github.com/noah-isme/athlete-records-api/internal/models"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
	"github.com/noah-isme/athlete-records-api/pkg/response"
)

type catalogService interface {
	Load(ctx context.Context, names ...string) models.Catalogs
	Majors(ctx context.Context, facultyID int64) ([]models.Major, error)
}

// CatalogHandler exposes the lookup lists used by forms and filters.
type CatalogHandler struct {
	catalogs catalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalogs catalogService) *CatalogHandler {
	return &CatalogHandler{catalogs: catalogs}
}

// List godoc
// @Summary Load lookup catalogs
// @Description Sports, belts, faculties and majors are loaded independently; failed sources are listed in errors and meta.warnings.
// @Tags Catalogs
// @Produce json
// @Param names query string false "Comma separated subset: sports,belts,faculties,majors"
// @Success 200 {object} response.Envelope
// @Router /catalogs [get]
func (h *CatalogHandler) List(c *gin.Context) {
	var names []string
	for _, name := range strings.Split(c.Query("names"), ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		switch name {
		case models.CatalogSports, models.CatalogBelts, models.CatalogFaculties, models.CatalogMajors:
			names = append(names, name)
		default:
			response.Error(c, appErrors.Validation("unknown catalog "+strconv.Quote(name)))
			return
		}
	}

	catalogs := h.catalogs.Load(c.Request.Context(), names...)
	middleware.SetWarnings(c, catalogs.Errors)
	response.JSON(c, http.StatusOK, catalogs, middleware.ExtractMeta(c))
}

// Majors godoc
// @Summary List majors of a faculty
// @Tags Catalogs
// @Produce json
// @Param facultyId query int true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /catalogs/majors [get]
func (h *CatalogHandler) Majors(c *gin.Context) {
	facultyID, err := strconv.ParseInt(c.Query("facultyId"), 10, 64)
	if err != nil || facultyID <= 0 {
		response.Error(c, appErrors.Validation("facultyId must be a positive integer"))
		return
	}
	majors, err := h.catalogs.Majors(c.Request.Context(), facultyID)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, err.Error()))
		return
	}
	response.JSON(c, http.StatusOK, majors)
}
