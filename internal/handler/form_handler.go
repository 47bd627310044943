package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/athlete-records-api/internal/form"
	"github.com/noah-isme/athlete-records-api/internal/service"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
	"github.com/noah-isme/athlete-records-api/pkg/response"
)

type formSessions interface {
	Open(ctx context.Context, nationalID string) (*service.FormState, error)
	Get(id string) (*service.FormState, error)
	UpdateField(id string, section form.Section, field, value string) (*service.FormState, error)
	AddPhysicalTest(id string) (*service.FormState, error)
	SetPhysicalTest(id string, index int, fields service.RowFields) (*service.FormState, error)
	RemovePhysicalTest(id string, index int) (*service.FormState, error)
	AddCompetitionRecord(id string) (*service.FormState, error)
	SetCompetitionRecord(id string, index int, fields service.RowFields) (*service.FormState, error)
	RemoveCompetitionRecord(id string, index int) (*service.FormState, error)
	Submit(ctx context.Context, id string) (*service.SubmitResult, error)
	Close(id string)
}

// OpenFormRequest starts a form page; a blank national ID opens a registration form.
type OpenFormRequest struct {
	NationalID string `json:"cedula"`
}

// FieldUpdateRequest sets one field of a form section.
type FieldUpdateRequest struct {
	Section form.Section `json:"section" binding:"required"`
	Field   string       `json:"field" binding:"required"`
	Value   string       `json:"value"`
}

// FormHandler drives server-held form pages.
type FormHandler struct {
	forms formSessions
}

// NewFormHandler constructs FormHandler.
func NewFormHandler(forms formSessions) *FormHandler {
	return &FormHandler{forms: forms}
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

func rowIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		response.Error(c, appErrors.Validation("row index must be a non-negative integer"))
		return 0, false
	}
	return index, true
}

func respondState(c *gin.Context, state *service.FormState, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// Open godoc
// @Summary Open a form page
// @Tags Forms
// @Accept json
// @Produce json
// @Param payload body OpenFormRequest false "National ID to edit"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /forms [post]
func (h *FormHandler) Open(c *gin.Context) {
	var req OpenFormRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidPayload(err))
			return
		}
	}
	state, err := h.forms.Open(c.Request.Context(), req.NationalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Location", "forms/"+state.ID)
	response.Created(c, state)
}

// Get godoc
// @Summary Current form state
// @Tags Forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /forms/{id} [get]
func (h *FormHandler) Get(c *gin.Context) {
	state, err := h.forms.Get(c.Param("id"))
	respondState(c, state, err)
}

// UpdateField godoc
// @Summary Set one form field
// @Description Sections: student, medical, selection. Changing selection.faculty_id clears the major.
// @Tags Forms
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param payload body FieldUpdateRequest true "Field update"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /forms/{id}/fields [patch]
func (h *FormHandler) UpdateField(c *gin.Context) {
	var req FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	state, err := h.forms.UpdateField(c.Param("id"), req.Section, req.Field, req.Value)
	respondState(c, state, err)
}

// AddPhysicalTest godoc
// @Summary Append a physical test row
// @Tags Forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/physical-tests [post]
func (h *FormHandler) AddPhysicalTest(c *gin.Context) {
	state, err := h.forms.AddPhysicalTest(c.Param("id"))
	respondState(c, state, err)
}

// SetPhysicalTest godoc
// @Summary Replace a physical test row
// @Tags Forms
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param index path int true "Row position"
// @Param payload body service.RowFields true "Row fields"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/physical-tests/{index} [put]
func (h *FormHandler) SetPhysicalTest(c *gin.Context) {
	index, ok := rowIndex(c)
	if !ok {
		return
	}
	var req service.RowFields
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	state, err := h.forms.SetPhysicalTest(c.Param("id"), index, req)
	respondState(c, state, err)
}

// RemovePhysicalTest godoc
// @Summary Remove a physical test row
// @Description A row loaded from the record is queued for deletion on submit.
// @Tags Forms
// @Produce json
// @Param id path string true "Form ID"
// @Param index path int true "Row position"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/physical-tests/{index} [delete]
func (h *FormHandler) RemovePhysicalTest(c *gin.Context) {
	index, ok := rowIndex(c)
	if !ok {
		return
	}
	state, err := h.forms.RemovePhysicalTest(c.Param("id"), index)
	respondState(c, state, err)
}

// AddCompetitionRecord godoc
// @Summary Append a competition record row
// @Tags Forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/competition-records [post]
func (h *FormHandler) AddCompetitionRecord(c *gin.Context) {
	state, err := h.forms.AddCompetitionRecord(c.Param("id"))
	respondState(c, state, err)
}

// SetCompetitionRecord godoc
// @Summary Replace a competition record row
// @Tags Forms
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param index path int true "Row position"
// @Param payload body service.RowFields true "Row fields"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/competition-records/{index} [put]
func (h *FormHandler) SetCompetitionRecord(c *gin.Context) {
	index, ok := rowIndex(c)
	if !ok {
		return
	}
	var req service.RowFields
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	state, err := h.forms.SetCompetitionRecord(c.Param("id"), index, req)
	respondState(c, state, err)
}

// RemoveCompetitionRecord godoc
// @Summary Remove a competition record row
// @Tags Forms
// @Produce json
// @Param id path string true "Form ID"
// @Param index path int true "Row position"
// @Success 200 {object} response.Envelope
// @Router /forms/{id}/competition-records/{index} [delete]
func (h *FormHandler) RemoveCompetitionRecord(c *gin.Context) {
	index, ok := rowIndex(c)
	if !ok {
		return
	}
	state, err := h.forms.RemoveCompetitionRecord(c.Param("id"), index)
	respondState(c, state, err)
}

// Submit godoc
// @Summary Submit a form page
// @Description On success the page is closed and the detail location is returned.
// @Tags Forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /forms/{id}/submit [post]
func (h *FormHandler) Submit(c *gin.Context) {
	result, err := h.forms.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Close godoc
// @Summary Discard a form page
// @Tags Forms
// @Param id path string true "Form ID"
// @Success 204
// @Router /forms/{id} [delete]
func (h *FormHandler) Close(c *gin.Context) {
	h.forms.Close(c.Param("id"))
	response.NoContent(c)
}
