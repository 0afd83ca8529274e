package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/internal/service"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
	"github.com/noah-isme/hostel-api/pkg/response"
)

type registrationService interface {
	Submit(ctx context.Context, req service.RegistrationRequest, actor models.Actor) (*models.StudentRegistration, error)
	Mine(ctx context.Context, userID string) (*models.StudentRegistration, error)
	UpdateMine(ctx context.Context, userID string, req service.RegistrationRequest) (*models.StudentRegistration, error)
	UploadPhoto(ctx context.Context, userID string, upload service.PhotoUpload) (*models.StudentRegistration, error)
	OpenPhoto(ctx context.Context, id, token string) (*service.PhotoDownload, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.StudentRegistration, *models.Pagination, error)
	Get(ctx context.Context, id string, actor models.Actor) (*models.StudentRegistration, error)
	Review(ctx context.Context, id string, req service.ReviewRequest, actor models.Actor) (*models.StudentRegistration, error)
	Graduate(ctx context.Context, id string, actor models.Actor) (*models.StudentRegistration, error)
}

// RegistrationHandler exposes student intake and review endpoints.
type RegistrationHandler struct {
	service registrationService
}

// NewRegistrationHandler constructs the handler.
func NewRegistrationHandler(svc registrationService) *RegistrationHandler {
	return &RegistrationHandler{service: svc}
}

// Submit godoc
// @Summary Submit the caller's registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.RegistrationRequest true "Registration form"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid registration payload"))
		return
	}
	reg, err := h.service.Submit(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reg)
}

// Mine godoc
// @Summary The caller's registration
// @Tags Registrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations/me [get]
func (h *RegistrationHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	reg, err := h.service.Mine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// UpdateMine godoc
// @Summary Edit the caller's pending registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.RegistrationRequest true "Registration form"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /registrations/me [put]
func (h *RegistrationHandler) UpdateMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid registration payload"))
		return
	}
	reg, err := h.service.UpdateMine(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// UploadPhoto godoc
// @Summary Upload the caller's registration photo
// @Tags Registrations
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "JPEG, PNG or WebP image"
// @Success 200 {object} response.Envelope
// @Router /registrations/me/photo [post]
func (h *RegistrationHandler) UploadPhoto(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "photo is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open photo"))
		return
	}
	defer src.Close()

	reg, err := h.service.UploadPhoto(c.Request.Context(), claims.UserID, service.PhotoUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Photo godoc
// @Summary Stream a registration photo through its signed link
// @Tags Registrations
// @Produce octet-stream
// @Param id path string true "Registration ID"
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /registrations/{id}/photo [get]
func (h *RegistrationHandler) Photo(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	photo, err := h.service.OpenPhoto(c.Request.Context(), c.Param("id"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer photo.File.Close() //nolint:errcheck
	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, photo.Size, photo.MimeType, photo.File, nil)
}

// List godoc
// @Summary List registrations
// @Tags Registrations
// @Produce json
// @Param status query string false "pending|approved|rejected"
// @Param graduation_status query string false "active|passed_out"
// @Param academic_year query string false "Academic year"
// @Param search query string false "Name, phone or ID number"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	filter := models.RegistrationFilter{
		Status:           models.RegistrationStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		GraduationStatus: models.GraduationStatus(strings.ToLower(strings.TrimSpace(c.Query("graduation_status")))),
		AcademicYear:     strings.TrimSpace(c.Query("academic_year")),
		Search:           strings.TrimSpace(c.Query("search")),
		SortBy:           c.Query("sort_by"),
		SortOrder:        c.Query("sort_order"),
	}
	filter.Page, filter.PageSize = pageParams(c)

	regs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, regs, pagination)
}

// Get godoc
// @Summary Registration detail
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /registrations/{id} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	reg, err := h.service.Get(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Review godoc
// @Summary Approve or reject a pending registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body service.ReviewRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /registrations/{id}/review [post]
func (h *RegistrationHandler) Review(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid review payload"))
		return
	}
	reg, err := h.service.Review(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Graduate godoc
// @Summary Mark a student as passed out and end their room assignment
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /registrations/{id}/graduate [post]
func (h *RegistrationHandler) Graduate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	reg, err := h.service.Graduate(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}
