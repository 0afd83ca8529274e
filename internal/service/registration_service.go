package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/internal/repository"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

type registrationStore interface {
	Create(ctx context.Context, reg *models.StudentRegistration) error
	FindByID(ctx context.Context, id string) (*models.StudentRegistration, error)
	FindByUserID(ctx context.Context, userID string) (*models.StudentRegistration, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.StudentRegistration, int, error)
	UpdateDetails(ctx context.Context, reg *models.StudentRegistration) error
	UpdatePhoto(ctx context.Context, id, path, url string) error
	Review(ctx context.Context, id string, status models.RegistrationStatus, reviewer string, note *string) (bool, error)
	Graduate(ctx context.Context, id string) (string, error)
}

type photoStorage interface {
	SaveStream(name string, r io.Reader) (int64, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

type urlSigner interface {
	Generate(owner, object string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (owner, object string, expiresAt time.Time, err error)
}

// RegistrationRequest is the intake form a student fills in.
type RegistrationRequest struct {
	FullName     string `json:"full_name" validate:"required,max=255"`
	Age          int    `json:"age" validate:"required,min=14,max=100"`
	Phone        string `json:"phone" validate:"required,min=6,max=20"`
	IDNumber     string `json:"id_number" validate:"required,max=50"`
	AcademicYear string `json:"academic_year" validate:"required,max=20"`
}

// ReviewRequest records a staff decision on a registration.
type ReviewRequest struct {
	Decision models.RegistrationStatus `json:"decision" validate:"required,oneof=approved rejected"`
	Note     *string                   `json:"note" validate:"omitempty,max=1000"`
}

// PhotoUpload is a registration photo read from a multipart form.
type PhotoUpload struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// PhotoDownload is an opened registration photo.
type PhotoDownload struct {
	File     *os.File
	MimeType string
	Size     int64
}

// RegistrationServiceConfig carries photo bucket limits.
type RegistrationServiceConfig struct {
	MaxPhotoSize int64
	AllowedMIMEs []string
	APIPrefix    string
}

// RegistrationService handles student intake, review and graduation.
type RegistrationService struct {
	repo      registrationStore
	photos    photoStorage
	signer    urlSigner
	audit     auditWriter
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       RegistrationServiceConfig
	mimeSet   map[string]struct{}
}

// NewRegistrationService constructs the service.
func NewRegistrationService(repo registrationStore, photos photoStorage, signer urlSigner, audit auditWriter, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg RegistrationServiceConfig) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPhotoSize <= 0 {
		cfg.MaxPhotoSize = 5 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "image/webp"}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}
	return &RegistrationService{
		repo:      repo,
		photos:    photos,
		signer:    signer,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		mimeSet:   mimeSet,
	}
}

// Submit creates the caller's registration. A student registers once.
func (s *RegistrationService) Submit(ctx context.Context, req RegistrationRequest, actor models.Actor) (*models.StudentRegistration, error) {
	if actor.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can register")
	}
	req = normaliseRegistration(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid registration payload")
	}
	if _, err := s.repo.FindByUserID(ctx, actor.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "registration already submitted")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}

	reg := &models.StudentRegistration{
		UserID:           actor.ID,
		FullName:         req.FullName,
		Age:              req.Age,
		Phone:            req.Phone,
		IDNumber:         req.IDNumber,
		AcademicYear:     req.AcademicYear,
		Status:           models.RegistrationPending,
		GraduationStatus: models.GraduationActive,
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		if errors.Is(err, repository.ErrRegistrationExists) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "registration already submitted")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
	}
	s.cache.Invalidate(ctx, []string{dashboardCacheKey})
	return reg, nil
}

// Mine returns the caller's registration.
func (s *RegistrationService) Mine(ctx context.Context, userID string) (*models.StudentRegistration, error) {
	reg, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return s.present(reg), nil
}

// UpdateMine rewrites the caller's registration while it is still pending.
func (s *RegistrationService) UpdateMine(ctx context.Context, userID string, req RegistrationRequest) (*models.StudentRegistration, error) {
	req = normaliseRegistration(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid registration payload")
	}
	reg, err := s.Mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reg.Status != models.RegistrationPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "registration can only be edited while pending")
	}
	reg.FullName = req.FullName
	reg.Age = req.Age
	reg.Phone = req.Phone
	reg.IDNumber = req.IDNumber
	reg.AcademicYear = req.AcademicYear
	if err := s.repo.UpdateDetails(ctx, reg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update registration")
	}
	return reg, nil
}

// UploadPhoto stores the caller's photo and replaces any previous one.
func (s *RegistrationService) UploadPhoto(ctx context.Context, userID string, upload PhotoUpload) (*models.StudentRegistration, error) {
	if s.photos == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "photo storage unavailable")
	}
	reg, err := s.Mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "photo is required")
	}
	if upload.Size > s.cfg.MaxPhotoSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("photo exceeds %d bytes limit", s.cfg.MaxPhotoSize))
	}
	mimeType, err := sniffContentType(upload.Content)
	if err != nil {
		return nil, err
	}
	if _, ok := s.mimeSet[mimeType]; !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, fmt.Sprintf("photo type %s not allowed", mimeType))
	}

	name := path.Join("registrations", reg.ID, fmt.Sprintf("photo-%d-%s%s", time.Now().Unix(), randomSuffix(), photoExtension(mimeType)))
	if _, err := s.photos.SaveStream(name, io.LimitReader(upload.Content, s.cfg.MaxPhotoSize)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}
	url, err := s.photoURL(reg.ID, name)
	if err != nil {
		_ = s.photos.Delete(name)
		return nil, err
	}
	if err := s.repo.UpdatePhoto(ctx, reg.ID, name, url); err != nil {
		_ = s.photos.Delete(name)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save photo reference")
	}
	if reg.PhotoPath != nil && *reg.PhotoPath != name {
		if err := s.photos.Delete(*reg.PhotoPath); err != nil {
			s.logger.Warn("failed to remove replaced photo", zap.String("registration_id", reg.ID), zap.Error(err))
		}
	}
	reg.PhotoPath = &name
	reg.PhotoURL = &url
	return reg, nil
}

// OpenPhoto validates a signed token and opens the registration photo.
func (s *RegistrationService) OpenPhoto(ctx context.Context, id, token string) (*PhotoDownload, error) {
	if s.photos == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "photo storage unavailable")
	}
	owner, object, _, err := s.signer.Parse(token, false)
	if err != nil || owner != id {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired photo link")
	}
	reg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.PhotoPath == nil || *reg.PhotoPath != object {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "photo not found")
	}
	file, err := s.photos.Open(object)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "photo not found")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read photo")
	}
	return &PhotoDownload{File: file, MimeType: photoMime(object), Size: info.Size()}, nil
}

// List returns registrations for staff review.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.StudentRegistration, *models.Pagination, error) {
	regs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	if regs == nil {
		regs = []models.StudentRegistration{}
	}
	for i := range regs {
		s.present(&regs[i])
	}
	return regs, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one registration. Students may only read their own.
func (s *RegistrationService) Get(ctx context.Context, id string, actor models.Actor) (*models.StudentRegistration, error) {
	reg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Staff() && reg.UserID != actor.ID {
		return nil, appErrors.ErrForbidden
	}
	return s.present(reg), nil
}

// Review approves or rejects a pending registration.
func (s *RegistrationService) Review(ctx context.Context, id string, req ReviewRequest, actor models.Actor) (*models.StudentRegistration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid review payload")
	}
	reg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.Review(ctx, id, req.Decision, actor.ID, req.Note)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review registration")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("registration already %s", reg.Status))
	}
	now := time.Now().UTC()
	reg.Status = req.Decision
	reg.ReviewedBy = &actor.ID
	reg.ReviewedAt = &now
	reg.ReviewNote = req.Note
	s.cache.Invalidate(ctx, []string{dashboardCacheKey})
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionRegistrationRev, "student_registrations", id, map[string]interface{}{
		"decision": req.Decision,
		"note":     req.Note,
	})
	return s.present(reg), nil
}

// Graduate marks an approved student as passed out and ends their room assignment.
func (s *RegistrationService) Graduate(ctx context.Context, id string, actor models.Actor) (*models.StudentRegistration, error) {
	reg, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.Status != models.RegistrationApproved {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only approved registrations can graduate")
	}
	if reg.GraduationStatus == models.GraduationPassedOut {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student already passed out")
	}
	roomID, err := s.repo.Graduate(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		case errors.Is(err, repository.ErrLockContention):
			return nil, appErrors.Wrap(err, appErrors.ErrAssignmentConflict.Code, appErrors.ErrAssignmentConflict.Status, "room changed concurrently, please retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to graduate student")
	}
	reg.GraduationStatus = models.GraduationPassedOut
	if roomID != "" {
		s.metrics.RecordAssignment(AssignmentOutcomeEnded, 1)
		s.cache.InvalidateOccupancy(ctx)
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionGraduate, "student_registrations", id, map[string]string{"vacated_room_id": roomID})
	return s.present(reg), nil
}

func (s *RegistrationService) find(ctx context.Context, id string) (*models.StudentRegistration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return reg, nil
}

// present refreshes the signed photo URL so clients never see an expired link.
func (s *RegistrationService) present(reg *models.StudentRegistration) *models.StudentRegistration {
	if reg == nil || reg.PhotoPath == nil || s.signer == nil {
		return reg
	}
	if url, err := s.photoURL(reg.ID, *reg.PhotoPath); err == nil {
		reg.PhotoURL = &url
	}
	return reg
}

func (s *RegistrationService) photoURL(id, object string) (string, error) {
	token, _, err := s.signer.Generate(id, object)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign photo url")
	}
	return fmt.Sprintf("%s/registrations/%s/photo?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), id, token), nil
}

func normaliseRegistration(req RegistrationRequest) RegistrationRequest {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.IDNumber = strings.TrimSpace(req.IDNumber)
	req.AcademicYear = strings.TrimSpace(req.AcademicYear)
	return req
}

func sniffContentType(content io.ReadSeeker) (string, error) {
	header := make([]byte, 512)
	n, err := content.Read(header)
	if err != nil && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	return http.DetectContentType(header[:n]), nil
}

func photoExtension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return ".bin"
}

func photoMime(object string) string {
	switch strings.ToLower(path.Ext(object)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
