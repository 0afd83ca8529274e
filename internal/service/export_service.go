package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/pkg/export"
)

// exportPageSize is the largest page repositories hand out.
const exportPageSize = maxPageSize

type roomLister interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
}

type requestLister interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error)
}

type registrationLister interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.StudentRegistration, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type tokenSigner interface {
	Generate(owner, object string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (owner, object string, expiresAt time.Time, err error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportSources groups the repositories report datasets are read from.
type ExportSources struct {
	Rooms         roomLister
	Requests      requestLister
	Registrations registrationLister
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	sources   ExportSources
	storage   fileStorage
	renderers map[models.ReportFormat]datasetRenderer
	signer    tokenSigner
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService with the CSV, PDF and XLSX renderers.
func NewExportService(sources ExportSources, storage fileStorage, signer tokenSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{
		sources: sources,
		storage: storage,
		renderers: map[models.ReportFormat]datasetRenderer{
			models.ReportFormatCSV:  export.NewCSVExporter(),
			models.ReportFormatPDF:  export.NewPDFExporter(),
			models.ReportFormatXLSX: export.NewXLSXExporter(),
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Generate builds the dataset for job, renders it and stores the file.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	renderer, ok := s.renderers[job.Params.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	dataset, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		_ = s.storage.Delete(relPath)
		return nil, err
	}
	s.logger.Info("report rendered",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("format", string(job.Params.Format)),
		zap.Int("rows", len(dataset.Rows)),
	)
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured ResultTTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	id := job.ID
	if len(id) > 8 {
		id = id[:8]
	}
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("reports/%s_%s_%s.%s", strings.ToLower(string(job.Type)), timestamp, id, job.Params.Format)
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, error) {
	switch job.Type {
	case models.ReportTypeOccupancy:
		return s.occupancyDataset(ctx, job.Params)
	case models.ReportTypeRequests:
		return s.requestsDataset(ctx, job.Params)
	case models.ReportTypeRegistrations:
		return s.registrationsDataset(ctx, job.Params)
	default:
		return export.Dataset{}, fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) occupancyDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, error) {
	rooms, err := collectPages(func(page int) ([]models.Room, int, error) {
		return s.sources.Rooms.List(ctx, models.RoomFilter{
			Floor:    params.Floor,
			Status:   models.RoomStatus(params.Status),
			Page:     page,
			PageSize: exportPageSize,
		})
	})
	if err != nil {
		return export.Dataset{}, fmt.Errorf("load rooms: %w", err)
	}
	headers := []string{"Room", "Floor", "Type", "Capacity", "Occupancy", "Available", "Status", "Condition"}
	rows := make([]map[string]string, 0, len(rooms))
	for _, room := range rooms {
		rows = append(rows, map[string]string{
			"Room":      room.RoomNumber,
			"Floor":     strconv.Itoa(room.Floor),
			"Type":      room.RoomType,
			"Capacity":  strconv.Itoa(room.MaxOccupancy),
			"Occupancy": strconv.Itoa(room.CurrentOccupancy),
			"Available": strconv.Itoa(room.Available()),
			"Status":    string(room.Status),
			"Condition": string(room.Condition),
		})
	}
	return export.Dataset{Title: "Occupancy Report", Headers: headers, Rows: rows}, nil
}

func (s *ExportService) requestsDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, error) {
	requests, err := collectPages(func(page int) ([]models.Request, int, error) {
		return s.sources.Requests.List(ctx, models.RequestFilter{
			Status:   models.RequestStatus(params.Status),
			Page:     page,
			PageSize: exportPageSize,
		})
	})
	if err != nil {
		return export.Dataset{}, fmt.Errorf("load requests: %w", err)
	}
	headers := []string{"ID", "Student", "Type", "Priority", "Status", "Room", "Description", "Created At"}
	rows := make([]map[string]string, 0, len(requests))
	for _, req := range requests {
		rows = append(rows, map[string]string{
			"ID":          req.ID,
			"Student":     req.UserID,
			"Type":        string(req.Type),
			"Priority":    string(req.Priority),
			"Status":      string(req.Status),
			"Room":        derefString(req.RoomNumber),
			"Description": req.Description,
			"Created At":  formatReportTime(req.CreatedAt),
		})
	}
	return export.Dataset{Title: "Service Requests", Headers: headers, Rows: rows}, nil
}

func (s *ExportService) registrationsDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, error) {
	regs, err := collectPages(func(page int) ([]models.StudentRegistration, int, error) {
		return s.sources.Registrations.List(ctx, models.RegistrationFilter{
			Status:       models.RegistrationStatus(params.Status),
			AcademicYear: params.AcademicYear,
			Page:         page,
			PageSize:     exportPageSize,
		})
	})
	if err != nil {
		return export.Dataset{}, fmt.Errorf("load registrations: %w", err)
	}
	headers := []string{"Full Name", "Age", "Phone", "ID Number", "Academic Year", "Status", "Graduation", "Submitted At"}
	rows := make([]map[string]string, 0, len(regs))
	for _, reg := range regs {
		rows = append(rows, map[string]string{
			"Full Name":     reg.FullName,
			"Age":           strconv.Itoa(reg.Age),
			"Phone":         reg.Phone,
			"ID Number":     reg.IDNumber,
			"Academic Year": reg.AcademicYear,
			"Status":        string(reg.Status),
			"Graduation":    string(reg.GraduationStatus),
			"Submitted At":  formatReportTime(reg.CreatedAt),
		})
	}
	return export.Dataset{Title: "Registrations", Headers: headers, Rows: rows}, nil
}

// collectPages drains a paginated listing.
func collectPages[T any](fetch func(page int) ([]T, int, error)) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		items, total, err := fetch(page)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) == 0 || len(all) >= total {
			return all, nil
		}
	}
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func formatReportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
