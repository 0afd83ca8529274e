package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hostel-api/internal/models"
)

const registrationColumns = `id, user_id, full_name, age, phone, id_number, photo_url, photo_path, status, graduation_status,
academic_year, reviewed_by, reviewed_at, review_note, created_at, updated_at`

// RegistrationRepository persists student registration forms.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create inserts a registration. A user may only register once.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.StudentRegistration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = now
	}
	reg.UpdatedAt = now
	const query = `INSERT INTO student_registrations (id, user_id, full_name, age, phone, id_number, photo_url, photo_path, status,
graduation_status, academic_year, created_at, updated_at)
VALUES (:id, :user_id, :full_name, :age, :phone, :id_number, :photo_url, :photo_path, :status,
:graduation_status, :academic_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		if isUniqueViolation(err, registrationOwner) {
			return ErrRegistrationExists
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// FindByID returns a registration by identifier.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.StudentRegistration, error) {
	return r.findOne(ctx, "id", id)
}

// FindByUserID returns the registration submitted by a user.
func (r *RegistrationRepository) FindByUserID(ctx context.Context, userID string) (*models.StudentRegistration, error) {
	return r.findOne(ctx, "user_id", userID)
}

func (r *RegistrationRepository) findOne(ctx context.Context, column, value string) (*models.StudentRegistration, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_registrations WHERE %s = $1 LIMIT 1`, registrationColumns, column)
	var reg models.StudentRegistration
	if err := r.db.GetContext(ctx, &reg, query, value); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find registration by %s: %w", column, err)
	}
	return &reg, nil
}

// List returns registrations matching the filter with total count.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.StudentRegistration, int, error) {
	var p predicates
	if filter.Status != "" {
		p.add("status = ?", filter.Status)
	}
	if filter.GraduationStatus != "" {
		p.add("graduation_status = ?", filter.GraduationStatus)
	}
	if filter.AcademicYear != "" {
		p.add("academic_year = ?", filter.AcademicYear)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p.add("(LOWER(full_name) LIKE ? OR id_number LIKE ? OR phone LIKE ?)", "%"+strings.ToLower(search)+"%")
	}
	where, args := p.where(), p.args

	allowedSorts := map[string]bool{"created_at": true, "full_name": true, "academic_year": true, "status": true}
	sortBy := filter.SortBy
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page, pageSize := normalisePage(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf("SELECT %s FROM student_registrations%s ORDER BY %s %s, id LIMIT %d OFFSET %d", registrationColumns, where, sortBy, sortOrder, pageSize, (page-1)*pageSize)
	var regs []models.StudentRegistration
	if err := r.db.SelectContext(ctx, &regs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM student_registrations"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return regs, total, nil
}

// UpdateDetails rewrites the applicant-editable fields.
func (r *RegistrationRepository) UpdateDetails(ctx context.Context, reg *models.StudentRegistration) error {
	reg.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_registrations SET full_name = :full_name, age = :age, phone = :phone, id_number = :id_number,
academic_year = :academic_year, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	return nil
}

// UpdatePhoto stores the photo location of a registration.
func (r *RegistrationRepository) UpdatePhoto(ctx context.Context, id, path, url string) error {
	const query = `UPDATE student_registrations SET photo_path = $2, photo_url = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, path, url, time.Now().UTC()); err != nil {
		return fmt.Errorf("update registration photo: %w", err)
	}
	return nil
}

// Review records a decision on a pending registration. It reports false when
// the registration was no longer pending.
func (r *RegistrationRepository) Review(ctx context.Context, id string, status models.RegistrationStatus, reviewer string, note *string) (bool, error) {
	now := time.Now().UTC()
	const query = `UPDATE student_registrations SET status = $2, reviewed_by = $3, reviewed_at = $4, review_note = $5, updated_at = $4
WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, id, status, reviewer, now, note)
	if err != nil {
		return false, fmt.Errorf("review registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("review registration rows affected: %w", err)
	}
	return affected == 1, nil
}

// Graduate marks the student as passed out and ends their active room
// assignment in the same transaction. It returns the room left, if any.
// Locks follow the assignment order: the current room, the registration,
// then the assignment row.
func (r *RegistrationRepository) Graduate(ctx context.Context, id string) (roomID string, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin graduation transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			err = lockContention(err)
		}
	}()

	var userID string
	if err = tx.GetContext(ctx, &userID, `SELECT user_id FROM student_registrations WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("find registration: %w", err)
	}
	if roomID, err = activeRoomOf(ctx, tx, userID); err != nil {
		return "", err
	}
	if roomID != "" {
		if _, err = lockRoom(ctx, tx, roomID); err != nil {
			return "", err
		}
	}
	if _, err = tx.ExecContext(ctx, `SELECT 1 FROM student_registrations WHERE id = $1 FOR UPDATE`, id); err != nil {
		return "", fmt.Errorf("lock registration: %w", err)
	}

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, `UPDATE student_registrations SET graduation_status = 'passed_out', updated_at = $2 WHERE id = $1`, id, now); err != nil {
		return "", fmt.Errorf("mark registration passed out: %w", err)
	}
	if err = endActiveInRoom(ctx, tx, userID, roomID, now); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit graduation transaction: %w", err)
	}
	return roomID, nil
}

// CountByStatus returns the number of registrations in the given review state.
func (r *RegistrationRepository) CountByStatus(ctx context.Context, status models.RegistrationStatus) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM student_registrations WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return total, nil
}
