package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hostel-api/internal/models"
)

func TestRegistrationRepositoryReviewOnlyFromPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec(`(?s)UPDATE student_registrations SET status = \$2.*WHERE id = \$1 AND status = 'pending'`).
		WithArgs("reg-1", models.RegistrationApproved, "staff-1", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Review(context.Background(), "reg-1", models.RegistrationApproved, "staff-1", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryGraduateEndsAssignment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM student_registrations WHERE id = \$1`).WithArgs("reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("stu-1"))
	mock.ExpectQuery(`SELECT room_id FROM room_assignments WHERE student_id = \$1 AND is_active`).WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow("room-9"))
	mock.ExpectQuery(`FROM rooms WHERE id = \$1 FOR UPDATE`).WithArgs("room-9").
		WillReturnRows(lockedRoomRows("room-9", "C301", 2, models.RoomStatusFull))
	mock.ExpectExec(`SELECT 1 FROM student_registrations WHERE id = \$1 FOR UPDATE`).WithArgs("reg-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET graduation_status = 'passed_out'`).WithArgs("reg-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE room_assignments SET is_active = FALSE, vacated_at = \$2\s+WHERE student_id = \$1 AND is_active RETURNING room_id`).
		WithArgs("stu-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow("room-9"))
	mock.ExpectExec(`UPDATE rooms r SET status`).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	roomID, err := repo.Graduate(context.Background(), "reg-1")
	require.NoError(t, err)
	assert.Equal(t, "room-9", roomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryGraduateWithoutRoom(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM student_registrations`).WithArgs("reg-2").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("stu-2"))
	mock.ExpectQuery(`SELECT room_id FROM room_assignments`).WithArgs("stu-2").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`FOR UPDATE`).WithArgs("reg-2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET graduation_status = 'passed_out'`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`RETURNING room_id`).WithArgs("stu-2", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}))
	mock.ExpectCommit()

	roomID, err := repo.Graduate(context.Background(), "reg-2")
	require.NoError(t, err)
	assert.Empty(t, roomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryGraduateStudentMovedMeanwhile(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM student_registrations`).WithArgs("reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("stu-1"))
	mock.ExpectQuery(`SELECT room_id FROM room_assignments`).WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow("room-9"))
	mock.ExpectQuery(`FROM rooms WHERE id = \$1 FOR UPDATE`).WithArgs("room-9").
		WillReturnRows(lockedRoomRows("room-9", "C301", 2, models.RoomStatusFull))
	mock.ExpectExec(`FOR UPDATE`).WithArgs("reg-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET graduation_status = 'passed_out'`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`RETURNING room_id`).WithArgs("stu-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow("room-5"))
	mock.ExpectRollback()

	_, err := repo.Graduate(context.Background(), "reg-1")
	assert.ErrorIs(t, err, ErrLockContention)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(`FROM student_registrations WHERE status = \$1 AND academic_year = \$2 ORDER BY created_at DESC, id LIMIT 20 OFFSET 0`).
		WithArgs(models.RegistrationPending, "2025/2026").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "full_name", "status", "graduation_status"}).
			AddRow("reg-1", "stu-1", "Ayu", "pending", "active"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM student_registrations WHERE status = \$1 AND academic_year = \$2`).
		WithArgs(models.RegistrationPending, "2025/2026").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	regs, total, err := repo.List(context.Background(), models.RegistrationFilter{Status: models.RegistrationPending, AcademicYear: "2025/2026"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, regs, 1)
	assert.Equal(t, "Ayu", regs[0].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryCreateDuplicateUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec(`INSERT INTO student_registrations`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "student_registrations_user_id_key"})

	err := repo.Create(context.Background(), &models.StudentRegistration{UserID: "stu-1", FullName: "Sari", Status: models.RegistrationPending})
	assert.ErrorIs(t, err, ErrRegistrationExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
