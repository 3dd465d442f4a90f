package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var scheduleRowColumns = []string{"id", "batch_id", "semester_id", "section", "department", "entries", "status", "generated_at", "created_at", "updated_at"}

const entriesJSON = `[{"courseId":"c1","courseCode":"CS101","courseName":"Programming","instructorId":"i1","instructorName":"Dr Ada","roomId":"r1","roomNumber":"R101","day":"Monday","shift":"morning","startTime":"08:00","endTime":"11:00","isLab":false}]`

func TestScheduleRepositoryUpsertSchedule(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	generatedAt := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO schedules .* ON CONFLICT \\(batch_id, semester_id, section\\) DO UPDATE SET").
		WithArgs(sqlmock.AnyArg(), "b1", "s1", "A", nil, sqlmock.AnyArg(), models.ScheduleStatusDraft, generatedAt, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns).
			AddRow("sch-1", "b1", "s1", "A", nil, []byte(entriesJSON), "draft", generatedAt, generatedAt, generatedAt))

	schedule, err := repo.UpsertSchedule(context.Background(),
		models.ScheduleKey{BatchID: "b1", SemesterID: "s1", Section: "A"},
		models.ScheduleUpsert{
			Entries:     []models.ScheduleEntry{{CourseID: "c1"}},
			Status:      models.ScheduleStatusDraft,
			GeneratedAt: generatedAt,
		})
	require.NoError(t, err)
	assert.Equal(t, "sch-1", schedule.ID)
	require.Len(t, schedule.Entries, 1)
	assert.Equal(t, "Dr Ada", schedule.Entries[0].InstructorName)
	assert.Equal(t, models.ShiftMorning, schedule.Entries[0].Shift)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListSchedules(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+scheduleColumns+" FROM schedules WHERE 1=1 AND semester_id = $1 AND status = $2 ORDER BY generated_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("s1", models.ScheduleStatusPublished).
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns).AddRow("sch-1", "b1", "s1", "A", "CS", []byte("[]"), "published", now, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedules WHERE 1=1 AND semester_id = $1 AND status = $2")).
		WithArgs("s1", models.ScheduleStatusPublished).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.ListSchedules(context.Background(), models.ScheduleFilter{SemesterID: "s1", Status: models.ScheduleStatusPublished})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	require.NotNil(t, list[0].Department)
	assert.Equal(t, "CS", *list[0].Department)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListPublishedByInstructor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND entries @> $2::jsonb")).
		WithArgs(models.ScheduleStatusPublished, `[{"instructorId":"i1"}]`).
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns).AddRow("sch-1", "b1", "s1", "A", nil, []byte(entriesJSON), "published", now, now, now))

	list, err := repo.ListPublishedSchedulesByInstructor(context.Background(), "i1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryStatusAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("UPDATE schedules SET status = \\$2").
		WithArgs("sch-1", models.ScheduleStatusPublished, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateScheduleStatus(context.Background(), "sch-1", models.ScheduleStatusPublished))

	mock.ExpectExec("DELETE FROM schedules WHERE id = \\$1").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.DeleteSchedule(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
