package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"student_manager/internal/domain/student"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var studentColumns = []string{"student_id", "first_name", "last_name", "email", "enrollment_date"}

func newMockRepository(t *testing.T) (*PostgresStudentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStudentRepository(db), mock
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestListAll(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(listStudentsQuery).WillReturnRows(
		sqlmock.NewRows(studentColumns).
			AddRow(int64(1), "Ada", "Lovelace", "ada@x.com", date(1843, time.January, 1)).
			AddRow(int64(2), "Alan", "Turing", "alan@x.com", date(1936, time.May, 28)),
	)

	students, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)

	assert.Equal(t, &student.Student{
		ID:             1,
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@x.com",
		EnrollmentDate: date(1843, time.January, 1),
	}, students[0])
	assert.Equal(t, int64(2), students[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAll_Empty(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(listStudentsQuery).WillReturnRows(sqlmock.NewRows(studentColumns))

	students, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestListAll_QueryError(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(listStudentsQuery).WillReturnError(&pq.Error{Code: "42P01", Message: "relation \"students\" does not exist"})

	students, err := repo.ListAll(context.Background())
	assert.Nil(t, students)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "undefined_table", qe.Condition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAll_NoPartialResults(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(listStudentsQuery).WillReturnRows(
		sqlmock.NewRows(studentColumns).
			AddRow(int64(1), "Ada", "Lovelace", "ada@x.com", date(1843, time.January, 1)).
			AddRow(int64(2), "Alan", "Turing", "alan@x.com", date(1936, time.May, 28)).
			RowError(1, errors.New("connection reset by peer")),
	)

	students, err := repo.ListAll(context.Background())
	assert.Nil(t, students)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Contains(t, err.Error(), "connection reset by peer")
}

func TestListAll_ScanError(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(listStudentsQuery).WillReturnRows(
		sqlmock.NewRows(studentColumns).
			AddRow("not-a-number", "Ada", "Lovelace", "ada@x.com", date(1843, time.January, 1)),
	)

	students, err := repo.ListAll(context.Background())
	assert.Nil(t, students)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "scanning student", qe.Op)
}

func TestCreate_Commits(t *testing.T) {
	repo, mock := newMockRepository(t)
	s := &student.Student{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com", EnrollmentDate: date(1843, time.January, 1)}

	mock.ExpectBegin()
	mock.ExpectQuery(insertStudentQuery).
		WithArgs("Ada", "Lovelace", "ada@x.com", date(1843, time.January, 1)).
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), s))
	assert.Equal(t, int64(1), s.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ConstraintViolationRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)
	s := &student.Student{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com", EnrollmentDate: date(1843, time.January, 1)}

	mock.ExpectBegin()
	mock.ExpectQuery(insertStudentQuery).
		WithArgs("Ada", "Lovelace", "ada@x.com", date(1843, time.January, 1)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "students_email_key", Message: "duplicate key value"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), s)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.True(t, qe.IsConstraintViolation())
	assert.Equal(t, "students_email_key", qe.Constraint)
	assert.Zero(t, s.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_CommitFailure(t *testing.T) {
	repo, mock := newMockRepository(t)
	s := &student.Student{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com", EnrollmentDate: date(1843, time.January, 1)}

	mock.ExpectBegin()
	mock.ExpectQuery(insertStudentQuery).
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(int64(9)))
	mock.ExpectCommit().WillReturnError(errors.New("server closed the connection unexpectedly"))

	err := repo.Create(context.Background(), s)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "committing new student", qe.Op)
	assert.Zero(t, s.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_BeginFailure(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	err := repo.Create(context.Background(), &student.Student{FirstName: "Ada"})

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmail_Updated(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(checkStudentQuery).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "last_name"}).AddRow("Ada", "Lovelace"))
	mock.ExpectBegin()
	mock.ExpectExec(updateEmailQuery).WithArgs("ada@new.com", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s, err := repo.UpdateEmail(context.Background(), 1, "ada@new.com")
	require.NoError(t, err)
	assert.Equal(t, &student.Student{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@new.com"}, s)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmail_NotFoundOpensNoTransaction(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(checkStudentQuery).WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "last_name"}))

	s, err := repo.UpdateEmail(context.Background(), 42, "nobody@x.com")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrStudentNotFound)
	// No Begin/Exec expectations: the mutation must not be attempted.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmail_ExecErrorRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(checkStudentQuery).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "last_name"}).AddRow("Ada", "Lovelace"))
	mock.ExpectBegin()
	mock.ExpectExec(updateEmailQuery).WithArgs("ada@new.com", int64(1)).
		WillReturnError(&pq.Error{Code: "23514", Constraint: "students_email_check"})
	mock.ExpectRollback()

	s, err := repo.UpdateEmail(context.Background(), 1, "ada@new.com")
	assert.Nil(t, s)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "check_violation", qe.Condition)
	assert.NotErrorIs(t, err, ErrStudentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmail_CheckError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(checkStudentQuery).WithArgs(int64(1)).WillReturnError(sql.ErrConnDone)

	_, err := repo.UpdateEmail(context.Background(), 1, "ada@new.com")

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "checking student", qe.Op)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmail_RowVanishedAfterCheck(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(checkStudentQuery).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "last_name"}).AddRow("Ada", "Lovelace"))
	mock.ExpectBegin()
	mock.ExpectExec(updateEmailQuery).WithArgs("ada@new.com", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err := repo.UpdateEmail(context.Background(), 1, "ada@new.com")
	assert.ErrorIs(t, err, ErrStudentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_Deleted(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(checkStudentQuery).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "last_name"}).AddRow("Ada", "Lovelace"))
	mock.ExpectBegin()
	mock.ExpectExec(deleteStudentQuery).WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s, err := repo.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", s.FullName())
	assert.Equal(t, int64(1), s.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(checkStudentQuery).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "last_name"}))

	s, err := repo.Delete(context.Background(), 1)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrStudentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_ExecErrorRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(checkStudentQuery).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "last_name"}).AddRow("Ada", "Lovelace"))
	mock.ExpectBegin()
	mock.ExpectExec(deleteStudentQuery).WithArgs(int64(1)).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "grades_student_id_fkey"})
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), 1)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "foreign_key_violation", qe.Condition)
	require.NoError(t, mock.ExpectationsWereMet())
}
