package database

import (
	"context"
	"database/sql"
	"errors"

	"student_manager/internal/domain/student"
)

const (
	listStudentsQuery = `SELECT student_id, first_name, last_name, email, enrollment_date
               FROM students ORDER BY student_id ASC`
	insertStudentQuery = `INSERT INTO students (first_name, last_name, email, enrollment_date)
               VALUES ($1, $2, $3, $4)
               RETURNING student_id`
	checkStudentQuery  = `SELECT first_name, last_name FROM students WHERE student_id = $1`
	updateEmailQuery   = `UPDATE students SET email = $1 WHERE student_id = $2`
	deleteStudentQuery = `DELETE FROM students WHERE student_id = $1`
)

// PostgresStudentRepository implements student.Repository on top of a Session's handle.
// Not safe for concurrent use.
type PostgresStudentRepository struct {
	db *sql.DB
}

func NewPostgresStudentRepository(db *sql.DB) *PostgresStudentRepository {
	return &PostgresStudentRepository{db: db}
}

func (r *PostgresStudentRepository) ListAll(ctx context.Context) ([]*student.Student, error) {
	rows, err := r.db.QueryContext(ctx, listStudentsQuery)
	if err != nil {
		return nil, newQueryError("listing students", err)
	}
	defer rows.Close()

	students := make([]*student.Student, 0)
	for rows.Next() {
		s := &student.Student{}
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.EnrollmentDate); err != nil {
			return nil, newQueryError("scanning student", err)
		}
		students = append(students, s)
	}
	if err = rows.Err(); err != nil {
		return nil, newQueryError("iterating students", err)
	}
	return students, nil
}

// Create inserts s in its own transaction and sets s.ID from RETURNING.
// Nothing is visible unless the commit succeeds.
func (r *PostgresStudentRepository) Create(ctx context.Context, s *student.Student) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return newQueryError("beginning transaction for create", err)
	}
	defer txn.Rollback() // Rollback if not committed

	var id int64
	err = txn.QueryRowContext(ctx, insertStudentQuery, s.FirstName, s.LastName, s.Email, s.EnrollmentDate).Scan(&id)
	if err != nil {
		return newQueryError("creating student", err)
	}
	if err = txn.Commit(); err != nil {
		return newQueryError("committing new student", err)
	}

	s.ID = id
	return nil
}

// UpdateEmail checks that the student exists, then updates the email in its own transaction.
// The check and the update are separate statements without a row lock.
func (r *PostgresStudentRepository) UpdateEmail(ctx context.Context, id int64, email string) (*student.Student, error) {
	s, err := r.findNames(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = r.execInTx(ctx, "updating email", updateEmailQuery, email, id); err != nil {
		return nil, err
	}

	s.Email = email
	return s, nil
}

// Delete checks that the student exists, then deletes it in its own transaction.
func (r *PostgresStudentRepository) Delete(ctx context.Context, id int64) (*student.Student, error) {
	s, err := r.findNames(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = r.execInTx(ctx, "deleting student", deleteStudentQuery, id); err != nil {
		return nil, err
	}
	return s, nil
}

// findNames is the existence check shared by UpdateEmail and Delete.
func (r *PostgresStudentRepository) findNames(ctx context.Context, id int64) (*student.Student, error) {
	s := &student.Student{ID: id}
	err := r.db.QueryRowContext(ctx, checkStudentQuery, id).Scan(&s.FirstName, &s.LastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, newQueryError("checking student", err)
	}
	return s, nil
}

// execInTx runs one mutating statement and commits it.
// Zero affected rows means the row vanished after the existence check; that is
// reported as ErrStudentNotFound.
func (r *PostgresStudentRepository) execInTx(ctx context.Context, op, query string, args ...any) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return newQueryError("beginning transaction for "+op, err)
	}
	defer txn.Rollback() // Rollback if not committed

	res, err := txn.ExecContext(ctx, query, args...)
	if err != nil {
		return newQueryError(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return newQueryError(op, err)
	}
	if err = txn.Commit(); err != nil {
		return newQueryError("committing "+op, err)
	}

	if affected == 0 {
		return ErrStudentNotFound
	}
	return nil
}
