package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"student_manager/internal/domain/student"
	idb "student_manager/internal/infra/database" // For ErrStudentNotFound and QueryError

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// DateLayout is the accepted enrollment date format.
const DateLayout = "2006-01-02"

// ErrInvalidInput wraps validation failures; the store is not touched.
var ErrInvalidInput = errors.New("invalid input")

// Status classifies the outcome of a service call.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusNotFound  Status = "not_found"
	StatusFailed    Status = "failed"
)

// Result is what every StudentService call returns: a classification, a
// human-readable message, and whatever data the call produced.
type Result struct {
	Status   Status
	Message  string
	Student  *student.Student   // Created, updated or deleted student
	Students []*student.Student // ListStudents only
	Err      error              // Underlying cause when Status is not StatusSucceeded
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Status == StatusSucceeded }

// NewStudentInput is the raw user input for adding a student.
type NewStudentInput struct {
	FirstName      string `validate:"required"`
	LastName       string `validate:"required"`
	Email          string `validate:"required,email"`
	EnrollmentDate string `validate:"required,datetime=2006-01-02"`
}

type emailInput struct {
	Email string `validate:"required,email"`
}

type StudentService struct {
	repo     student.Repository
	validate *validator.Validate
	logger   *logrus.Entry
}

func NewStudentService(repo student.Repository, logger *logrus.Entry) *StudentService {
	return &StudentService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// ListStudents returns all students ordered by ID.
func (s *StudentService) ListStudents(ctx context.Context) Result {
	students, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list students")
		return failed("Error retrieving students", err)
	}
	s.logger.WithField("students_count", len(students)).Debug("Listed students")
	return Result{
		Status:   StatusSucceeded,
		Message:  fmt.Sprintf("Total students: %d", len(students)),
		Students: students,
	}
}

// AddStudent validates the input and inserts a new student.
func (s *StudentService) AddStudent(ctx context.Context, in NewStudentInput) Result {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.EnrollmentDate = strings.TrimSpace(in.EnrollmentDate)

	if err := s.validate.Struct(in); err != nil {
		s.logger.WithError(err).Warn("Invalid student input")
		return failed("Error adding student", describeValidation(err))
	}
	enrolled, err := time.Parse(DateLayout, in.EnrollmentDate)
	if err != nil {
		return failed("Error adding student", err)
	}

	newStudent := &student.Student{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		EnrollmentDate: enrolled,
	}
	if err := s.repo.Create(ctx, newStudent); err != nil {
		s.logger.WithError(err).Error("Failed to add student")
		return failed("Error adding student", err)
	}

	s.logger.WithField("student_id", newStudent.ID).Info("Student added")
	return Result{
		Status:  StatusSucceeded,
		Message: fmt.Sprintf("Successfully added student: %s (ID: %d)", newStudent.FullName(), newStudent.ID),
		Student: newStudent,
	}
}

// UpdateStudentEmail changes the email of an existing student.
func (s *StudentService) UpdateStudentEmail(ctx context.Context, id int64, email string) Result {
	log := s.logger.WithField("student_id", id)
	email = strings.TrimSpace(email)
	if err := s.validate.Struct(emailInput{Email: email}); err != nil {
		log.WithError(err).Warn("Invalid email")
		return failed("Error updating email", describeValidation(err))
	}

	updated, err := s.repo.UpdateEmail(ctx, id, email)
	if err != nil {
		if errors.Is(err, idb.ErrStudentNotFound) {
			log.Info("Student to update not found")
			return notFound(id, err)
		}
		log.WithError(err).Error("Failed to update email")
		return failed("Error updating email", err)
	}

	log.Info("Student email updated")
	return Result{
		Status:  StatusSucceeded,
		Message: fmt.Sprintf("Successfully updated email for %s (ID: %d)\n  New email: %s", updated.FullName(), id, updated.Email),
		Student: updated,
	}
}

// DeleteStudent removes an existing student.
func (s *StudentService) DeleteStudent(ctx context.Context, id int64) Result {
	log := s.logger.WithField("student_id", id)

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, idb.ErrStudentNotFound) {
			log.Info("Student to delete not found")
			return notFound(id, err)
		}
		log.WithError(err).Error("Failed to delete student")
		return failed("Error deleting student", err)
	}

	log.Info("Student deleted")
	return Result{
		Status:  StatusSucceeded,
		Message: fmt.Sprintf("Successfully deleted student: %s (ID: %d)", deleted.FullName(), id),
		Student: deleted,
	}
}

func failed(prefix string, err error) Result {
	return Result{Status: StatusFailed, Message: fmt.Sprintf("%s: %s", prefix, describeError(err)), Err: err}
}

func notFound(id int64, err error) Result {
	return Result{Status: StatusNotFound, Message: fmt.Sprintf("Student with ID %d not found", id), Err: err}
}

// describeError keeps driver detail out of messages for constraint failures.
func describeError(err error) string {
	var qe *idb.QueryError
	if errors.As(err, &qe) && qe.IsConstraintViolation() {
		if qe.Constraint != "" {
			return fmt.Sprintf("%s (%s)", strings.ReplaceAll(qe.Condition, "_", " "), qe.Constraint)
		}
		return strings.ReplaceAll(qe.Condition, "_", " ")
	}
	return err.Error()
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s %q is not a valid email address", fe.Field(), fe.Value()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s %q must use the YYYY-MM-DD format", fe.Field(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}
