package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"student_manager/internal/app"

	"github.com/sirupsen/logrus"
)

// StudentManager is the application surface the shell drives.
// *app.StudentService implements it.
type StudentManager interface {
	ListStudents(ctx context.Context) app.Result
	AddStudent(ctx context.Context, in app.NewStudentInput) app.Result
	UpdateStudentEmail(ctx context.Context, id int64, email string) app.Result
	DeleteStudent(ctx context.Context, id int64) app.Result
}

// errInputClosed means stdin reached EOF; the shell exits normally.
var errInputClosed = errors.New("input closed")

// Shell is the interactive text menu. It runs one command at a time.
type Shell struct {
	in       *bufio.Scanner
	out      io.Writer
	students StudentManager
	logger   *logrus.Entry
}

func NewShell(in io.Reader, out io.Writer, students StudentManager, logger *logrus.Entry) *Shell {
	return &Shell{
		in:       bufio.NewScanner(in),
		out:      out,
		students: students,
		logger:   logger,
	}
}

// Run shows the menu and executes commands until the user exits, input ends,
// or ctx is cancelled. Failed commands are reported and the loop continues.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.displayMenu()
		choice, err := s.prompt("\nEnter your choice (1-5): ")
		if err != nil {
			return s.finish(err)
		}

		cmdLogger := s.logger.WithField("choice", choice)
		cmdLogger.Debug("Command received")

		switch choice {
		case "1":
			s.viewAll(ctx)
		case "2":
			err = s.addStudent(ctx)
		case "3":
			err = s.updateEmail(ctx)
		case "4":
			err = s.deleteStudent(ctx)
		case "5":
			fmt.Fprintln(s.out, "\nThank you for using Student Management System!")
			return nil
		default:
			cmdLogger.Debug("Invalid menu choice")
			fmt.Fprintln(s.out, "\n✗ Invalid choice. Please enter a number between 1 and 5.")
		}
		if err != nil {
			return s.finish(err)
		}

		if _, err := s.prompt("\nPress Enter to continue..."); err != nil {
			return s.finish(err)
		}
	}
}

func (s *Shell) displayMenu() {
	fmt.Fprintln(s.out, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(s.out, "STUDENT MANAGEMENT SYSTEM")
	fmt.Fprintln(s.out, strings.Repeat("=", 50))
	fmt.Fprintln(s.out, "1. View all students")
	fmt.Fprintln(s.out, "2. Add new student")
	fmt.Fprintln(s.out, "3. Update student email")
	fmt.Fprintln(s.out, "4. Delete student")
	fmt.Fprintln(s.out, "5. Exit")
	fmt.Fprintln(s.out, strings.Repeat("=", 50))
}

func (s *Shell) viewAll(ctx context.Context) {
	res := s.students.ListStudents(ctx)
	if !res.OK() {
		printResult(s.out, res)
		return
	}
	renderStudents(s.out, res.Students)
}

func (s *Shell) addStudent(ctx context.Context) error {
	fmt.Fprintln(s.out, "\n--- Add New Student ---")
	var in app.NewStudentInput
	fields := []struct {
		label string
		dst   *string
	}{
		{"First name: ", &in.FirstName},
		{"Last name: ", &in.LastName},
		{"Email: ", &in.Email},
		{"Enrollment date (YYYY-MM-DD): ", &in.EnrollmentDate},
	}
	for _, f := range fields {
		v, err := s.prompt(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	printResult(s.out, s.students.AddStudent(ctx, in))
	return nil
}

func (s *Shell) updateEmail(ctx context.Context) error {
	fmt.Fprintln(s.out, "\n--- Update Student Email ---")
	id, ok, err := s.promptStudentID()
	if err != nil || !ok {
		return err
	}
	email, err := s.prompt("New email: ")
	if err != nil {
		return err
	}

	printResult(s.out, s.students.UpdateStudentEmail(ctx, id, email))
	return nil
}

func (s *Shell) deleteStudent(ctx context.Context) error {
	fmt.Fprintln(s.out, "\n--- Delete Student ---")
	id, ok, err := s.promptStudentID()
	if err != nil || !ok {
		return err
	}
	confirm, err := s.prompt(fmt.Sprintf("Are you sure you want to delete student %d? (yes/no): ", id))
	if err != nil {
		return err
	}
	if strings.ToLower(confirm) != "yes" {
		s.logger.WithField("student_id", id).Debug("Delete cancelled by user")
		fmt.Fprintln(s.out, "Delete operation cancelled.")
		return nil
	}

	printResult(s.out, s.students.DeleteStudent(ctx, id))
	return nil
}

// promptStudentID reads an ID; ok is false (with a message printed) when it is not an integer.
func (s *Shell) promptStudentID() (id int64, ok bool, err error) {
	raw, err := s.prompt("Student ID: ")
	if err != nil {
		return 0, false, err
	}
	id, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.WithField("input", raw).Debug("Invalid student ID")
		fmt.Fprintln(s.out, "Invalid student ID. Please enter a number.")
		return 0, false, nil
	}
	return id, true, nil
}

// prompt writes label and returns the next trimmed input line.
func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("error reading input: %w", err)
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) finish(err error) error {
	if errors.Is(err, errInputClosed) {
		fmt.Fprintln(s.out)
		s.logger.Info("Input closed, leaving menu")
		return nil
	}
	return err
}
