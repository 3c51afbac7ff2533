package console

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"student_manager/internal/app"
	"student_manager/internal/domain/student"
)

const tableWidth = 80

func renderStudents(out io.Writer, students []*student.Student) {
	fmt.Fprintln(out, "\n"+strings.Repeat("=", tableWidth))
	fmt.Fprintln(out, "ALL STUDENTS")
	fmt.Fprintln(out, strings.Repeat("=", tableWidth))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFirst Name\tLast Name\tEmail\tEnrollment Date")
	fmt.Fprintln(tw, "--\t----------\t---------\t-----\t---------------")
	for _, st := range students {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			st.ID, st.FirstName, st.LastName, st.Email, st.EnrollmentDate.Format(app.DateLayout))
	}
	tw.Flush()

	fmt.Fprintf(out, "\nTotal students: %d\n", len(students))
	fmt.Fprintln(out, strings.Repeat("=", tableWidth))
}

func printResult(out io.Writer, res app.Result) {
	mark := "✗"
	if res.OK() {
		mark = "✓"
	}
	fmt.Fprintf(out, "\n%s %s\n", mark, res.Message)
}
