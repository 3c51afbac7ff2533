package student

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Student entities.
// Implementations are not safe for concurrent use.
type Repository interface {
	// ListAll returns every student ordered by ID ascending.
	ListAll(ctx context.Context) ([]*Student, error)
	// Create inserts the student and sets student.ID to the store-assigned value.
	Create(ctx context.Context, student *Student) error
	// UpdateEmail changes only the email column. The returned Student carries
	// the names read by the existence check and the new email.
	UpdateEmail(ctx context.Context, id int64, email string) (*Student, error)
	Delete(ctx context.Context, id int64) (*Student, error)
}
