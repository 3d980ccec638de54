package ports

import (
	"context"

	"github.com/talentoplus/hr-system/internal/core/domain"
)

// Notification is a message addressed to a single recipient.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

// Notifier delivers notifications. Delivery is best-effort; callers must not
// fail their own operation when Send returns an error.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// ResumeRenderer produces a downloadable résumé document for an employee.
type ResumeRenderer interface {
	Render(ctx context.Context, e *domain.Employee, departmentName string) ([]byte, error)
}
