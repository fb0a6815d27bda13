package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/payrollhq/payroll-engine/internal/domain"
)

// SalaryRepository defines the interface for salary record data operations
type SalaryRepository interface {
	// Create inserts a new salary record
	Create(ctx context.Context, record *domain.SalaryRecord) error

	// GetByPeriod retrieves the record for one (employee, month, year) triple
	GetByPeriod(ctx context.Context, employeeID, month string, year int) (*domain.SalaryRecord, error)

	// Update rewrites a salary record and its advance-deduction entries
	Update(ctx context.Context, record *domain.SalaryRecord) error

	// ListApprovedByPeriod lists approved records for a period, for the
	// scheduled settlement run
	ListApprovedByPeriod(ctx context.Context, month string, year int) ([]*domain.SalaryRecord, error)

	// SaveSettlement persists a settled record and the touched advances in
	// one transaction. A partial write here is the worst failure mode of
	// the engine.
	SaveSettlement(ctx context.Context, record *domain.SalaryRecord, advances []*domain.AdvanceSalary) error
}

// AdvanceRepository defines the interface for advance salary data operations
type AdvanceRepository interface {
	// Create inserts a new advance
	Create(ctx context.Context, advance *domain.AdvanceSalary) error

	// GetByID retrieves an advance by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AdvanceSalary, error)

	// GetByEmployeeID retrieves all advances for an employee
	GetByEmployeeID(ctx context.Context, employeeID string) ([]*domain.AdvanceSalary, error)

	// CountOutstanding counts pending/approved advances for an employee
	CountOutstanding(ctx context.Context, employeeID string) (int, error)

	// Update rewrites an advance
	Update(ctx context.Context, advance *domain.AdvanceSalary) error

	// MarkPaid persists the paid transition with a compare-and-swap on
	// status=approved; returns false when a concurrent writer won
	MarkPaid(ctx context.Context, advance *domain.AdvanceSalary) (bool, error)

	// Delete removes an advance row
	Delete(ctx context.Context, id uuid.UUID) error
}
