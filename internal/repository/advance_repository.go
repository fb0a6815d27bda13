package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/payrollhq/payroll-engine/internal/domain"
)

type advanceRepository struct {
	db *sqlx.DB
}

func NewAdvanceRepository(db *sqlx.DB) AdvanceRepository {
	return &advanceRepository{db: db}
}

const insertAdvanceQuery = `
	INSERT INTO advance_salaries (
		id, employee_id, employee_name, amount, reason, status,
		deduction_schedule, monthly_deduction, total_deducted, remaining_amount, is_fully_deducted,
		deduction_start_month, deduction_end_month, approved_by, approved_at,
		rejection_reason, payment_method, payment_date, created_at, updated_at
	) VALUES (
		:id, :employee_id, :employee_name, :amount, :reason, :status,
		:deduction_schedule, :monthly_deduction, :total_deducted, :remaining_amount, :is_fully_deducted,
		:deduction_start_month, :deduction_end_month, :approved_by, :approved_at,
		:rejection_reason, :payment_method, :payment_date, :created_at, :updated_at
	)
`

const updateAdvanceQuery = `
	UPDATE advance_salaries SET
		employee_name = :employee_name, amount = :amount, reason = :reason, status = :status,
		deduction_schedule = :deduction_schedule, monthly_deduction = :monthly_deduction,
		total_deducted = :total_deducted, remaining_amount = :remaining_amount, is_fully_deducted = :is_fully_deducted,
		deduction_start_month = :deduction_start_month, deduction_end_month = :deduction_end_month,
		approved_by = :approved_by, approved_at = :approved_at, rejection_reason = :rejection_reason,
		payment_method = :payment_method, payment_date = :payment_date, updated_at = :updated_at
	WHERE id = :id
`

func (r *advanceRepository) Create(ctx context.Context, advance *domain.AdvanceSalary) error {
	now := time.Now()
	advance.CreatedAt = now
	advance.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, insertAdvanceQuery, advance)
	return err
}

func (r *advanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdvanceSalary, error) {
	query := `SELECT * FROM advance_salaries WHERE id = $1`

	var advance domain.AdvanceSalary
	if err := r.db.GetContext(ctx, &advance, query, id); err != nil {
		return nil, err
	}

	return &advance, nil
}

func (r *advanceRepository) GetByEmployeeID(ctx context.Context, employeeID string) ([]*domain.AdvanceSalary, error) {
	query := `
		SELECT * FROM advance_salaries
		WHERE employee_id = $1
		ORDER BY created_at
	`

	var advances []*domain.AdvanceSalary
	if err := r.db.SelectContext(ctx, &advances, query, employeeID); err != nil {
		return nil, err
	}

	return advances, nil
}

func (r *advanceRepository) CountOutstanding(ctx context.Context, employeeID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM advance_salaries
		WHERE employee_id = $1 AND status IN ($2, $3)
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, employeeID,
		domain.AdvanceStatusPending, domain.AdvanceStatusApproved)

	return count, err
}

func (r *advanceRepository) Update(ctx context.Context, advance *domain.AdvanceSalary) error {
	advance.UpdatedAt = time.Now()

	_, err := r.db.NamedExecContext(ctx, updateAdvanceQuery, advance)
	return err
}

// MarkPaid guards the paid transition at write time: the status predicate
// in the WHERE clause makes two concurrent payouts impossible even when
// both read status=approved.
func (r *advanceRepository) MarkPaid(ctx context.Context, advance *domain.AdvanceSalary) (bool, error) {
	advance.UpdatedAt = time.Now()

	query := `
		UPDATE advance_salaries SET
			status = :status, payment_method = :payment_method, payment_date = :payment_date,
			total_deducted = :total_deducted, remaining_amount = :remaining_amount, is_fully_deducted = :is_fully_deducted,
			deduction_start_month = :deduction_start_month, deduction_end_month = :deduction_end_month,
			updated_at = :updated_at
		WHERE id = :id AND status = 'approved'
	`

	result, err := r.db.NamedExecContext(ctx, query, advance)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func (r *advanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM advance_salaries WHERE id = $1`, id)
	return err
}
