package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/payrollhq/payroll-engine/internal/domain"
)

type salaryRepository struct {
	db *sqlx.DB
}

func NewSalaryRepository(db *sqlx.DB) SalaryRepository {
	return &salaryRepository{db: db}
}

// salaryRow flattens the nested allowance/deduction/overtime groups to the
// columns of the salary_records table.
type salaryRow struct {
	ID                 uuid.UUID       `db:"id"`
	EmployeeID         string          `db:"employee_id"`
	EmployeeName       string          `db:"employee_name"`
	Month              string          `db:"month"`
	Year               int             `db:"year"`
	BasicSalary        decimal.Decimal `db:"basic_salary"`
	AllowanceHRA       decimal.Decimal `db:"allowance_hra"`
	AllowanceTransport decimal.Decimal `db:"allowance_transport"`
	AllowanceMedical   decimal.Decimal `db:"allowance_medical"`
	AllowanceBonus     decimal.Decimal `db:"allowance_bonus"`
	AllowanceOther     decimal.Decimal `db:"allowance_other"`
	AllowanceTotal     decimal.Decimal `db:"allowance_total"`
	DeductionPF        decimal.Decimal `db:"deduction_pf"`
	DeductionESI       decimal.Decimal `db:"deduction_esi"`
	DeductionTax       decimal.Decimal `db:"deduction_tax"`
	DeductionAdvance   decimal.Decimal `db:"deduction_advance"`
	DeductionOther     decimal.Decimal `db:"deduction_other"`
	DeductionTotal     decimal.Decimal `db:"deduction_total"`
	OvertimeHours      decimal.Decimal `db:"overtime_hours"`
	OvertimeRate       decimal.Decimal `db:"overtime_rate"`
	OvertimeAmount     decimal.Decimal `db:"overtime_amount"`
	WorkingDays        int             `db:"working_days"`
	PresentDays        int             `db:"present_days"`
	AbsentDays         int             `db:"absent_days"`
	TotalSalary        decimal.Decimal `db:"total_salary"`
	NetSalary          decimal.Decimal `db:"net_salary"`
	Status             string          `db:"status"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

type deductionRow struct {
	SalaryRecordID uuid.UUID       `db:"salary_record_id"`
	AdvanceID      uuid.UUID       `db:"advance_id"`
	Amount         decimal.Decimal `db:"amount"`
	Description    string          `db:"description"`
	Position       int             `db:"position"`
}

func toSalaryRow(r *domain.SalaryRecord) *salaryRow {
	return &salaryRow{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		EmployeeName:       r.EmployeeName,
		Month:              r.Month,
		Year:               r.Year,
		BasicSalary:        r.BasicSalary,
		AllowanceHRA:       r.Allowances.HRA,
		AllowanceTransport: r.Allowances.Transport,
		AllowanceMedical:   r.Allowances.Medical,
		AllowanceBonus:     r.Allowances.Bonus,
		AllowanceOther:     r.Allowances.Other,
		AllowanceTotal:     r.Allowances.Total,
		DeductionPF:        r.Deductions.PF,
		DeductionESI:       r.Deductions.ESI,
		DeductionTax:       r.Deductions.Tax,
		DeductionAdvance:   r.Deductions.Advance,
		DeductionOther:     r.Deductions.Other,
		DeductionTotal:     r.Deductions.Total,
		OvertimeHours:      r.Overtime.Hours,
		OvertimeRate:       r.Overtime.Rate,
		OvertimeAmount:     r.Overtime.Amount,
		WorkingDays:        r.WorkingDays,
		PresentDays:        r.PresentDays,
		AbsentDays:         r.AbsentDays,
		TotalSalary:        r.TotalSalary,
		NetSalary:          r.NetSalary,
		Status:             r.Status,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (row *salaryRow) toDomain(deductions []deductionRow) *domain.SalaryRecord {
	record := &domain.SalaryRecord{
		ID:           row.ID,
		EmployeeID:   row.EmployeeID,
		EmployeeName: row.EmployeeName,
		Month:        row.Month,
		Year:         row.Year,
		BasicSalary:  row.BasicSalary,
		Allowances: domain.Allowances{
			HRA:       row.AllowanceHRA,
			Transport: row.AllowanceTransport,
			Medical:   row.AllowanceMedical,
			Bonus:     row.AllowanceBonus,
			Other:     row.AllowanceOther,
			Total:     row.AllowanceTotal,
		},
		Deductions: domain.Deductions{
			PF:      row.DeductionPF,
			ESI:     row.DeductionESI,
			Tax:     row.DeductionTax,
			Advance: row.DeductionAdvance,
			Other:   row.DeductionOther,
			Total:   row.DeductionTotal,
		},
		Overtime: domain.Overtime{
			Hours:  row.OvertimeHours,
			Rate:   row.OvertimeRate,
			Amount: row.OvertimeAmount,
		},
		WorkingDays: row.WorkingDays,
		PresentDays: row.PresentDays,
		AbsentDays:  row.AbsentDays,
		TotalSalary: row.TotalSalary,
		NetSalary:   row.NetSalary,
		Status:      row.Status,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}

	record.AdvanceDeductions = make([]domain.AdvanceDeduction, 0, len(deductions))
	for _, d := range deductions {
		record.AdvanceDeductions = append(record.AdvanceDeductions, domain.AdvanceDeduction{
			AdvanceID:   d.AdvanceID,
			Amount:      d.Amount,
			Description: d.Description,
		})
	}

	return record
}

const insertSalaryQuery = `
	INSERT INTO salary_records (
		id, employee_id, employee_name, month, year, basic_salary,
		allowance_hra, allowance_transport, allowance_medical, allowance_bonus, allowance_other, allowance_total,
		deduction_pf, deduction_esi, deduction_tax, deduction_advance, deduction_other, deduction_total,
		overtime_hours, overtime_rate, overtime_amount,
		working_days, present_days, absent_days, total_salary, net_salary, status, created_at, updated_at
	) VALUES (
		:id, :employee_id, :employee_name, :month, :year, :basic_salary,
		:allowance_hra, :allowance_transport, :allowance_medical, :allowance_bonus, :allowance_other, :allowance_total,
		:deduction_pf, :deduction_esi, :deduction_tax, :deduction_advance, :deduction_other, :deduction_total,
		:overtime_hours, :overtime_rate, :overtime_amount,
		:working_days, :present_days, :absent_days, :total_salary, :net_salary, :status, :created_at, :updated_at
	)
`

const updateSalaryQuery = `
	UPDATE salary_records SET
		employee_name = :employee_name, basic_salary = :basic_salary,
		allowance_hra = :allowance_hra, allowance_transport = :allowance_transport, allowance_medical = :allowance_medical,
		allowance_bonus = :allowance_bonus, allowance_other = :allowance_other, allowance_total = :allowance_total,
		deduction_pf = :deduction_pf, deduction_esi = :deduction_esi, deduction_tax = :deduction_tax,
		deduction_advance = :deduction_advance, deduction_other = :deduction_other, deduction_total = :deduction_total,
		overtime_hours = :overtime_hours, overtime_rate = :overtime_rate, overtime_amount = :overtime_amount,
		working_days = :working_days, present_days = :present_days, absent_days = :absent_days,
		total_salary = :total_salary, net_salary = :net_salary, status = :status, updated_at = :updated_at
	WHERE id = :id
`

func (r *salaryRepository) Create(ctx context.Context, record *domain.SalaryRecord) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, insertSalaryQuery, toSalaryRow(record))
	return err
}

func (r *salaryRepository) GetByPeriod(ctx context.Context, employeeID, month string, year int) (*domain.SalaryRecord, error) {
	query := `
		SELECT * FROM salary_records
		WHERE employee_id = $1 AND month = $2 AND year = $3
	`

	var row salaryRow
	if err := r.db.GetContext(ctx, &row, query, employeeID, month, year); err != nil {
		return nil, err
	}

	deductions, err := r.getDeductions(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	return row.toDomain(deductions), nil
}

func (r *salaryRepository) getDeductions(ctx context.Context, recordID uuid.UUID) ([]deductionRow, error) {
	query := `
		SELECT salary_record_id, advance_id, amount, description, position
		FROM salary_advance_deductions
		WHERE salary_record_id = $1
		ORDER BY position
	`

	var rows []deductionRow
	if err := r.db.SelectContext(ctx, &rows, query, recordID); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *salaryRepository) Update(ctx context.Context, record *domain.SalaryRecord) error {
	record.UpdatedAt = time.Now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := updateSalaryInTx(ctx, tx, record); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *salaryRepository) ListApprovedByPeriod(ctx context.Context, month string, year int) ([]*domain.SalaryRecord, error) {
	query := `
		SELECT * FROM salary_records
		WHERE month = $1 AND year = $2 AND status = $3
		ORDER BY employee_id
	`

	var rows []salaryRow
	if err := r.db.SelectContext(ctx, &rows, query, month, year, domain.SalaryStatusApproved); err != nil {
		return nil, err
	}

	records := make([]*domain.SalaryRecord, 0, len(rows))
	for i := range rows {
		deductions, err := r.getDeductions(ctx, rows[i].ID)
		if err != nil {
			return nil, err
		}
		records = append(records, rows[i].toDomain(deductions))
	}

	return records, nil
}

// SaveSettlement writes the settled salary record and every touched advance
// inside one transaction so the dual write commits or rolls back as a unit.
func (r *salaryRepository) SaveSettlement(ctx context.Context, record *domain.SalaryRecord, advances []*domain.AdvanceSalary) error {
	record.UpdatedAt = time.Now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := updateSalaryInTx(ctx, tx, record); err != nil {
		return err
	}

	for _, advance := range advances {
		advance.UpdatedAt = record.UpdatedAt
		if _, err := tx.NamedExecContext(ctx, updateAdvanceQuery, advance); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func updateSalaryInTx(ctx context.Context, tx *sqlx.Tx, record *domain.SalaryRecord) error {
	if _, err := tx.NamedExecContext(ctx, updateSalaryQuery, toSalaryRow(record)); err != nil {
		return err
	}

	// Rewrite the deduction entries wholesale; ordering is preserved via
	// the position column.
	if _, err := tx.ExecContext(ctx, `DELETE FROM salary_advance_deductions WHERE salary_record_id = $1`, record.ID); err != nil {
		return err
	}

	insertDeduction := `
		INSERT INTO salary_advance_deductions (salary_record_id, advance_id, amount, description, position)
		VALUES (:salary_record_id, :advance_id, :amount, :description, :position)
	`
	for i, d := range record.AdvanceDeductions {
		row := deductionRow{
			SalaryRecordID: record.ID,
			AdvanceID:      d.AdvanceID,
			Amount:         d.Amount,
			Description:    d.Description,
			Position:       i,
		}
		if _, err := tx.NamedExecContext(ctx, insertDeduction, row); err != nil {
			return err
		}
	}

	return nil
}
