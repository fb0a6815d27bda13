package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/payrollhq/payroll-engine/pkg/errors"
	"github.com/payrollhq/payroll-engine/pkg/utils"
)

const (
	SalaryStatusDraft     = "draft"
	SalaryStatusApproved  = "approved"
	SalaryStatusPaid      = "paid"
	SalaryStatusCancelled = "cancelled"
)

// Allowances are the additive salary components. Total is derived.
type Allowances struct {
	HRA       decimal.Decimal `json:"hra" db:"allowance_hra"`
	Transport decimal.Decimal `json:"transport" db:"allowance_transport"`
	Medical   decimal.Decimal `json:"medical" db:"allowance_medical"`
	Bonus     decimal.Decimal `json:"bonus" db:"allowance_bonus"`
	Other     decimal.Decimal `json:"other" db:"allowance_other"`
	Total     decimal.Decimal `json:"total" db:"allowance_total"`
}

// Deductions are the subtractive salary components. Advance is derived, the
// sum of the record's applied advance-salary installments, never an input;
// Total is derived too.
type Deductions struct {
	PF      decimal.Decimal `json:"pf" db:"deduction_pf"`
	ESI     decimal.Decimal `json:"esi" db:"deduction_esi"`
	Tax     decimal.Decimal `json:"tax" db:"deduction_tax"`
	Advance decimal.Decimal `json:"advance" db:"deduction_advance"`
	Other   decimal.Decimal `json:"other" db:"deduction_other"`
	Total   decimal.Decimal `json:"total" db:"deduction_total"`
}

type Overtime struct {
	Hours  decimal.Decimal `json:"hours" db:"overtime_hours"`
	Rate   decimal.Decimal `json:"rate" db:"overtime_rate"`
	Amount decimal.Decimal `json:"amount" db:"overtime_amount"`
}

// AdvanceDeduction is one applied installment recorded on a salary record.
type AdvanceDeduction struct {
	AdvanceID   uuid.UUID       `json:"advance_id" db:"advance_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
}

// SalaryRecord is one employee-month payroll computation, unique on
// (employee_id, month, year).
type SalaryRecord struct {
	ID                uuid.UUID          `json:"id" db:"id"`
	EmployeeID        string             `json:"employee_id" db:"employee_id"`
	EmployeeName      string             `json:"employee_name" db:"employee_name"`
	Month             string             `json:"month" db:"month"`
	Year              int                `json:"year" db:"year"`
	BasicSalary       decimal.Decimal    `json:"basic_salary" db:"basic_salary"`
	Allowances        Allowances         `json:"allowances"`
	Deductions        Deductions         `json:"deductions"`
	Overtime          Overtime           `json:"overtime"`
	WorkingDays       int                `json:"working_days" db:"working_days"`
	PresentDays       int                `json:"present_days" db:"present_days"`
	AbsentDays        int                `json:"absent_days" db:"absent_days"`
	TotalSalary       decimal.Decimal    `json:"total_salary" db:"total_salary"`
	NetSalary         decimal.Decimal    `json:"net_salary" db:"net_salary"`
	Status            string             `json:"status" db:"status"`
	AdvanceDeductions []AdvanceDeduction `json:"advance_deductions"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
}

// SalaryInputs are the raw caller-supplied fields for one employee-month.
// Working/present day counts are trusted inputs; attendance reconciliation
// happens upstream.
type SalaryInputs struct {
	EmployeeID   string
	EmployeeName string
	Month        string
	Year         int
	BasicSalary  decimal.Decimal
	Allowances   Allowances
	Deductions   Deductions
	Overtime     Overtime
	WorkingDays  int
	PresentDays  int
}

// ComputeSalaryRecord validates raw inputs and produces a fully-derived
// draft record.
func ComputeSalaryRecord(inputs SalaryInputs) (*SalaryRecord, error) {
	if inputs.EmployeeID == "" {
		return nil, customError.WrapValidationError("employee ID is required")
	}
	if !utils.ValidMonth(inputs.Month) {
		return nil, customError.WrapValidationError(fmt.Sprintf("month must be \"01\"..\"12\", got %q", inputs.Month))
	}
	if inputs.Year < 2020 {
		return nil, customError.WrapValidationError(fmt.Sprintf("year must be 2020 or later, got %d", inputs.Year))
	}
	if inputs.BasicSalary.IsNegative() {
		return nil, customError.WrapValidationError("basic salary must not be negative")
	}
	if inputs.WorkingDays < 0 || inputs.WorkingDays > 31 {
		return nil, customError.WrapValidationError(fmt.Sprintf("working days must be in [0,31], got %d", inputs.WorkingDays))
	}
	if inputs.PresentDays < 0 {
		return nil, customError.WrapValidationError("present days must not be negative")
	}
	// A present count above the working count means the caller fed us bad
	// attendance data; fail loudly instead of clamping absent days to zero.
	if inputs.PresentDays > inputs.WorkingDays {
		return nil, customError.WrapValidationError(
			fmt.Sprintf("present days (%d) exceed working days (%d)", inputs.PresentDays, inputs.WorkingDays))
	}
	if err := validateComponents(inputs.Allowances, inputs.Deductions, inputs.Overtime); err != nil {
		return nil, err
	}
	// The advance deduction is owned by settlement; a caller-supplied value
	// would be silently replaced by Recalculate, so refuse it outright.
	if !inputs.Deductions.Advance.IsZero() {
		return nil, customError.WrapValidationError("deductions.advance is derived from applied advance deductions and must not be supplied")
	}

	record := &SalaryRecord{
		ID:           uuid.New(),
		EmployeeID:   inputs.EmployeeID,
		EmployeeName: inputs.EmployeeName,
		Month:        inputs.Month,
		Year:         inputs.Year,
		BasicSalary:  inputs.BasicSalary,
		Allowances:   inputs.Allowances,
		Deductions:   inputs.Deductions,
		Overtime:     inputs.Overtime,
		WorkingDays:  inputs.WorkingDays,
		PresentDays:  inputs.PresentDays,
		Status:       SalaryStatusDraft,
	}
	record.Recalculate()

	return record, nil
}

func validateComponents(a Allowances, d Deductions, o Overtime) error {
	for name, v := range map[string]decimal.Decimal{
		"allowances.hra":       a.HRA,
		"allowances.transport": a.Transport,
		"allowances.medical":   a.Medical,
		"allowances.bonus":     a.Bonus,
		"allowances.other":     a.Other,
		"deductions.pf":        d.PF,
		"deductions.esi":       d.ESI,
		"deductions.tax":       d.Tax,
		"deductions.advance":   d.Advance,
		"deductions.other":     d.Other,
		"overtime.hours":       o.Hours,
		"overtime.rate":        o.Rate,
	} {
		if v.IsNegative() {
			return customError.WrapValidationError(fmt.Sprintf("%s must not be negative", name))
		}
	}
	return nil
}

// Recalculate re-derives every computed field from the raw inputs and the
// advanceDeductions list. It must be called after any input mutation; the
// derived fields are never bumped in place, so drift cannot accumulate.
func (r *SalaryRecord) Recalculate() {
	r.Allowances.Total = r.Allowances.HRA.
		Add(r.Allowances.Transport).
		Add(r.Allowances.Medical).
		Add(r.Allowances.Bonus).
		Add(r.Allowances.Other)

	var advanceTotal decimal.Decimal
	for _, d := range r.AdvanceDeductions {
		advanceTotal = advanceTotal.Add(d.Amount)
	}
	r.Deductions.Advance = advanceTotal

	r.Deductions.Total = r.Deductions.PF.
		Add(r.Deductions.ESI).
		Add(r.Deductions.Tax).
		Add(r.Deductions.Advance).
		Add(r.Deductions.Other)

	r.Overtime.Amount = r.Overtime.Hours.Mul(r.Overtime.Rate)

	r.AbsentDays = r.WorkingDays - r.PresentDays
	r.TotalSalary = r.BasicSalary.Add(r.Allowances.Total).Add(r.Overtime.Amount)
	r.NetSalary = r.TotalSalary.Sub(r.Deductions.Total)
}

// ApplyProRating scales the basic salary down to the attended fraction of
// the month and re-derives all totals. Full attendance is a no-op.
func ApplyProRating(r *SalaryRecord) error {
	if r.WorkingDays == 0 {
		return customError.WrapDivisionByZero("cannot pro-rate a record with zero working days")
	}
	if r.PresentDays >= r.WorkingDays {
		return nil
	}

	r.BasicSalary = r.BasicSalary.
		Div(decimal.NewFromInt(int64(r.WorkingDays))).
		Mul(decimal.NewFromInt(int64(r.PresentDays))).
		Round(2)
	r.Recalculate()

	return nil
}

// Approve moves a draft record to approved.
func (r *SalaryRecord) Approve() error {
	if r.Status != SalaryStatusDraft {
		return customError.WrapInvalidStateTransition("approve salary record", r.Status)
	}
	r.Status = SalaryStatusApproved
	return nil
}

// MarkPaid moves an approved record to paid. Paid is terminal.
func (r *SalaryRecord) MarkPaid() error {
	if r.Status != SalaryStatusApproved {
		return customError.WrapInvalidStateTransition("pay salary record", r.Status)
	}
	r.Status = SalaryStatusPaid
	return nil
}

// Cancel is allowed from draft or approved. Cancelled is terminal.
func (r *SalaryRecord) Cancel() error {
	if r.Status != SalaryStatusDraft && r.Status != SalaryStatusApproved {
		return customError.WrapInvalidStateTransition("cancel salary record", r.Status)
	}
	r.Status = SalaryStatusCancelled
	return nil
}

// PeriodKey returns the record's "YYYY-MM" settlement period.
func (r *SalaryRecord) PeriodKey() string {
	return utils.MonthKey(r.Year, r.Month)
}
