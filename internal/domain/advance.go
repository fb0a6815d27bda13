package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/payrollhq/payroll-engine/pkg/errors"
	"github.com/payrollhq/payroll-engine/pkg/utils"
)

const (
	AdvanceStatusPending  = "pending"
	AdvanceStatusApproved = "approved"
	AdvanceStatusRejected = "rejected"
	AdvanceStatusPaid     = "paid"
)

// AdvanceSalary is one cash advance granted to one employee, recovered via
// monthly payroll deductions once paid out.
type AdvanceSalary struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	EmployeeID          string          `json:"employee_id" db:"employee_id"`
	EmployeeName        string          `json:"employee_name" db:"employee_name"`
	Amount              decimal.Decimal `json:"amount" db:"amount"`
	Reason              string          `json:"reason" db:"reason"`
	Status              string          `json:"status" db:"status"`
	DeductionSchedule   string          `json:"deduction_schedule" db:"deduction_schedule"`
	MonthlyDeduction    decimal.Decimal `json:"monthly_deduction" db:"monthly_deduction"`
	TotalDeducted       decimal.Decimal `json:"total_deducted" db:"total_deducted"`
	RemainingAmount     decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	IsFullyDeducted     bool            `json:"is_fully_deducted" db:"is_fully_deducted"`
	DeductionStartMonth string          `json:"deduction_start_month" db:"deduction_start_month"`
	DeductionEndMonth   string          `json:"deduction_end_month" db:"deduction_end_month"`
	ApprovedBy          string          `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt          *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
	RejectionReason     string          `json:"rejection_reason,omitempty" db:"rejection_reason"`
	PaymentMethod       string          `json:"payment_method,omitempty" db:"payment_method"`
	PaymentDate         *time.Time      `json:"payment_date,omitempty" db:"payment_date"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// IsOutstanding reports whether the advance blocks a new request from the
// same employee: requested or approved but not yet paid out.
func (a *AdvanceSalary) IsOutstanding() bool {
	return a.Status == AdvanceStatusPending || a.Status == AdvanceStatusApproved
}

// NewAdvanceSalary builds a pending advance with its monthly installment
// derived from the schedule. The one-outstanding-per-employee rule is
// enforced by the service against the stored advance set.
func NewAdvanceSalary(employeeID, employeeName string, amount decimal.Decimal, reason, schedule string, customMonthly decimal.Decimal) (*AdvanceSalary, error) {
	if employeeID == "" {
		return nil, customError.WrapValidationError("employee ID is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, customError.WrapValidationError("advance amount must be positive")
	}

	monthly, err := utils.DeriveMonthlyDeduction(amount, schedule, customMonthly)
	if err != nil {
		return nil, err
	}

	return &AdvanceSalary{
		ID:                uuid.New(),
		EmployeeID:        employeeID,
		EmployeeName:      employeeName,
		Amount:            amount,
		Reason:            reason,
		Status:            AdvanceStatusPending,
		DeductionSchedule: schedule,
		MonthlyDeduction:  monthly,
		TotalDeducted:     decimal.Zero,
		RemainingAmount:   amount,
	}, nil
}

// Approve moves a pending advance to approved, recording the approver.
func (a *AdvanceSalary) Approve(approverID string) error {
	if a.Status != AdvanceStatusPending {
		return customError.WrapInvalidStateTransition("approve advance", a.Status)
	}

	now := time.Now()
	a.Status = AdvanceStatusApproved
	a.ApprovedBy = approverID
	a.ApprovedAt = &now

	return nil
}

// Reject is allowed while the money has not left the company: from pending,
// or from approved before payout.
func (a *AdvanceSalary) Reject(approverID, rejectionReason string) error {
	if a.Status != AdvanceStatusPending && a.Status != AdvanceStatusApproved {
		return customError.WrapInvalidStateTransition("reject advance", a.Status)
	}

	a.Status = AdvanceStatusRejected
	a.ApprovedBy = approverID
	a.RejectionReason = rejectionReason

	return nil
}

// MarkPaid records the payout of an approved advance. From this point the
// liability is live: remainingAmount is re-asserted to the full amount in
// case the advance was edited between creation and payout, and the
// deduction window opens at startMonth.
func (a *AdvanceSalary) MarkPaid(paymentMethod, deductionStartMonth string) error {
	if a.Status != AdvanceStatusApproved {
		return customError.WrapInvalidStateTransition("mark advance paid", a.Status)
	}
	if _, _, err := utils.ParseMonthKey(deductionStartMonth); err != nil {
		return err
	}

	installments := utils.InstallmentCount(a.Amount, a.MonthlyDeduction)
	endMonth, err := utils.AddMonths(deductionStartMonth, installments-1)
	if err != nil {
		return err
	}

	now := time.Now()
	a.Status = AdvanceStatusPaid
	a.PaymentMethod = paymentMethod
	a.PaymentDate = &now
	a.TotalDeducted = decimal.Zero
	a.RemainingAmount = a.Amount
	a.IsFullyDeducted = false
	a.DeductionStartMonth = deductionStartMonth
	a.DeductionEndMonth = endMonth

	return nil
}

// CanDelete reports whether deletion is permitted. Approved and paid
// advances are never deletable: approval is an audit record and payment is
// in-flight money.
func (a *AdvanceSalary) CanDelete() error {
	if a.Status != AdvanceStatusPending && a.Status != AdvanceStatusRejected {
		return customError.WrapInvalidStateTransition("delete advance", a.Status)
	}
	return nil
}

// IsEligibleForDeduction reports whether the advance can be settled against
// the given "YYYY-MM" period: paid out, not yet fully recovered, and the
// deduction window has started.
func (a *AdvanceSalary) IsEligibleForDeduction(targetMonthKey string) bool {
	if a.Status != AdvanceStatusPaid || a.IsFullyDeducted {
		return false
	}
	return utils.CompareMonthKeys(targetMonthKey, a.DeductionStartMonth) >= 0
}

// ApplyDeduction records one settled installment against the advance.
// The amount must already be capped at the remaining balance; a deduction
// that would push the balance negative is rejected.
func (a *AdvanceSalary) ApplyDeduction(amount decimal.Decimal) error {
	if a.Status != AdvanceStatusPaid {
		return customError.WrapInvalidStateTransition("deduct from advance", a.Status)
	}
	if a.IsFullyDeducted {
		return customError.WrapInvalidStateTransition("deduct from advance", "fully deducted")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return customError.WrapValidationError("deduction amount must be positive")
	}
	if amount.GreaterThan(a.RemainingAmount) {
		return customError.WrapValidationError("deduction amount exceeds remaining balance")
	}

	a.TotalDeducted = a.TotalDeducted.Add(amount)
	a.RemainingAmount = a.RemainingAmount.Sub(amount)
	if a.RemainingAmount.LessThanOrEqual(decimal.Zero) {
		a.RemainingAmount = decimal.Zero
		a.IsFullyDeducted = true
	}

	return nil
}
