package domain

import (
	"github.com/shopspring/decimal"
)

// DTOs for requests and responses

type CreateSalaryRecordRequest struct {
	EmployeeID   string          `json:"employee_id" validate:"required"`
	EmployeeName string          `json:"employee_name"`
	Month        string          `json:"month" validate:"required,len=2"`
	Year         int             `json:"year" validate:"required,gte=2020"`
	BasicSalary  decimal.Decimal `json:"basic_salary" validate:"decimal_gte=0"`
	Allowances   Allowances      `json:"allowances"`
	Deductions   Deductions      `json:"deductions"`
	Overtime     Overtime        `json:"overtime"`
	WorkingDays  int             `json:"working_days" validate:"gte=0,lte=31"`
	PresentDays  int             `json:"present_days" validate:"gte=0"`
	ProRate      bool            `json:"pro_rate"`
}

type CreateSalaryRecordResponse struct {
	Record *SalaryRecord `json:"record"`
}

type RequestAdvanceRequest struct {
	EmployeeID        string          `json:"employee_id" validate:"required"`
	EmployeeName      string          `json:"employee_name"`
	Amount            decimal.Decimal `json:"amount" validate:"required,decimal_gt=0"`
	Reason            string          `json:"reason" validate:"required"`
	DeductionSchedule string          `json:"deduction_schedule" validate:"required,oneof=single_month two_months three_months custom"`
	MonthlyDeduction  decimal.Decimal `json:"monthly_deduction"`
}

type ApproveAdvanceRequest struct {
	ApproverID string `json:"approver_id" validate:"required"`
}

type RejectAdvanceRequest struct {
	ApproverID      string `json:"approver_id" validate:"required"`
	RejectionReason string `json:"rejection_reason" validate:"required"`
}

type MarkAdvancePaidRequest struct {
	PaymentMethod       string `json:"payment_method" validate:"required"`
	DeductionStartMonth string `json:"deduction_start_month" validate:"required,len=7"`
}

type SettlementResponse struct {
	Record   *SalaryRecord    `json:"record"`
	Advances []*AdvanceSalary `json:"advances"`
}

type PendingAdvancesResponse struct {
	EmployeeID string           `json:"employee_id"`
	Advances   []*AdvanceSalary `json:"advances"`
}

type OutstandingResponse struct {
	EmployeeID  string          `json:"employee_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
