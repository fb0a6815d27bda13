package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/payrollhq/payroll-engine/pkg/errors"
)

func validInputs() SalaryInputs {
	return SalaryInputs{
		EmployeeID:   "EMP001",
		EmployeeName: "Asha Verma",
		Month:        "03",
		Year:         2024,
		BasicSalary:  decimal.NewFromInt(30000),
		Allowances: Allowances{
			HRA:       decimal.NewFromInt(5000),
			Transport: decimal.NewFromInt(1200),
			Medical:   decimal.NewFromInt(800),
		},
		Deductions: Deductions{
			PF:  decimal.NewFromInt(1800),
			Tax: decimal.NewFromInt(2500),
		},
		Overtime: Overtime{
			Hours: decimal.NewFromInt(10),
			Rate:  decimal.NewFromInt(150),
		},
		WorkingDays: 22,
		PresentDays: 22,
	}
}

func TestComputeSalaryRecord(t *testing.T) {
	record, err := ComputeSalaryRecord(validInputs())
	require.NoError(t, err)

	assert.Equal(t, SalaryStatusDraft, record.Status)
	assert.True(t, record.Allowances.Total.Equal(decimal.NewFromInt(7000)))
	assert.True(t, record.Deductions.Total.Equal(decimal.NewFromInt(4300)))
	assert.True(t, record.Overtime.Amount.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, 0, record.AbsentDays)
	assert.True(t, record.TotalSalary.Equal(decimal.NewFromInt(38500)))
	assert.True(t, record.NetSalary.Equal(decimal.NewFromInt(34200)))
}

func TestComputeSalaryRecord_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SalaryInputs)
	}{
		{"missing employee", func(in *SalaryInputs) { in.EmployeeID = "" }},
		{"bad month", func(in *SalaryInputs) { in.Month = "3" }},
		{"year before 2020", func(in *SalaryInputs) { in.Year = 2019 }},
		{"negative basic", func(in *SalaryInputs) { in.BasicSalary = decimal.NewFromInt(-1) }},
		{"working days above 31", func(in *SalaryInputs) { in.WorkingDays = 32 }},
		{"negative present days", func(in *SalaryInputs) { in.PresentDays = -1 }},
		{"present above working", func(in *SalaryInputs) { in.PresentDays = 23 }},
		{"negative allowance", func(in *SalaryInputs) { in.Allowances.Bonus = decimal.NewFromInt(-5) }},
		{"negative deduction", func(in *SalaryInputs) { in.Deductions.ESI = decimal.NewFromInt(-5) }},
		{"negative overtime rate", func(in *SalaryInputs) { in.Overtime.Rate = decimal.NewFromInt(-5) }},
		{"advance deduction supplied", func(in *SalaryInputs) { in.Deductions.Advance = decimal.NewFromInt(100) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := validInputs()
			tt.mutate(&inputs)

			_, err := ComputeSalaryRecord(inputs)
			assert.Error(t, err)
			assert.Equal(t, customError.ErrCodeValidation, customError.CodeOf(err))
		})
	}
}

// Net and total salary must stay consistent with their formulas after any
// mutation followed by Recalculate.
func TestRecalculate_DerivationConsistency(t *testing.T) {
	record, err := ComputeSalaryRecord(validInputs())
	require.NoError(t, err)

	record.Allowances.Bonus = decimal.NewFromInt(2000)
	record.Deductions.Other = decimal.NewFromInt(300)
	record.Overtime.Hours = decimal.NewFromInt(4)
	record.Recalculate()

	assert.True(t, record.TotalSalary.Equal(
		record.BasicSalary.Add(record.Allowances.Total).Add(record.Overtime.Amount)))
	assert.True(t, record.NetSalary.Equal(record.TotalSalary.Sub(record.Deductions.Total)))
	assert.True(t, record.Overtime.Amount.Equal(decimal.NewFromInt(600)))
}

func TestRecalculate_AdvanceDeductionsDriveAdvanceTotal(t *testing.T) {
	record, err := ComputeSalaryRecord(validInputs())
	require.NoError(t, err)

	before := record.NetSalary
	record.AdvanceDeductions = append(record.AdvanceDeductions, AdvanceDeduction{
		Amount:      decimal.NewFromInt(500),
		Description: "installment",
	})
	record.Recalculate()

	assert.True(t, record.Deductions.Advance.Equal(decimal.NewFromInt(500)))
	assert.True(t, record.NetSalary.Equal(before.Sub(decimal.NewFromInt(500))))
}

func TestApplyProRating(t *testing.T) {
	inputs := validInputs()
	inputs.PresentDays = 11
	record, err := ComputeSalaryRecord(inputs)
	require.NoError(t, err)

	require.NoError(t, ApplyProRating(record))

	assert.True(t, record.BasicSalary.Equal(decimal.NewFromInt(15000)),
		"expected 30000/22*11 = 15000, got %v", record.BasicSalary)
	assert.Equal(t, 11, record.AbsentDays)
	assert.True(t, record.NetSalary.Equal(record.TotalSalary.Sub(record.Deductions.Total)))
}

func TestApplyProRating_FullAttendanceIsNoOp(t *testing.T) {
	record, err := ComputeSalaryRecord(validInputs())
	require.NoError(t, err)

	basic := record.BasicSalary
	require.NoError(t, ApplyProRating(record))
	assert.True(t, record.BasicSalary.Equal(basic))
}

func TestApplyProRating_ZeroWorkingDays(t *testing.T) {
	inputs := validInputs()
	inputs.WorkingDays = 0
	inputs.PresentDays = 0
	record, err := ComputeSalaryRecord(inputs)
	require.NoError(t, err)

	err = ApplyProRating(record)
	assert.Error(t, err)
	assert.Equal(t, customError.ErrCodeDivisionByZero, customError.CodeOf(err))
}

func TestSalaryRecordStatusTransitions(t *testing.T) {
	record, err := ComputeSalaryRecord(validInputs())
	require.NoError(t, err)

	// draft -> approved -> paid
	assert.NoError(t, record.Approve())
	assert.Equal(t, SalaryStatusApproved, record.Status)
	assert.Error(t, record.Approve())

	assert.NoError(t, record.MarkPaid())
	assert.Equal(t, SalaryStatusPaid, record.Status)

	// paid is terminal
	assert.Error(t, record.MarkPaid())
	assert.Error(t, record.Cancel())

	// cancel from draft
	record2, err := ComputeSalaryRecord(validInputs())
	require.NoError(t, err)
	assert.NoError(t, record2.Cancel())
	assert.Equal(t, SalaryStatusCancelled, record2.Status)
	assert.Error(t, record2.Approve())
}

func TestPeriodKey(t *testing.T) {
	record, err := ComputeSalaryRecord(validInputs())
	require.NoError(t, err)
	assert.Equal(t, "2024-03", record.PeriodKey())
}
