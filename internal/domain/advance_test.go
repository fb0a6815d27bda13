package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/payrollhq/payroll-engine/pkg/errors"
	"github.com/payrollhq/payroll-engine/pkg/utils"
)

func newTestAdvance(t *testing.T, amount int64, schedule string) *AdvanceSalary {
	t.Helper()
	advance, err := NewAdvanceSalary("EMP001", "Asha Verma",
		decimal.NewFromInt(amount), "medical emergency", schedule, decimal.Zero)
	require.NoError(t, err)
	return advance
}

func TestNewAdvanceSalary(t *testing.T) {
	advance := newTestAdvance(t, 300, utils.ScheduleThreeMonths)

	assert.Equal(t, AdvanceStatusPending, advance.Status)
	assert.True(t, advance.MonthlyDeduction.Equal(decimal.NewFromInt(100)))
	assert.True(t, advance.RemainingAmount.Equal(decimal.NewFromInt(300)))
	assert.True(t, advance.TotalDeducted.IsZero())
	assert.False(t, advance.IsFullyDeducted)
	assert.True(t, advance.IsOutstanding())
}

func TestNewAdvanceSalary_Validation(t *testing.T) {
	_, err := NewAdvanceSalary("", "", decimal.NewFromInt(100), "r", utils.ScheduleSingleMonth, decimal.Zero)
	assert.Equal(t, customError.ErrCodeValidation, customError.CodeOf(err))

	_, err = NewAdvanceSalary("EMP001", "", decimal.Zero, "r", utils.ScheduleSingleMonth, decimal.Zero)
	assert.Equal(t, customError.ErrCodeValidation, customError.CodeOf(err))

	_, err = NewAdvanceSalary("EMP001", "", decimal.NewFromInt(100), "r", utils.ScheduleCustom, decimal.Zero)
	assert.Equal(t, customError.ErrCodeInvalidScheduleInput, customError.CodeOf(err))
}

func TestAdvanceLifecycle_HappyPath(t *testing.T) {
	advance := newTestAdvance(t, 300, utils.ScheduleThreeMonths)

	require.NoError(t, advance.Approve("ADMIN1"))
	assert.Equal(t, AdvanceStatusApproved, advance.Status)
	assert.Equal(t, "ADMIN1", advance.ApprovedBy)
	assert.NotNil(t, advance.ApprovedAt)
	assert.True(t, advance.IsOutstanding())

	require.NoError(t, advance.MarkPaid("bank_transfer", "2024-01"))
	assert.Equal(t, AdvanceStatusPaid, advance.Status)
	assert.NotNil(t, advance.PaymentDate)
	assert.True(t, advance.RemainingAmount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "2024-01", advance.DeductionStartMonth)
	assert.Equal(t, "2024-03", advance.DeductionEndMonth)
	assert.False(t, advance.IsOutstanding())
}

func TestAdvanceLifecycle_Guards(t *testing.T) {
	t.Run("markPaid requires approved", func(t *testing.T) {
		advance := newTestAdvance(t, 300, utils.ScheduleSingleMonth)
		err := advance.MarkPaid("cash", "2024-01")
		assert.Equal(t, customError.ErrCodeInvalidStateTransition, customError.CodeOf(err))
	})

	t.Run("approve requires pending", func(t *testing.T) {
		advance := newTestAdvance(t, 300, utils.ScheduleSingleMonth)
		require.NoError(t, advance.Approve("ADMIN1"))
		err := advance.Approve("ADMIN1")
		assert.Equal(t, customError.ErrCodeInvalidStateTransition, customError.CodeOf(err))
	})

	t.Run("reject allowed from pending and approved only", func(t *testing.T) {
		advance := newTestAdvance(t, 300, utils.ScheduleSingleMonth)
		require.NoError(t, advance.Reject("ADMIN1", "budget freeze"))
		assert.Equal(t, AdvanceStatusRejected, advance.Status)
		assert.Equal(t, "budget freeze", advance.RejectionReason)

		approved := newTestAdvance(t, 300, utils.ScheduleSingleMonth)
		require.NoError(t, approved.Approve("ADMIN1"))
		require.NoError(t, approved.Reject("ADMIN2", "changed mind"))

		paid := newTestAdvance(t, 300, utils.ScheduleSingleMonth)
		require.NoError(t, paid.Approve("ADMIN1"))
		require.NoError(t, paid.MarkPaid("cash", "2024-01"))
		err := paid.Reject("ADMIN1", "too late")
		assert.Equal(t, customError.ErrCodeInvalidStateTransition, customError.CodeOf(err))
	})

	t.Run("delete only from pending or rejected", func(t *testing.T) {
		pending := newTestAdvance(t, 300, utils.ScheduleSingleMonth)
		assert.NoError(t, pending.CanDelete())

		rejected := newTestAdvance(t, 300, utils.ScheduleSingleMonth)
		require.NoError(t, rejected.Reject("ADMIN1", "no"))
		assert.NoError(t, rejected.CanDelete())

		approved := newTestAdvance(t, 300, utils.ScheduleSingleMonth)
		require.NoError(t, approved.Approve("ADMIN1"))
		err := approved.CanDelete()
		assert.Equal(t, customError.ErrCodeInvalidStateTransition, customError.CodeOf(err))

		paid := newTestAdvance(t, 300, utils.ScheduleSingleMonth)
		require.NoError(t, paid.Approve("ADMIN1"))
		require.NoError(t, paid.MarkPaid("cash", "2024-01"))
		err = paid.CanDelete()
		assert.Equal(t, customError.ErrCodeInvalidStateTransition, customError.CodeOf(err))
	})

	t.Run("markPaid rejects malformed start month", func(t *testing.T) {
		advance := newTestAdvance(t, 300, utils.ScheduleSingleMonth)
		require.NoError(t, advance.Approve("ADMIN1"))
		err := advance.MarkPaid("cash", "2024/01")
		assert.Equal(t, customError.ErrCodeValidation, customError.CodeOf(err))
	})
}

func TestIsEligibleForDeduction(t *testing.T) {
	advance := newTestAdvance(t, 300, utils.ScheduleThreeMonths)
	require.NoError(t, advance.Approve("ADMIN1"))
	require.NoError(t, advance.MarkPaid("cash", "2024-02"))

	assert.False(t, advance.IsEligibleForDeduction("2024-01"), "window not started")
	assert.True(t, advance.IsEligibleForDeduction("2024-02"))
	assert.True(t, advance.IsEligibleForDeduction("2024-05"), "eligible past the end month while balance remains")

	pending := newTestAdvance(t, 300, utils.ScheduleThreeMonths)
	assert.False(t, pending.IsEligibleForDeduction("2024-02"), "unpaid advances are never eligible")
}

func TestApplyDeduction(t *testing.T) {
	advance, err := NewAdvanceSalary("EMP001", "Asha Verma",
		decimal.NewFromInt(250), "festival", utils.ScheduleCustom, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, advance.Approve("ADMIN1"))
	require.NoError(t, advance.MarkPaid("cash", "2024-01"))

	require.NoError(t, advance.ApplyDeduction(decimal.NewFromInt(100)))
	assert.True(t, advance.RemainingAmount.Equal(decimal.NewFromInt(150)))
	assert.False(t, advance.IsFullyDeducted)

	// over-deduction is rejected
	err = advance.ApplyDeduction(decimal.NewFromInt(200))
	assert.Equal(t, customError.ErrCodeValidation, customError.CodeOf(err))

	require.NoError(t, advance.ApplyDeduction(decimal.NewFromInt(100)))
	require.NoError(t, advance.ApplyDeduction(decimal.NewFromInt(50)))
	assert.True(t, advance.RemainingAmount.IsZero())
	assert.True(t, advance.IsFullyDeducted)

	// fully deducted advances take no further deduction
	err = advance.ApplyDeduction(decimal.NewFromInt(1))
	assert.Equal(t, customError.ErrCodeInvalidStateTransition, customError.CodeOf(err))
}
