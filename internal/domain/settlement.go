package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/payrollhq/payroll-engine/pkg/errors"
)

// SettlementResult is the atomic unit returned by SettleAdvances: the
// caller must persist the record and the touched advances together or not
// at all.
type SettlementResult struct {
	Record   *SalaryRecord
	Advances []*AdvanceSalary
}

// SettleAdvances applies every eligible advance of the record's employee
// against the record, oldest payout first. It operates on copies; on any
// failure the inputs are untouched and nothing is reported as applied.
func SettleAdvances(record *SalaryRecord, advances []*AdvanceSalary) (*SettlementResult, error) {
	if record.Status == SalaryStatusPaid || record.Status == SalaryStatusCancelled {
		return nil, customError.WrapInvalidStateTransition("settle advances against salary record", record.Status)
	}

	period := record.PeriodKey()

	// An advance already recorded on this period's record was deducted by a
	// previous run; re-settling the period must not count it twice.
	alreadyApplied := make(map[uuid.UUID]bool, len(record.AdvanceDeductions))
	for _, d := range record.AdvanceDeductions {
		alreadyApplied[d.AdvanceID] = true
	}

	eligible := make([]*AdvanceSalary, 0, len(advances))
	for _, adv := range advances {
		if adv.EmployeeID != record.EmployeeID {
			return nil, customError.WrapValidationError(
				fmt.Sprintf("advance %s belongs to employee %s, not %s", adv.ID, adv.EmployeeID, record.EmployeeID))
		}
		if alreadyApplied[adv.ID] {
			continue
		}
		if adv.IsEligibleForDeduction(period) {
			eligible = append(eligible, adv)
		}
	}

	// FIFO: the oldest live liability is recovered first, matching the
	// ordering shown by PendingAdvances.
	sort.SliceStable(eligible, func(i, j int) bool {
		return paymentTimeOf(eligible[i]).Before(paymentTimeOf(eligible[j]))
	})

	updatedRecord := record.Clone()
	updatedAdvances := make([]*AdvanceSalary, 0, len(eligible))

	for i, adv := range eligible {
		updated := *adv

		deduction := decimal.Min(updated.RemainingAmount, updated.MonthlyDeduction)
		if err := updated.ApplyDeduction(deduction); err != nil {
			return nil, customError.WrapSettlementFailed(adv.ID.String(), i, err)
		}

		updatedRecord.AdvanceDeductions = append(updatedRecord.AdvanceDeductions, AdvanceDeduction{
			AdvanceID:   updated.ID,
			Amount:      deduction,
			Description: fmt.Sprintf("advance salary deduction for %s", period),
		})
		updatedAdvances = append(updatedAdvances, &updated)
	}

	updatedRecord.Recalculate()

	return &SettlementResult{
		Record:   updatedRecord,
		Advances: updatedAdvances,
	}, nil
}

// PendingAdvances filters to paid, not-fully-deducted advances ordered by
// payment date ascending, the same ordering settlement applies them in.
func PendingAdvances(advances []*AdvanceSalary) []*AdvanceSalary {
	pending := make([]*AdvanceSalary, 0, len(advances))
	for _, adv := range advances {
		if adv.Status == AdvanceStatusPaid && !adv.IsFullyDeducted {
			pending = append(pending, adv)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return paymentTimeOf(pending[i]).Before(paymentTimeOf(pending[j]))
	})

	return pending
}

// TotalOutstanding sums the remaining balance over the pending filter.
func TotalOutstanding(advances []*AdvanceSalary) decimal.Decimal {
	total := decimal.Zero
	for _, adv := range PendingAdvances(advances) {
		total = total.Add(adv.RemainingAmount)
	}
	return total
}

// Clone deep-copies the record so settlement can work without mutating the
// caller's copy until the dual write commits.
func (r *SalaryRecord) Clone() *SalaryRecord {
	clone := *r
	clone.AdvanceDeductions = make([]AdvanceDeduction, len(r.AdvanceDeductions))
	copy(clone.AdvanceDeductions, r.AdvanceDeductions)
	return &clone
}

func paymentTimeOf(a *AdvanceSalary) time.Time {
	if a.PaymentDate != nil {
		return *a.PaymentDate
	}
	return time.Time{}
}
