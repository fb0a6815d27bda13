package utils

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	customError "github.com/payrollhq/payroll-engine/pkg/errors"
)

// Deduction schedules supported for advance recovery.
const (
	ScheduleSingleMonth = "single_month"
	ScheduleTwoMonths   = "two_months"
	ScheduleThreeMonths = "three_months"
	ScheduleCustom      = "custom"
)

var scheduleDivisors = map[string]int64{
	ScheduleSingleMonth: 1,
	ScheduleTwoMonths:   2,
	ScheduleThreeMonths: 3,
}

// DeriveMonthlyDeduction returns the per-month installment for an advance.
// Fixed schedules divide the amount by the installment count and round to
// 2 decimal places for currency. The custom schedule takes the installment
// from the caller and requires it to be positive.
func DeriveMonthlyDeduction(amount decimal.Decimal, schedule string, custom decimal.Decimal) (decimal.Decimal, error) {
	if schedule == ScheduleCustom {
		if custom.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, customError.WrapInvalidScheduleInput("custom schedule requires a positive monthly deduction")
		}
		return custom, nil
	}

	divisor, ok := scheduleDivisors[schedule]
	if !ok {
		return decimal.Zero, customError.WrapInvalidScheduleInput(fmt.Sprintf("unknown deduction schedule %q", schedule))
	}

	return amount.Div(decimal.NewFromInt(divisor)).Round(2), nil
}

// InstallmentCount returns how many monthly deductions are needed to recover
// the full amount, counting a partial final installment as one.
func InstallmentCount(amount, monthly decimal.Decimal) int {
	if monthly.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	return int(amount.Div(monthly).Ceil().IntPart())
}

// MonthKey builds the "YYYY-MM" key used for deduction-window checks.
// Both parts are zero-padded so lexical comparison matches chronological
// order.
func MonthKey(year int, month string) string {
	return fmt.Sprintf("%04d-%s", year, month)
}

// CompareMonthKeys compares two "YYYY-MM" keys, returning -1, 0 or 1.
// Valid only for zero-padded keys as produced by MonthKey.
func CompareMonthKeys(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// AddMonths shifts a "YYYY-MM" key by n months. Used to derive the
// deduction end month as startMonth + (installments - 1).
func AddMonths(key string, n int) (string, error) {
	year, month, err := ParseMonthKey(key)
	if err != nil {
		return "", err
	}

	m, _ := strconv.Atoi(month)
	total := year*12 + (m - 1) + n
	if total < 0 {
		return "", customError.WrapValidationError(fmt.Sprintf("month key %s cannot be shifted by %d months", key, n))
	}

	return MonthKey(total/12, fmt.Sprintf("%02d", total%12+1)), nil
}

// ParseMonthKey splits a "YYYY-MM" key back into year and zero-padded month.
func ParseMonthKey(key string) (int, string, error) {
	if len(key) != 7 || key[4] != '-' {
		return 0, "", customError.WrapValidationError(fmt.Sprintf("invalid month key %q", key))
	}

	year, err := strconv.Atoi(key[:4])
	if err != nil {
		return 0, "", customError.WrapValidationError(fmt.Sprintf("invalid month key %q", key))
	}

	month := key[5:]
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return 0, "", customError.WrapValidationError(fmt.Sprintf("invalid month key %q", key))
	}

	return year, month, nil
}

// ValidMonth reports whether month is a zero-padded "01".."12" string.
func ValidMonth(month string) bool {
	if len(month) != 2 {
		return false
	}
	m, err := strconv.Atoi(month)
	return err == nil && m >= 1 && m <= 12
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
