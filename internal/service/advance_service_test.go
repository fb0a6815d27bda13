package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/payrollhq/payroll-engine/internal/config"
	"github.com/payrollhq/payroll-engine/internal/domain"
	customError "github.com/payrollhq/payroll-engine/pkg/errors"
	"github.com/payrollhq/payroll-engine/pkg/utils"
	"github.com/payrollhq/payroll-engine/tests/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			DefaultWorkingDays: 22,
			MaxAdvanceAmount:   "100000",
		},
		Redis: config.RedisConfig{CacheTTL: "1h"},
	}
}

func TestRequestAdvance(t *testing.T) {
	tests := []struct {
		name          string
		request       *domain.RequestAdvanceRequest
		setupMocks    func(*mocks.MockAdvanceRepository)
		expectedCode  string
		validateValue func(*testing.T, *domain.AdvanceSalary)
	}{
		{
			name: "Success - no outstanding advance",
			request: &domain.RequestAdvanceRequest{
				EmployeeID:        "EMP001",
				Amount:            decimal.NewFromInt(300),
				Reason:            "medical",
				DeductionSchedule: utils.ScheduleThreeMonths,
			},
			setupMocks: func(repo *mocks.MockAdvanceRepository) {
				repo.On("CountOutstanding", mock.Anything, "EMP001").Return(0, nil)
				repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.AdvanceSalary) bool {
					return a.EmployeeID == "EMP001" && a.Status == domain.AdvanceStatusPending
				})).Return(nil)
			},
			validateValue: func(t *testing.T, advance *domain.AdvanceSalary) {
				assert.True(t, advance.MonthlyDeduction.Equal(decimal.NewFromInt(100)))
				assert.True(t, advance.RemainingAmount.Equal(decimal.NewFromInt(300)))
			},
		},
		{
			name: "Failure - outstanding advance exists",
			request: &domain.RequestAdvanceRequest{
				EmployeeID:        "EMP002",
				Amount:            decimal.NewFromInt(300),
				Reason:            "rent",
				DeductionSchedule: utils.ScheduleSingleMonth,
			},
			setupMocks: func(repo *mocks.MockAdvanceRepository) {
				repo.On("CountOutstanding", mock.Anything, "EMP002").Return(1, nil)
			},
			expectedCode: customError.ErrCodeConflict,
		},
		{
			name: "Failure - amount above configured cap",
			request: &domain.RequestAdvanceRequest{
				EmployeeID:        "EMP003",
				Amount:            decimal.NewFromInt(200000),
				Reason:            "house",
				DeductionSchedule: utils.ScheduleThreeMonths,
			},
			setupMocks:   func(repo *mocks.MockAdvanceRepository) {},
			expectedCode: customError.ErrCodeValidation,
		},
		{
			name: "Failure - custom schedule without installment",
			request: &domain.RequestAdvanceRequest{
				EmployeeID:        "EMP004",
				Amount:            decimal.NewFromInt(300),
				Reason:            "travel",
				DeductionSchedule: utils.ScheduleCustom,
			},
			setupMocks: func(repo *mocks.MockAdvanceRepository) {
				repo.On("CountOutstanding", mock.Anything, "EMP004").Return(0, nil)
			},
			expectedCode: customError.ErrCodeInvalidScheduleInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockAdvanceRepository{}
			tt.setupMocks(repo)

			service := NewAdvanceService(repo, nil, testConfig())
			advance, err := service.RequestAdvance(context.Background(), tt.request)

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, customError.CodeOf(err))
			} else {
				require.NoError(t, err)
				tt.validateValue(t, advance)
			}

			repo.AssertExpectations(t)
		})
	}
}

// Requesting again after the prior advance is rejected or settled succeeds:
// only pending/approved advances block, which CountOutstanding encodes.
func TestRequestAdvance_AfterPriorResolved(t *testing.T) {
	repo := &mocks.MockAdvanceRepository{}
	repo.On("CountOutstanding", mock.Anything, "EMP001").Return(0, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := NewAdvanceService(repo, nil, testConfig())
	_, err := service.RequestAdvance(context.Background(), &domain.RequestAdvanceRequest{
		EmployeeID:        "EMP001",
		Amount:            decimal.NewFromInt(500),
		Reason:            "school fees",
		DeductionSchedule: utils.ScheduleTwoMonths,
	})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestMarkAdvancePaid_ConcurrentWriterLoses(t *testing.T) {
	advance, err := domain.NewAdvanceSalary("EMP001", "", decimal.NewFromInt(300), "medical",
		utils.ScheduleThreeMonths, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, advance.Approve("ADMIN1"))

	repo := &mocks.MockAdvanceRepository{}
	repo.On("GetByID", mock.Anything, advance.ID).Return(advance, nil)
	// the CAS write reports that another writer got there first
	repo.On("MarkPaid", mock.Anything, mock.Anything).Return(false, nil)

	service := NewAdvanceService(repo, nil, testConfig())
	_, err = service.MarkAdvancePaid(context.Background(), advance.ID, "bank_transfer", "2024-01")

	require.Error(t, err)
	assert.Equal(t, customError.ErrCodeInvalidStateTransition, customError.CodeOf(err))
	repo.AssertExpectations(t)
}

func TestDeleteAdvance_GuardedByStatus(t *testing.T) {
	advance, err := domain.NewAdvanceSalary("EMP001", "", decimal.NewFromInt(300), "medical",
		utils.ScheduleSingleMonth, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, advance.Approve("ADMIN1"))
	require.NoError(t, advance.MarkPaid("cash", "2024-01"))

	repo := &mocks.MockAdvanceRepository{}
	repo.On("GetByID", mock.Anything, advance.ID).Return(advance, nil)

	service := NewAdvanceService(repo, nil, testConfig())
	err = service.DeleteAdvance(context.Background(), advance.ID)

	require.Error(t, err)
	assert.Equal(t, customError.ErrCodeInvalidStateTransition, customError.CodeOf(err))
	repo.AssertExpectations(t)
}
