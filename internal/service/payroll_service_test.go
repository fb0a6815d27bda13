package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/payrollhq/payroll-engine/internal/domain"
	customError "github.com/payrollhq/payroll-engine/pkg/errors"
	"github.com/payrollhq/payroll-engine/tests/mocks"
)

func createRequest() *domain.CreateSalaryRecordRequest {
	return &domain.CreateSalaryRecordRequest{
		EmployeeID:  "EMP001",
		Month:       "01",
		Year:        2024,
		BasicSalary: decimal.NewFromInt(3000),
		WorkingDays: 22,
		PresentDays: 22,
	}
}

func TestCreateSalaryRecord(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*domain.CreateSalaryRecordRequest)
		setupMocks   func(*mocks.MockSalaryRepository)
		expectedCode string
		validate     func(*testing.T, *domain.SalaryRecord)
	}{
		{
			name: "Success - new period",
			setupMocks: func(repo *mocks.MockSalaryRepository) {
				repo.On("GetByPeriod", mock.Anything, "EMP001", "01", 2024).Return(nil, sql.ErrNoRows)
				repo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.SalaryRecord) bool {
					return r.Status == domain.SalaryStatusDraft
				})).Return(nil)
			},
			validate: func(t *testing.T, record *domain.SalaryRecord) {
				assert.True(t, record.NetSalary.Equal(decimal.NewFromInt(3000)))
			},
		},
		{
			name: "Failure - duplicate period",
			setupMocks: func(repo *mocks.MockSalaryRepository) {
				existing := &domain.SalaryRecord{EmployeeID: "EMP001", Month: "01", Year: 2024}
				repo.On("GetByPeriod", mock.Anything, "EMP001", "01", 2024).Return(existing, nil)
			},
			expectedCode: customError.ErrCodeConflict,
		},
		{
			name:   "Failure - present days above working days",
			mutate: func(req *domain.CreateSalaryRecordRequest) { req.PresentDays = 25 },
			setupMocks: func(repo *mocks.MockSalaryRepository) {
				repo.On("GetByPeriod", mock.Anything, "EMP001", "01", 2024).Return(nil, sql.ErrNoRows)
			},
			expectedCode: customError.ErrCodeValidation,
		},
		{
			name: "Success - pro-rated partial month",
			mutate: func(req *domain.CreateSalaryRecordRequest) {
				req.PresentDays = 11
				req.ProRate = true
			},
			setupMocks: func(repo *mocks.MockSalaryRepository) {
				repo.On("GetByPeriod", mock.Anything, "EMP001", "01", 2024).Return(nil, sql.ErrNoRows)
				repo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			validate: func(t *testing.T, record *domain.SalaryRecord) {
				assert.True(t, record.BasicSalary.Equal(decimal.NewFromInt(1500)),
					"expected 3000/22*11 = 1500, got %v", record.BasicSalary)
				assert.Equal(t, 11, record.AbsentDays)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockSalaryRepository{}
			tt.setupMocks(repo)

			req := createRequest()
			if tt.mutate != nil {
				tt.mutate(req)
			}

			service := NewPayrollService(repo, testConfig())
			record, err := service.CreateSalaryRecord(context.Background(), req)

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, customError.CodeOf(err))
			} else {
				require.NoError(t, err)
				tt.validate(t, record)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestApproveSalaryRecord(t *testing.T) {
	record, err := domain.ComputeSalaryRecord(domain.SalaryInputs{
		EmployeeID:  "EMP001",
		Month:       "01",
		Year:        2024,
		BasicSalary: decimal.NewFromInt(3000),
		WorkingDays: 22,
		PresentDays: 22,
	})
	require.NoError(t, err)

	repo := &mocks.MockSalaryRepository{}
	repo.On("GetByPeriod", mock.Anything, "EMP001", "01", 2024).Return(record, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.SalaryRecord) bool {
		return r.Status == domain.SalaryStatusApproved
	})).Return(nil)

	service := NewPayrollService(repo, testConfig())
	updated, err := service.ApproveSalaryRecord(context.Background(), "EMP001", "01", 2024)

	require.NoError(t, err)
	assert.Equal(t, domain.SalaryStatusApproved, updated.Status)
	repo.AssertExpectations(t)
}

func TestPaySalaryRecord_RequiresApproval(t *testing.T) {
	record, err := domain.ComputeSalaryRecord(domain.SalaryInputs{
		EmployeeID:  "EMP001",
		Month:       "01",
		Year:        2024,
		BasicSalary: decimal.NewFromInt(3000),
		WorkingDays: 22,
		PresentDays: 22,
	})
	require.NoError(t, err)

	repo := &mocks.MockSalaryRepository{}
	repo.On("GetByPeriod", mock.Anything, "EMP001", "01", 2024).Return(record, nil)

	service := NewPayrollService(repo, testConfig())
	_, err = service.PaySalaryRecord(context.Background(), "EMP001", "01", 2024)

	require.Error(t, err)
	assert.Equal(t, customError.ErrCodeInvalidStateTransition, customError.CodeOf(err))
	repo.AssertExpectations(t)
}
