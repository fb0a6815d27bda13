package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/payrollhq/payroll-engine/internal/domain"
)

type MockSalaryRepository struct {
	mock.Mock
}

func (m *MockSalaryRepository) Create(ctx context.Context, record *domain.SalaryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSalaryRepository) GetByPeriod(ctx context.Context, employeeID, month string, year int) (*domain.SalaryRecord, error) {
	args := m.Called(ctx, employeeID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalaryRecord), args.Error(1)
}

func (m *MockSalaryRepository) Update(ctx context.Context, record *domain.SalaryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSalaryRepository) ListApprovedByPeriod(ctx context.Context, month string, year int) ([]*domain.SalaryRecord, error) {
	args := m.Called(ctx, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SalaryRecord), args.Error(1)
}

func (m *MockSalaryRepository) SaveSettlement(ctx context.Context, record *domain.SalaryRecord, advances []*domain.AdvanceSalary) error {
	args := m.Called(ctx, record, advances)
	return args.Error(0)
}

type MockAdvanceRepository struct {
	mock.Mock
}

func (m *MockAdvanceRepository) Create(ctx context.Context, advance *domain.AdvanceSalary) error {
	args := m.Called(ctx, advance)
	return args.Error(0)
}

func (m *MockAdvanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdvanceSalary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdvanceSalary), args.Error(1)
}

func (m *MockAdvanceRepository) GetByEmployeeID(ctx context.Context, employeeID string) ([]*domain.AdvanceSalary, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AdvanceSalary), args.Error(1)
}

func (m *MockAdvanceRepository) CountOutstanding(ctx context.Context, employeeID string) (int, error) {
	args := m.Called(ctx, employeeID)
	return args.Int(0), args.Error(1)
}

func (m *MockAdvanceRepository) Update(ctx context.Context, advance *domain.AdvanceSalary) error {
	args := m.Called(ctx, advance)
	return args.Error(0)
}

func (m *MockAdvanceRepository) MarkPaid(ctx context.Context, advance *domain.AdvanceSalary) (bool, error) {
	args := m.Called(ctx, advance)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdvanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
