package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/payrollhq/payroll-engine/internal/config"
	"github.com/payrollhq/payroll-engine/internal/domain"
	"github.com/payrollhq/payroll-engine/internal/repository"
	customError "github.com/payrollhq/payroll-engine/pkg/errors"
)

// PayrollService produces and manages salary records. The derivation math
// lives in the domain package; this layer adds period uniqueness and
// persistence.
type PayrollService struct {
	salaryRepo repository.SalaryRepository
	config     *config.Config
}

func NewPayrollService(salaryRepo repository.SalaryRepository, config *config.Config) *PayrollService {
	return &PayrollService{
		salaryRepo: salaryRepo,
		config:     config,
	}
}

// CreateSalaryRecord computes a draft record from raw inputs and stores it.
// One record per (employee, month, year).
func (s *PayrollService) CreateSalaryRecord(ctx context.Context, req *domain.CreateSalaryRecordRequest) (*domain.SalaryRecord, error) {
	existing, err := s.salaryRepo.GetByPeriod(ctx, req.EmployeeID, req.Month, req.Year)
	if err == nil && existing != nil {
		return nil, customError.WrapDuplicatePeriodConflict(req.EmployeeID, req.Month, req.Year)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	record, err := domain.ComputeSalaryRecord(domain.SalaryInputs{
		EmployeeID:   req.EmployeeID,
		EmployeeName: req.EmployeeName,
		Month:        req.Month,
		Year:         req.Year,
		BasicSalary:  req.BasicSalary,
		Allowances:   req.Allowances,
		Deductions:   req.Deductions,
		Overtime:     req.Overtime,
		WorkingDays:  req.WorkingDays,
		PresentDays:  req.PresentDays,
	})
	if err != nil {
		return nil, err
	}

	if req.ProRate {
		if err := domain.ApplyProRating(record); err != nil {
			return nil, err
		}
	}

	if err := s.salaryRepo.Create(ctx, record); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return record, nil
}

// GetSalaryRecord fetches the record for one employee-month.
func (s *PayrollService) GetSalaryRecord(ctx context.Context, employeeID, month string, year int) (*domain.SalaryRecord, error) {
	record, err := s.salaryRepo.GetByPeriod(ctx, employeeID, month, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapSalaryRecordNotFound(employeeID, month, year)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return record, nil
}

// ApproveSalaryRecord moves a draft record to approved.
func (s *PayrollService) ApproveSalaryRecord(ctx context.Context, employeeID, month string, year int) (*domain.SalaryRecord, error) {
	return s.transition(ctx, employeeID, month, year, (*domain.SalaryRecord).Approve)
}

// PaySalaryRecord moves an approved record to paid.
func (s *PayrollService) PaySalaryRecord(ctx context.Context, employeeID, month string, year int) (*domain.SalaryRecord, error) {
	return s.transition(ctx, employeeID, month, year, (*domain.SalaryRecord).MarkPaid)
}

// CancelSalaryRecord cancels a draft or approved record.
func (s *PayrollService) CancelSalaryRecord(ctx context.Context, employeeID, month string, year int) (*domain.SalaryRecord, error) {
	return s.transition(ctx, employeeID, month, year, (*domain.SalaryRecord).Cancel)
}

func (s *PayrollService) transition(ctx context.Context, employeeID, month string, year int, apply func(*domain.SalaryRecord) error) (*domain.SalaryRecord, error) {
	record, err := s.GetSalaryRecord(ctx, employeeID, month, year)
	if err != nil {
		return nil, err
	}

	if err := apply(record); err != nil {
		return nil, err
	}

	if err := s.salaryRepo.Update(ctx, record); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return record, nil
}
