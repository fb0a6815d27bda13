package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/payrollhq/payroll-engine/internal/config"
	"github.com/payrollhq/payroll-engine/internal/domain"
	"github.com/payrollhq/payroll-engine/internal/repository"
	customError "github.com/payrollhq/payroll-engine/pkg/errors"
)

// AdvanceService drives the advance request lifecycle from request to
// payout. Deduction against payroll is SettlementService's job.
type AdvanceService struct {
	advanceRepo repository.AdvanceRepository
	redis       *redis.Client
	config      *config.Config
}

func NewAdvanceService(advanceRepo repository.AdvanceRepository, redis *redis.Client, config *config.Config) *AdvanceService {
	return &AdvanceService{
		advanceRepo: advanceRepo,
		redis:       redis,
		config:      config,
	}
}

// RequestAdvance creates a pending advance. An employee may have at most
// one outstanding (pending or approved) advance at a time; the partial
// unique index in the schema backs this check against concurrent inserts.
func (s *AdvanceService) RequestAdvance(ctx context.Context, req *domain.RequestAdvanceRequest) (*domain.AdvanceSalary, error) {
	if req.Amount.GreaterThan(s.config.GetMaxAdvanceAmount()) {
		return nil, customError.WrapValidationError(
			fmt.Sprintf("advance amount %s exceeds the configured cap %s", req.Amount, s.config.Business.MaxAdvanceAmount))
	}

	outstanding, err := s.advanceRepo.CountOutstanding(ctx, req.EmployeeID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if outstanding > 0 {
		return nil, customError.WrapOutstandingAdvanceConflict(req.EmployeeID)
	}

	advance, err := domain.NewAdvanceSalary(
		req.EmployeeID, req.EmployeeName, req.Amount, req.Reason,
		req.DeductionSchedule, req.MonthlyDeduction,
	)
	if err != nil {
		return nil, err
	}

	if err := s.advanceRepo.Create(ctx, advance); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return advance, nil
}

// GetAdvance fetches one advance by id.
func (s *AdvanceService) GetAdvance(ctx context.Context, id uuid.UUID) (*domain.AdvanceSalary, error) {
	advance, err := s.advanceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapAdvanceNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return advance, nil
}

// GetAdvancesByEmployee lists every advance of an employee, oldest first.
func (s *AdvanceService) GetAdvancesByEmployee(ctx context.Context, employeeID string) ([]*domain.AdvanceSalary, error) {
	advances, err := s.advanceRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return advances, nil
}

// ApproveAdvance moves a pending advance to approved.
func (s *AdvanceService) ApproveAdvance(ctx context.Context, id uuid.UUID, approverID string) (*domain.AdvanceSalary, error) {
	advance, err := s.GetAdvance(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := advance.Approve(approverID); err != nil {
		return nil, err
	}

	if err := s.advanceRepo.Update(ctx, advance); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return advance, nil
}

// RejectAdvance rejects a pending or approved advance with a reason.
func (s *AdvanceService) RejectAdvance(ctx context.Context, id uuid.UUID, approverID, rejectionReason string) (*domain.AdvanceSalary, error) {
	advance, err := s.GetAdvance(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := advance.Reject(approverID, rejectionReason); err != nil {
		return nil, err
	}

	if err := s.advanceRepo.Update(ctx, advance); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return advance, nil
}

// MarkAdvancePaid records the payout. The repository write re-checks
// status=approved so two concurrent payouts cannot both succeed.
func (s *AdvanceService) MarkAdvancePaid(ctx context.Context, id uuid.UUID, paymentMethod, deductionStartMonth string) (*domain.AdvanceSalary, error) {
	advance, err := s.GetAdvance(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := advance.MarkPaid(paymentMethod, deductionStartMonth); err != nil {
		return nil, err
	}

	swapped, err := s.advanceRepo.MarkPaid(ctx, advance)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !swapped {
		return nil, customError.WrapInvalidStateTransition("mark advance paid", "changed concurrently")
	}

	s.invalidateOutstandingCache(ctx, advance.EmployeeID)

	return advance, nil
}

// DeleteAdvance removes a pending or rejected advance. Approved and paid
// advances are kept for the audit trail.
func (s *AdvanceService) DeleteAdvance(ctx context.Context, id uuid.UUID) error {
	advance, err := s.GetAdvance(ctx, id)
	if err != nil {
		return err
	}

	if err := advance.CanDelete(); err != nil {
		return err
	}

	if err := s.advanceRepo.Delete(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}

func (s *AdvanceService) invalidateOutstandingCache(ctx context.Context, employeeID string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, outstandingCacheKey(employeeID))
}
