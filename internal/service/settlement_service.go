package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/payrollhq/payroll-engine/internal/config"
	"github.com/payrollhq/payroll-engine/internal/domain"
	"github.com/payrollhq/payroll-engine/internal/repository"
	customError "github.com/payrollhq/payroll-engine/pkg/errors"
)

// SettlementService bridges salary records and paid advances: it applies
// eligible deductions against a period's record and persists both sides in
// one transaction.
type SettlementService struct {
	salaryRepo  repository.SalaryRepository
	advanceRepo repository.AdvanceRepository
	redis       *redis.Client
	config      *config.Config

	// Settlement for one employee must be single-writer; concurrent runs
	// for different months would race on remaining balances. The map keeps
	// one mutex per employee ever settled and never evicts, so it is
	// bounded by workforce size, not by settlement volume.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSettlementService(
	salaryRepo repository.SalaryRepository,
	advanceRepo repository.AdvanceRepository,
	redis *redis.Client,
	config *config.Config,
) *SettlementService {
	return &SettlementService{
		salaryRepo:  salaryRepo,
		advanceRepo: advanceRepo,
		redis:       redis,
		config:      config,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (s *SettlementService) employeeLock(employeeID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[employeeID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[employeeID] = lock
	}
	return lock
}

// SettleAdvancesForPeriod applies every eligible advance of the employee
// against the period's salary record, oldest payout first. The whole batch
// applies or none of it does.
func (s *SettlementService) SettleAdvancesForPeriod(ctx context.Context, employeeID, month string, year int) (*domain.SettlementResult, error) {
	lock := s.employeeLock(employeeID)
	lock.Lock()
	defer lock.Unlock()

	record, err := s.getRecord(ctx, employeeID, month, year)
	if err != nil {
		return nil, err
	}

	advances, err := s.advanceRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	result, err := domain.SettleAdvances(record, advances)
	if err != nil {
		return nil, err
	}

	if err := s.salaryRepo.SaveSettlement(ctx, result.Record, result.Advances); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateOutstandingCache(ctx, employeeID)

	return result, nil
}

// GetPendingAdvances lists paid, not-fully-deducted advances in the order
// settlement would apply them, so previews match actual settlement.
func (s *SettlementService) GetPendingAdvances(ctx context.Context, employeeID string) ([]*domain.AdvanceSalary, error) {
	advances, err := s.advanceRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return domain.PendingAdvances(advances), nil
}

// GetTotalOutstanding sums remaining balances over the pending filter,
// cached per employee.
func (s *SettlementService) GetTotalOutstanding(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	cacheKey := outstandingCacheKey(employeeID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			if total, parseErr := decimal.NewFromString(cached); parseErr == nil {
				return total, nil
			}
		}
	}

	advances, err := s.advanceRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	total := domain.TotalOutstanding(advances)

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, total.String(), s.config.GetCacheTTL()).Err(); err != nil {
			log.Printf("failed to cache outstanding total for %s: %v", employeeID, err)
		}
	}

	return total, nil
}

// RunPeriodSettlement settles every approved salary record of a period.
// Used by the scheduler. Failures are logged per record; one employee's
// bad state does not block the rest of the run.
func (s *SettlementService) RunPeriodSettlement(ctx context.Context, month string, year int) error {
	records, err := s.salaryRepo.ListApprovedByPeriod(ctx, month, year)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	var failed int
	for _, record := range records {
		if _, err := s.SettleAdvancesForPeriod(ctx, record.EmployeeID, month, year); err != nil {
			failed++
			log.Printf("settlement failed for employee %s period %s: %v", record.EmployeeID, record.PeriodKey(), err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("period settlement finished with %d of %d records failed", failed, len(records))
	}

	return nil
}

func (s *SettlementService) getRecord(ctx context.Context, employeeID, month string, year int) (*domain.SalaryRecord, error) {
	record, err := s.salaryRepo.GetByPeriod(ctx, employeeID, month, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapSalaryRecordNotFound(employeeID, month, year)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return record, nil
}

func (s *SettlementService) invalidateOutstandingCache(ctx context.Context, employeeID string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, outstandingCacheKey(employeeID))
}

func outstandingCacheKey(employeeID string) string {
	return fmt.Sprintf("advance:outstanding:%s", employeeID)
}
