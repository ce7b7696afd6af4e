package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/finbooks/backoffice_ledger/internal/core/ports/repositories"
	"github.com/finbooks/backoffice_ledger/internal/core/ports/services"
	"github.com/finbooks/backoffice_ledger/internal/dto"
	"github.com/finbooks/backoffice_ledger/internal/middleware"
	"github.com/shopspring/decimal"
)

type ChartService struct {
	accountRepo repositories.AccountRepositoryFacade
}

var _ services.ChartSvcFacade = (*ChartService)(nil)

func NewChartService(accountRepo repositories.AccountRepositoryFacade) *ChartService {
	return &ChartService{accountRepo: accountRepo}
}

// defaultAccount is one row of the seed chart.
type defaultAccount struct {
	code        string
	name        string
	accountType domain.AccountType
}

var defaultChart = []defaultAccount{
	{"1000", "Cash", domain.Asset},
	{"1010", "Bank", domain.Asset},
	{"1100", "Customers (AR)", domain.Asset},
	{"1200", "Inventory", domain.Asset},
	{"2000", "Suppliers (AP)", domain.Liability},
	{"3000", "Capital", domain.Equity},
	{"4000", "Sales", domain.Revenue},
	{"5000", "Purchases", domain.Expense},
	{"5100", "General & Administrative Expenses", domain.Expense},
}

func (s *ChartService) RegisterAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	normalSide, ok := domain.NormalSideFor(req.AccountType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}

	account := domain.Account{
		Code:        req.Code,
		Name:        req.Name,
		AccountType: req.AccountType,
		NormalSide:  normalSide,
		IsActive:    true,
		Balance:     decimal.Zero,
		AuditFields: domain.NewAuditFields(actor, time.Now().UTC()),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	logger.Info("account registered", "code", account.Code, "accountType", account.AccountType)
	return &account, nil
}

func (s *ChartService) GetAccount(ctx context.Context, code string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByCode(ctx, code)
}

func (s *ChartService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	return s.accountRepo.ListAccounts(ctx, limit, offset)
}

func (s *ChartService) BalanceAsOf(ctx context.Context, code string, cutoff time.Time) (decimal.Decimal, error) {
	if _, err := s.accountRepo.FindAccountByCode(ctx, code); err != nil {
		return decimal.Zero, err
	}
	if cutoff.IsZero() {
		cutoff = time.Now().UTC()
	}
	return s.accountRepo.SumPostedLines(ctx, code, cutoff)
}

func (s *ChartService) DeactivateAccount(ctx context.Context, code, actor string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrConflict, code)
	}

	// The open period is the current calendar year. Accounts referenced by a
	// live entry inside it stay active so reports keep resolving.
	now := time.Now().UTC()
	periodStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	refs, err := s.accountRepo.CountOpenPeriodReferences(ctx, code, periodStart)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w: account %s is referenced by %d entries in the open period", apperrors.ErrConflict, code, refs)
	}

	if err := s.accountRepo.DeactivateAccount(ctx, code, actor, now); err != nil {
		return err
	}
	logger.Info("account deactivated", "code", code)
	return nil
}

func (s *ChartService) SeedDefaultAccounts(ctx context.Context, actor string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	count, err := s.accountRepo.CountAccounts(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	for _, def := range defaultChart {
		req := dto.CreateAccountRequest{Code: def.code, Name: def.name, AccountType: def.accountType}
		if _, err := s.RegisterAccount(ctx, req, actor); err != nil {
			// A concurrent seeder may have won the race for this code.
			if errors.Is(err, apperrors.ErrDuplicate) {
				continue
			}
			return created, err
		}
		created++
	}

	logger.Info("default chart of accounts seeded", "created", created)
	return created, nil
}
