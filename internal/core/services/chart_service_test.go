package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	portssvc "github.com/finbooks/backoffice_ledger/internal/core/ports/services"
	"github.com/finbooks/backoffice_ledger/internal/core/services"
	"github.com/finbooks/backoffice_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ChartServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         portssvc.ChartSvcFacade
	actor           string
}

func (suite *ChartServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewChartService(suite.mockAccountRepo)
	suite.actor = "controller-1"
}

func (suite *ChartServiceTestSuite) TestRegisterAccount_DerivesNormalSide() {
	ctx := context.Background()
	tests := []struct {
		accountType domain.AccountType
		wantSide    domain.EntrySide
	}{
		{domain.Asset, domain.Debit},
		{domain.Expense, domain.Debit},
		{domain.Liability, domain.Credit},
		{domain.Equity, domain.Credit},
		{domain.Revenue, domain.Credit},
	}

	for _, tt := range tests {
		suite.mockAccountRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
			return a.NormalSide == tt.wantSide && a.IsActive && a.Balance.IsZero()
		})).Return(nil).Once()

		account, err := suite.service.RegisterAccount(ctx, dto.CreateAccountRequest{
			Code:        "9000",
			Name:        "Test",
			AccountType: tt.accountType,
		}, suite.actor)

		suite.Require().NoError(err, "type %s", tt.accountType)
		suite.Equal(tt.wantSide, account.NormalSide)
		suite.Equal(suite.actor, account.CreatedBy)
	}
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ChartServiceTestSuite) TestRegisterAccount_UnknownType() {
	ctx := context.Background()

	_, err := suite.service.RegisterAccount(ctx, dto.CreateAccountRequest{
		Code:        "9000",
		Name:        "Mystery",
		AccountType: "CONTRA",
	}, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *ChartServiceTestSuite) TestRegisterAccount_DuplicateCode() {
	ctx := context.Background()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.RegisterAccount(ctx, dto.CreateAccountRequest{
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
	}, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *ChartServiceTestSuite) TestBalanceAsOf_RecomputesFromLines() {
	ctx := context.Background()
	cutoff := time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)
	account := &domain.Account{Code: "1100", NormalSide: domain.Debit, IsActive: true}
	want := decimal.RequireFromString("1234.500")

	suite.mockAccountRepo.On("FindAccountByCode", ctx, "1100").Return(account, nil).Once()
	suite.mockAccountRepo.On("SumPostedLines", ctx, "1100", cutoff).Return(want, nil).Once()

	balance, err := suite.service.BalanceAsOf(ctx, "1100", cutoff)

	suite.Require().NoError(err)
	suite.True(balance.Equal(want))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ChartServiceTestSuite) TestBalanceAsOf_UnknownAccount() {
	ctx := context.Background()
	suite.mockAccountRepo.On("FindAccountByCode", ctx, "9999").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.BalanceAsOf(ctx, "9999", time.Now().UTC())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SumPostedLines", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ChartServiceTestSuite) TestDeactivateAccount_Success() {
	ctx := context.Background()
	account := &domain.Account{Code: "5100", IsActive: true}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, "5100").Return(account, nil).Once()
	suite.mockAccountRepo.On("CountOpenPeriodReferences", ctx, "5100", mock.AnythingOfType("time.Time")).
		Return(int64(0), nil).Once()
	suite.mockAccountRepo.On("DeactivateAccount", ctx, "5100", suite.actor, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.DeactivateAccount(ctx, "5100", suite.actor)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ChartServiceTestSuite) TestDeactivateAccount_BlockedWhileReferenced() {
	ctx := context.Background()
	account := &domain.Account{Code: "1100", IsActive: true}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, "1100").Return(account, nil).Once()
	suite.mockAccountRepo.On("CountOpenPeriodReferences", ctx, "1100", mock.AnythingOfType("time.Time")).
		Return(int64(3), nil).Once()

	err := suite.service.DeactivateAccount(ctx, "1100", suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeactivateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ChartServiceTestSuite) TestDeactivateAccount_AlreadyInactive() {
	ctx := context.Background()
	account := &domain.Account{Code: "1100", IsActive: false}
	suite.mockAccountRepo.On("FindAccountByCode", ctx, "1100").Return(account, nil).Once()

	err := suite.service.DeactivateAccount(ctx, "1100", suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *ChartServiceTestSuite) TestSeedDefaultAccounts_PopulatesEmptyRegistry() {
	ctx := context.Background()
	suite.mockAccountRepo.On("CountAccounts", ctx).Return(int64(0), nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Times(9)

	created, err := suite.service.SeedDefaultAccounts(ctx, suite.actor)

	suite.Require().NoError(err)
	suite.Equal(9, created)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ChartServiceTestSuite) TestSeedDefaultAccounts_SkipsNonEmptyRegistry() {
	ctx := context.Background()
	suite.mockAccountRepo.On("CountAccounts", ctx).Return(int64(4), nil).Once()

	created, err := suite.service.SeedDefaultAccounts(ctx, suite.actor)

	suite.Require().NoError(err)
	suite.Equal(0, created)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func TestChartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChartServiceTestSuite))
}
