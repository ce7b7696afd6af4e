package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/finbooks/backoffice_ledger/internal/core/services"
	"github.com/finbooks/backoffice_ledger/internal/dto"
	"github.com/finbooks/backoffice_ledger/internal/middleware"
	"github.com/finbooks/backoffice_ledger/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finbooks/backoffice_ledger/internal/handlers"
	"github.com/gin-gonic/gin"
)

// --- Mock ChartService ---
type MockChartService struct {
	mock.Mock
}

func (m *MockChartService) RegisterAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) GetAccount(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockChartService) BalanceAsOf(ctx context.Context, code string, cutoff time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, code, cutoff)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockChartService) DeactivateAccount(ctx context.Context, code string, actor string) error {
	args := m.Called(ctx, code, actor)
	return args.Error(0)
}

func (m *MockChartService) SeedDefaultAccounts(ctx context.Context, actor string) (int, error) {
	args := m.Called(ctx, actor)
	return args.Int(0), args.Error(1)
}

// --- Stub services for the remaining facades ---
type stubLedgerService struct{}

func (stubLedgerService) Post(ctx context.Context, req dto.PostEntryRequest, actor string) (*domain.PostingReceipt, error) {
	return nil, apperrors.ErrInternal
}
func (stubLedgerService) Void(ctx context.Context, serial int64, reason, actor string) (*domain.JournalEntry, error) {
	return nil, apperrors.ErrInternal
}
func (stubLedgerService) GetEntry(ctx context.Context, serial int64) (*domain.JournalEntry, error) {
	return nil, apperrors.ErrInternal
}
func (stubLedgerService) ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, error) {
	return nil, apperrors.ErrInternal
}

type stubInvoiceService struct{}

func (stubInvoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, actor string) (*domain.Invoice, error) {
	return nil, apperrors.ErrInternal
}
func (stubInvoiceService) GetInvoice(ctx context.Context, number string) (*domain.Invoice, error) {
	return nil, apperrors.ErrInternal
}
func (stubInvoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, error) {
	return nil, apperrors.ErrInternal
}
func (stubInvoiceService) Confirm(ctx context.Context, number, actor string) (*domain.Invoice, error) {
	return nil, apperrors.ErrInternal
}
func (stubInvoiceService) PostToLedger(ctx context.Context, number, actor string) (*domain.PostingReceipt, error) {
	return nil, apperrors.ErrInternal
}
func (stubInvoiceService) Cancel(ctx context.Context, number, reason, actor string) (*domain.Invoice, error) {
	return nil, apperrors.ErrInternal
}
func (stubInvoiceService) RecordPayment(ctx context.Context, number string, amount decimal.Decimal, actor string) (*domain.Invoice, error) {
	return nil, apperrors.ErrInternal
}
func (stubInvoiceService) AttachEvidence(ctx context.Context, number, filename string, content io.Reader) (string, error) {
	return "", apperrors.ErrInternal
}

// --- Test Suite Setup ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockChartSvc *MockChartService
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	middleware.RegisterCustomValidators()

	suite.mockChartSvc = new(MockChartService)
	container := &services.ServiceContainer{
		ChartSvc:   suite.mockChartSvc,
		LedgerSvc:  stubLedgerService{},
		InvoiceSvc: stubInvoiceService{},
	}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{IsProduction: true}, container)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	account := &domain.Account{
		Code:        "1100",
		Name:        "Customers (AR)",
		AccountType: domain.Asset,
		NormalSide:  domain.Debit,
		IsActive:    true,
		Balance:     decimal.Zero,
	}
	suite.mockChartSvc.On("RegisterAccount", mock.Anything, mock.AnythingOfType("dto.CreateAccountRequest"), "controller-1").
		Return(account, nil).Once()

	body := `{"code":"1100","name":"Customers (AR)","accountType":"ASSET"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor", "controller-1")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("1100", resp.Code)
	suite.Equal(domain.Debit, resp.NormalSide)
	suite.mockChartSvc.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_InvalidAccountType() {
	body := `{"code":"1100","name":"Customers","accountType":"SIDEWAYS"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockChartSvc.AssertNotCalled(suite.T(), "RegisterAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_DuplicateCode() {
	suite.mockChartSvc.On("RegisterAccount", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrDuplicate).Once()

	body := `{"code":"1100","name":"Customers (AR)","accountType":"ASSET"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockChartSvc.On("GetAccount", mock.Anything, "9999").Return(nil, apperrors.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/9999", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance_Success() {
	want := decimal.RequireFromString("150.000")
	suite.mockChartSvc.On("BalanceAsOf", mock.Anything, "1100", mock.AnythingOfType("time.Time")).
		Return(want, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1100/balance", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountBalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Balance.Equal(want))
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance_BadCutoff() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1100/balance?asOf=not-a-time", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockChartSvc.AssertNotCalled(suite.T(), "BalanceAsOf", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestDeactivateAccount_ConflictWhileReferenced() {
	suite.mockChartSvc.On("DeactivateAccount", mock.Anything, "1100", mock.Anything).
		Return(apperrors.ErrConflict).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/accounts/1100", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)
}

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
