package services

import (
	"context"

	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EventSinkSvc receives posting and voiding events after commit. Delivery is
// best-effort and happens outside the ledger transaction; implementations must
// not fail the caller.
type EventSinkSvc interface {
	OnPosted(ctx context.Context, serial int64, origin *domain.DocumentRef, actor string, total decimal.Decimal)
	OnVoided(ctx context.Context, serial int64, reversalSerial int64, actor string, reason string)
}
