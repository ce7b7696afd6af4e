package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestAppErrorMatchesPersistenceForServerCodes(t *testing.T) {
	storeErr := errors.New("connection reset by peer")
	err := apperrors.NewAppError(500, "failed to commit transaction", storeErr)

	assert.True(t, errors.Is(err, apperrors.ErrPersistence), "store failure must match ErrPersistence")
	assert.True(t, errors.Is(err, storeErr), "the driver cause must stay matchable")
	assert.Contains(t, err.Error(), "failed to commit transaction")
}

func TestAppErrorClientCodesDoNotMatchPersistence(t *testing.T) {
	err := apperrors.NewNotFoundError("account not found")

	assert.False(t, errors.Is(err, apperrors.ErrPersistence))
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAppErrorSentinelWrappingSurvivesRewrap(t *testing.T) {
	inner := apperrors.NewAppError(500, "failed to insert journal lines", errors.New("deadlock detected"))
	outer := fmt.Errorf("posting entry: %w", inner)

	assert.True(t, errors.Is(outer, apperrors.ErrPersistence))
}
