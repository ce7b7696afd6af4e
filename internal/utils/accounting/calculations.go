package accounting

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/finbooks/backoffice_ledger/internal/apperrors"
	"github.com/finbooks/backoffice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the normal-balance sign convention to a line amount.
// A line on the account's normal side increases the balance (+); a line on the
// opposite side decreases it (-).
func SignedAmount(side domain.EntrySide, normalSide domain.EntrySide, amount decimal.Decimal) decimal.Decimal {
	if side == normalSide {
		return amount
	}
	return amount.Neg()
}

// SumSides totals the debit and credit sides of a line set at full precision.
func SumSides(lines []domain.JournalLine) (debits, credits decimal.Decimal) {
	debits = decimal.Zero
	credits = decimal.Zero
	for _, line := range lines {
		if line.Side == domain.Debit {
			debits = debits.Add(line.Amount)
		} else {
			credits = credits.Add(line.Amount)
		}
	}
	return debits, credits
}

// ValidateEntryBalance enforces the double-entry invariant on a proposed line
// set: at least one line, every amount strictly positive, a valid side on each
// line, and an exact debit/credit equality with no tolerance.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: entry must have at least one line", apperrors.ErrValidation)
	}

	for _, line := range lines {
		if line.Side != domain.Debit && line.Side != domain.Credit {
			return fmt.Errorf("%w: invalid side %q for account %s", apperrors.ErrValidation, line.Side, line.AccountCode)
		}
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: line amount must be positive for account %s", apperrors.ErrValidation, line.AccountCode)
		}
	}

	debits, credits := SumSides(lines)
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s", apperrors.ErrUnbalanced, debits.String(), credits.String())
	}
	return nil
}

// BalanceChanges collapses a line set into one signed balance delta per
// account, using each account's normal side.
func BalanceChanges(lines []domain.JournalLine, normalSides map[string]domain.EntrySide) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		normal, ok := normalSides[line.AccountCode]
		if !ok {
			return nil, fmt.Errorf("normal side unknown for account %s", line.AccountCode)
		}
		changes[line.AccountCode] = changes[line.AccountCode].Add(SignedAmount(line.Side, normal, line.Amount))
	}
	return changes, nil
}

// LineChecksum fingerprints a line set for idempotency detection. The digest
// is order-independent: lines are canonicalised and sorted before hashing, so
// a retry carrying the same lines in a different order produces the same
// checksum.
func LineChecksum(lines []domain.JournalLine) string {
	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = fmt.Sprintf("%s|%s|%s", line.AccountCode, line.Side, line.Amount.String())
	}
	sort.Strings(parts)

	sum := sha256.Sum256([]byte(strings.Join(parts, ";")))
	return hex.EncodeToString(sum[:])
}
