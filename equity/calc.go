package equity

import (
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/shopspring/decimal"
)

// PercentageOf returns value/total as a percentage rounded to two
// decimal places. A zero total yields zero rather than an error so
// callers can evaluate empty cap tables.
func PercentageOf(value, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.New(value, 0).
		Div(decimal.New(total, 0)).
		Mul(decimal.New(100, 0)).
		Round(2)
}

// DilutionFromIssuance returns the percentage of the post-issuance
// company that the new shares represent, rounded to two decimal
// places. Issuing into an empty company is 100% dilution.
func DilutionFromIssuance(newShares, existingShares int64) decimal.Decimal {
	if existingShares == 0 {
		return decimal.New(100, 0)
	}
	return decimal.New(newShares, 0).
		Div(decimal.New(existingShares+newShares, 0)).
		Mul(decimal.New(100, 0)).
		Round(2)
}

// RequiresSpecialResolution reports whether the constitution demands a
// 75% shareholder vote for the given action. Transfers trigger at 10%
// of outstanding, issuances at 20% dilution (both inclusive), and
// borrowing at the fixed amount threshold. Conversions never trigger
// a special resolution through this path.
func RequiresSpecialResolution(action enum.GovernanceAction, pctOfTotal, amount decimal.Decimal) bool {
	switch action {
	case enum.ShareTransfer:
		return pctOfTotal.GreaterThanOrEqual(TransferSpecialThresholdPct)
	case enum.ShareIssuance:
		return pctOfTotal.GreaterThanOrEqual(IssuanceDilutionThresholdPct)
	case enum.Borrowing:
		return BorrowingExceedsThreshold(amount)
	case enum.ShareConversion:
		return false
	default:
		return false
	}
}

// BorrowingExceedsThreshold reports whether the amount meets or
// exceeds the constitutional borrowing cap.
func BorrowingExceedsThreshold(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(BorrowingThreshold)
}

// VotingPower returns shares weighted by a class voting weight,
// as used for resolution tallies and snapshot voting columns.
func VotingPower(shares int64, votingWeight decimal.Decimal) decimal.Decimal {
	return decimal.New(shares, 0).Mul(votingWeight)
}
