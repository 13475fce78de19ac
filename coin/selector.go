package coin

import (
	"math"
	"sort"
)

// SelectorError is a coin-selection failure.
type SelectorError string

func (e SelectorError) Error() string {
	return string(e)
}

// ErrInsufficientFunds means no single owned coin covers the required
// amount plus the fee reserve. Callers must not fall back to a smaller coin.
const ErrInsufficientFunds SelectorError = "insufficient funds: no single coin covers amount plus fee reserve"

// SelectFundingCoin picks the coin that backs a spend of required Mist while
// keeping feeReserve available for gas on the same coin. Coins are considered
// largest-first; equal balances keep their original relative order, so the
// choice is deterministic for a given listing.
func SelectFundingCoin(coins []CoinObject, required, feeReserve Mist) (CoinObject, error) {
	if feeReserve > Mist(math.MaxUint64)-required {
		// required + feeReserve overflows u64; no coin can cover it
		return CoinObject{}, ErrInsufficientFunds
	}
	need := required + feeReserve

	sorted := make([]CoinObject, len(coins))
	copy(sorted, coins)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Balance > sorted[j].Balance
	})

	for _, c := range sorted {
		if c.Balance >= need {
			return c, nil
		}
	}
	return CoinObject{}, ErrInsufficientFunds
}
