package networks

import (
	"fmt"
	"strings"
)

// Known minimum deposit amounts, keyed by "coin/network" (both lowercase).
// Values mirror the provider's observed floor for each deposit asset. Pairs
// outside this table have no locally enforced minimum; the provider's own
// pair minimum still applies at order-creation time.
var minimumDeposits = map[string]float64{
	"usdc/ethereum": 5.1,
	"usdt/ethereum": 5.1,
	"usdc/base":     1.2,
	"usdc/solana":   1.2,
	"usdt/tron":     1.5,
	"eth/ethereum":  0.0013,
	"eth/base":      0.00035,
	"btc/bitcoin":   0.0001,
	"ltc/litecoin":  0.01,
	"sol/solana":    0.008,
	"bnb/bsc":       0.002,
}

// MinimumDeposit returns the known minimum deposit for a coin/network pair.
// The second return is false when the pair is not in the table, meaning no
// minimum is enforced locally.
func MinimumDeposit(coin, network string) (float64, bool) {
	key := fmt.Sprintf("%s/%s", strings.ToLower(coin), strings.ToLower(network))
	min, ok := minimumDeposits[key]
	return min, ok
}
