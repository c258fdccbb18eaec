package session

import (
	"time"

	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/sideshift"
)

// Step identifies where a user is in the ordering flow. A user with no
// session is idle.
type Step string

const (
	StepAwaitingDepositAsset Step = "awaiting_deposit_asset"
	StepAwaitingAddress      Step = "awaiting_address"
)

// Session is the per-user state for one pass through the ordering flow.
// There is at most one per user id; a new flow overwrites it wholesale.
type Session struct {
	Step Step

	// Chosen at initiation
	TargetNetwork string  // destination network alias
	TargetAmount  float64 // requested native gas amount

	// Chosen once a quote is fetched
	DepositCoin    string
	DepositNetwork string
	SettleCoin     string
	SettleNetwork  string

	// Quote is the rate snapshot the order will be created from. Immutable
	// once stored; cleared only with the session.
	Quote *sideshift.Pair

	// Derived once at quote time, never recomputed
	DepositAmount string
	SettleAmount  string

	CreatedAt time.Time
}
