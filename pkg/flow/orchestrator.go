package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/networks"
	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/session"
	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/sideshift"
	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/usererr"
)

// SwapClient is the slice of the provider API the orchestrator needs.
type SwapClient interface {
	GetPermissions(ctx context.Context, callerIP string) (*sideshift.Permissions, error)
	GetPair(ctx context.Context, from, to, amount, callerIP string) (*sideshift.Pair, error)
	CreateVariableShift(ctx context.Context, req sideshift.VariableShiftRequest, callerIP string) (*sideshift.Shift, error)
	GetShift(ctx context.Context, id, callerIP string) (*sideshift.Shift, error)
	CancelOrder(ctx context.Context, id, callerIP string) (*sideshift.CancelResult, error)
}

// Button is one inline keyboard button on an outbound reply.
type Button struct {
	Text string
	Data string
}

// Replier delivers outbound replies. The chat transport sits behind it.
type Replier interface {
	Reply(ctx context.Context, chatID int64, text string) error
	ReplyWithButtons(ctx context.Context, chatID int64, text string, rows [][]Button) error
}

// Event is one decoded user action, ready for the state machine.
type Event struct {
	UserID   int64
	ChatID   int64
	CallerIP string
	Command  Command
}

// Orchestrator drives the per-user ordering flow: idle -> awaiting deposit
// asset -> awaiting address -> order created. Events for the same user are
// processed strictly in arrival order.
type Orchestrator struct {
	logger  *slog.Logger
	store   session.Store
	client  SwapClient
	replier Replier
	queue   *userQueue
}

// New creates an orchestrator.
func New(logger *slog.Logger, store session.Store, client SwapClient, replier Replier) *Orchestrator {
	return &Orchestrator{
		logger:  logger,
		store:   store,
		client:  client,
		replier: replier,
		queue:   newUserQueue(),
	}
}

// HandleEvent runs one event through the state machine. It returns once the
// transition, including any provider calls, has fully completed.
func (o *Orchestrator) HandleEvent(ctx context.Context, ev Event) error {
	if ev.Command == nil {
		return fmt.Errorf("event without command")
	}
	return o.queue.Run(ctx, ev.UserID, func(ctx context.Context) error {
		return o.dispatch(ctx, ev)
	})
}

func (o *Orchestrator) dispatch(ctx context.Context, ev Event) error {
	switch cmd := ev.Command.(type) {
	case Initiate:
		return o.handleInitiate(ctx, ev, cmd)
	case SelectDepositAsset:
		return o.handleSelectDepositAsset(ctx, ev, cmd)
	case SubmitAddress:
		return o.handleSubmitAddress(ctx, ev, cmd)
	case CheckStatus:
		return o.handleCheckStatus(ctx, ev, cmd)
	case CancelOrder:
		return o.handleCancelOrder(ctx, ev, cmd)
	case CancelFlow:
		return o.handleCancelFlow(ctx, ev)
	case Help:
		return o.replier.Reply(ctx, ev.ChatID, helpText())
	case FreeText:
		return o.handleFreeText(ctx, ev, cmd)
	default:
		return fmt.Errorf("unhandled command type %T", cmd)
	}
}

// handleInitiate validates the target and opens a fresh session, replacing
// any prior one unconditionally.
func (o *Orchestrator) handleInitiate(ctx context.Context, ev Event, cmd Initiate) error {
	network, ok := networks.Resolve(cmd.NetworkAlias)
	if !ok {
		supported := make([]string, 0)
		for _, n := range networks.All() {
			supported = append(supported, n.Alias)
		}
		return o.replier.Reply(ctx, ev.ChatID, fmt.Sprintf(
			"Unknown network %q. Supported networks: %s", cmd.NetworkAlias, strings.Join(supported, ", ")))
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(cmd.Amount), 64)
	if err != nil || amount <= 0 {
		return o.replier.Reply(ctx, ev.ChatID, fmt.Sprintf(
			"Invalid amount %q. Send a positive number, e.g. /gas %s 0.01", cmd.Amount, network.Alias))
	}

	o.store.Set(ev.UserID, &session.Session{
		Step:          session.StepAwaitingDepositAsset,
		TargetNetwork: network.Alias,
		TargetAmount:  amount,
	})

	o.logger.Info("flow started",
		"user_id", ev.UserID, "network", network.Alias, "amount", amount)

	rows := assetKeyboard(network.Alias)
	text := fmt.Sprintf("Buying %s %s on %s. What do you want to pay with?",
		formatAmount(amount), network.SettleCoin, network.DisplayName)
	return o.replier.ReplyWithButtons(ctx, ev.ChatID, text, rows)
}

// handleSelectDepositAsset fetches a rate quote and either advances to the
// address step or keeps the user here with a minimum-deposit warning.
func (o *Orchestrator) handleSelectDepositAsset(ctx context.Context, ev Event, cmd SelectDepositAsset) error {
	sess, ok := o.store.Get(ev.UserID)
	if !ok || sess.Step != session.StepAwaitingDepositAsset {
		return o.replier.Reply(ctx, ev.ChatID, "No order in progress. Start one with /gas <network> <amount>.")
	}

	// A button from an earlier flow can outlive the session it was built
	// for; ignore it rather than mixing targets.
	if cmd.Context != "" && cmd.Context != sess.TargetNetwork {
		return o.replier.Reply(ctx, ev.ChatID, "That button belongs to an earlier order. Pick an asset from the latest message.")
	}

	network, ok := networks.Resolve(sess.TargetNetwork)
	if !ok {
		o.store.Delete(ev.UserID)
		return o.replier.Reply(ctx, ev.ChatID, "Your session referenced an unknown network. Please start over with /gas.")
	}

	from := pairID(cmd.Coin, cmd.Network)
	to := pairID(network.SettleCoin, network.SettleNetwork)

	// No amount hint: asking with one below the pair minimum would make the
	// provider reject the request before we can warn properly.
	pair, err := o.client.GetPair(ctx, from, to, "", ev.CallerIP)
	if err != nil {
		o.logger.Warn("pair quote failed", "user_id", ev.UserID, "from", from, "to", to, "error", err)
		return o.replier.Reply(ctx, ev.ChatID, usererr.Normalize(err))
	}

	depositAmount := "TBD"
	rate, rateErr := strconv.ParseFloat(pair.Rate, 64)
	if pair.Rate != "" && rateErr == nil && rate > 0 {
		estimated := sess.TargetAmount / rate
		depositAmount = formatAmount(estimated)

		if min, known := networks.MinimumDeposit(cmd.Coin, cmd.Network); known && estimated < min {
			suggested := min * rate
			return o.replier.Reply(ctx, ev.ChatID, fmt.Sprintf(
				"%s of %s is below the minimum deposit of %s %s. Try a target of at least %s %s, or pick another asset.",
				depositAmount, strings.ToUpper(cmd.Coin), formatAmount(min), strings.ToUpper(cmd.Coin),
				formatAmount(suggested), network.SettleCoin))
		}
	}

	sess.DepositCoin = cmd.Coin
	sess.DepositNetwork = cmd.Network
	sess.SettleCoin = network.SettleCoin
	sess.SettleNetwork = network.SettleNetwork
	sess.Quote = pair
	sess.DepositAmount = depositAmount
	sess.SettleAmount = formatAmount(sess.TargetAmount)
	sess.Step = session.StepAwaitingAddress
	o.store.Set(ev.UserID, sess)

	o.logger.Info("quote stored",
		"user_id", ev.UserID, "deposit", from, "settle", to, "rate", pair.Rate)

	return o.replier.Reply(ctx, ev.ChatID, fmt.Sprintf(
		"You'll send about %s %s and receive %s %s on %s.\nNow send me your %s address.",
		depositAmount, strings.ToUpper(cmd.Coin), sess.SettleAmount, network.SettleCoin,
		network.DisplayName, network.DisplayName))
}

// handleSubmitAddress validates the settle address and creates the order.
// The session survives every failure except a corrupted quote, so the user
// can retry by sending the address again.
func (o *Orchestrator) handleSubmitAddress(ctx context.Context, ev Event, cmd SubmitAddress) error {
	sess, ok := o.store.Get(ev.UserID)
	if !ok || sess.Step != session.StepAwaitingAddress {
		return o.replier.Reply(ctx, ev.ChatID, "No order in progress. Start one with /gas <network> <amount>.")
	}

	network, ok := networks.Resolve(sess.TargetNetwork)
	if !ok {
		o.store.Delete(ev.UserID)
		return o.replier.Reply(ctx, ev.ChatID, "Your session referenced an unknown network. Please start over with /gas.")
	}

	address := strings.TrimSpace(cmd.Text)
	if !network.ValidAddress(address) {
		return o.replier.Reply(ctx, ev.ChatID, fmt.Sprintf(
			"That doesn't look like a valid %s address. Example: %s",
			network.DisplayName, network.ExampleAddress))
	}

	if !quoteComplete(sess.Quote) {
		// The order would be created against a pair we can't trust; throw
		// the session away instead of guessing.
		o.store.Delete(ev.UserID)
		o.logger.Error("session quote corrupted", "user_id", ev.UserID)
		return o.replier.Reply(ctx, ev.ChatID, "Your order details were incomplete. Please start over with /gas.")
	}

	perms, err := o.client.GetPermissions(ctx, ev.CallerIP)
	if err != nil || !perms.CreateShift {
		o.logger.Warn("permissions probe failed", "user_id", ev.UserID, "error", err)
		return o.replier.Reply(ctx, ev.ChatID, "The swap service is unavailable right now. Your order is saved; send the address again in a minute.")
	}

	// The pair must be exactly what the stored quote returned; substituting
	// anything here would order a different asset than the user was quoted.
	shift, err := o.client.CreateVariableShift(ctx, sideshift.VariableShiftRequest{
		SettleAddress:  address,
		DepositCoin:    sess.Quote.DepositCoin,
		SettleCoin:     sess.Quote.SettleCoin,
		DepositNetwork: sess.Quote.DepositNetwork,
		SettleNetwork:  sess.Quote.SettleNetwork,
	}, ev.CallerIP)
	if err != nil {
		o.logger.Error("order creation failed", "user_id", ev.UserID, "error", err)
		return o.replier.Reply(ctx, ev.ChatID, usererr.Normalize(err))
	}

	o.store.Delete(ev.UserID)
	o.logger.Info("order created",
		"user_id", ev.UserID, "order_id", shift.ID,
		"deposit", pairID(shift.DepositCoin, shift.DepositNetwork),
		"settle", pairID(shift.SettleCoin, shift.SettleNetwork))

	return o.replier.Reply(ctx, ev.ChatID, fmt.Sprintf(
		"Order %s created.\nSend %s %s to:\n%s\n\nYou'll receive %s %s on %s.\nThis deposit address expires in %s. Check progress with /status %s.",
		shift.ID, sess.DepositAmount, strings.ToUpper(sess.DepositCoin), shift.DepositAddress,
		sess.SettleAmount, network.SettleCoin, network.DisplayName,
		expiryCountdown(shift.ExpiresAt), shift.ID))
}

// handleCheckStatus reads the current order snapshot. It never touches the
// session.
func (o *Orchestrator) handleCheckStatus(ctx context.Context, ev Event, cmd CheckStatus) error {
	if strings.TrimSpace(cmd.OrderID) == "" {
		return o.replier.Reply(ctx, ev.ChatID, "Usage: /status <order-id>")
	}

	shift, err := o.client.GetShift(ctx, cmd.OrderID, ev.CallerIP)
	if err != nil {
		var apiErr *sideshift.APIError
		if errors.As(err, &apiErr) && apiErr.Code == sideshift.CodeNotFound {
			return o.replier.Reply(ctx, ev.ChatID, fmt.Sprintf(
				"No order found with id %s. Double-check the id from your confirmation message.", cmd.OrderID))
		}
		return o.replier.Reply(ctx, ev.ChatID, usererr.Normalize(err))
	}

	return o.replier.Reply(ctx, ev.ChatID, statusText(shift))
}

// handleCancelOrder relays a cancellation to the provider. Age policy is
// enforced entirely on the provider side and its answer passed through.
func (o *Orchestrator) handleCancelOrder(ctx context.Context, ev Event, cmd CancelOrder) error {
	if strings.TrimSpace(cmd.OrderID) == "" {
		return o.replier.Reply(ctx, ev.ChatID, "Usage: /cancelorder <order-id>")
	}

	if _, err := o.client.CancelOrder(ctx, cmd.OrderID, ev.CallerIP); err != nil {
		return o.replier.Reply(ctx, ev.ChatID, usererr.Normalize(err))
	}

	return o.replier.Reply(ctx, ev.ChatID, fmt.Sprintf("Order %s cancelled.", cmd.OrderID))
}

// handleCancelFlow clears the session from any step.
func (o *Orchestrator) handleCancelFlow(ctx context.Context, ev Event) error {
	o.store.Delete(ev.UserID)
	return o.replier.Reply(ctx, ev.ChatID, "Order flow cancelled. Start a new one any time with /gas <network> <amount>.")
}

// handleFreeText routes plain text by the current step: an address when one
// is awaited, otherwise an unrecognized command.
func (o *Orchestrator) handleFreeText(ctx context.Context, ev Event, cmd FreeText) error {
	sess, ok := o.store.Get(ev.UserID)
	if ok && sess.Step == session.StepAwaitingAddress {
		return o.handleSubmitAddress(ctx, ev, SubmitAddress{Text: cmd.Text})
	}
	if ok && sess.Step == session.StepAwaitingDepositAsset {
		return o.replier.Reply(ctx, ev.ChatID, "Pick a deposit asset with the buttons above, or /cancel to abandon the order.")
	}
	return o.replier.Reply(ctx, ev.ChatID, "I didn't understand that. Try /help for the available commands.")
}

func assetKeyboard(targetAlias string) [][]Button {
	rows := make([][]Button, 0, (len(depositOptions)+1)/2)
	row := make([]Button, 0, 2)
	for _, opt := range DepositOptions() {
		row = append(row, Button{
			Text: opt.Label,
			Data: EncodeSelection(opt.Coin, opt.Network, targetAlias),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = make([]Button, 0, 2)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []Button{{Text: "Cancel", Data: "cancel"}})
	return rows
}

// quoteComplete reports whether the stored quote carries everything order
// creation needs.
func quoteComplete(q *sideshift.Pair) bool {
	return q != nil &&
		q.DepositCoin != "" && q.SettleCoin != "" &&
		q.DepositNetwork != "" && q.SettleNetwork != ""
}

// pairID builds the provider's coin-network pair identifier.
func pairID(coin, network string) string {
	return strings.ToLower(coin) + "-" + strings.ToLower(network)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func expiryCountdown(expiresAt time.Time) string {
	remaining := time.Until(expiresAt)
	if remaining <= 0 {
		return "less than a minute"
	}
	minutes := int(remaining.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		return "less than a minute"
	}
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

func statusText(shift *sideshift.Shift) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s: %s\n", shift.ID, shift.Status)
	switch shift.Status {
	case sideshift.StatusWaiting:
		fmt.Fprintf(&b, "Waiting for your deposit to %s.", shift.DepositAddress)
		if !shift.ExpiresAt.IsZero() {
			fmt.Fprintf(&b, " The deposit address expires in %s.", expiryCountdown(shift.ExpiresAt))
		}
	case sideshift.StatusPending, sideshift.StatusProcessing:
		b.WriteString("Deposit received, swap in progress.")
	case sideshift.StatusSettled:
		fmt.Fprintf(&b, "Done. %s %s was sent to %s.", shift.SettleAmount, shift.SettleCoin, shift.SettleAddress)
	case sideshift.StatusRefunding, sideshift.StatusRefunded:
		b.WriteString("The deposit is being returned to your refund address.")
	default:
		b.WriteString("Status reported by the swap service.")
	}
	return b.String()
}

func helpText() string {
	return strings.Join([]string{
		"OctaneShift buys native gas on a destination chain.",
		"",
		"/gas <network> <amount> - start an order, e.g. /gas base 0.01",
		"/status <order-id> - check an order",
		"/cancelorder <order-id> - cancel an order (after 5 minutes)",
		"/cancel - abandon the current order flow",
	}, "\n")
}
