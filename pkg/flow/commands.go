package flow

import "strings"

// Command is the closed set of inputs the orchestrator understands. Decoding
// happens once, at the edge; the state machine matches over variants instead
// of inspecting strings.
type Command interface {
	isCommand()
}

// Initiate starts a new ordering flow for a destination network. Amount is
// kept as typed by the user; the orchestrator validates it.
type Initiate struct {
	NetworkAlias string
	Amount       string
}

// SelectDepositAsset is the user's choice of what to pay with. Context
// carries the destination network alias the selection keyboard was built
// for, so stale buttons from an earlier flow can be detected.
type SelectDepositAsset struct {
	Coin    string
	Network string
	Context string
}

// SubmitAddress is the settle address for the pending order.
type SubmitAddress struct {
	Text string
}

// CheckStatus asks for the current state of an order.
type CheckStatus struct {
	OrderID string
}

// CancelOrder asks the provider to cancel an order.
type CancelOrder struct {
	OrderID string
}

// CancelFlow abandons the current session, whatever step it is on.
type CancelFlow struct{}

// Help asks for usage instructions.
type Help struct{}

// FreeText is message text that matched no command. The orchestrator routes
// it to SubmitAddress when a session is waiting for one, otherwise it is
// unrecognized.
type FreeText struct {
	Text string
}

func (Initiate) isCommand()           {}
func (SelectDepositAsset) isCommand() {}
func (SubmitAddress) isCommand()      {}
func (CheckStatus) isCommand()        {}
func (CancelOrder) isCommand()        {}
func (CancelFlow) isCommand()         {}
func (Help) isCommand()               {}
func (FreeText) isCommand()           {}

const selectionPrefix = "asset"

// DecodeMessage turns message text into a command. Unknown slash commands
// and plain text both come back as FreeText.
func DecodeMessage(text string) Command {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return FreeText{Text: text}
	}

	fields := strings.Fields(text)
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	// strip a bot mention like /gas@octaneshift_bot
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	args := fields[1:]

	switch name {
	case "gas", "buy":
		cmd := Initiate{}
		if len(args) > 0 {
			cmd.NetworkAlias = args[0]
		}
		if len(args) > 1 {
			cmd.Amount = args[1]
		}
		return cmd
	case "status":
		cmd := CheckStatus{}
		if len(args) > 0 {
			cmd.OrderID = args[0]
		}
		return cmd
	case "cancelorder":
		cmd := CancelOrder{}
		if len(args) > 0 {
			cmd.OrderID = args[0]
		}
		return cmd
	case "cancel":
		return CancelFlow{}
	case "start", "help":
		return Help{}
	default:
		return FreeText{Text: text}
	}
}

// DecodeCallback turns inline-button callback data into a command. Selection
// tokens are accepted in both the current "|" and the legacy ":" delimiter
// format; buttons from messages sent before the format change still work.
func DecodeCallback(data string) (Command, bool) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, false
	}

	switch data {
	case "cancel":
		return CancelFlow{}, true
	}

	for _, delim := range []string{"|", ":"} {
		if !strings.Contains(data, delim) {
			continue
		}
		parts := strings.Split(data, delim)
		if parts[0] != selectionPrefix || len(parts) < 3 {
			return nil, false
		}
		cmd := SelectDepositAsset{Coin: parts[1], Network: parts[2]}
		if len(parts) > 3 {
			cmd.Context = parts[3]
		}
		if cmd.Coin == "" || cmd.Network == "" {
			return nil, false
		}
		return cmd, true
	}

	return nil, false
}

// EncodeSelection builds callback data for a deposit-asset button in the
// current format.
func EncodeSelection(coin, network, context string) string {
	return strings.Join([]string{selectionPrefix, coin, network, context}, "|")
}
