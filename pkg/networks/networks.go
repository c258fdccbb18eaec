package networks

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// AddressKind identifies the address format of a destination chain.
type AddressKind string

const (
	KindEVM    AddressKind = "evm"
	KindSolana AddressKind = "solana"
)

// Network describes a supported destination chain: where the user receives
// native gas after a shift settles.
type Network struct {
	Alias          string      // user-facing alias, lowercase
	DisplayName    string      // pretty name for replies and CLI output
	SettleCoin     string      // native gas coin on this chain
	SettleNetwork  string      // SideShift network identifier
	Kind           AddressKind // address format
	ExampleAddress string      // shown when the user submits an invalid address
}

var registry = map[string]Network{
	"ethereum": {
		Alias:          "ethereum",
		DisplayName:    "Ethereum",
		SettleCoin:     "ETH",
		SettleNetwork:  "ethereum",
		Kind:           KindEVM,
		ExampleAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	},
	"base": {
		Alias:          "base",
		DisplayName:    "Base",
		SettleCoin:     "ETH",
		SettleNetwork:  "base",
		Kind:           KindEVM,
		ExampleAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	},
	"arbitrum": {
		Alias:          "arbitrum",
		DisplayName:    "Arbitrum One",
		SettleCoin:     "ETH",
		SettleNetwork:  "arbitrum",
		Kind:           KindEVM,
		ExampleAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	},
	"optimism": {
		Alias:          "optimism",
		DisplayName:    "OP Mainnet",
		SettleCoin:     "ETH",
		SettleNetwork:  "optimism",
		Kind:           KindEVM,
		ExampleAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	},
	"polygon": {
		Alias:          "polygon",
		DisplayName:    "Polygon PoS",
		SettleCoin:     "POL",
		SettleNetwork:  "polygon",
		Kind:           KindEVM,
		ExampleAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	},
	"bsc": {
		Alias:          "bsc",
		DisplayName:    "BNB Smart Chain",
		SettleCoin:     "BNB",
		SettleNetwork:  "bsc",
		Kind:           KindEVM,
		ExampleAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	},
	"avalanche": {
		Alias:          "avalanche",
		DisplayName:    "Avalanche C-Chain",
		SettleCoin:     "AVAX",
		SettleNetwork:  "avax",
		Kind:           KindEVM,
		ExampleAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	},
	"solana": {
		Alias:          "solana",
		DisplayName:    "Solana",
		SettleCoin:     "SOL",
		SettleNetwork:  "solana",
		Kind:           KindSolana,
		ExampleAddress: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
	},
}

// secondary aliases users commonly type
var aliases = map[string]string{
	"eth":      "ethereum",
	"mainnet":  "ethereum",
	"arb":      "arbitrum",
	"op":       "optimism",
	"matic":    "polygon",
	"pol":      "polygon",
	"bnb":      "bsc",
	"binance":  "bsc",
	"avax":     "avalanche",
	"sol":      "solana",
}

// Resolve maps a user-supplied alias to a known destination network.
func Resolve(alias string) (Network, bool) {
	key := strings.ToLower(strings.TrimSpace(alias))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	n, ok := registry[key]
	return n, ok
}

// All returns every supported network, ordered by alias.
func All() []Network {
	ordered := []string{"ethereum", "base", "arbitrum", "optimism", "polygon", "bsc", "avalanche", "solana"}
	out := make([]Network, 0, len(ordered))
	for _, alias := range ordered {
		out = append(out, registry[alias])
	}
	return out
}

// ValidAddress reports whether addr is a well-formed address for the network.
func (n Network) ValidAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}

	switch n.Kind {
	case KindEVM:
		return common.IsHexAddress(addr) && strings.HasPrefix(addr, "0x")
	case KindSolana:
		_, err := solana.PublicKeyFromBase58(addr)
		return err == nil
	default:
		return false
	}
}
