package flow

// DepositOption is a coin/network pair offered on the selection keyboard.
type DepositOption struct {
	Coin    string
	Network string
	Label   string
}

// depositOptions are the assets users most commonly pay with. Anything the
// provider supports works as a deposit asset; these are just the shortcuts
// offered as buttons.
var depositOptions = []DepositOption{
	{Coin: "usdc", Network: "ethereum", Label: "USDC (Ethereum)"},
	{Coin: "usdt", Network: "ethereum", Label: "USDT (Ethereum)"},
	{Coin: "usdc", Network: "base", Label: "USDC (Base)"},
	{Coin: "usdc", Network: "solana", Label: "USDC (Solana)"},
	{Coin: "eth", Network: "ethereum", Label: "ETH (Ethereum)"},
	{Coin: "btc", Network: "bitcoin", Label: "BTC (Bitcoin)"},
	{Coin: "sol", Network: "solana", Label: "SOL (Solana)"},
	{Coin: "ltc", Network: "litecoin", Label: "LTC (Litecoin)"},
}

// DepositOptions returns the selection-keyboard assets.
func DepositOptions() []DepositOption {
	out := make([]DepositOption, len(depositOptions))
	copy(out, depositOptions)
	return out
}
