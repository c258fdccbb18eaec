package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "octaneshift",
	Short: "A Telegram bot for buying native gas on a destination chain",
	Long: `octaneshift runs a Telegram bot that lets users buy a small amount of
native gas on a destination chain, paying with whatever asset they already
hold. Swaps are executed through the SideShift API.

Examples:
  octaneshift serve
  octaneshift order status a1b2c3
  octaneshift order cancel a1b2c3
  octaneshift networks`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
