package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/networks"
)

var networksCmd = &cobra.Command{
	Use:     "networks",
	Aliases: []string{"list-networks", "ls"},
	Short:   "List supported destination networks",
	Long: `List the destination networks the bot can buy gas on, with their
aliases and native gas coins.

Examples:
  octaneshift networks
  octaneshift networks --json`,
	Run: runNetworks,
}

func init() {
	rootCmd.AddCommand(networksCmd)
}

func runNetworks(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	all := networks.All()

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(all, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                    SUPPORTED DESTINATION NETWORKS")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("\n  %-12s %-18s %-10s %s\n", "ALIAS", "NETWORK", "GAS COIN", "ADDRESS KIND")
	fmt.Println("  " + strings.Repeat("-", 66))

	for _, n := range all {
		fmt.Printf("  %-12s %-18s %-10s %s\n",
			color.CyanString(n.Alias), n.DisplayName, n.SettleCoin, n.Kind)
	}

	fmt.Printf("\n  Total: %d networks\n", len(all))
	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}
