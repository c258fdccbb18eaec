package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mohamedwael201193/octaneshift-api-sub000/config"
	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/sideshift"
	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/usererr"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Inspect and manage orders",
}

var orderStatusCmd = &cobra.Command{
	Use:   "status <order-id>",
	Short: "Check the status of an order",
	Long: `Check the current state of an order by its id.

Examples:
  octaneshift order status a1b2c3
  octaneshift order status a1b2c3 --json`,
	Args: cobra.ExactArgs(1),
	Run:  runOrderStatus,
}

var orderCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel an order",
	Long: `Cancel an order. The provider only allows cancellation once the order
is at least 5 minutes old.

Examples:
  octaneshift order cancel a1b2c3`,
	Args: cobra.ExactArgs(1),
	Run:  runOrderCancel,
}

var orderRefundCmd = &cobra.Command{
	Use:   "refund-address <order-id> <address>",
	Short: "Set the refund address for an order",
	Long: `Set the address a failed or refunded deposit is returned to.

Examples:
  octaneshift order refund-address a1b2c3 0x1234...abcd`,
	Args: cobra.ExactArgs(2),
	Run:  runOrderRefund,
}

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.AddCommand(orderStatusCmd)
	orderCmd.AddCommand(orderCancelCmd)
	orderCmd.AddCommand(orderRefundCmd)
}

func newAPIClient() *sideshift.Client {
	cfg := config.Get()
	return sideshift.NewClient(cfg.BaseURL, cfg.APISecret, cfg.AffiliateID, cfg.CommissionRate)
}

func runOrderStatus(cmd *cobra.Command, args []string) {
	orderID := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	apiClient := newAPIClient()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking order status..."
		s.Start()
	}

	shift, err := apiClient.GetShift(context.Background(), orderID, "")
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(fmt.Errorf("%s", usererr.Normalize(err)))
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(shift, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayOrder(shift)
	}
}

func runOrderCancel(cmd *cobra.Command, args []string) {
	orderID := args[0]

	apiClient := newAPIClient()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Cancelling order..."
	s.Start()

	_, err := apiClient.CancelOrder(context.Background(), orderID, "")
	s.Stop()

	if err != nil {
		printError(fmt.Errorf("%s", usererr.Normalize(err)))
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Order %s cancelled.", color.CyanString(orderID)))
}

func runOrderRefund(cmd *cobra.Command, args []string) {
	orderID, address := args[0], args[1]

	apiClient := newAPIClient()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Setting refund address..."
	s.Start()

	shift, err := apiClient.SetRefundAddress(context.Background(), orderID, address, "", "")
	s.Stop()

	if err != nil {
		printError(fmt.Errorf("%s", usererr.Normalize(err)))
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Refund address for order %s set to %s.",
		color.CyanString(shift.ID), color.CyanString(address)))
}

func displayOrder(shift *sideshift.Shift) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        ORDER STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Order ID:        %s\n", color.CyanString(shift.ID))
	fmt.Printf("  Status:          %s\n", coloredStatus(shift.Status))
	fmt.Printf("  Deposit:         %s on %s\n", strings.ToUpper(shift.DepositCoin), shift.DepositNetwork)
	fmt.Printf("  Settle:          %s on %s\n", strings.ToUpper(shift.SettleCoin), shift.SettleNetwork)
	fmt.Printf("  Deposit Address: %s\n", color.HiBlackString(shift.DepositAddress))

	if shift.SettleAddress != "" {
		fmt.Printf("  Settle Address:  %s\n", color.HiBlackString(shift.SettleAddress))
	}
	if shift.DepositAmount != "" {
		fmt.Printf("  Amount In:       %s\n", shift.DepositAmount)
	}
	if shift.SettleAmount != "" {
		fmt.Printf("  Amount Out:      %s\n", shift.SettleAmount)
	}
	if !shift.ExpiresAt.IsZero() {
		fmt.Printf("  Expires:         %s\n", shift.ExpiresAt.Format("2006-01-02 15:04:05"))
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredStatus(status sideshift.ShiftStatus) string {
	label := strings.ToUpper(string(status))

	switch status {
	case sideshift.StatusSettled:
		return color.GreenString(label)
	case sideshift.StatusWaiting, sideshift.StatusPending, sideshift.StatusProcessing:
		return color.YellowString(label)
	case sideshift.StatusRefunding, sideshift.StatusRefunded:
		return color.RedString(label)
	default:
		return label
	}
}
