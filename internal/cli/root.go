package cli

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "feedledger",
	Short: "Customer ledger and batch accounting API for a feed store",
	Long: `feedledger tracks customer balances for a poultry-feed store: feed
sold on credit, deposits, batch discounts and the chicken buy-backs that
settle each batch. Running it without a subcommand starts the API server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
