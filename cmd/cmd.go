package cmd

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "settlex",
	Short: "split group expenses and settle them on-chain",
	Long:  `settlex splits group expenses among members, nets the resulting debts into a short payment plan, and settles them with on-chain payments`,
}

func init() {
	RootCmd.AddCommand(settleCmd())
	RootCmd.AddCommand(serverCommand())
	RootCmd.AddCommand(migrateCommand())
}
