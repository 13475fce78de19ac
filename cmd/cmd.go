package cmd

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "splitsui",
	Short: "split payments on Sui",
	Long:  `this is a tool to split payments among friends on the Sui network, it can batch-send SUI and manage group payment requests`,
}

func init() {
	RootCmd.AddCommand(serverCommand())
	RootCmd.AddCommand(migrateCommand())
	RootCmd.AddCommand(sendCommand())
	RootCmd.AddCommand(requestCommand())
	RootCmd.AddCommand(payCommand())
	RootCmd.AddCommand(viewCommand())
}
