package cmd

import "github.com/spf13/cobra"

func RegisterCommands(root *cobra.Command) {
	root.AddCommand(versionCmd)
	root.AddCommand(clipboardServeCmd)

	root.AddCommand(convertCmd)
	root.AddCommand(copyCmd)
	root.AddCommand(packCmd)
	root.AddCommand(historyCmd)
	root.AddCommand(configCmd)
	root.AddCommand(instructionCmd)

	historyCmd.AddCommand(
		historyListCmd,
		historyShowCmd,
		historyDeleteCmd,
		historyClearCmd,
		historyInfoCmd,
	)
}
