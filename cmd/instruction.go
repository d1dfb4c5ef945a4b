package cmd

import (
	"fmt"

	"wordsmith/pkg/backend"

	"github.com/spf13/cobra"
)

var instructionCmd = &cobra.Command{
	Use:   "instruction",
	Short: "Print the instruction sent to the backend",
	Long: `Print the fixed instruction sent with every conversion request. It is
the same for every provider and is versioned so stored results can be traced
back to the instruction that produced them.`,
	Args: cobra.NoArgs,
	RunE: runInstruction,
}

// runInstruction prints the instruction verbatim. It already ends in a
// newline.
func runInstruction(cmd *cobra.Command, args []string) error {
	out := NewOutputWriter(outputFormat)
	out.SetWriter(cmd.OutOrStdout())
	if out.IsStructured() {
		return out.Write(map[string]string{
			"version":     backend.InstructionVersion,
			"instruction": backend.Instruction,
		})
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "# instruction version %s\n", backend.InstructionVersion)
	_, err := fmt.Fprint(cmd.OutOrStdout(), backend.Instruction)
	return err
}
