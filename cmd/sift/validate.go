package main

import (
	"os"

	"github.com/aretw0/sift/internal/cli"
	"github.com/aretw0/sift/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate NAME|FILE",
	Short: "Validate a document against a schema",
	Long: `Validates the --input document against a catalog schema, or against a
definition file given by path. Exits with status 1 when the document has issues.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		jsonMode, _ := cmd.Flags().GetBool("json")
		diff, _ := cmd.Flags().GetBool("diff")

		return withSession(options(cmd), func(s *cli.Session) error {
			return cli.RunValidate(cmd.Context(), s, cli.ValidateOptions{
				Schema:    args[0],
				InputPath: input,
				JSON:      jsonMode,
				Diff:      diff,
				Rich:      !jsonMode && tui.IsTerminal(os.Stdout),
			}, os.Stdin, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("input", "i", "", "Document to validate (.json, .yaml; - for JSON on stdin)")
	validateCmd.Flags().Bool("json", false, "Write the report as JSON")
	validateCmd.Flags().Bool("diff", false, "Show how the validated output differs from the input")
}
