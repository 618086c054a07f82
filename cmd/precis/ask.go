package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wgomg/precis/internal/utils"
)

var askDocument int

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().IntVar(&askDocument, "document", 0, "Ask about a Paperless document by id instead of a file")
}

var askCmd = &cobra.Command{
	Use:   "ask <question> [file|-]",
	Short: "Ask a question about a document",
	Long: `Answer a free-form question about a document with the configured LLM.

Examples:
  precis ask "What is the budget for 2025?" plan.pdf
  precis ask "Who funds the programme?" --document 42`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.llm == nil {
		return withExitCode(ExitConfigError, fmt.Errorf("ask needs LLM_URL and LLM_TOKEN"))
	}

	text, err := readDocument(cmd, a, args[1:], askDocument)
	if err != nil {
		return err
	}

	answer, err := a.llm.Ask(utils.WithRequestID(cmd.Context(), "cli"), text, args[0])
	if err != nil {
		return fmt.Errorf("asking LLM: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
