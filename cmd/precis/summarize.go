package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wgomg/precis/internal/ingest"
	"github.com/wgomg/precis/internal/processor"
	"github.com/wgomg/precis/internal/utils"
)

var (
	summarizeLength      string
	summarizeTone        string
	summarizeRatio       float64
	summarizeJSON        bool
	summarizeTranslateTo string
	summarizeDocument    int
)

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVar(&summarizeLength, "length", "", "Summary length: short, medium or long")
	summarizeCmd.Flags().StringVar(&summarizeTone, "tone", "", "Output shape: structured or simple")
	summarizeCmd.Flags().Float64Var(&summarizeRatio, "ratio", 0, "Fraction of sentences to keep, overrides --length")
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "Print the summary as JSON")
	summarizeCmd.Flags().StringVar(&summarizeTranslateTo, "translate-to", "", "Translate the summary with the configured LLM")
	summarizeCmd.Flags().IntVar(&summarizeDocument, "document", 0, "Summarize a Paperless document by id instead of a file")
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file|-]",
	Short: "Summarize a PDF or text file",
	Long: `Summarize a PDF or text file. Reads standard input when the file is
"-" or omitted.

Examples:
  precis summarize report.pdf --length short
  cat brief.txt | precis summarize --tone simple --json
  precis summarize --document 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	opts, err := cliOptions(summarizeLength, summarizeTone, summarizeRatio)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := utils.WithRequestID(cmd.Context(), "cli")

	text, err := readDocument(cmd, a, args, summarizeDocument)
	if err != nil {
		return err
	}

	summary, err := a.summarizer.Summarize(ctx, text, opts)
	if err != nil {
		return dataError(err)
	}

	if summarizeTranslateTo != "" {
		if a.llm == nil {
			return withExitCode(ExitConfigError, fmt.Errorf("--translate-to needs LLM_URL and LLM_TOKEN"))
		}
		if summary.Translation, err = a.llm.Translate(ctx, summary.Text(), summarizeTranslateTo); err != nil {
			return fmt.Errorf("translating summary: %w", err)
		}
	}

	return printSummary(cmd.OutOrStdout(), summary, summarizeJSON)
}

func cliOptions(length, tone string, ratio float64) (processor.Options, error) {
	var opts processor.Options
	var err error

	if length != "" {
		if opts.Length, err = processor.ParseLength(length); err != nil {
			return opts, err
		}
	}
	if tone != "" {
		if opts.Mode, err = processor.ParseMode(tone); err != nil {
			return opts, err
		}
	}
	if ratio < 0 || ratio > 1 {
		return opts, fmt.Errorf("--ratio must be within (0, 1]")
	}
	opts.Ratio = ratio

	return opts, nil
}

// readDocument loads the text from Paperless when documentID is set, or from
// the file argument otherwise.
func readDocument(cmd *cobra.Command, a *app, args []string, documentID int) (string, error) {
	if documentID > 0 {
		if a.paperless == nil {
			return "", withExitCode(ExitConfigError, fmt.Errorf("--document needs PAPERLESS_URL and PAPERLESS_TOKEN"))
		}
		doc, err := a.paperless.GetDocument(cmd.Context(), documentID)
		if err != nil {
			return "", fmt.Errorf("fetching document %d: %w", documentID, err)
		}
		return doc.Content, nil
	}

	path := "-"
	if len(args) > 0 {
		path = args[0]
	}

	text, err := ingest.ReadFile(path, cmd.InOrStdin())
	if err != nil {
		return "", dataError(err)
	}
	return text, nil
}

func printSummary(w io.Writer, summary *processor.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintln(w, summary.Text())
	if summary.Translation != "" {
		fmt.Fprintf(w, "\n%s\n", summary.Translation)
	}
	fmt.Fprintf(w, "\n%d of %d sentences (ratio %.2f)\n",
		summary.Stats.SummarySentenceCount,
		summary.Stats.OriginalSentenceCount,
		summary.Stats.CompressionRatio)
	return nil
}
