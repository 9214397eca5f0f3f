package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/plancours/internal/pdf"
)

var (
	pdfIn  string
	pdfOut string
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Encode and inspect plan documents",
}

var pdfEncodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Render a text file into a one-page PDF",
	Long: `Encode renders each line of the input as one line of text in a single-page
PDF. Lines longer than 90 characters are wrapped.

Example:
  plancours pdf encode --in plan.txt --out plan.pdf
  printf 'Plan : Automne\n' | plancours pdf encode --in - --out plan.pdf`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(cmd.InOrStdin(), pdfIn)
		if err != nil {
			return err
		}

		doc := pdf.Encode(splitLines(text))
		recorder.DocumentSize(len(doc))

		if err := os.WriteFile(pdfOut, doc, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", pdfOut, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%d bytes)\n", pdfOut, len(doc))
		return nil
	},
}

var pdfInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Check a plan document and print its text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		info, err := pdf.Inspect(doc)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Objects: %d\n", info.Objects)
		fmt.Fprintf(out, "Pages:   %d\n", info.Pages)
		fmt.Fprintf(out, "Xref:    %d\n", info.XrefOffset)
		fmt.Fprintf(out, "Lines:   %d\n\n", len(info.Lines))
		for _, line := range info.Lines {
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pdfCmd)
	pdfCmd.AddCommand(pdfEncodeCmd)
	pdfCmd.AddCommand(pdfInspectCmd)

	pdfEncodeCmd.Flags().StringVar(&pdfIn, "in", "-", "text file to render (- for stdin)")
	pdfEncodeCmd.Flags().StringVar(&pdfOut, "out", "plan.pdf", "output PDF path")
}

// splitLines splits text on line breaks, dropping the final empty line of a
// newline-terminated file. Only empty text yields no lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
