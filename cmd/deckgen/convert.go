package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/deckgen/deckgen/docread"
)

func newConvertCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert [flags] INPUT",
		Short: "Convert a document to Markdown",
		Long: `Convert turns INPUT into the Markdown outline the generator consumes,
so the result can be reviewed and edited before generating. HTML, DOCX,
XLSX, ODT, EPUB, PDF, PPTX and plain text inputs are supported; the
format is resolved from the file name or, failing that, the content.`,
		Example: `  deckgen convert report.docx > report.md
  deckgen convert -o report.md report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, output, args[0])
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: standard output)")
	return cmd
}

func runConvert(cmd *cobra.Command, output, input string) error {
	text, err := docread.DefaultRegistry().ReadFile(input)
	if err != nil {
		return err
	}

	if output == "" || output == "-" {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}
	if err := os.WriteFile(output, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	logrus.Infof("converted %s to %s", input, output)
	return nil
}
