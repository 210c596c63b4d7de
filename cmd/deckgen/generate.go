package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/deckgen/deckgen"
	"github.com/deckgen/deckgen/deck"
)

type generateOptions struct {
	template   string
	catalog    string
	output     string
	pictureDir string
	seed       int64
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate [flags] INPUT",
		Short: "Build a deck from an outline",
		Long: `Generate fills a template deck from the outline in INPUT and writes
the finished deck next to the input unless --output says otherwise.

INPUT is normally a Markdown file; HTML, DOCX, XLSX, ODT, EPUB, PDF and
PPTX inputs are converted to Markdown first.`,
		Example: `  deckgen generate -t template.pptx -c catalog.json -o talk.pptx talk.md
  deckgen generate --seed 7 talk.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "template deck with the five page layouts")
	cmd.Flags().StringVarP(&opts.catalog, "catalog", "c", "", "style catalog JSON file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: INPUT with a .pptx extension)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "fix the random style choices for reproducible output")
	cmd.Flags().StringVar(&opts.pictureDir, "picture-dir", "", "directory that relative catalog picture paths resolve against")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts generateOptions, input string) error {
	template := firstNonEmpty(opts.template, cfg.Template)
	if template == "" {
		return errors.New("no template deck given (use --template or the config file)")
	}
	catalogPath := firstNonEmpty(opts.catalog, cfg.Catalog)
	if catalogPath == "" {
		return errors.New("no style catalog given (use --catalog or the config file)")
	}
	output := opts.output
	if output == "" {
		output = outputPath(input)
	}
	if filepath.Clean(output) == filepath.Clean(input) {
		return fmt.Errorf("output %s would overwrite the input", output)
	}

	genOpts := []deckgen.Option{deckgen.WithCatalogFile(catalogPath)}
	if cfg.EndTitle != "" {
		dc := deck.DefaultConfig()
		dc.EndTitle = cfg.EndTitle
		genOpts = append(genOpts, deckgen.WithConfig(dc))
	}
	if dir := firstNonEmpty(opts.pictureDir, cfg.PictureDir); dir != "" {
		genOpts = append(genOpts, deckgen.WithPictureDir(dir))
	}
	if cmd.Flags().Changed("seed") {
		genOpts = append(genOpts, deckgen.WithSeed(opts.seed))
	}

	logrus.Infof("generating %s from %s with template %s", output, input, template)
	if err := deckgen.New(genOpts...).GenerateFile(input, template, output); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

// outputPath places the deck next to the input, swapping the extension.
func outputPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(filepath.Dir(input), base+".pptx")
}
