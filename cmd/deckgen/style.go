package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/deckgen/deckgen/catalog"
	"github.com/deckgen/deckgen/pptx"
)

func newStyleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "style",
		Short: "Manage the style catalog",
		Long: `The style catalog holds shape templates extracted from hand-made
decks, grouped by layout type. The generator picks one style at random
for every content page.`,
	}
	cmd.AddCommand(newStyleAddCmd())
	cmd.AddCommand(newStyleListCmd())
	return cmd
}

type styleAddOptions struct {
	catalog    string
	layout     string
	name       string
	slide      int
	pictureDir string
}

func newStyleAddCmd() *cobra.Command {
	var opts styleAddOptions

	cmd := &cobra.Command{
		Use:   "add [flags] DECK",
		Short: "Extract a slide into the catalog",
		Long: `Add extracts every non-placeholder shape on one slide of DECK into a
new style. The layout type names the point count the style serves:
one_point, two_points, three_points or four_points. A missing catalog
file is created.

Pictures on the slide are exported to the picture directory and
referenced by path.`,
		Example: `  deckgen style add -c catalog.json --layout two_points corporate.pptx
  deckgen style add --layout three_points --slide 4 --name triple corporate.pptx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStyleAdd(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.catalog, "catalog", "c", "", "style catalog JSON file")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "layout type the style belongs to")
	cmd.Flags().StringVar(&opts.name, "name", "", "style name (default: DECK base name and slide number)")
	cmd.Flags().IntVar(&opts.slide, "slide", 1, "slide to extract, counted from 1")
	cmd.Flags().StringVar(&opts.pictureDir, "picture-dir", "", "directory slide pictures are exported to")
	_ = cmd.MarkFlagRequired("layout")
	return cmd
}

func runStyleAdd(cmd *cobra.Command, opts styleAddOptions, deckPath string) error {
	catalogPath := firstNonEmpty(opts.catalog, cfg.Catalog)
	if catalogPath == "" {
		return errors.New("no style catalog given (use --catalog or the config file)")
	}

	cat, err := catalog.Load(catalogPath)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.Infof("catalog %s does not exist yet, starting an empty one", catalogPath)
		cat = catalog.New()
	} else if err != nil {
		return err
	}
	if dir := firstNonEmpty(opts.pictureDir, cfg.PictureDir); dir != "" {
		cat.PictureDir = dir
	}

	prs, err := pptx.Open(deckPath)
	if err != nil {
		return err
	}
	if opts.slide < 1 || opts.slide > prs.SlideCount() {
		return fmt.Errorf("slide %d is out of range, %s has %d slides", opts.slide, deckPath, prs.SlideCount())
	}
	slide, err := prs.Slide(opts.slide - 1)
	if err != nil {
		return err
	}

	name := opts.name
	if name == "" {
		base := strings.TrimSuffix(filepath.Base(deckPath), filepath.Ext(deckPath))
		name = fmt.Sprintf("%s_%d", base, opts.slide)
	}

	cat.AddLayout(opts.layout)
	if err := cat.AddStyleFromSlide(slide, opts.layout, name); err != nil {
		return err
	}
	if err := cat.Save(catalogPath); err != nil {
		return err
	}

	logrus.Infof("added style %q to layout type %q in %s", name, opts.layout, catalogPath)
	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}

func newStyleListCmd() *cobra.Command {
	var catalogFlag string

	cmd := &cobra.Command{
		Use:   "list [flags]",
		Short: "List the catalog's layout types and styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStyleList(cmd, catalogFlag)
		},
	}

	cmd.Flags().StringVarP(&catalogFlag, "catalog", "c", "", "style catalog JSON file")
	return cmd
}

func runStyleList(cmd *cobra.Command, catalogFlag string) error {
	catalogPath := firstNonEmpty(catalogFlag, cfg.Catalog)
	if catalogPath == "" {
		return errors.New("no style catalog given (use --catalog or the config file)")
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}

	names := cat.LayoutNames()
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "catalog is empty")
		return nil
	}
	for _, layoutName := range names {
		lt, err := cat.Layout(layoutName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", layoutName)
		for _, styleName := range lt.StyleNames() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s (%d shapes)\n", styleName, lt.Style(styleName).Len())
		}
	}
	return nil
}
