package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// defaultConfigFile is picked up from the working directory when no
// --config flag is given.
const defaultConfigFile = "deckgen.toml"

// cliConfig holds the TOML config file contents. Every field is a
// default; the matching command flag wins when set.
type cliConfig struct {
	Template   string `toml:"template"`
	Catalog    string `toml:"catalog"`
	PictureDir string `toml:"picture_dir"`
	EndTitle   string `toml:"end_title"`
	LogLevel   string `toml:"log_level"`
}

var (
	cfg      cliConfig
	cfgPath  string
	logLevel string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deckgen",
		Short: "Generate styled PowerPoint decks from Markdown outlines",
		Long: `deckgen turns a Markdown outline into a finished PowerPoint deck.

The level 1 heading becomes the cover title, every level 2 heading a
chapter, and every level 3 heading one point on the chapter's content
page. Shape styles are drawn from a catalog built with "deckgen style
add" from hand-made decks.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "TOML config file (default "+defaultConfigFile+" when present)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newStyleCmd())
	cmd.AddCommand(newConvertCmd())
	return cmd
}

// setup loads the config file and configures logging before any
// command runs. Flags take precedence over config values.
func setup(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	level := firstNonEmpty(logLevel, cfg.LogLevel, "info")
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q is not supported, choose from: debug, info, warn, error", level)
	}
	logrus.SetLevel(parsed)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

func loadConfig() error {
	cfg = cliConfig{}

	path := cfgPath
	if path == "" {
		path = defaultConfigFile
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logrus.Warnf("config %s: unknown keys %v", path, undecoded)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
