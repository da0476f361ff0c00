// Package cmd implements the vdom CLI commands.
//
// Configuration is read with the following precedence, highest first:
//
//  1. Command-line flags (--log-level, --title, ...)
//  2. Environment variables with the VDOM_ prefix (VDOM_RENDER_TITLE, ...)
//  3. The config file: --config, then VDOM_CONFIG_FILE, then .vdom.yaml
//     in the current directory
//  4. Built-in defaults
package cmd

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-drift/vdom/cmd/vdom/internal/config"
	vdomerrors "github.com/go-drift/vdom/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// options is the state shared by all commands of one root.
type options struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCommand builds the command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)
	o := &options{v: v}

	root := &cobra.Command{
		Use:   "vdom",
		Short: "Render and preview vdom markup documents",
		Long: `vdom renders YAML markup documents through the vdom engine.

Quick Start:
  vdom render page.yaml              Print the markup of a document
  vdom render page.yaml --document   Print a full HTML page
  vdom serve page.yaml               Live preview with reload on save`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.cfgFile, "config", "", "config file (default is .vdom.yaml, can also use VDOM_CONFIG_FILE env var)")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.String("title", "", "document title (default is the Go module name)")
	flags.Int("max-depth", 256, "maximum view nesting depth")
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyTitle, flags.Lookup("title"))
	_ = v.BindPFlag(config.KeyMaxDepth, flags.Lookup("max-depth"))

	root.AddCommand(
		newRenderCommand(o),
		newServeCommand(o),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	if err != nil {
		root.PrintErrln("Error:", err)
	}
	return err
}

func (o *options) init(cmd *cobra.Command) error {
	v := o.v
	switch {
	case o.cfgFile != "":
		v.SetConfigFile(o.cfgFile)
	case os.Getenv("VDOM_CONFIG_FILE") != "":
		v.SetConfigFile(os.Getenv("VDOM_CONFIG_FILE"))
	default:
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".vdom")
	}
	v.SetEnvPrefix("VDOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	readErr := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if readErr != nil && !errors.As(readErr, &notFound) {
		return readErr
	}

	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(v, dir)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	vdomerrors.SetHandler(&vdomerrors.LogHandler{Logger: o.logger})
	if readErr == nil {
		o.logger.Debug("using config file", "path", v.ConfigFileUsed())
	}
	return nil
}
