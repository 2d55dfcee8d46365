package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/scanpad/internal/canvas"
	"github.com/ironsheep/scanpad/internal/capture"
	"github.com/ironsheep/scanpad/internal/config"
	"github.com/ironsheep/scanpad/internal/editor"
	"github.com/ironsheep/scanpad/internal/export"
	"github.com/ironsheep/scanpad/internal/logging"
	"github.com/ironsheep/scanpad/internal/ocr"
)

type rootFlags struct {
	configFile string
	envFile    string
	logLevel   string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "scanpad",
		Short: "Single-image scan workspace",
		Long: `scanpad loads or captures one image, crops, rotates and brightens it,
recognizes its text and exports it as a PDF or a text file.

Run "scanpad serve" to drive a session over MCP on stdin/stdout, or
"scanpad edit" to apply a fixed list of edits to a file.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file with SCANPAD_* overrides")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(newServeCmd(flags), newEditCmd(flags), newVersionCmd())
	return cmd
}

// loadConfig reads configuration and builds the stderr logger. stdout is
// reserved for the MCP protocol.
func loadConfig(flags *rootFlags) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(flags.configFile, flags.envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	return cfg, logger, nil
}

// editorOptions wires the configured collaborators. A missing OCR engine
// or capture device is logged and left out; the editor reports it when
// the user asks for it.
func editorOptions(cfg *config.Config, logger *logrus.Logger) (editor.Options, canvas.OverlayStyle, error) {
	style, err := canvas.StyleFromConfig(cfg.Canvas)
	if err != nil {
		return editor.Options{}, style, err
	}

	opts := editor.Options{
		Sink:             export.DirSink{Dir: cfg.Export.OutputDir},
		Pipeline:         export.NewPipelineFromConfig(cfg.Export, export.NewPDFPackager(logger)),
		Logger:           logger,
		BrightnessFactor: cfg.Transform.BrightnessFactor,
		Language:         cfg.OCR.Language,
	}

	engine, err := ocr.NewEngine(cfg.OCR)
	if err != nil {
		logger.WithError(err).Warn("OCR engine unavailable")
	} else {
		opts.Engine = engine
	}

	device, err := capture.NewDevice(cfg.Capture)
	if err != nil {
		return editor.Options{}, style, err
	}
	opts.Device = device

	return opts, style, nil
}

// consoleNotifier prints user-visible failures in red.
type consoleNotifier struct {
	red *color.Color
}

func newConsoleNotifier() *consoleNotifier {
	return &consoleNotifier{red: color.New(color.FgRed, color.Bold)}
}

func (n *consoleNotifier) Notify(err error) {
	n.red.Fprintf(os.Stderr, "✗ %v\n", err)
}
