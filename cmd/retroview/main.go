// Command retroview shows a glTF model on a lit, shadowed stage that can be orbited with the mouse, touch or keyboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/solarlune/retroview"
	"github.com/solarlune/retroview/ebiten3d"
	"github.com/spf13/pflag"
)

type options struct {
	ConfigPath    string
	AssetDir      string
	ModelPath     string
	LogLevel      string
	FrameLoop     string
	ScreenshotDir string
	Watch         bool
}

func parseOptions(args []string) (options, error) {

	opts := options{}

	flags := pflag.NewFlagSet("retroview", pflag.ContinueOnError)
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "TOML or YAML file overriding the default configuration")
	flags.StringVarP(&opts.AssetDir, "assets", "a", "assets", "directory (or, on the web, URL) assets are loaded from")
	flags.StringVarP(&opts.ModelPath, "model", "m", "", "model to show, relative to the asset directory")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.FrameLoop, "frameloop", "", `redraw policy, "demand" or "always"`)
	flags.StringVar(&opts.ScreenshotDir, "screenshots", ".", "directory F12 screenshots are saved to")
	flags.BoolVarP(&opts.Watch, "watch", "w", false, "reload the model when its files change on disk")

	if err := flags.Parse(args); err != nil {
		return opts, err
	}

	return opts, nil

}

func newLogger(level string) (*slog.Logger, error) {

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil

}

// loadConfig builds the Config from the defaults, the config file (if any), and the command-line overrides.
func loadConfig(opts options) (retroview.Config, error) {

	config := retroview.DefaultConfig()

	if opts.ConfigPath != "" {
		var err error
		if config, err = retroview.LoadConfigFile(opts.ConfigPath); err != nil {
			return config, err
		}
	}

	if opts.ModelPath != "" {
		config.Model.Path = opts.ModelPath
	}

	if opts.FrameLoop != "" {
		config.Canvas.FrameLoop = retroview.FrameLoop(opts.FrameLoop)
	}

	return config, config.Validate()

}

func run(ctx context.Context, args []string) error {

	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(opts.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	config, err := loadConfig(opts)
	if err != nil {
		return err
	}

	assets, err := openAssets(opts.AssetDir)
	if err != nil {
		return err
	}

	root := retroview.NewSceneRoot(config, ebiten3d.NewLoader(assets), logger)

	if opts.Watch {
		stop, err := watchAssets(ctx, opts.AssetDir, root, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	viewer := ebiten3d.NewViewer(root, logger, ebiten3d.TitleOverlay{
		Title:    config.Window.Title,
		Subtitle: "Drag to orbit, scroll to zoom",
	})
	viewer.ScreenshotDir = opts.ScreenshotDir
	viewer.AllowQuit = quitAllowed

	logger.Info("starting", "model", config.Model.Path, "assets", opts.AssetDir, "frameloop", config.Canvas.FrameLoop)

	return viewer.Run(ctx)

}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil && !errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintln(os.Stderr, "retroview:", err)
		os.Exit(1)
	}

}
