package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ivlev/slidereel/internal/assets"
	"github.com/ivlev/slidereel/internal/config"
	"github.com/ivlev/slidereel/internal/logging"
	"github.com/ivlev/slidereel/internal/script"
	"github.com/ivlev/slidereel/internal/show"
	"github.com/ivlev/slidereel/internal/system"
)

// app is the state shared by every subcommand once the root pre-run has
// loaded the configuration.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "slidereel",
		Short:         "slidereel sequences scripted slide shows",
		Long:          "slidereel runs YAML show scripts: scene timelines of slide units with transition bumpers between them, checked against per-scene duration budgets.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("slidereel %s\ncommit: %s\nbuilt: %s\n", version, commit, date))

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./"+config.DefaultConfigPath+" if present)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRunCmd(a),
		newPlanCmd(a),
		newLintCmd(a),
		newExportCmd(a),
		newAssetsCmd(a),
		newInitCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(os.Stderr, logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger

	ctx := logging.WithLogger(cmd.Context(), logger)
	cmd.SetContext(ctx)

	logger.Debug("slidereel", append([]any{"version", version}, system.Host(ctx).KeyVals()...)...)
	return nil
}

// scriptPath returns args[0], or the newest script in input/scripts.
func (a *app) scriptPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if err := os.MkdirAll(script.DefaultDir, 0755); err != nil {
		return "", err
	}
	path, err := system.FindLatestScript(script.DefaultDir)
	if err != nil {
		return "", fmt.Errorf("%w (run `slidereel init` or pass a script path)", err)
	}
	a.logger.Info("using latest script", "path", path)
	return path, nil
}

// loaded is a compiled script with the loader that resolved its assets.
type loaded struct {
	path    string
	doc     *script.Document
	show    *show.Show
	loader  *assets.Loader
	missing []string
}

// load reads, preflights and compiles the script named by args.
func (a *app) load(ctx context.Context, args []string) (*loaded, error) {
	path, err := a.scriptPath(args)
	if err != nil {
		return nil, err
	}
	doc, err := script.Read(path)
	if err != nil {
		return nil, err
	}

	assetCfg := a.cfg.Assets
	if !filepath.IsAbs(assetCfg.Dir) {
		if _, err := os.Stat(assetCfg.Dir); err != nil {
			// Resolve relative to the script when the working directory has no asset dir.
			assetCfg.Dir = filepath.Join(filepath.Dir(path), assetCfg.Dir)
		}
	}
	loader := assets.NewLoader(assetCfg, a.cfg.Theme)

	system.RaiseFileLimit(uint64(4*assetCfg.Workers+256), a.logger)
	if _, err := loader.Preload(ctx, doc.Assets()); err != nil {
		return nil, err
	}

	s, err := script.Compile(ctx, doc, *a.cfg, loader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &loaded{path: path, doc: doc, show: s, loader: loader, missing: loader.Misses()}, nil
}
