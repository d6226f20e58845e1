package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivlev/slidereel/internal/config"
	"github.com/ivlev/slidereel/internal/element"
	"github.com/ivlev/slidereel/internal/engine"
	"github.com/ivlev/slidereel/internal/script"
	"github.com/ivlev/slidereel/internal/show"
	"github.com/ivlev/slidereel/internal/system"
)

var audioDir = filepath.Join("input", "audio")

func newRunCmd(a *app) *cobra.Command {
	var (
		realtime bool
		speed    float64
		audio    string
		schedule string
	)
	cmd := &cobra.Command{
		Use:   "run [script]",
		Short: "Run a show script through the log engine",
		Long:  "Run compiles the script and plays it start to finish. With --realtime every instruction takes its scheduled wall-clock time; otherwise the run completes at once.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := a.load(ctx, args)
			if err != nil {
				return err
			}
			s := l.show
			if audio != "" {
				if s, err = a.fitAudio(ctx, s, audio); err != nil {
					return err
				}
			}

			rec := engine.NewRecorder()
			var eng engine.Engine = engine.Multi{engine.NewLogEngine(a.logger), rec}
			if realtime || a.cfg.Playback.Realtime {
				if !cmd.Flags().Changed("speed") {
					speed = a.cfg.Playback.Speed
				}
				eng = engine.NewPacer(eng, speed)
			}

			report, err := show.NewComposer(eng, a.cfg.Theme, a.cfg.Timing).RunShow(ctx, s)
			if schedule != "" && len(rec.Instructions) > 0 {
				// Written even when the run fails, to show how far it got.
				if werr := engine.WriteSchedule(engine.NewSchedule(s.Title, rec.Instructions), schedule); werr != nil {
					return errors.Join(err, werr)
				}
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printSuccess(out, "%s finished: %s scheduled over %d scenes (run %s)",
				StyleHighlight.Render(s.Title), StyleNumber.Render(seconds(report.Total)), len(report.Scenes), StyleDim.Render(report.RunID))
			if schedule != "" {
				printInfo(out, "%d instructions (%s) played, written to %s", len(rec.Instructions), seconds(rec.Total()), schedule)
			}
			if len(l.missing) > 0 {
				printWarning(out, "%d asset(s) shown as placeholders: %v", len(l.missing), l.missing)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&realtime, "realtime", false, "pace instructions in wall-clock time")
	cmd.Flags().Float64Var(&speed, "speed", 1, "playback speed multiplier for --realtime")
	cmd.Flags().StringVar(&audio, "audio", "", "stretch holds to a narration track (path, or \"auto\" for the newest in input/audio)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "write the instructions actually played to this YAML file")
	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	var (
		audio string
		at    float64
	)
	cmd := &cobra.Command{
		Use:   "plan [script]",
		Short: "Print the scheduled timeline of a show",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := a.load(ctx, args)
			if err != nil {
				return err
			}
			report, rec, err := show.Plan(l.show, a.cfg.Theme, a.cfg.Timing)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, StyleTitle.Render(l.show.Title))
			fmt.Fprintln(out, planTable(report, a.cfg.Timing.Tolerance))
			if cmd.Flags().Changed("at") {
				printInfo(out, "on screen at %s: %v", seconds(at), rec.VisibleAt(at))
			}

			if audio == "" {
				return nil
			}
			path, narration, err := a.narration(ctx, audio)
			if err != nil {
				return err
			}
			_, scale, err := show.FitTo(l.show, narration, a.cfg.Theme, a.cfg.Timing)
			if err != nil {
				printWarning(out, "%s (%s): %v", filepath.Base(path), seconds(narration), err)
				return nil
			}
			printInfo(out, "narration %s is %s: holds would scale x%.3f", filepath.Base(path), seconds(narration), scale)
			return nil
		},
	}
	cmd.Flags().StringVar(&audio, "audio", "", "compare with a narration track (path, or \"auto\")")
	cmd.Flags().Float64Var(&at, "at", 0, "also list the elements on screen at this time (seconds)")
	return cmd
}

func newLintCmd(a *app) *cobra.Command {
	var allowMissing bool
	cmd := &cobra.Command{
		Use:   "lint [script]",
		Short: "Check scene budgets, references and assets",
		Long:  "Lint compiles the script, checks every scene's scheduled duration against its target within the configured tolerance, and reports assets that would be replaced by placeholders. It exits non-zero on any problem.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			l, err := a.load(ctx, args)
			if err != nil {
				return err
			}

			problems := 0
			budgets, err := show.Budgets(l.show, a.cfg.Theme, a.cfg.Timing)
			if err != nil {
				return err
			}
			_, rec, err := show.Plan(l.show, a.cfg.Theme, a.cfg.Timing)
			if err != nil {
				return err
			}
			if left := rec.OnScreen(); len(left) > 0 {
				problems++
				printError(out, "still on screen after the last scene: %v", left)
			}
			for _, b := range budgets {
				if b.OK() {
					printSuccess(out, "%s", b)
					continue
				}
				problems++
				printError(out, "%s", b)
			}
			for _, e := range l.show.Entries {
				for _, w := range e.Scene.Warnings() {
					printWarning(out, "%s", w)
				}
			}
			for _, name := range l.missing {
				if allowMissing {
					printWarning(out, "asset %q not found, placeholder will be shown", name)
					continue
				}
				problems++
				printError(out, "asset %q not found in %s", name, l.loader.Dir())
			}

			if problems > 0 {
				return fmt.Errorf("lint: %d problem(s) in %s", problems, l.path)
			}
			var scenes, bumpers int
			for _, r := range rec.Runs() {
				if r.Segment == engine.SegmentBumper {
					bumpers++
				} else {
					scenes++
				}
			}
			printSuccess(out, "%s is clean: %d scenes, %d bumpers", l.path, scenes, bumpers)
			return nil
		},
	}
	cmd.Flags().BoolVar(&allowMissing, "allow-missing", false, "report missing assets as warnings")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		output string
		check  bool
	)
	cmd := &cobra.Command{
		Use:   "export [script]",
		Short: "Write the instruction schedule as YAML",
		Long:  "Export plans the script and writes its instruction schedule. With --check nothing is written; the existing file is compared with a fresh plan and the command fails when it is stale.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.load(cmd.Context(), args)
			if err != nil {
				return err
			}
			_, rec, err := show.Plan(l.show, a.cfg.Theme, a.cfg.Timing)
			if err != nil {
				return err
			}
			sched := engine.NewSchedule(l.show.Title, rec.Instructions)
			if check {
				existing, err := engine.ReadSchedule(output)
				if err != nil {
					return err
				}
				if d := existing.Diff(sched); d != "" {
					return fmt.Errorf("%s is stale: %s", output, d)
				}
				printSuccess(cmd.OutOrStdout(), "%s is up to date", StyleHighlight.Render(output))
				return nil
			}
			if err := engine.WriteSchedule(sched, output); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "%d instructions (%s) written to %s",
				len(sched.Segments), seconds(sched.Total), StyleHighlight.Render(output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "schedule.yaml", "output file")
	cmd.Flags().BoolVar(&check, "check", false, "compare the output file with a fresh plan instead of writing it")
	return cmd
}

func newAssetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assets [script]",
		Short: "Show how each asset of a script resolves",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := a.load(ctx, args)
			if err != nil {
				return err
			}
			var rows [][]string
			for _, ref := range l.doc.Assets() {
				name := ref.Name
				r := l.loader.Load(ctx, name, ref.Extensions...)
				status, detail := "ok", element.Describe(r)
				if img, ok := r.(*element.Image); ok {
					detail = fmt.Sprintf("%s %dx%d", img.Path, img.Width, img.Height)
				}
				if element.IsPlaceholder(r) {
					status = "missing"
					detail = fmt.Sprintf("tried %v", l.loader.Candidates(name, ref.Extensions...))
				}
				rows = append(rows, []string{name, status, detail})
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				printInfo(out, "%s uses no image assets", l.path)
				return nil
			}
			cols := []column{{header: "Asset"}, {header: "Status"}, {header: "Resolved"}}
			fmt.Fprintln(out, renderTable(cols, rows, nil))
			return nil
		},
	}
}

func newInitCmd(a *app) *cobra.Command {
	var (
		output     string
		withConfig bool
		force      bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the sample show script (and optionally a config file)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, d := range []string{script.DefaultDir, audioDir, a.cfg.Assets.Dir} {
				if err := os.MkdirAll(d, 0755); err != nil {
					return err
				}
			}
			if output == "" {
				output = script.GeneratePath(script.DefaultDir)
			}
			if err := writeNew(output, script.Sample(), force); err != nil {
				return err
			}
			printSuccess(out, "sample script written to %s", StyleHighlight.Render(output))

			if withConfig {
				if err := writeNew(config.DefaultConfigPath, []byte(config.SampleConfig()), force); err != nil {
					return err
				}
				printSuccess(out, "config written to %s", StyleHighlight.Render(config.DefaultConfigPath))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "script path (default input/scripts/show_<timestamp>.yaml)")
	cmd.Flags().BoolVar(&withConfig, "config-file", false, "also write "+config.DefaultConfigPath)
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func writeNew(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// narration resolves --audio ("auto" picks the newest track) and measures it.
func (a *app) narration(ctx context.Context, audio string) (string, float64, error) {
	path := audio
	if audio == "auto" {
		latest, err := system.FindLatestAudio(audioDir)
		if err != nil {
			return "", 0, err
		}
		path = latest
		a.logger.Info("using latest audio", "path", path)
	}
	d, err := system.GetAudioDuration(ctx, path)
	if err != nil {
		return "", 0, err
	}
	return path, d, nil
}

func (a *app) fitAudio(ctx context.Context, s *show.Show, audio string) (*show.Show, error) {
	path, narration, err := a.narration(ctx, audio)
	if err != nil {
		return nil, err
	}
	fitted, scale, err := show.FitTo(s, narration, a.cfg.Theme, a.cfg.Timing)
	if err != nil {
		return nil, err
	}
	a.logger.Info("holds fitted to narration", "audio", filepath.Base(path), "duration", seconds(narration), "scale", fmt.Sprintf("x%.3f", scale))
	return fitted, nil
}

func seconds(s float64) string { return fmt.Sprintf("%.2fs", s) }
