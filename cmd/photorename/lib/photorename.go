package photorename

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/user/photo-renamer/pkg"
)

// newProgress returns a progress callback drawing a bar on w. The bar is
// created on the first call, once the total number of files is known.
func newProgress(w io.Writer) func(done, total int) {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription("Analyzing"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(false),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
		if done == total {
			_ = bar.Finish()
		}
	}
}

// RunApplicationLogic analyzes cfg.Root, writes the forward and inverse
// rename scripts (or prints them on a dry run) and returns the mapping.
// cfg must have been validated. It is exported for use in tests.
func RunApplicationLogic(cfg *pkg.Config, stdout, stderr io.Writer, logger zerolog.Logger) (*pkg.Mapping, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logger.Info().Str("root", cfg.Root).Str("dialect", string(cfg.Dialect)).Msg("analyzing folder")

	builder := pkg.NewMappingBuilder(loc, logger)
	if cfg.Progress && !cfg.Verbose {
		builder.Progress = newProgress(stderr)
	}

	mapping, err := builder.Build(cfg.Root)
	if err != nil {
		return nil, err
	}

	// Scripts written next to the files change into their own directory;
	// scripts written elsewhere change into the absolute root.
	workDir := ""
	if !sameDir(cfg.OutputDir, cfg.Root) {
		abs, err := filepath.Abs(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root %s: %w", cfg.Root, err)
		}
		workDir = filepath.ToSlash(abs)
	}

	scripts, err := pkg.RenderScripts(mapping, cfg.Dialect, workDir)
	if err != nil {
		return nil, err
	}

	if cfg.DryRun {
		fmt.Fprintf(stdout, "--- %s ---\n%s\n--- %s ---\n%s\n", cfg.ForwardScript, scripts.Forward, cfg.InverseScript, scripts.Inverse)
	} else {
		if err := pkg.WriteScripts(cfg.OutputDir, cfg.ForwardScript, cfg.InverseScript, scripts, cfg.Dialect); err != nil {
			return nil, err
		}
		logger.Info().
			Str("forward", filepath.Join(cfg.OutputDir, cfg.ForwardScript)).
			Str("inverse", filepath.Join(cfg.OutputDir, cfg.InverseScript)).
			Msg("scripts written")
	}

	if cfg.ReportFile != "" {
		if err := pkg.GenerateReport(cfg.ReportFile, mapping); err != nil {
			return nil, fmt.Errorf("failed to generate report: %w", err)
		}
	}

	logger.Info().
		Int("renamed", mapping.Renamed()).
		Int("skipped", mapping.Skipped).
		Int("failed", len(mapping.Failed)).
		Msg("analysis complete")
	return mapping, nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// Explain prints, for each path, the tier that resolved its date-time and
// the undecorated name it would receive.
func Explain(w io.Writer, paths []string, resolver *pkg.DateResolver) error {
	for _, p := range paths {
		dir := filepath.Dir(p)
		file, err := pkg.NewMediaFile(dir, p)
		if err != nil {
			return err
		}
		if pkg.IsStandardName(file.Name) {
			fmt.Fprintf(w, "%s: already standard\n", file.Name)
			continue
		}
		res, err := resolver.Resolve(file)
		if err != nil {
			return err
		}
		detail := res.Source
		if res.Detail != "" {
			detail += " (" + res.Detail + ")"
		}
		fmt.Fprintf(w, "%s: %s from %s -> %s\n", file.Name, res.Token, detail, pkg.Standardize(file, res.Token))
	}
	return nil
}
