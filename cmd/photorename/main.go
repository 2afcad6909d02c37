package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	photorename "github.com/user/photo-renamer/cmd/photorename/lib"
	"github.com/user/photo-renamer/pkg"
)

var (
	appVersion = "0.1.0"
	cfgFile    string
	outputDir  string
	dialect    string
	timezone   string
	reportFile string
	logFile    string
	verbose    bool
	dryRun     bool
	noProgress bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "photorename",
	Short: "Plan standardized, reversible renames for photos and videos",
	Long: `photorename infers the capture time of every photo and video in a folder
tree from its filename, embedded metadata or modification time, and writes a
script renaming each file to YYYYMMDD_HHMMSS[_N]_IMG|VID.ext together with a
script that restores the original names. No file is renamed by photorename
itself.`,
	SilenceUsage: true,
}

var planCmd = &cobra.Command{
	Use:   "plan [folder]",
	Short: "Analyze a folder and write the rename and restore scripts",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlan,
}

var explainCmd = &cobra.Command{
	Use:   "explain <file>...",
	Short: "Show how the capture time of individual files is resolved",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExplain,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appVersion)
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "", "IANA time zone for rendering times (default: local)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every file decision")

	planCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path (YAML)")
	planCmd.Flags().StringVarP(&outputDir, "out", "o", "", "directory for the scripts (default: the analyzed folder)")
	planCmd.Flags().StringVarP(&dialect, "dialect", "d", "", "script dialect: batch, sh")
	planCmd.Flags().StringVar(&reportFile, "report", "", "write a text report to this file")
	planCmd.Flags().StringVar(&logFile, "log-file", "", "append JSON logs to this file")
	planCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the scripts instead of writing them")
	planCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
}

func runPlan(cmd *cobra.Command, args []string) error {
	var cfg *pkg.Config
	var err error

	if cfgFile != "" {
		cfg, err = pkg.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = pkg.DefaultConfig()
	}

	if len(args) == 1 {
		cfg.Root = args[0]
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if dialect != "" {
		cfg.Dialect = pkg.Dialect(dialect)
	}
	if timezone != "" {
		cfg.Timezone = timezone
	}
	if reportFile != "" {
		cfg.ReportFile = reportFile
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if verbose {
		cfg.Verbose = true
	}
	if dryRun {
		cfg.DryRun = true
	}
	if noProgress {
		cfg.Progress = false
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := pkg.NewLogger(os.Stderr, cfg.LogFile, cfg.Verbose)
	if err != nil {
		return err
	}
	defer closer.Close()

	mapping, err := photorename.RunApplicationLogic(cfg, os.Stdout, os.Stderr, logger)
	if err != nil {
		return err
	}

	if err := pkg.WriteSummary(os.Stdout, mapping); err != nil {
		return err
	}
	if !cfg.DryRun {
		fmt.Printf("\nScripts written to %s:\n", cfg.OutputDir)
		fmt.Printf("1. %s - renames all files to the standard format\n", cfg.ForwardScript)
		fmt.Printf("2. %s - restores the original file names\n", cfg.InverseScript)
	}
	return nil
}

func runExplain(cmd *cobra.Command, args []string) error {
	cfg := pkg.Config{Timezone: timezone}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	logger := zerolog.Nop()
	if verbose {
		logger, _, err = pkg.NewLogger(os.Stderr, "", true)
		if err != nil {
			return err
		}
	}
	return photorename.Explain(os.Stdout, args, pkg.NewDateResolver(loc, logger))
}
