// Package main implements the contentd CLI, a four-phase content
// production pipeline: repository analysis, content strategy, content
// generation, and TOC management.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/contentd/internal/config"
	"github.com/fyrsmithlabs/contentd/internal/content"
	"github.com/fyrsmithlabs/contentd/internal/logging"
	"github.com/fyrsmithlabs/contentd/internal/oracle"
	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
	"github.com/fyrsmithlabs/contentd/internal/repository"
	"github.com/fyrsmithlabs/contentd/internal/toc"
)

// version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
)

// flag values; zero values mean "not set, keep the config file value"
var (
	configPath  string
	repoURL     string
	workDir     string
	phases      string
	contentGoal string
	serviceArea string
	materials   []string
	maxDepth    int
	autoConfirm bool
	applyFlag   bool
	skipTOC     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "contentd",
	Short: "LLM-assisted content production pipeline",
	Long: `contentd produces documentation for a repository in four phases:
it selects a working directory, plans CREATE/UPDATE decisions, generates
the content, and maintains the TOC.yml navigation manifest.`,
	Version: version,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the content pipeline against a repository",
	Long: `Run the content pipeline.

Examples:
  # Preview everything headlessly
  contentd run --repo https://github.com/org/docs --goal "document the new API" --auto-confirm

  # Apply content changes but leave the TOC alone
  contentd run --repo ./docs --goal "refresh install guides" --auto-confirm --apply --skip-toc

  # Plan only (phases 1-2)
  contentd run --repo ./docs --goal "audit coverage" --phases 2 --auto-confirm`,
	RunE: runPipeline,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("contentd %s (%s)\n", version, gitCommit)
	},
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "config file path (default ~/.config/contentd/config.yaml)")
	runCmd.Flags().StringVar(&repoURL, "repo", "", "repository URL or local path")
	runCmd.Flags().StringVar(&workDir, "work-dir", "", "directory for cloned working copies")
	runCmd.Flags().StringVar(&phases, "phases", "", `phases to run: "all", "1".."4", or a digit sequence`)
	runCmd.Flags().StringVar(&contentGoal, "goal", "", "what the produced content should achieve")
	runCmd.Flags().StringVar(&serviceArea, "service-area", "", "product or service area the content belongs to")
	runCmd.Flags().StringArrayVar(&materials, "material", nil, "support material file (repeatable)")
	runCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "repository structure snapshot depth")
	runCmd.Flags().BoolVar(&autoConfirm, "auto-confirm", false, "accept oracle proposals without interactive review")
	runCmd.Flags().BoolVar(&applyFlag, "apply", false, "write generated content and TOC changes")
	runCmd.Flags().BoolVar(&skipTOC, "skip-toc", false, "skip TOC management entirely")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	applyFlagOverrides(cfg, cmd)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Repo.URL == "" {
		return fmt.Errorf("a repository is required (--repo or repo.url)")
	}
	if cfg.Run.ContentGoal == "" {
		return fmt.Errorf("a content goal is required (--goal or run.content_goal)")
	}

	logCfg := logging.NewDefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	log, err := logging.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	client, err := oracle.NewClient(cfg.Oracle)
	if err != nil {
		return fmt.Errorf("initializing oracle client: %w", err)
	}
	advisor := oracle.NewAdvisor(client, log)

	collaborators := orchestrator.Collaborators{
		Oracle:    advisor,
		Tree:      repository.NewService(log),
		Materials: content.NewMaterialProcessor(log, advisor),
		Discovery: content.NewDiscovery(log),
		TOC:       toc.NewSource(),
		Observer:  newConsoleObserver(cmd.OutOrStdout()),
	}
	if !cfg.Run.AutoConfirm {
		collaborators.DirectoryConfirmer = newTerminalConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	runner, err := orchestrator.NewRunner(cfg, log, collaborators)
	if err != nil {
		return err
	}

	result, err := runner.Execute(cmd.Context())
	if err != nil {
		return err
	}

	return printResult(cmd.OutOrStdout(), result)
}

// applyFlagOverrides layers explicitly-set flags over the file and
// environment configuration.
func applyFlagOverrides(cfg *config.Config, cmd *cobra.Command) {
	if cmd.Flags().Changed("repo") {
		cfg.Repo.URL = repoURL
	}
	if cmd.Flags().Changed("work-dir") {
		cfg.Repo.WorkDir = workDir
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.Repo.MaxDepth = maxDepth
	}
	if cmd.Flags().Changed("phases") {
		cfg.Run.Phases = phases
	}
	if cmd.Flags().Changed("goal") {
		cfg.Run.ContentGoal = contentGoal
	}
	if cmd.Flags().Changed("service-area") {
		cfg.Run.ServiceArea = serviceArea
	}
	if cmd.Flags().Changed("material") {
		cfg.Run.Materials = materials
	}
	if cmd.Flags().Changed("auto-confirm") {
		cfg.Run.AutoConfirm = autoConfirm
	}
	if cmd.Flags().Changed("apply") {
		cfg.Run.Apply = applyFlag
	}
	if cmd.Flags().Changed("skip-toc") {
		cfg.Run.SkipTOC = skipTOC
	}
}

func printResult(w io.Writer, result *orchestrator.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
