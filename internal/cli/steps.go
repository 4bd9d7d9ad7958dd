package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-bookdw/internal/logging"
	"github.com/pgEdge/pgedge-bookdw/internal/pipeline"
)

var (
	transformMode    string
	exportDir        string
	exportTopBooks   int
	exportNoWorkbook bool
	exportNoGuide    bool
	visualizeDir     string
	visualizeTitle   string
	runSteps         []string
)

// stepCommands returns one command per pipeline step. Steps are looked up
// in the registry when the command runs.
func stepCommands() []*cobra.Command {
	load := &cobra.Command{
		Use:   "load",
		Short: "Load staging rows into the dimension and fact tables",
		Args:  cobra.NoArgs,
		RunE:  runSingleStep("load"),
	}

	transform := &cobra.Command{
		Use:   "transform",
		Short: "Derive calendar fields and build the reporting views",
		Args:  cobra.NoArgs,
		RunE:  runSingleStep("transform"),
	}
	transform.Flags().StringVar(&transformMode, "mode", "",
		"rebuild (drop and recreate views) or refresh")

	export := &cobra.Command{
		Use:   "export",
		Short: "Write CSV extracts, a workbook and BI guides",
		Args:  cobra.NoArgs,
		RunE:  runSingleStep("export"),
	}
	export.Flags().StringVar(&exportDir, "dir", "", "output directory")
	export.Flags().IntVar(&exportTopBooks, "top-books", 0, "rows in the top books extract")
	export.Flags().BoolVar(&exportNoWorkbook, "no-workbook", false, "skip the .xlsx workbook")
	export.Flags().BoolVar(&exportNoGuide, "no-guide", false, "skip the BI guides")

	visualize := &cobra.Command{
		Use:   "visualize",
		Short: "Render charts and the HTML dashboard",
		Args:  cobra.NoArgs,
		RunE:  runSingleStep("visualize"),
	}
	visualize.Flags().StringVar(&visualizeDir, "dir", "", "output directory")
	visualize.Flags().StringVar(&visualizeTitle, "title", "", "dashboard title")

	report := &cobra.Command{
		Use:   "report",
		Short: "Print sales insights to the console",
		Args:  cobra.NoArgs,
		RunE:  runSingleStep("report"),
	}

	return []*cobra.Command{load, transform, export, visualize, report}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured pipeline steps in order",
	Long: `Run the pipeline steps listed in pipeline.steps (default: load,
transform, export, visualize) under a single run id. Each step is
recorded in bookdw_runs; the run stops at the first failing step.

Example:
  pgedge-bookdw run
  pgedge-bookdw run --steps load,transform,report`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(runSteps) > 0 {
			cfg.Pipeline.Steps = runSteps
		}
		if err := cfg.ValidatePipeline(); err != nil {
			return err
		}
		return execute(cmd, cfg.Pipeline.Steps)
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runSteps, "steps", nil,
		"comma separated steps to run instead of pipeline.steps")
}

func runSingleStep(name string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return execute(cmd, []string{name})
	}
}

// applyStepFlags copies step flags into the configuration.
func applyStepFlags() {
	if transformMode != "" {
		cfg.Transform.Mode = transformMode
	}
	if exportDir != "" {
		cfg.Export.Dir = exportDir
	}
	if exportTopBooks > 0 {
		cfg.Export.TopBooks = exportTopBooks
	}
	if exportNoWorkbook {
		cfg.Export.Workbook = false
	}
	if exportNoGuide {
		cfg.Export.Guide = false
	}
	if visualizeDir != "" {
		cfg.Visualize.Dir = visualizeDir
	}
	if visualizeTitle != "" {
		cfg.Visualize.Title = visualizeTitle
	}
}

func execute(cmd *cobra.Command, names []string) error {
	applyStepFlags()

	steps, err := pipeline.Resolve(names)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	env := pipeline.NewEnv(pool, cfg)
	env.Out = cmd.OutOrStdout()

	start := time.Now()
	runID, outcomes, runErr := pipeline.NewRunner(pool).Run(ctx, env, steps)

	if len(names) > 1 {
		printOutcomes(cmd, outcomes)
	}

	if runErr != nil {
		logging.Error().
			Str("run_id", runID.String()).
			Msg("Pipeline run failed")
		return runErr
	}

	logging.Info().
		Str("run_id", runID.String()).
		Str("steps", strings.Join(names, ",")).
		Dur("elapsed", time.Since(start)).
		Msg("Pipeline run complete")
	return nil
}

func printOutcomes(cmd *cobra.Command, outcomes []pipeline.Outcome) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Step", "Status", "Rows", "Artifacts", "Duration"})
	for _, o := range outcomes {
		status := "ok"
		if o.Err != nil {
			status = "failed"
		}
		table.Append([]string{
			o.Step,
			status,
			humanize.Comma(o.Result.Rows),
			fmt.Sprint(len(o.Result.Artifacts)),
			o.Result.Duration.Round(time.Millisecond).String(),
		})
	}
	table.Render()
}
