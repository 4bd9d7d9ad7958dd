package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-bookdw/internal/steps/report"
)

var inspectLimit int

var inspectCmd = &cobra.Command{
	Use:   "inspect [relation]",
	Short: "Show the columns and first rows of a table or view",
	Long: `Show the column names, types and a few sample rows of a warehouse
relation. Defaults to the book_sales_mart view.

Example:
  pgedge-bookdw inspect fact_book_sales --limit 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		relation := report.DefaultRelation
		if len(args) == 1 {
			relation = args[0]
		}

		ctx, cancel := signalContext()
		defer cancel()

		pool, err := connect(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		in, err := report.Inspect(ctx, pool, relation, inspectLimit)
		if err != nil {
			return err
		}
		report.WriteInspection(cmd.OutOrStdout(), in)
		return nil
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 5, "number of sample rows")
}
