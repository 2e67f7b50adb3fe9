package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/okian/metaboard/internal/domain/pipeline"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a high-level overview of a dataset",
	Long: `Enrich the dataset and print aggregate statistics: population size,
usage totals, the estimated population prior, and the tier distribution.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	records, err := loadDataset(ctx)
	if err != nil {
		return err
	}

	res, err := pipeline.New().Run(ctx, records)
	if err != nil {
		return fmt.Errorf("enrich dataset: %w", err)
	}

	fmt.Fprintf(os.Stdout, "\n=== Dataset Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Entities       : %d\n", len(res.Records))
	fmt.Fprintf(os.Stdout, "  Total uses     : %d\n", res.TotalCount)
	fmt.Fprintf(os.Stdout, "  Total matches  : %d\n", res.TotalMatches)
	fmt.Fprintf(os.Stdout, "  Prior mean     : %.4f\n", res.Prior.Mean)
	fmt.Fprintf(os.Stdout, "  Prior variance : %.6f\n", res.Prior.Variance)
	fmt.Fprintf(os.Stdout, "  Prior Beta(a,b): (%.3f, %.3f)\n", res.Prior.Alpha, res.Prior.Beta)

	// Tier distribution, best tier first (records arrive rank-ordered).
	counts := make(map[string]int)
	var order []string
	for i := range res.Records {
		t := res.Records[i].TierDisplay
		if _, seen := counts[t]; !seen {
			order = append(order, t)
		}
		counts[t]++
	}

	fmt.Fprintf(os.Stdout, "\n--- Tiers ---\n\n")
	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	table.Header("TIER", "ENTITIES", "SHARE%")
	for _, t := range order {
		table.Append(
			t,
			strconv.Itoa(counts[t]),
			fmt.Sprintf("%.1f", float64(counts[t])/float64(len(res.Records))*100),
		)
	}
	table.Render()
	return nil
}
