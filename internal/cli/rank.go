package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/okian/metaboard/internal/domain/model"
	"github.com/okian/metaboard/internal/domain/pipeline"
)

var (
	outputFormat string
	topN         int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Enrich a dataset and print the leaderboard",
	Long: `Run the full enrichment pipeline over a dataset (usage shares,
Bayesian ratings, tiers, ranks, percentiles) and print the result.`,
	Args: cobra.NoArgs,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringVar(&outputFormat, "format", "table", "output format: table or json")
	rankCmd.Flags().IntVar(&topN, "top", 0, "limit output to the top N entities (0 = all)")
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	records, err := loadDataset(ctx)
	if err != nil {
		return err
	}

	res, err := pipeline.New().Run(ctx, records)
	if err != nil {
		return fmt.Errorf("enrich dataset: %w", err)
	}

	out := res.Records
	if topN > 0 && topN < len(out) {
		out = out[:topN]
	}

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
	case "table":
		printLeaderboardTable(os.Stdout, out)
	default:
		return fmt.Errorf("unknown format %q; use table or json", outputFormat)
	}
	return nil
}

// printLeaderboardTable writes the rank-ordered leaderboard to w.
func printLeaderboardTable(w io.Writer, records []model.EnrichedRecord) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	table.Header("RANK", "NAME", "TIER", "RATING", "USES", "MATCHES", "WIN%", "SHARE", "IMPACT", "PCTL")

	for i := range records {
		r := &records[i]
		table.Append(
			strconv.Itoa(r.Rank),
			r.Name,
			r.TierDisplay,
			fmt.Sprintf("%.1f", r.Rating),
			r.CountDisplay,
			r.TotalMatchesDisplay,
			r.WinRateDisplay,
			r.ShareDisplay,
			fmt.Sprintf("%.1f", r.MetaImpact),
			fmt.Sprintf("%.0f", r.RatingPercentile),
		)
	}
	table.Render()
}
