package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/indicator-maps/internal/encoding/trend"
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Classify the change of each territory between two periods",
	Long: `Joins the rows of two periods by code and classifies every territory as
accelerating, decelerating or reversing, good or bad according to polarity.
Changes under the noise ratio (TREND_NOISE_RATIO) are neutral.

Examples:
  choropleth trend --from 2019.json --to 2023.json --polarity -1`,
	RunE: runTrend,
}

func init() {
	f := trendCmd.Flags()
	f.String("from", "", "rows JSON file of the first period")
	f.String("to", "", "rows JSON file of the second period")
	f.Int("polarity", 1, "1 when growth is good, -1 when bad, 0 for none")
	f.Bool("json", false, "print items and summary as JSON")
	_ = trendCmd.MarkFlagRequired("from")
	_ = trendCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	fromPath, _ := f.GetString("from")
	toPath, _ := f.GetString("to")
	polarity, _ := f.GetInt("polarity")

	from, err := readRows(fromPath)
	if err != nil {
		return err
	}
	to, err := readRows(toPath)
	if err != nil {
		return err
	}

	resp, err := encodeUC.EncodeTrendRows(cmd.Context(), from, to, trend.Polarity(polarity))
	if err != nil {
		return err
	}

	if asJSON, _ := f.GetBool("json"); asJSON {
		return writeOutput(cmd.OutOrStdout(), "", resp)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tLABEL\tFROM\tTO\tCATEGORY")
	for _, it := range resp.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.Code, it.Label, formatValue(it.From), formatValue(it.To), it.Category)
	}
	fmt.Fprintln(tw)
	for _, e := range resp.Legend {
		fmt.Fprintf(tw, "%s\t%d\n", e.Label, e.Count)
	}
	return tw.Flush()
}

func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
