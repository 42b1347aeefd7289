package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/indicator-maps/internal/domain"
	"github.com/indicator-maps/internal/usecase/dto"
)

var sizesCmd = &cobra.Command{
	Use:   "sizes",
	Short: "Build the proportional size scale of a row field",
	Long: `Splits the field values into quantile size classes, isolating outliers above
the interquartile fence into a separate class, and prints the legend.

Examples:
  choropleth sizes --rows rows.json --field population --bins 4
  choropleth sizes --rows rows.json --json`,
	RunE: runSizes,
}

func init() {
	f := sizesCmd.Flags()
	f.String("rows", "", "indicator rows JSON file")
	f.String("field", "weight", "row field to size by")
	f.Int("bins", 0, "size classes (SIZE_BINS when 0)")
	f.String("title", "", "legend title")
	f.Bool("json", false, "print the scale and legend as JSON")
	_ = sizesCmd.MarkFlagRequired("rows")
	rootCmd.AddCommand(sizesCmd)
}

func runSizes(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	rowsPath, _ := f.GetString("rows")
	field, _ := f.GetString("field")

	rows, err := readRows(rowsPath)
	if err != nil {
		return err
	}

	values := domain.FieldValues(rows, field)
	if len(values) == 0 {
		return fmt.Errorf("no numeric values in field %q", field)
	}

	req := dto.EncodeSizesRequest{Values: values}
	req.Bins, _ = f.GetInt("bins")
	req.Title, _ = f.GetString("title")
	if req.Title == "" {
		req.Title = field
	}

	resp, err := encodeUC.EncodeSizes(cmd.Context(), req)
	if err != nil {
		return err
	}

	if asJSON, _ := f.GetBool("json"); asJSON {
		return writeOutput(cmd.OutOrStdout(), "", resp)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", resp.Legend.Title)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RADIUS\tRANGE\tCOUNT\tOUTLIER")
	for _, e := range resp.Legend.Sizes {
		fmt.Fprintf(tw, "%.1f\t%s\t%d\t%t\n", e.Radius, e.Label, e.Count, e.IsOutlier)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", resp.Legend.Note)
	return nil
}
