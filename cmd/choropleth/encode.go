package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/indicator-maps/internal/usecase/dto"
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode rows over GeoJSON features as a choropleth",
	Long: `Joins indicator rows to features by key property, colors them on a divergent
scale around the reference (0 when omitted) and sizes centroid symbols.

Examples:
  # Enriched GeoJSON to stdout
  choropleth encode --features regions.geojson --rows unemployment.json

  # Everything a map page needs
  choropleth encode --features regions.geojson --rows rows.json --reference 7.3 \
    --out source.geojson --style style.json --legend legend.html --symbols`,
	RunE: runEncode,
}

func init() {
	f := encodeCmd.Flags()
	f.String("features", "", "GeoJSON FeatureCollection file")
	f.String("rows", "", "indicator rows JSON file")
	f.String("value", "value", "row field to color by")
	f.Float64("reference", 0, "divergence reference value (0 when not set)")
	f.String("key", "code", "feature property matching the row code")
	f.String("title", "", "legend title")
	f.Int("decimals", 1, "value label decimals")
	f.String("locale", "", "BCP 47 locale for labels (DEFAULT_LOCALE when empty)")
	f.String("selected", "", "territory code to highlight")
	f.Bool("symbols", false, "add proportional symbol layer")
	f.String("out", "", "enriched GeoJSON output file (stdout when empty)")
	f.String("style", "", "MapLibre style output file")
	f.String("legend", "", "HTML legend output file")
	_ = encodeCmd.MarkFlagRequired("features")
	_ = encodeCmd.MarkFlagRequired("rows")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	featuresPath, _ := f.GetString("features")
	rowsPath, _ := f.GetString("rows")

	features, err := readFeatures(featuresPath)
	if err != nil {
		return err
	}
	rows, err := readRows(rowsPath)
	if err != nil {
		return err
	}

	req := dto.EncodeChoroplethRequest{Features: features, Rows: rows}
	req.ValueColumn, _ = f.GetString("value")
	req.KeyProperty, _ = f.GetString("key")
	req.Title, _ = f.GetString("title")
	req.Decimals, _ = f.GetInt("decimals")
	req.Locale, _ = f.GetString("locale")
	req.Selected, _ = f.GetString("selected")
	req.Symbols, _ = f.GetBool("symbols")
	if f.Changed("reference") {
		ref, _ := f.GetFloat64("reference")
		req.Reference = &ref
	}

	resp, style, err := encodeUC.EncodeChoropleth(cmd.Context(), req)
	if err != nil {
		return err
	}

	out, _ := f.GetString("out")
	if err := writeOutput(cmd.OutOrStdout(), out, resp.Source); err != nil {
		return err
	}

	if path, _ := f.GetString("style"); path != "" {
		if err := writeOutput(cmd.OutOrStdout(), path, style); err != nil {
			return err
		}
	}

	if path, _ := f.GetString("legend"); path != "" {
		html, err := encodeUC.LegendHTML(resp)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, html, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	log.Info("Choropleth encoded",
		zap.Int("features", len(resp.Source.Features)),
		zap.Int("matched", resp.Matched),
		zap.Float64("reference", resp.ColorScale.Reference))
	return nil
}
