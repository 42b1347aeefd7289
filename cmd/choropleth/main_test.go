package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeatures = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"code":"A","name":"Alpha"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
{"type":"Feature","properties":{"code":"B","name":"Beta"},"geometry":{"type":"Polygon","coordinates":[[[1,0],[2,0],[2,1],[1,1],[1,0]]]}}
]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.env"), "--log-level", "error"))

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"encode", "sizes", "trend"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestEncodeCommand_Flags(t *testing.T) {
	flag := encodeCmd.Flags().Lookup("key")
	require.NotNil(t, flag)
	assert.Equal(t, "code", flag.DefValue)

	flag = encodeCmd.Flags().Lookup("value")
	require.NotNil(t, flag)
	assert.Equal(t, "value", flag.DefValue)
}

func TestEncodeCommand_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	features := writeFile(t, dir, "features.geojson", testFeatures)
	rows := writeFile(t, dir, "rows.json", `[
		{"code":"A","label":"Alpha","value":4.5,"weight":100},
		{"code":"B","label":"Beta","value":9.5,"weight":300}
	]`)
	outPath := filepath.Join(dir, "out.geojson")
	stylePath := filepath.Join(dir, "style.json")
	legendPath := filepath.Join(dir, "legend.html")

	_, err := execute(t, "encode",
		"--features", features,
		"--rows", rows,
		"--reference", "7",
		"--title", "Unemployment",
		"--out", outPath,
		"--style", stylePath,
		"--legend", legendPath,
		"--symbols",
	)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2)

	data, err = os.ReadFile(stylePath)
	require.NoError(t, err)
	var style map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &style))
	assert.EqualValues(t, 8, style["version"])

	data, err = os.ReadFile(legendPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Unemployment")
}

func TestEncodeCommand_StdoutAndErrors(t *testing.T) {
	dir := t.TempDir()
	features := writeFile(t, dir, "features.geojson", testFeatures)
	rows := writeFile(t, dir, "rows.json", `{"rows":[{"code":"A","value":1}]}`)

	out, err := execute(t, "encode", "--features", features, "--rows", rows)
	require.NoError(t, err)
	assert.Contains(t, out, `"FeatureCollection"`)

	_, err = execute(t, "encode", "--features", filepath.Join(dir, "nope.geojson"), "--rows", rows)
	assert.Error(t, err)

	_, err = execute(t, "encode", "--rows", rows)
	assert.Error(t, err)
}

func TestSizesCommand(t *testing.T) {
	var b strings.Builder
	b.WriteString("[")
	for i := 1; i <= 20; i++ {
		if i > 1 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"code":"T%d","value":1,"weight":%d}`, i, i)
	}
	b.WriteString("]")
	rows := writeFile(t, t.TempDir(), "rows.json", b.String())

	out, err := execute(t, "sizes", "--rows", rows, "--bins", "4", "--title", "Population")
	require.NoError(t, err)
	assert.Contains(t, out, "Population")
	assert.Contains(t, out, "RADIUS")
	assert.Contains(t, out, "20 values in 4 size classes")

	out, err = execute(t, "sizes", "--rows", rows, "--json")
	require.NoError(t, err)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Contains(t, resp, "scale")

	_, err = execute(t, "sizes", "--rows", rows, "--field", "missing")
	assert.Error(t, err)
}

func TestTrendCommand(t *testing.T) {
	dir := t.TempDir()
	from := writeFile(t, dir, "from.json", `[{"code":"A","label":"Alpha","value":10},{"code":"B","value":-5}]`)
	to := writeFile(t, dir, "to.json", `[{"code":"A","value":12},{"code":"B","value":5}]`)

	out, err := execute(t, "trend", "--from", from, "--to", to)
	require.NoError(t, err)
	assert.Contains(t, out, "accelerate_good")
	assert.Contains(t, out, "reverse_good")
	assert.Contains(t, out, "Alpha")

	out, err = execute(t, "trend", "--from", from, "--to", to, "--polarity", "-1", "--json")
	require.NoError(t, err)
	var resp struct {
		Items []struct {
			Code     string `json:"code"`
			Category string `json:"category"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "accelerate_bad", resp.Items[0].Category)
	assert.Equal(t, "reverse_bad", resp.Items[1].Category)

	_, err = execute(t, "trend", "--from", from, "--to", to, "--polarity", "5")
	assert.Error(t, err)
}
