package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"facilities", "extract", "strip-bom", "regions"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "rmp-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestFacilitiesCommand_Flags(t *testing.T) {
	tests := []struct {
		flag string
		def  string
	}{
		{"corrections", "false"},
		{"input", "-"},
		{"output", "-"},
		{"metrics-file", ""},
	}
	for _, tt := range tests {
		f := facilitiesCmd.Flags().Lookup(tt.flag)
		require.NotNil(t, f, "facilities should have --%s", tt.flag)
		assert.Equal(t, tt.def, f.DefValue)
	}
}

func TestExtractCommand_Flags(t *testing.T) {
	for flag, def := range map[string]string{
		"input":     "Combined.csv",
		"chemicals": "Chemicals.csv",
		"naics":     "NAICS.csv",
	} {
		f := extractCmd.Flags().Lookup(flag)
		require.NotNil(t, f, "extract should have --%s", flag)
		assert.Equal(t, def, f.DefValue)
	}
}

func TestRegionsCommand_FormatFlag(t *testing.T) {
	f := regionsCmd.Flags().Lookup("format")
	require.NotNil(t, f)
	assert.Equal(t, "table", f.DefValue)
}

// execute runs the root command with a quiet logger and no config file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("RMP_LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFacilitiesCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "facilities.csv")
	out := filepath.Join(dir, "out.csv")
	prom := filepath.Join(dir, "rmp.prom")
	require.NoError(t, os.WriteFile(in, []byte(
		"EPA Facility ID,State,Latitude,Longitude\n100000013521,AK,61.2,149.9\n"), 0o644))

	_, err := execute(t, "facilities", "--corrections", "--input", in, "--output", out, "--metrics-file", prom)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Report,EPA Facility ID,State,Latitude,Longitude,changed,confidence,correction_type", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "/AK/100000013521.pdf),100000013521,AK,61.2,-149.9,true,High,SignError"), lines[1])

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "rmp_rows_processed_total 1")
}

func TestFacilitiesCommand_MissingColumn(t *testing.T) {
	in := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(in, []byte("EPA Facility ID,State\n1,AK\n"), 0o644))

	_, err := execute(t, "facilities", "--input", in, "--output", "-", "--corrections=false", "--metrics-file", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header missing required column")
}

func TestExtractCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "Combined.csv")
	chem := filepath.Join(dir, "Chemicals.csv")
	naics := filepath.Join(dir, "NAICS.csv")
	require.NoError(t, os.WriteFile(in, []byte(
		"EPA Facility ID,Chemical(s),NAICS Code(s)\n1,\"Chlorine, Ammonia (anhydrous)\",221310\n"), 0o644))

	_, err := execute(t, "extract", "--input", in, "--chemicals", chem, "--naics", naics)
	require.NoError(t, err)

	data, err := os.ReadFile(chem)
	require.NoError(t, err)
	assert.Equal(t, "EPA Facility ID,Chemical\n1,Chlorine\n1,Ammonia (anhydrous)\n", string(data))

	data, err = os.ReadFile(naics)
	require.NoError(t, err)
	assert.Equal(t, "EPA Facility ID,NAICS Code\n1,221310\n", string(data))
}

func TestStripBOMCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Combined.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffEPA Facility ID\n1\n"), 0o644))

	_, err := execute(t, "strip-bom", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "EPA Facility ID\n1\n", string(data))

	_, err = execute(t, "strip-bom", filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 files failed")
}

func TestRegionsCommand_Table(t *testing.T) {
	out, err := execute(t, "regions", "--format", "table")
	require.NoError(t, err)

	assert.Contains(t, out, "| Continental US")
	assert.Contains(t, out, "| AK    |")

	lines := strings.Split(strings.TrimSpace(out), "\n\n")
	require.Len(t, lines, 2)
	regionRows := strings.Split(lines[0], "\n")
	assert.Len(t, regionRows, 10)
	for _, row := range regionRows[1:] {
		assert.Len(t, row, len(regionRows[0]))
	}
	assert.Len(t, strings.Split(lines[1], "\n"), 58)
}

func TestRegionsCommand_YAML(t *testing.T) {
	out, err := execute(t, "regions", "--format", "yaml")
	require.NoError(t, err)

	var got struct {
		Regions []struct {
			Name string `yaml:"name"`
			Box  struct {
				LatMin float64 `yaml:"lat_min"`
			} `yaml:"box"`
		} `yaml:"regions"`
		StateCenters []struct {
			Code   string `yaml:"code"`
			Region string `yaml:"region"`
		} `yaml:"state_centers"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got.Regions, 8)
	assert.Equal(t, "Continental US", got.Regions[0].Name)
	assert.InDelta(t, 24.5, got.Regions[0].Box.LatMin, 0)
	require.Len(t, got.StateCenters, 56)
	for _, s := range got.StateCenters {
		assert.NotEmpty(t, s.Region, "state %s center outside every region", s.Code)
	}
}

func TestRegionsCommand_UnknownFormat(t *testing.T) {
	_, err := execute(t, "regions", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestAlignTable(t *testing.T) {
	rows := alignTable([][]string{
		{"Name", "X"},
		{"Guam", "144.6"},
		{"Île", "1"},
	})
	assert.Equal(t, []string{
		"| Name | X     |",
		"| ---- | ----- |",
		"| Guam | 144.6 |",
		"| Île  | 1     |",
	}, rows)
	assert.Nil(t, alignTable(nil))
}

func TestOpenInputOutput(t *testing.T) {
	stdin := strings.NewReader("x")
	r, closeIn, err := openInput("-", stdin)
	require.NoError(t, err)
	assert.Same(t, stdin, r)
	closeIn()

	_, _, err = openInput(filepath.Join(t.TempDir(), "missing.csv"), stdin)
	require.Error(t, err)

	var stdout bytes.Buffer
	w, closeOut, err := openOutput("", &stdout)
	require.NoError(t, err)
	assert.Same(t, &stdout, w)
	assert.NoError(t, closeOut())

	_, _, err = openOutput(filepath.Join(t.TempDir(), "no", "such", "dir.csv"), &stdout)
	require.Error(t, err)
}
