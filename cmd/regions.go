package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/rmp-cli/internal/geo"
)

var regionsFormat string

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Print the region boxes and state centers used for coordinate checks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch regionsFormat {
		case "table":
			return writeRegionsTable(cmd.OutOrStdout())
		case "yaml":
			return writeRegionsYAML(cmd.OutOrStdout())
		default:
			return eris.Errorf("regions: unknown format %q (want table or yaml)", regionsFormat)
		}
	},
}

type stateCenterView struct {
	Code   string  `yaml:"code"`
	Lat    float64 `yaml:"lat"`
	Lon    float64 `yaml:"lon"`
	Region string  `yaml:"region"`
}

type catalogView struct {
	Regions      []geo.Region      `yaml:"regions"`
	StateCenters []stateCenterView `yaml:"state_centers"`
}

func stateCenters() []stateCenterView {
	codes := geo.StateCodes()
	out := make([]stateCenterView, 0, len(codes))
	for _, code := range codes {
		c, _ := geo.StateCenter(code)
		region, _ := geo.RegionOf(c.Lat, c.Lon)
		out = append(out, stateCenterView{Code: code, Lat: c.Lat, Lon: c.Lon, Region: region.Name})
	}
	return out
}

func writeRegionsYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(catalogView{Regions: geo.Regions(), StateCenters: stateCenters()}); err != nil {
		return eris.Wrap(err, "regions: encode yaml")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "regions: close yaml encoder")
	}
	return nil
}

func writeRegionsTable(w io.Writer) error {
	coord := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	regions := [][]string{{"Region", "Lat min", "Lat max", "Lon min", "Lon max"}}
	for _, r := range geo.Regions() {
		regions = append(regions, []string{r.Name, coord(r.Box.LatMin), coord(r.Box.LatMax), coord(r.Box.LonMin), coord(r.Box.LonMax)})
	}

	centers := [][]string{{"State", "Lat", "Lon", "Region"}}
	for _, s := range stateCenters() {
		centers = append(centers, []string{s.Code, coord(s.Lat), coord(s.Lon), s.Region})
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(alignTable(regions), "\n"))
	sb.WriteString("\n\n")
	sb.WriteString(strings.Join(alignTable(centers), "\n"))
	sb.WriteString("\n")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return eris.Wrap(err, "regions: write table")
	}
	return nil
}

// alignTable renders rows as a markdown table padded to display width. The
// first row is the header.
func alignTable(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}
	for i := range widths {
		widths[i] = max(widths[i], 3)
	}

	line := func(cells []string, sep bool) string {
		var sb strings.Builder
		sb.WriteString("|")
		for i, w := range widths {
			sb.WriteString(" ")
			if sep {
				sb.WriteString(strings.Repeat("-", w))
			} else {
				content := ""
				if i < len(cells) {
					content = cells[i]
				}
				sb.WriteString(content)
				sb.WriteString(strings.Repeat(" ", w-runewidth.StringWidth(content)))
			}
			sb.WriteString(" |")
		}
		return sb.String()
	}

	out := make([]string, 0, len(rows)+1)
	out = append(out, line(rows[0], false), line(nil, true))
	for _, row := range rows[1:] {
		out = append(out, line(row, false))
	}
	return out
}

func init() {
	regionsCmd.Flags().StringVar(&regionsFormat, "format", "table", "output format: table or yaml")
	rootCmd.AddCommand(regionsCmd)
}
