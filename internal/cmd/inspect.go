package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/charmbracelet/virtua/internal/config"
	"github.com/charmbracelet/virtua/internal/virtual"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type inspectOptions struct {
	scroll   float64
	scrollX  float64
	viewport float64
	width    float64
	measure  []string
	scrollTo int
	align    string
	at       float64
	format   string
}

type rangeView struct {
	StartIndex         int `json:"start_index" yaml:"start_index"`
	EndIndex           int `json:"end_index" yaml:"end_index"`
	OverscanStartIndex int `json:"overscan_start_index" yaml:"overscan_start_index"`
	OverscanEndIndex   int `json:"overscan_end_index" yaml:"overscan_end_index"`
}

type itemView struct {
	Index    int     `json:"index" yaml:"index"`
	Start    float64 `json:"start" yaml:"start"`
	Size     float64 `json:"size" yaml:"size"`
	End      float64 `json:"end" yaml:"end"`
	Measured bool    `json:"measured" yaml:"measured"`
	Visible  bool    `json:"visible" yaml:"visible"`
}

type cellView struct {
	Index  int     `json:"index" yaml:"index"`
	Row    int     `json:"row" yaml:"row"`
	Column int     `json:"column" yaml:"column"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// inspection is a snapshot of a virtualizer after applying the requested
// measurements and scroll position.
type inspection struct {
	Mode         string     `json:"mode" yaml:"mode"`
	Axis         string     `json:"axis,omitempty" yaml:"axis,omitempty"`
	Count        int        `json:"count" yaml:"count"`
	ScrollOffset float64    `json:"scroll_offset" yaml:"scroll_offset"`
	Viewport     float64    `json:"viewport" yaml:"viewport"`
	TotalSize    float64    `json:"total_size" yaml:"total_size"`
	ScrollTo     *float64   `json:"scroll_to,omitempty" yaml:"scroll_to,omitempty"`
	ItemAt       *int       `json:"item_at,omitempty" yaml:"item_at,omitempty"`
	Range        *rangeView `json:"range,omitempty" yaml:"range,omitempty"`
	Items        []itemView `json:"items,omitempty" yaml:"items,omitempty"`
	Cells        []cellView `json:"cells,omitempty" yaml:"cells,omitempty"`
	Errors       []string   `json:"errors,omitempty" yaml:"errors,omitempty"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the items materialized at a scroll position",
	Long: heredoc.Doc(`
		Build a virtualizer from the config, apply measurements and a scroll
		position, and print the resulting range and item positions.
		In grid mode the visible cells are printed instead.
	`),
	Example: heredoc.Doc(`
		# Items visible 5000 units down a 500 unit viewport
		virtua inspect --scroll 5000 --viewport 500

		# Measure two items and see the items below them shift
		virtua inspect --measure 3=120 --measure 4=80 --format json

		# Where would item 9000 be centered?
		virtua inspect --scroll-to 9000 --align center
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		opts := inspectOptions{}
		opts.scroll, _ = cmd.Flags().GetFloat64("scroll")
		opts.scrollX, _ = cmd.Flags().GetFloat64("scroll-x")
		opts.viewport, _ = cmd.Flags().GetFloat64("viewport")
		opts.width, _ = cmd.Flags().GetFloat64("width")
		opts.measure, _ = cmd.Flags().GetStringArray("measure")
		opts.scrollTo, _ = cmd.Flags().GetInt("scroll-to")
		opts.align, _ = cmd.Flags().GetString("align")
		opts.at, _ = cmd.Flags().GetFloat64("at")
		opts.format, _ = cmd.Flags().GetString("format")
		return runInspect(cmd.OutOrStdout(), cfg, opts)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Float64("scroll", 0, "Scroll offset along the main axis (vertical in grid mode)")
	inspectCmd.Flags().Float64("scroll-x", 0, "Horizontal scroll offset in grid mode")
	inspectCmd.Flags().Float64("viewport", 500, "Viewport extent along the main axis (height in grid mode)")
	inspectCmd.Flags().Float64("width", 800, "Viewport width in grid mode")
	inspectCmd.Flags().StringArray("measure", nil, "Measured size as index=size, rows in grid mode (repeatable)")
	inspectCmd.Flags().Int("scroll-to", -1, "Scroll so the item at this index is in view")
	inspectCmd.Flags().String("align", "auto", "Alignment for --scroll-to (auto, start, center, end)")
	inspectCmd.Flags().Float64("at", -1, "Report the item under this offset")
	inspectCmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")
}

type measurement struct {
	index int
	size  float64
}

func parseMeasurements(values []string) ([]measurement, error) {
	out := make([]measurement, 0, len(values))
	for _, v := range values {
		index, size, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid measurement %q: expected index=size", v)
		}
		i, err := strconv.Atoi(strings.TrimSpace(index))
		if err != nil {
			return nil, fmt.Errorf("invalid measurement index %q: %w", index, err)
		}
		s, err := strconv.ParseFloat(strings.TrimSpace(size), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid measurement size %q: %w", size, err)
		}
		out = append(out, measurement{index: i, size: s})
	}
	return out, nil
}

func runInspect(w io.Writer, cfg *config.Config, opts inspectOptions) error {
	measurements, err := parseMeasurements(opts.measure)
	if err != nil {
		return err
	}
	align, err := virtual.ParseAlign(opts.align)
	if err != nil {
		return err
	}

	var result *inspection
	if cfg.IsGrid() {
		result, err = inspectGrid(cfg, opts, measurements, align)
	} else {
		result, err = inspectList(cfg, opts, measurements, align)
	}
	if err != nil {
		return err
	}
	return formatInspection(w, result, opts.format)
}

func inspectList(cfg *config.Config, opts inspectOptions, measurements []measurement, align virtual.Align) (*inspection, error) {
	result := &inspection{Mode: string(config.ModeList), Count: cfg.Count}
	v, err := virtual.New(append(cfg.ListOptions(),
		virtual.WithViewport(opts.viewport),
		virtual.WithInitialOffset(opts.scroll),
		virtual.WithMeasurementErrorHandler(func(err error) {
			result.Errors = append(result.Errors, err.Error())
		}),
	)...)
	if err != nil {
		return nil, err
	}

	scheduler := virtual.NewScheduler(v)
	for _, m := range measurements {
		scheduler.Report(m.index, m.size)
	}
	// Rejected measurements already reached the handler.
	_, _ = scheduler.Flush()

	if opts.scrollTo >= 0 {
		offset := v.ScrollToIndex(opts.scrollTo, align)
		if err := v.SetScrollOffset(offset); err != nil {
			return nil, err
		}
		result.ScrollTo = &offset
	}
	if opts.at >= 0 {
		if item, ok := v.ItemAt(opts.at); ok {
			result.ItemAt = &item.Index
		}
	}

	rng := v.Range()
	result.Axis = v.Axis().String()
	result.ScrollOffset = v.ScrollOffset()
	result.Viewport = v.Viewport()
	result.TotalSize = v.TotalSize()
	result.Range = &rangeView{
		StartIndex:         rng.StartIndex,
		EndIndex:           rng.EndIndex,
		OverscanStartIndex: rng.OverscanStartIndex,
		OverscanEndIndex:   rng.OverscanEndIndex,
	}
	for _, item := range v.VirtualItems() {
		result.Items = append(result.Items, itemView{
			Index:    item.Index,
			Start:    item.Start,
			Size:     item.Size,
			End:      item.End(),
			Measured: v.Store().Measured(item.Index),
			Visible:  rng.Visible(item.Index),
		})
	}
	return result, nil
}

func inspectGrid(cfg *config.Config, opts inspectOptions, measurements []measurement, align virtual.Align) (*inspection, error) {
	result := &inspection{Mode: string(config.ModeGrid), Count: cfg.Count}
	columns := max(1, cfg.Columns)
	gridOpts := append(cfg.GridOptions(opts.width/float64(columns)),
		virtual.WithGridMeasurementErrorHandler(func(err error) {
			result.Errors = append(result.Errors, err.Error())
		}),
	)
	g, err := virtual.NewGrid(cfg.Count, cfg.Columns, gridOpts...)
	if err != nil {
		return nil, err
	}
	if err := g.SetViewport(opts.width, opts.viewport); err != nil {
		return nil, err
	}
	if err := g.SetScroll(opts.scrollX, opts.scroll); err != nil {
		return nil, err
	}

	scheduler := virtual.NewScheduler(g.Rows())
	for _, m := range measurements {
		scheduler.Report(m.index, m.size)
	}
	_, _ = scheduler.Flush()

	if opts.scrollTo >= 0 {
		x, y := g.ScrollToCell(opts.scrollTo, align)
		if err := g.SetScroll(x, y); err != nil {
			return nil, err
		}
		result.ScrollTo = &y
	}

	result.ScrollOffset = g.Rows().ScrollOffset()
	result.Viewport = g.Rows().Viewport()
	_, result.TotalSize = g.TotalSize()
	for _, c := range g.VisibleCells() {
		result.Cells = append(result.Cells, cellView(c))
	}
	return result, nil
}

func formatInspection(w io.Writer, result *inspection, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Fprint(w, string(data))
		return nil
	case "text":
		return formatInspectionText(w, result)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func formatInspectionText(w io.Writer, result *inspection) error {
	fmt.Fprintf(w, "Mode:      %s\n", result.Mode)
	fmt.Fprintf(w, "Count:     %d\n", result.Count)
	fmt.Fprintf(w, "Scroll:    %s\n", formatFloat(result.ScrollOffset))
	fmt.Fprintf(w, "Viewport:  %s\n", formatFloat(result.Viewport))
	fmt.Fprintf(w, "Total:     %s\n", formatFloat(result.TotalSize))
	if result.ScrollTo != nil {
		fmt.Fprintf(w, "Scroll to: %s\n", formatFloat(*result.ScrollTo))
	}
	if result.ItemAt != nil {
		fmt.Fprintf(w, "Item at:   %d\n", *result.ItemAt)
	}
	if result.Range != nil {
		fmt.Fprintf(w, "Range:     %d-%d (overscan %d-%d)\n",
			result.Range.StartIndex, result.Range.EndIndex,
			result.Range.OverscanStartIndex, result.Range.OverscanEndIndex)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "Error:     %s\n", e)
	}

	t := table.New().Border(lipgloss.NormalBorder())
	if result.Mode == string(config.ModeGrid) {
		t = t.Headers("INDEX", "ROW", "COLUMN", "X", "Y", "WIDTH", "HEIGHT")
		for _, c := range result.Cells {
			t = t.Row(strconv.Itoa(c.Index), strconv.Itoa(c.Row), strconv.Itoa(c.Column),
				formatFloat(c.X), formatFloat(c.Y), formatFloat(c.Width), formatFloat(c.Height))
		}
	} else {
		t = t.Headers("INDEX", "START", "SIZE", "END", "MEASURED", "VISIBLE")
		for _, item := range result.Items {
			t = t.Row(strconv.Itoa(item.Index), formatFloat(item.Start), formatFloat(item.Size),
				formatFloat(item.End), strconv.FormatBool(item.Measured), strconv.FormatBool(item.Visible))
		}
	}
	fmt.Fprintln(w, t.String())
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
