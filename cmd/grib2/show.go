package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/geal-ai/grib2"
)

// imageStats summarises one decoded section set.
type imageStats struct {
	Index    int            `json:"index"`
	Metadata grib2.Metadata `json:"metadata"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Packing  grib2.Packing  `json:"packing"`
	Present  int            `json:"present"`
	Missing  int            `json:"missing"`
	// Physical range over present points; omitted when none is present.
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Mean *float64 `json:"mean,omitempty"`
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <src> <index>",
		Short: "Decode one section set and print statistics of its values",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index %q: %w", args[1], err)
			}
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			sets, err := a.sections(ctx, args[0])
			if err != nil {
				return err
			}
			if idx < 0 || idx >= len(sets) {
				return fmt.Errorf("index %d out of range: %d section sets", idx, len(sets))
			}
			im, err := sets[idx].Decode()
			if err != nil {
				return err
			}
			st := summarise(im)
			st.Index = idx
			st.Metadata = sets[idx].Describe()
			if a.v.GetBool("json") {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			return renderTable(cmd.OutOrStdout(), []string{"property", "value"}, st.rows())
		},
	}
}

func summarise(im grib2.PackedImage) imageStats {
	w, h := im.Size()
	st := imageStats{Width: w, Height: h, Packing: im.Packing()}
	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, v := range im.Values() {
		if math.IsNaN(v) {
			st.Missing++
			continue
		}
		st.Present++
		lo, hi, sum = math.Min(lo, v), math.Max(hi, v), sum+v
	}
	if st.Present > 0 {
		mean := sum / float64(st.Present)
		st.Min, st.Max, st.Mean = &lo, &hi, &mean
	}
	return st
}

func (st imageStats) rows() [][]string {
	m := st.Metadata
	return [][]string{
		{"index", strconv.Itoa(st.Index)},
		{"parameter", parameterLabel(m)},
		{"level", levelLabel(m.FirstSurface)},
		{"reference", timeLabel(m.ReferenceTime)},
		{"valid", timeLabel(m.ValidTime)},
		{"grid", fmt.Sprintf("3.%s  %d×%d", valueLabel(m.GridTemplate), st.Width, st.Height)},
		{"packing", fmt.Sprintf("5.%s  %s, %s bits", valueLabel(m.DataTemplate), st.Packing, valueLabel(m.BitsPerValue))},
		{"bitmap", valueLabel(m.BitmapIndicator)},
		{"present", strconv.Itoa(st.Present)},
		{"missing", strconv.Itoa(st.Missing)},
		{"min", floatLabel(st.Min)},
		{"max", floatLabel(st.Max)},
		{"mean", floatLabel(st.Mean)},
	}
}

func floatLabel(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', 6, 64)
}
