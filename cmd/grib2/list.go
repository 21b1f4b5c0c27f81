package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/geal-ai/grib2"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <src>",
		Short: "List the section sets of a file, one per field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			sets, err := a.sections(ctx, args[0])
			if err != nil {
				return err
			}
			meta := make([]grib2.Metadata, len(sets))
			for i, s := range sets {
				meta[i] = s.Describe()
			}
			if a.v.GetBool("json") {
				return writeJSON(cmd.OutOrStdout(), meta)
			}
			return renderTable(cmd.OutOrStdout(), listHeaders, listRows(meta))
		},
	}
}

var listHeaders = []string{"#", "reference", "valid", "parameter", "level", "packing", "points"}

func listRows(meta []grib2.Metadata) [][]string {
	rows := make([][]string, len(meta))
	for i, m := range meta {
		rows[i] = []string{
			strconv.Itoa(i),
			timeLabel(m.ReferenceTime),
			timeLabel(m.ValidTime),
			parameterLabel(m),
			levelLabel(m.FirstSurface),
			valueLabel(m.Packing),
			valueLabel(m.PointCount),
		}
	}
	return rows
}
