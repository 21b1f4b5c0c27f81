package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geal-ai/grib2"
)

var sectionNames = [...]string{
	"indicator", "identification", "local use", "grid definition",
	"product definition", "data representation", "bitmap", "data", "end",
}

func sectionName(n int) string {
	if n < 0 || n >= len(sectionNames) {
		return "unknown"
	}
	return sectionNames[n]
}

type dumpRow struct {
	Offset int    `json:"offset"`
	Number int    `json:"section"`
	Name   string `json:"name"`
	Length int    `json:"length"`
	// Set is the index of the section set emitted by a section 7.
	Set *int `json:"set,omitempty"`
}

func (a *app) dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <src>",
		Short: "Print every framed section with its offset and length",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			buf, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			var dump []dumpRow
			trace := grib2.WithTrace(func(si grib2.SectionInfo) {
				dump = append(dump, dumpRow{
					Offset: si.Offset,
					Number: si.Number,
					Name:   sectionName(si.Number),
					Length: si.Length,
				})
			})
			sets := 0
			err = grib2.Walk(ctx, buf, func(grib2.SectionSet) error {
				// The section 7 that emitted this set was traced last.
				n := sets
				dump[len(dump)-1].Set = &n
				sets++
				return nil
			}, a.scanOptions(trace)...)
			if err != nil {
				if len(dump) == 0 {
					return err
				}
				a.log.Warn("walk stopped", zap.Error(err))
			}

			if a.v.GetBool("json") {
				return writeJSON(cmd.OutOrStdout(), dump)
			}
			rows := make([][]string, len(dump))
			for i, d := range dump {
				rows[i] = []string{strconv.Itoa(d.Offset), strconv.Itoa(d.Number), d.Name, strconv.Itoa(d.Length), valueLabel(d.Set)}
			}
			return renderTable(cmd.OutOrStdout(), []string{"offset", "section", "name", "length", "set"}, rows)
		},
	}
}
