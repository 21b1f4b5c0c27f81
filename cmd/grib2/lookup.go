package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/geal-ai/grib2"
)

type lookupResult struct {
	Index     int      `json:"index"`
	Parameter string   `json:"parameter"`
	Level     string   `json:"level"`
	Valid     string   `json:"valid,omitempty"`
	Value     *float64 `json:"value,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type lookupOutput struct {
	Lat     float64        `json:"lat"`
	Lon     float64        `json:"lon"`
	Results []lookupResult `json:"results"`
}

func (a *app) lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <src> <lat> <lon>",
		Short: "Print the nearest value of every field at a point",
		Example: `  grib2 lookup hrrr.t00z.wrfsfcf00.grib2 39.64 -106.37
  grib2 lookup --match "TMP:2 m above ground" https://example.org/run.grib2 40.71 -74.01`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[1], 64)
			if err != nil || lat < -90 || lat > 90 {
				return fmt.Errorf("invalid latitude %q", args[1])
			}
			lon, err := strconv.ParseFloat(args[2], 64)
			if err != nil || lon < -180 || lon > 360 {
				return fmt.Errorf("invalid longitude %q", args[2])
			}
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			sets, err := a.sections(ctx, args[0])
			if err != nil {
				return err
			}
			fields, err := grib2.FieldAll(ctx, sets, a.v.GetInt("workers"))
			if err != nil {
				// Per-field failures are reported in the results.
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				a.log.Debug("some fields failed to decode", zap.Error(err))
			}

			out := lookupOutput{Lat: lat, Lon: lon, Results: make([]lookupResult, len(sets))}
			for i, s := range sets {
				m := s.Describe()
				r := lookupResult{
					Index:     i,
					Parameter: parameterLabel(m),
					Level:     levelLabel(m.FirstSurface),
				}
				if m.ValidTime != nil {
					r.Valid = timeLabel(m.ValidTime)
				}
				if f := fields[i]; f == nil {
					r.Error = setError(err, i)
				} else if v := f.Lookup(lat, lon); math.IsNaN(v) {
					r.Error = "outside grid or missing"
				} else {
					r.Value = &v
				}
				out.Results[i] = r
			}

			if a.v.GetBool("json") {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			rows := make([][]string, len(out.Results))
			for i, r := range out.Results {
				value := r.Error
				if r.Value != nil {
					value = strconv.FormatFloat(*r.Value, 'g', 6, 64)
				}
				rows[i] = []string{strconv.Itoa(r.Index), r.Parameter, r.Level, r.Valid, value}
			}
			return renderTable(cmd.OutOrStdout(), []string{"#", "parameter", "level", "valid", "value"}, rows)
		},
	}
}

// setError returns the decode error of set i within a FieldAll error.
func setError(err error, i int) string {
	for _, e := range multierr.Errors(err) {
		var se *grib2.SetError
		if errors.As(e, &se) && se.Index == i {
			return se.Err.Error()
		}
	}
	return "not decoded"
}
