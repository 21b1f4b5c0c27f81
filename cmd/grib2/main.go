// Command grib2 lists, dumps and decodes GRIB2 files.
//
// Usage:
//
//	grib2 list <src>
//	grib2 show <src> <index>
//	grib2 lookup <src> <lat> <lon>
//	grib2 dump <src>
//	grib2 version
//
// <src> is a path, "-" for stdin, or an http(s) URL. Gzip, zstd, lz4 and s2
// inputs are decompressed transparently. Every flag can also be set through the
// environment as GRIB2_<FLAG>, e.g. GRIB2_MAX_BYTES or GRIB2_WORKERS.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/geal-ai/grib2"
	"github.com/geal-ai/grib2/internal/source"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries the state shared by every subcommand.
type app struct {
	v   *viper.Viper
	log *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "grib2",
		Short: "Inspect and decode GRIB2 files",
		Long: `grib2 frames GRIB2 edition 2 messages into section sets and decodes
simple (5.0), complex with spatial differencing (5.3) and run length (5.200)
packed data on regular lat/lon (3.0) and Lambert conformal (3.30) grids.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	f := root.PersistentFlags()
	f.BoolP("verbose", "v", false, "log at debug level")
	f.Bool("json", false, "emit JSON instead of text")
	f.Int("workers", runtime.NumCPU(), "maximum concurrent decodes")
	f.Duration("timeout", 2*time.Minute, "deadline for loading and decoding")
	f.Int64("max-bytes", source.DefaultMaxBytes, "maximum input size after decompression")
	f.String("match", "", "load only the messages whose .idx inventory line contains this text")
	f.Bool("message-bitmaps", false, "do not reuse a bitmap from an earlier message")

	a.v.SetEnvPrefix("GRIB2")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(f); err != nil {
		panic(err)
	}

	root.AddCommand(
		a.listCmd(),
		a.showCmd(),
		a.lookupCmd(),
		a.dumpCmd(),
		versionCmd(),
	)
	return root
}

// setup builds the logger once flags and environment are resolved.
func (a *app) setup() error {
	cfg := zap.NewProductionConfig()
	if a.v.GetBool("verbose") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.log = log
	grib2.SetLogger(log)
	return nil
}

func (a *app) context(parent context.Context) (context.Context, context.CancelFunc) {
	if d := a.v.GetDuration("timeout"); d > 0 {
		return context.WithTimeout(parent, d)
	}
	return context.WithCancel(parent)
}

func (a *app) scanOptions(extra ...grib2.ScanOption) []grib2.ScanOption {
	opts := []grib2.ScanOption{grib2.WithLogger(a.log)}
	if a.v.GetBool("message-bitmaps") {
		opts = append(opts, grib2.WithMessageScopedBitmaps())
	}
	return append(opts, extra...)
}

// load reads location, honouring --match and --max-bytes.
func (a *app) load(ctx context.Context, location string) ([]byte, error) {
	loader, err := source.New(
		source.WithMaxBytes(a.v.GetInt64("max-bytes")),
		source.WithLogger(a.log),
	)
	if err != nil {
		return nil, err
	}
	if pattern := a.v.GetString("match"); pattern != "" {
		if location == source.Stdin {
			return nil, errors.New("--match needs a file or URL with an .idx sidecar")
		}
		return loader.LoadMatching(ctx, location, pattern)
	}
	return loader.Load(ctx, location)
}

// sections loads and frames location. A framing error after at least one set
// is logged and the sets framed before it are kept.
func (a *app) sections(ctx context.Context, location string) ([]grib2.SectionSet, error) {
	buf, err := a.load(ctx, location)
	if err != nil {
		return nil, err
	}
	sets, err := grib2.Parse(buf, a.scanOptions()...)
	if err != nil {
		if len(sets) == 0 {
			return nil, err
		}
		a.log.Warn("input truncated", zap.String("location", location),
			zap.Int("sets", len(sets)), zap.Error(err))
	}
	return sets, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "grib2 %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
