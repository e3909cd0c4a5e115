// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package sender defines the logic for the "airgap" command-line tool.
//
// The tool renders one or more files into QR symbol image sets, one set per
// file, which can then be displayed or printed and scanned on the far side of
// an air gap.
package sender

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/locka99/airgap/capacity"
	"github.com/locka99/airgap/envelope"
	"github.com/locka99/airgap/manifest"
	"github.com/locka99/airgap/support/errkind"
	"github.com/locka99/airgap/support/fmtutil"
	"github.com/locka99/airgap/support/logging"
	"github.com/locka99/airgap/symbol"
	"github.com/locka99/airgap/transfer"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is the tool's version string.
const Version = "1.0.0"

// Process exit codes.
const (
	ExitSuccess       = 0
	ExitUsage         = 1
	ExitConfiguration = 2
	ExitIO            = 3
	ExitEncoding      = 4
	ExitOther         = 5
)

// zap's SugaredLogger is the logging.L implementation used by the tool.
var _ logging.L = (*zap.SugaredLogger)(nil)

// usageError is returned for a malformed command line.
type usageError struct{ error }

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if _, ok := errors.Cause(err).(usageError); ok {
		return ExitUsage
	}

	switch errkind.KindOf(err) {
	case errkind.Configuration:
		return ExitConfiguration
	case errkind.IO:
		return ExitIO
	case errkind.Encoding:
		return ExitEncoding
	default:
		return ExitOther
	}
}

type options struct {
	strength         capacity.StrengthFlag
	inputs           []string
	outputs          []string
	compression      envelope.CompressionFlag
	compressionLevel int
	format           symbol.ImageFormatFlag
	scale            int
	workers          int
	manifest         bool
	metricsTextfile  string
	verbose          bool
	inspect          string
	version          bool
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.VarP(&o.strength, "ecl", "e",
		"Error correction level within each QR symbol. One of: "+capacity.StrengthFlagValues()+".")
	fs.StringArrayVarP(&o.inputs, "input", "i", nil,
		"Input file. May be repeated; positional arguments are also inputs.")
	fs.StringArrayVarP(&o.outputs, "output", "o", nil,
		"Output directory. Either one per input, or a single directory for all inputs.")
	fs.Var(&o.compression, "compression",
		"Compression applied before packetizing. One of: "+envelope.CompressionFlagValues()+".")
	fs.IntVar(&o.compressionLevel, "compression-level", 0,
		"Compression level for GZIP and ZSTD. Zero selects the default.")
	fs.Var(&o.format, "format",
		"Image format of the written symbols. One of: "+symbol.ImageFormatFlagValues()+".")
	fs.IntVar(&o.scale, "scale", symbol.DefaultScale, fmt.Sprintf("Pixels per QR module, from 1 to %d.", symbol.MaxScale))
	fs.IntVarP(&o.workers, "workers", "j", 0, "Number of symbols rendered at once. Zero uses every CPU.")
	fs.BoolVar(&o.manifest, "manifest", true, "Write a manifest file alongside each symbol set.")
	fs.StringVar(&o.metricsTextfile, "metrics-textfile", "",
		"If set, write Prometheus metrics for the run to this file.")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Log every written symbol.")
	fs.StringVar(&o.inspect, "inspect", "", "Print the manifest file at this path and exit.")
	fs.BoolVar(&o.version, "version", false, "Print the version and exit.")
}

// validate checks option values that pflag's types cannot.
func (o *options) validate() error {
	if o.scale < 1 || o.scale > symbol.MaxScale {
		return usageError{errors.Errorf("--scale must be between 1 and %d, not %d", symbol.MaxScale, o.scale)}
	}
	return nil
}

// job is a single input file and the directory its symbols go to.
type job struct {
	input  string
	output string
}

// pairJobs matches inputs with outputs. They are paired in order when there
// are as many of each; otherwise a single output receives every input.
func pairJobs(inputs, outputs []string) ([]job, error) {
	switch {
	case len(inputs) == 0:
		return nil, usageError{errors.New("at least one input file is required")}
	case len(outputs) == 0:
		return nil, usageError{errors.New("an output directory is required")}
	}

	jobs := make([]job, len(inputs))
	switch {
	case len(outputs) == len(inputs):
		for i := range inputs {
			jobs[i] = job{inputs[i], outputs[i]}
		}
	case len(outputs) == 1:
		for i := range inputs {
			jobs[i] = job{inputs[i], outputs[0]}
		}
	default:
		return nil, usageError{errors.Errorf(
			"%d inputs cannot be paired with %d outputs; supply one output, or one per input",
			len(inputs), len(outputs))}
	}

	// Artifacts are named after the input's base name, so two inputs with the
	// same base name cannot share an output directory.
	type target struct{ dir, name string }
	seen := make(map[target]string, len(jobs))
	for _, j := range jobs {
		t := target{filepath.Clean(j.output), filepath.Base(j.input)}
		if prev, ok := seen[t]; ok {
			return nil, usageError{errors.Errorf("inputs %q and %q would both write %q artifacts to %q",
				prev, j.input, t.name, j.output)}
		}
		seen[t] = j.input
	}
	return jobs, nil
}

func newLogger(w io.Writer, verbose bool) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}

// Main is the main entry point.
func Main() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// Run runs the tool with command-line arguments args, returning its exit
// code.
func Run(c context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("airgap", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	var o options
	o.addFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: airgap -i FILE [-i FILE...] -o DIR [-o DIR...] [options]\n\n%s", fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return ExitSuccess
		}
		return ExitUsage
	}

	if o.version {
		fmt.Fprintf(stdout, "airgap %s\n", Version)
		return ExitSuccess
	}

	if o.inspect != "" {
		return report(stderr, inspect(stdout, o.inspect))
	}

	jobs, err := pairJobs(append(o.inputs, fs.Args()...), o.outputs)
	if err == nil {
		err = o.validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		fs.Usage()
		return ExitUsage
	}

	logger := newLogger(stderr, o.verbose)
	defer func() {
		_ = logger.Sync()
	}()

	reg := prometheus.NewRegistry()
	symbol.RegisterMonitoring(reg)

	cfg := transfer.Config{
		Compression:      o.compression.Value(),
		CompressionLevel: o.compressionLevel,
		Format:           o.format.Value(),
		Encoder:          &symbol.QR{Scale: o.scale},
		Workers:          o.workers,
		WriteManifest:    o.manifest,
		Logger:           logger,
	}
	err = runJobs(c, &cfg, jobs, o.strength.Value(), stdout)

	if o.metricsTextfile != "" {
		if merr := prometheus.WriteToTextfile(o.metricsTextfile, reg); merr != nil {
			logger.Warnf("Could not write metrics to %q: %s", o.metricsTextfile, merr)
		}
	}
	return report(stderr, err)
}

func runJobs(c context.Context, cfg *transfer.Config, jobs []job, s capacity.Strength, w io.Writer) error {
	for _, j := range jobs {
		summary, err := cfg.Run(c, j.input, s, j.output)
		if err != nil {
			return errors.Wrapf(err, "transferring %q", j.input)
		}
		printSummary(w, summary)
	}
	return nil
}

func printSummary(w io.Writer, s *transfer.Summary) {
	env := s.Envelope
	fmt.Fprintf(w, "%s: %s in %s symbol(s) at %s (%s, %s), %s\n",
		env.DisplayName(),
		humanize.IBytes(env.Size),
		humanize.Comma(int64(len(s.Artifacts)+1)),
		env.SymbolStrength(),
		env.SymbolStrength().Description(),
		env.StreamCompression(),
		s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  crc32 %08x, blake3 %s\n", env.Crc32, fmtutil.Hex(env.Blake3))
	for _, p := range s.Paths() {
		fmt.Fprintf(w, "  %s\n", p)
	}
	if s.ManifestPath != "" {
		fmt.Fprintf(w, "  manifest: %s\n", s.ManifestPath)
	}
}

func inspect(w io.Writer, path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return errkind.Wrapf(errkind.IO, err, "loading manifest %q", path)
	}
	if err := m.Dump(w); err != nil {
		return errkind.Wrap(errkind.IO, err, "printing manifest")
	}
	if err := m.Check(); err != nil {
		return errkind.Wrapf(errkind.Encoding, err, "manifest %q is inconsistent", path)
	}
	return nil
}

// report prints err, if any, with its kind, and returns the matching exit
// code.
func report(w io.Writer, err error) int {
	code := ExitCode(err)
	if err != nil {
		fmt.Fprintf(w, "airgap: %s: %s\n", errkind.KindOf(err), err)
	}
	return code
}
