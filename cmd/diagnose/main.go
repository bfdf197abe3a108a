// Diagnostic tool for analyzing MDF4 files: lists the data groups with their
// channel groups and channels, and optionally parses the records.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/robert-malhotra/go-mdf/internal/mmap"
	"github.com/robert-malhotra/go-mdf/mdf"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var configPath string
	flagSet := pflag.NewFlagSet("diagnose", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&configPath, "config", "c", "", "YAML config file")
	format := flagSet.StringP("format", "f", "text", "output format: text, yaml or cbor")
	records := flagSet.BoolP("records", "r", false, "parse the records of every data group")
	digestFlag := flagSet.Bool("digest", false, "print the BLAKE3 digest of each record stream")
	mmapFlag := flagSet.Bool("mmap", false, "memory map the input file")
	tempDir := flagSet.String("temp-dir", "", "directory for staging fragmented data")
	maxDepth := flagSet.Int("max-depth", 0, "maximum DL/HL nesting (0 for the default)")
	logLevel := flagSet.String("log-level", "warn", "log level: debug, info, warn or error")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: diagnose [flags] <file.mf4>\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return errors.New("expected exactly one input file")
	}
	path := flagSet.Arg(0)

	cfg := DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = LoadConfig(configPath); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	if flagSet.Changed("format") {
		cfg.Format = *format
	}
	if flagSet.Changed("records") {
		cfg.Records = *records
	}
	if flagSet.Changed("digest") {
		cfg.Digest = *digestFlag
	}
	if flagSet.Changed("mmap") {
		cfg.Mmap = *mmapFlag
	}
	if flagSet.Changed("temp-dir") {
		cfg.TempDir = *tempDir
	}
	if flagSet.Changed("max-depth") {
		cfg.MaxDepth = *maxDepth
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	src, closeSrc, err := openInput(path, cfg.Mmap)
	if err != nil {
		return err
	}
	defer closeSrc()

	report, err := diagnose(path, src, cfg, log)
	if err != nil {
		return err
	}
	return writeReport(stdout, cfg.Format, report)
}

func openInput(path string, useMmap bool) (io.ReaderAt, func() error, error) {
	if useMmap {
		m, err := mmap.Open(path, mmap.SequentialAccess)
		if err != nil {
			return nil, nil, fmt.Errorf("mapping %s: %w", path, err)
		}
		return m, m.Close, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening file: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("opening file: %w", err)
	}
	// A sized reader lets block reads reject lengths past the end of file.
	return io.NewSectionReader(f, 0, fi.Size()), f.Close, nil
}

func diagnose(path string, src io.ReaderAt, cfg *Config, log *slog.Logger) (*fileReport, error) {
	version, err := mdf.Version(src)
	if err != nil {
		return nil, err
	}
	opts := []mdf.Option{
		mdf.WithLogger(log),
		mdf.WithStager(mdf.TempFileStager(cfg.TempDir)),
		mdf.WithMaxDepth(cfg.MaxDepth),
	}
	groups, err := mdf.ReadDataGroups(src, opts...)
	if err != nil {
		return nil, err
	}

	report := &fileReport{Path: path, Version: version}
	for _, dg := range groups {
		g := describeGroup(dg)
		if cfg.Records {
			res, err := dg.PopulateRecords(src)
			if err != nil {
				return nil, fmt.Errorf("DG at 0x%x: %w", dg.Index(), err)
			}
			g.Records = &recordReport{
				Records:  res.Records,
				Bytes:    res.Bytes,
				Size:     res.Size,
				ZeroCopy: res.ZeroCopy,
				Stopped:  res.Stopped.String(),
			}
			fillSamples(&g, dg)
		}
		if cfg.Digest {
			if g.Digest, err = digest(dg, src); err != nil {
				return nil, fmt.Errorf("DG at 0x%x: %w", dg.Index(), err)
			}
		}
		// Each group's data tree is only needed while it is reported.
		dg.Free()
		report.DataGroups = append(report.DataGroups, g)
	}
	return report, nil
}
