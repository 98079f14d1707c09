// Package main provides the capverify command-line tool. It validates and
// prints binary capability descriptors, including family records and their
// subcommand deltas.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/capdesc/go-capdesc/internal/auditreport"
	"github.com/capdesc/go-capdesc/internal/captypes"
	"github.com/capdesc/go-capdesc/internal/color"
	"github.com/capdesc/go-capdesc/internal/descriptor"
	"github.com/capdesc/go-capdesc/internal/logging"
	"github.com/capdesc/go-capdesc/internal/terminal"
)

// ErrNoInput is returned when no descriptor input is given.
var ErrNoInput = errors.New("no descriptor input (pass a file, or - for stdin)")

var (
	familyPath = flag.String("family", "", "path to a family record; descriptor args are treated as delta records")
	logLevel   = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	quiet      = flag.Bool("quiet", false, "suppress output, report via exit code only")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: capverify [flags] <descriptor-file>...

Validates capability descriptors. Input files may contain raw bytes or a hex
string; pass - to read from stdin. With -family, arguments are subcommand
delta records resolved against the family record.

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "capverify: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Usage = usage
	flag.Parse()

	logger, err := logging.Setup(logging.Options{Level: captypes.LogLevel(*logLevel)})
	if err != nil {
		return err
	}
	audit := auditreport.NewLogger(logger)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return ErrNoInput
	}

	var family *descriptor.FamilyRecord
	if *familyPath != "" {
		record, err := readFamily(*familyPath)
		if err != nil {
			audit.LogVerificationFailure(context.Background(), *familyPath, err)
			return err
		}
		family = record
		if !*quiet {
			printFamily(*familyPath, *record)
		}
	}

	var failed bool
	for _, path := range args {
		if err := verifyOne(path, family, audit); err != nil {
			failed = true
			if !*quiet {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			}
		}
	}
	if failed {
		return errors.New("descriptor verification failed")
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return terminal.ReadDescriptorInput(data)
}

func readFamily(path string) (*descriptor.FamilyRecord, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	record, err := descriptor.DecodeFamily(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func verifyOne(path string, family *descriptor.FamilyRecord, audit *auditreport.Logger) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}

	if family != nil {
		sub, err := descriptor.DecodeSubcommand(family, data)
		if err != nil {
			audit.LogVerificationFailure(context.Background(), path, err)
			return err
		}
		if !*quiet {
			printSubcommand(path, sub)
		}
		return nil
	}

	decoded, err := descriptor.Decode(data)
	if err != nil {
		audit.LogVerificationFailure(context.Background(), path, err)
		return err
	}
	if !*quiet {
		printDecoded(path, decoded)
	}
	slog.Debug("Descriptor verified", "source", path, "variant", decoded.Variant.String())
	return nil
}

func printDecoded(source string, d descriptor.Decoded) {
	fmt.Printf("%s: OK (%s, %d bytes)\n", source, d.Variant, variantSize(d.Variant))
	fmt.Printf("  risk level:      %s (score byte %d)\n",
		color.RiskLevel(d.RiskLevel, terminal.StdoutIsTerminal()), d.RiskByte)
	fmt.Printf("  privilege level: %s\n", d.PrivilegeLevel)
	fmt.Printf("  capabilities:    %s\n", d.Flags)
	fmt.Printf("  doc hash prefix: 0x%04x\n", d.HashPrefix)
	fmt.Printf("  perf hints:      latency=%d memory=%d output=%d\n",
		d.Hints.LatencyEstimate, d.Hints.MemoryEstimate, d.Hints.OutputEstimate)
}

func printFamily(source string, r descriptor.FamilyRecord) {
	fmt.Printf("%s: family OK (%d subcommands)\n", source, r.SubcommandN)
	fmt.Printf("  risk floor:       %s\n", color.RiskLevel(r.RiskFloor, terminal.StdoutIsTerminal()))
	fmt.Printf("  root hash prefix: 0x%04x\n", r.RootHashPrefix)
	fmt.Printf("  common flags:     %s\n", r.CommonFlags)
}

func printSubcommand(source string, s descriptor.SubcommandRecord) {
	fmt.Printf("%s: delta OK\n", source)
	fmt.Printf("  name hash prefix: 0x%04x\n", s.NameHashPrefix)
	fmt.Printf("  risk level:       %s\n", color.RiskLevel(s.RiskLevel, terminal.StdoutIsTerminal()))
	fmt.Printf("  capabilities:     %s\n", s.Flags)
}

func variantSize(v descriptor.Variant) int {
	if v == descriptor.VariantLean {
		return descriptor.LeanSize
	}
	return descriptor.FullSize
}
