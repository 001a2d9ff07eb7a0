package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/arnodel/dumpstream"
	"github.com/arnodel/dumpstream/internal/decompress"
	"github.com/arnodel/dumpstream/internal/download"
	"github.com/arnodel/dumpstream/internal/progress"
	"github.com/arnodel/dumpstream/transform/jq"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

const latestDumpURL = "https://dumps.wikimedia.org/wikidatawiki/entities/latest-all.json.bz2"

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see error handling at the bottom of main).
	signal.Ignore(syscall.SIGPIPE)

	// Display a stack trace on panic
	defer func() {
		if e := recover(); e != nil {
			fmt.Fprintf(os.Stderr, "%s: %s", e, debug.Stack())
		}
	}()

	// Parse the command line arguments
	var inputPath string
	var outputPath string
	var filterExpr string
	var continueOnError bool
	var doDownload bool
	var force bool
	var chunkSize int
	var quiet bool
	var verbose bool

	flag.Usage = printUsage
	flag.StringVar(&inputPath, "input", "", "dump file to read (default: stdin)")
	flag.StringVar(&outputPath, "output", "", "file to write filtered records to (default: stdout)")
	flag.StringVar(&filterExpr, "filter", "", "jq filter applied to each record")
	flag.BoolVar(&continueOnError, "continue-on-error", false, "write null and keep going when a record fails the filter")
	flag.BoolVar(&doDownload, "download", false, "download the latest wikidata dump to the current directory first")
	flag.BoolVar(&force, "force", false, "overwrite the output file if it already exists")
	flag.IntVar(&chunkSize, "chunk-size", dumpstream.DefaultChunkSize, "decompressed bytes to read per iteration")
	flag.BoolVar(&quiet, "quiet", false, "suppress progress display")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Interrupting stops the run between chunks, leaving complete records in
	// the output.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	showProgress := !quiet && isatty.IsTerminal(os.Stderr.Fd())
	var stderr io.Writer = os.Stderr
	if showProgress {
		stderr = colorable.NewColorableStderr()
	}

	if doDownload {
		dest := download.Filename(latestDumpURL)
		slog.Info("downloading dump", "url", latestDumpURL, "dest", dest)
		var reporter *progress.Reporter
		err := download.Fetch(ctx, nil, latestDumpURL, dest, func(done, total int64) {
			if showProgress {
				if reporter == nil {
					reporter = progress.NewReporter(stderr, true)
				}
				reporter.Bytes(done, total)
			}
		})
		if err != nil {
			fatalError("download failed: %s", err)
		}
		if showProgress {
			fmt.Fprintln(stderr)
		}
		slog.Info("download complete", "dest", dest)
		if inputPath == "" {
			inputPath = dest
		}
	}

	if filterExpr == "" {
		slog.Info("no filter provided")
		return
	}

	// Compile the filter before touching any input, so a bad expression
	// fails without a partial output file.
	program, err := jq.Compile(filterExpr)
	if err != nil {
		fatalError("%s", err)
	}

	var input io.Reader = os.Stdin
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			fatalError("cannot open input: %s", err)
		}
		defer f.Close()
		input = f
	}
	src, format, err := decompress.NewReader(input)
	if err != nil {
		fatalError("cannot read input: %s", err)
	}
	defer src.Close()
	slog.Debug("detected input codec", "format", format)

	var output io.Writer = os.Stdout
	if outputPath != "" {
		openFlags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if !force {
			openFlags |= os.O_EXCL
		}
		f, err := os.OpenFile(outputPath, openFlags, 0o644)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				fatalError("output file %s already exists, use -force to overwrite", outputPath)
			}
			fatalError("cannot create output: %s", err)
		}
		defer f.Close()
		output = f
	}

	opts := []dumpstream.Option{
		dumpstream.WithChunkSize(chunkSize),
		dumpstream.WithContinueOnError(continueOnError),
	}
	var reporter *progress.Reporter
	if showProgress {
		reporter = progress.NewReporter(stderr, true)
		opts = append(opts, dumpstream.WithProgress(func(c dumpstream.Counters) {
			reporter.Records(c.BytesRead, c.RecordsSeen, c.RecordsEmitted)
		}))
	}

	counters, err := dumpstream.New(src, output, program, opts...).Run(ctx)
	if reporter != nil {
		reporter.Finish(counters.BytesRead, counters.RecordsSeen, counters.RecordsEmitted, counters.RecordsSkipped)
	}
	if err != nil {
		if errors.Is(err, syscall.EPIPE) {
			// stdout is a pipe and something closed it (e.g. 'head' or 'less').
			// In this case we don't want to complain.
			return
		}
		fatalError("error: %s", err)
	}
	if reporter == nil && !quiet {
		slog.Info("finished",
			"bytes", counters.BytesRead,
			"seen", counters.RecordsSeen,
			"emitted", counters.RecordsEmitted,
			"skipped", counters.RecordsSkipped)
	}
}

func fatalError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprint(os.Stderr, `wdfilter - filter records out of huge wikidata JSON dumps

USAGE:
  wdfilter [options]

DESCRIPTION:
  wdfilter streams a compressed wikidata entity dump (a single giant JSON
  array, one entity per line) and applies a jq filter to every entity,
  writing the filtered results in dump order. The dump is decompressed
  incrementally, so memory usage stays constant regardless of dump size.

  The compression codec (bzip2, gzip, zstd, lz4 or none) is detected from
  the input's first bytes.

OPTIONS:
  -input PATH          Dump file to read (default: stdin)
  -output PATH         File to write results to (default: stdout)
  -filter EXPR         jq filter applied to each entity, see
                       https://jqlang.org/manual/ for the language.
                       NOTE: the filter is applied to EACH entity, not to
                       the dump as a whole.
  -continue-on-error   Write null and keep going when an entity fails the
                       filter (default: stop at the first failure)
  -download            Download the latest wikidata dump first
  -force               Overwrite the output file if it already exists
  -chunk-size N        Decompressed bytes to read per iteration
  -quiet               Suppress the progress display
  -verbose             Enable debug logging

EXAMPLES:
  # Extract every entity's id
  wdfilter -input latest-all.json.bz2 -filter '.id'

  # Keep only humans (instance of Q5), compactly
  wdfilter -input latest-all.json.bz2 \
    -filter 'select(.claims.P31[]?.mainsnak.datavalue.value.id == "Q5")' \
    -output humans.json

  # Download the dump, then extract labels
  wdfilter -download -filter '.labels.en.value'
`)
}
