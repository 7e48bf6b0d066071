// Command csvrow reads one delimiter-separated row per run into named
// variables, arrays or keyed arrays, and prints them back as a row.
//
// Variables persist in a state file between runs (SQLite by default, or a
// YAML, JSON or MessagePack snapshot chosen by extension), so a shell loop
// can walk a file row by row:
//
//	exec 3<data.csv
//	while csvrow read -u 3 -A row -H header; do
//	    csvrow print -A row -H header
//	done
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	flag "github.com/juju/gnuflag"

	"github.com/shapestone/shape-csvrow/pkg/csv"
)

// Exit statuses.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

const usage = `usage:
  csvrow read  [-f sep] [-d delim] [-q quote] [-u fd] [-c cols] [-a array | -A assoc [-H header]] [name ...]
  csvrow print [-f sep] [-d delim] [-q quote] [-a array | -A assoc [-H header] [--header]] [name ...]
  csvrow dump  [--format yaml|json|msgpack]
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command and returns the exit status.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "csvrow: ", 0)
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	var err error
	switch args[0] {
	case "read":
		err = runRead(ctx, args[1:], stdin, logger)
	case "print":
		err = runPrint(ctx, args[1:], stdout, logger)
	case "dump":
		err = runDump(args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		err = usageError{fmt.Sprintf("unknown command %q", args[0])}
	}

	var uerr usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &uerr):
		logger.Print(err)
		fmt.Fprint(stderr, usage)
		return exitUsage
	case errors.Is(err, csv.ErrNoData):
		return exitFail
	default:
		logger.Print(err)
		return exitFail
	}
}

type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

// byteFlag is a flag whose value is the first byte of its argument; an
// empty argument means NUL.
type byteFlag struct {
	set bool
	b   byte
}

func (f *byteFlag) String() string {
	if !f.set {
		return ""
	}
	return string([]byte{f.b})
}

func (f *byteFlag) Set(s string) error {
	f.set = true
	f.b = 0
	if s != "" {
		f.b = s[0]
	}
	return nil
}

// commonFlags are shared by read and print.
type commonFlags struct {
	fs         *flag.FlagSet
	comma      byteFlag
	terminator byteFlag
	quote      byteFlag
	statePath  string
	configPath string
	array      string
	assoc      string
	header     string
}

func newCommonFlags(name string) *commonFlags {
	c := &commonFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	c.fs.SetOutput(io.Discard)
	c.fs.Var(&c.comma, "f", "split fields on the first byte of `sep` instead of comma")
	c.fs.Var(&c.terminator, "d", "end records on the first byte of `delim` instead of newline with optional carriage return")
	c.fs.Var(&c.quote, "q", "use the first byte of `quote` as quote character instead of double quote")
	c.fs.StringVar(&c.statePath, "s", "", "state file (default $CSVROW_STATE or "+defaultStatePath+")")
	c.fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	c.fs.StringVar(&c.array, "a", "", "indexed array `name`")
	c.fs.StringVar(&c.assoc, "A", "", "keyed array `name`")
	c.fs.StringVar(&c.header, "H", "", "header array `name` resolving keys of -A")
	return c
}

func (c *commonFlags) parse(args []string) error {
	if err := c.fs.Parse(true, args); err != nil {
		return usageError{err.Error()}
	}
	if c.array != "" && c.assoc != "" {
		return usageError{"-a and -A are mutually exclusive"}
	}
	if c.header != "" && c.assoc == "" {
		return usageError{"-H requires -A"}
	}
	return nil
}

// setup loads the config, resolves the dialect and opens the state store.
func (c *commonFlags) setup() (csv.Dialect, state, error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return csv.Dialect{}, nil, err
	}

	d := cfg.Dialect.apply(csv.DefaultDialect())
	if c.comma.set {
		d.Comma = c.comma.b
	}
	if c.terminator.set {
		d = d.WithTerminator(c.terminator.b)
	}
	if c.quote.set {
		d.Quote = c.quote.b
	}
	if err := d.Validate(); err != nil {
		return csv.Dialect{}, nil, err
	}

	path := c.statePath
	if path == "" {
		path = os.Getenv("CSVROW_STATE")
	}
	if path == "" {
		path = cfg.State
	}
	if path == "" {
		path = defaultStatePath
	}
	st, err := openState(path)
	if err != nil {
		return csv.Dialect{}, nil, err
	}
	return d, st, nil
}

func runRead(ctx context.Context, args []string, stdin io.Reader, logger *log.Logger) (err error) {
	c := newCommonFlags("read")
	fdSpec := c.fs.String("u", "", "read from file descriptor `fd` instead of standard input")
	cols := c.fs.String("c", "", "keep only the columns in `list`, e.g. 0,2,5-7,9-")
	verbose := c.fs.Bool("v", false, "log each bound row")
	if err := c.parse(args); err != nil {
		return err
	}
	names := c.fs.Args()
	if c.array == "" && c.assoc == "" && len(names) == 0 {
		return usageError{"no destination names"}
	}

	src := stdin
	if *fdSpec != "" {
		fd, perr := strconv.Atoi(*fdSpec)
		if perr != nil || fd < 0 {
			return fmt.Errorf("%s: invalid file descriptor specification", *fdSpec)
		}
		f, ferr := openDescriptor(fd)
		if ferr != nil {
			return fmt.Errorf("%d: invalid file descriptor: %w", fd, ferr)
		}
		defer f.Close()
		src = f
	}

	d, st, err := c.setup()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	r, err := csv.NewReader(src, d)
	if err != nil {
		return err
	}
	r.SetContext(ctx)
	if err := r.SetSelection(*cols); err != nil {
		return err
	}

	switch {
	case c.array != "":
		err = r.ReadIndexed(st.Array(c.array))
	case c.assoc != "":
		var header csv.IndexedCollection
		if c.header != "" {
			header = st.Array(c.header)
		}
		err = r.ReadKeyed(st.Assoc(c.assoc), header)
	default:
		err = r.ReadScalars(st, names...)
	}
	if serr := r.Sync(); serr != nil && err == nil {
		err = serr
	}
	if err == nil && *verbose {
		logger.Printf("bound row (dialect %s, columns %s)", d, r.Selection())
	}
	return err
}

func runPrint(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) (err error) {
	c := newCommonFlags("print")
	withHeader := c.fs.Bool("header", false, "print the key order of -A as a row first")
	if err := c.parse(args); err != nil {
		return err
	}
	names := c.fs.Args()
	if c.array == "" && c.assoc == "" && len(names) == 0 {
		return usageError{"nothing to print"}
	}
	if *withHeader && c.assoc == "" {
		return usageError{"--header requires -A"}
	}

	d, st, err := c.setup()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	enc, err := csv.NewEncoder(d)
	if err != nil {
		return err
	}
	enc.SetContext(ctx)
	enc.WarningCallback = func(msg string) { logger.Printf("warning: %s", msg) }

	var out []byte
	switch {
	case c.array != "":
		out, err = enc.EncodeIndexed(st.Array(c.array))
	case c.assoc != "":
		var header csv.IndexedCollection
		if c.header != "" {
			header = st.Array(c.header)
		}
		if *withHeader {
			line, herr := enc.EncodeHeader(st.Assoc(c.assoc), header)
			if herr != nil {
				return herr
			}
			out = line
		}
		var row []byte
		row, err = enc.EncodeKeyed(st.Assoc(c.assoc), header)
		out = append(out, row...)
	default:
		fields := make([]string, len(names))
		for i, name := range names {
			if fields[i], _, err = st.Scalar(name); err != nil {
				return err
			}
		}
		out = enc.EncodeRow(fields)
	}
	if err != nil {
		return err
	}
	_, err = stdout.Write(out)
	return err
}

func runDump(args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	statePath := fs.String("s", "", "state file")
	configPath := fs.String("config", "", "YAML configuration file")
	format := fs.String("format", "yaml", "output `format`: yaml, json or msgpack")
	if err := fs.Parse(true, args); err != nil {
		return usageError{err.Error()}
	}

	c := &commonFlags{statePath: *statePath, configPath: *configPath}
	_, st, err := c.setup()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	snap, err := st.Snapshot()
	if err != nil {
		return err
	}
	return snap.Encode(stdout, *format)
}
