// Command optd fetches the OpenTravelData POR file and answers lookups on
// it, either once from the command line or as a JSON HTTP API.
//
// Usage:
//
//	optd [-config optd.yaml] [-verbose] <command> [arguments]
//
// Run "optd" without arguments for the list of commands.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	optd "github.com/opentraveldata/optd-go"
	"github.com/opentraveldata/optd-go/internal/config"
	"github.com/opentraveldata/optd-go/internal/logging"
	"github.com/opentraveldata/optd-go/internal/restapi"
)

const usage = `Usage: optd [-config file] [-verbose] <command> [arguments]

Commands:
  fetch [-force]                 download the OPTD files if needed
  head [-n rows] [-unlc]         print the first rows of a local OPTD file
  por <geoname-id>               print the POR with the given Geonames id
  iata <code>                    print every location type of an IATA code
  unlocode <code>                print the POR carrying a UN/LOCODE
  serving <code>...              resolve the POR serving IATA codes
  export -o file <code>...       write serving points as a '^'-delimited file
  nearby -lat x -lng y [-radius km] [-type t]
                                 print the POR around a point
  search [-fuzzy n] [-limit n] <name>
                                 search POR by name
  verify                         check the cross-references of the indices
  serve                          run the JSON HTTP API

Flags:
`

// errUsage marks a command line that could not be parsed.
var errUsage = errors.New("invalid usage")

type application struct {
	cfg     config.AppConfig
	logger  *slog.Logger
	session *optd.Session
	stdout  io.Writer
	stderr  io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("optd", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "YAML configuration file")
	verbose := flags.Bool("verbose", false, "log at debug level")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *verbose {
		level = slog.LevelDebug
	}
	var logger *slog.Logger
	if cfg.Log.Format == "json" {
		logger = logging.NewStructuredLogger(stderr, level)
	} else {
		logger = logging.NewTextLogger(stderr, level)
	}

	app := &application{
		cfg:     cfg,
		logger:  logger,
		session: newSession(cfg, logger),
		stdout:  stdout,
		stderr:  stderr,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, cmdArgs := flags.Arg(0), flags.Args()[1:]
	if err := app.dispatch(ctx, cmd, cmdArgs); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		logging.LogError(logger, "command failed", err, slog.String("command", cmd))
		return 1
	}
	return 0
}

func newSession(cfg config.AppConfig, logger *slog.Logger) *optd.Session {
	opts := []optd.Option{
		optd.WithDataDir(cfg.Data.Dir),
		optd.WithLogger(logger),
		optd.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Data.DownloadTimeoutS) * time.Second,
		}),
	}
	if cfg.Data.PORURL != "" {
		opts = append(opts, optd.WithPORURL(cfg.Data.PORURL))
	}
	if cfg.Data.UNLCURL != "" {
		opts = append(opts, optd.WithUNLCURL(cfg.Data.UNLCURL))
	}
	return optd.NewSession(opts...)
}

func (app *application) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "fetch":
		return app.fetch(ctx, args)
	case "head":
		return app.head(args)
	case "por":
		return app.por(ctx, args)
	case "iata":
		return app.iata(ctx, args)
	case "unlocode":
		return app.unlocode(ctx, args)
	case "serving":
		return app.serving(ctx, args)
	case "export":
		return app.export(ctx, args)
	case "nearby":
		return app.nearby(ctx, args)
	case "search":
		return app.search(ctx, args)
	case "verify":
		return app.verify(ctx, args)
	case "serve":
		return app.serve(ctx, args)
	}
	fmt.Fprintf(app.stderr, "unknown command %q\n\n%s", cmd, usage)
	return errUsage
}

func (app *application) newFlagSet(name, argsUsage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(app.stderr)
	fs.Usage = func() {
		fmt.Fprintf(app.stderr, "Usage: optd %s %s\n", name, argsUsage)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses fs and checks that at least min positional arguments
// are left.
func parseArgs(fs *flag.FlagSet, args []string, min int) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < min {
		fs.Usage()
		return errUsage
	}
	return nil
}

func (app *application) printJSON(v any) error {
	enc := json.NewEncoder(app.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (app *application) fetch(ctx context.Context, args []string) error {
	fs := app.newFlagSet("fetch", "[-force]")
	force := fs.Bool("force", false, "download again even if local copies exist")
	if err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	if *force {
		if err := app.session.RemoveLocalCopies(); err != nil {
			return err
		}
	}
	if err := app.session.DownloadFilesIfNeeded(ctx); err != nil {
		return err
	}
	sizes, err := app.session.FileSizes()
	if err != nil {
		return err
	}
	for _, src := range app.session.DataSources() {
		fmt.Fprintf(app.stdout, "%s\t%s\t%d bytes\n", src.ID, src.Path, sizes[src.ID])
	}
	return nil
}

func (app *application) head(args []string) error {
	fs := app.newFlagSet("head", "[-n rows] [-unlc]")
	n := fs.Int("n", 10, "number of rows, header included")
	unlc := fs.Bool("unlc", false, "read the UN/LOCODE POR file instead of the main POR file")
	if err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	id := optd.DataSourcePOR
	if *unlc {
		id = optd.DataSourceUNLC
	}
	rows, err := optd.FileHead(app.session.LocalPath(id), *n)
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Fprintln(app.stdout, strings.Join(row, string(optd.Delimiter)))
	}
	return nil
}

func (app *application) por(ctx context.Context, args []string) error {
	fs := app.newFlagSet("por", "<geoname-id>")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	id, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid geoname id %q: %w", fs.Arg(0), err)
	}

	x, err := app.session.Index(ctx)
	if err != nil {
		return err
	}
	rec, ok := x.LookupByGeoID(id)
	if !ok {
		return fmt.Errorf("no POR with geoname id %d", id)
	}
	return app.printJSON(rec)
}

func (app *application) iata(ctx context.Context, args []string) error {
	fs := app.newFlagSet("iata", "<code>")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	code := strings.ToUpper(fs.Arg(0))

	x, err := app.session.Index(ctx)
	if err != nil {
		return err
	}
	recs := x.LookupByIATA(code)
	if len(recs) == 0 {
		return &optd.UnknownIATACodeError{Code: code}
	}
	return app.printJSON(recs)
}

func (app *application) unlocode(ctx context.Context, args []string) error {
	fs := app.newFlagSet("unlocode", "<code>")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	code := strings.ToUpper(fs.Arg(0))

	x, err := app.session.Index(ctx)
	if err != nil {
		return err
	}
	recs := x.LookupByUNLOCODE(code)
	if len(recs) == 0 {
		return fmt.Errorf("unknown UN/LOCODE %q", code)
	}
	return app.printJSON(recs)
}

// resolveAll resolves every code, stopping at the first failure.
func (app *application) resolveAll(ctx context.Context, codes []string) ([]optd.ServingResult, error) {
	results := make([]optd.ServingResult, 0, len(codes))
	for _, code := range codes {
		res, err := app.session.ResolveServingPoints(ctx, strings.ToUpper(code))
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (app *application) serving(ctx context.Context, args []string) error {
	fs := app.newFlagSet("serving", "<code>...")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	results, err := app.resolveAll(ctx, fs.Args())
	if err != nil {
		return err
	}
	return app.printJSON(results)
}

func (app *application) export(ctx context.Context, args []string) error {
	fs := app.newFlagSet("export", "-o file <code>...")
	out := fs.String("o", "-", "output file, - for standard output")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	results, err := app.resolveAll(ctx, fs.Args())
	if err != nil {
		return err
	}

	if *out == "-" {
		return optd.WriteServingResults(app.stdout, results)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *out, err)
	}
	if err := optd.WriteServingResults(f, results); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", *out, err)
	}
	app.logger.Info("serving points exported", slog.String("path", *out), slog.Int("codes", len(results)))
	return nil
}

func (app *application) nearby(ctx context.Context, args []string) error {
	fs := app.newFlagSet("nearby", "-lat x -lng y [-radius km] [-type t]")
	lat := fs.Float64("lat", 0, "latitude in degrees")
	lng := fs.Float64("lng", 0, "longitude in degrees")
	radius := fs.Float64("radius", 20, "search radius in km, at most 40")
	locType := fs.String("type", "", "airport, heliport, port, rail, bus, offline, city or transport")
	if err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	var filter func(string) bool
	if *locType != "" {
		f, ok := optd.LocationTypeFilter(*locType)
		if !ok {
			return fmt.Errorf("unknown location type %q", *locType)
		}
		filter = f
	}

	x, err := app.session.Index(ctx)
	if err != nil {
		return err
	}
	found := x.Nearby(*lat, *lng, *radius, filter)
	if found == nil {
		found = []optd.NearbyPOR{}
	}
	return app.printJSON(found)
}

func (app *application) search(ctx context.Context, args []string) error {
	fs := app.newFlagSet("search", "[-fuzzy n] [-limit n] <name>")
	fuzzy := fs.Int("fuzzy", 0, "maximum edit distance, 0 to 3")
	limit := fs.Int("limit", 20, "maximum number of results, 0 for all")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}

	x, err := app.session.Index(ctx)
	if err != nil {
		return err
	}
	recs := x.Search(strings.Join(fs.Args(), " "), optd.SearchOptions{FuzzyDistance: *fuzzy, Limit: *limit})
	if recs == nil {
		recs = []optd.PORRecord{}
	}
	return app.printJSON(recs)
}

func (app *application) verify(ctx context.Context, args []string) error {
	fs := app.newFlagSet("verify", "")
	if err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	x, err := app.session.Index(ctx)
	if err != nil {
		return err
	}
	st := x.Stats()
	fmt.Fprintf(app.stdout, "rows=%d geoname_ids=%d iata_codes=%d unlocodes=%d replaced=%d untyped=%d\n",
		st.Rows, st.GeonameIDs, st.IATACodes, st.UNLOCODEs, st.Replaced, st.Untyped)
	if err := x.Verify(); err != nil {
		fmt.Fprintln(app.stdout, err)
		return errors.New("index verification failed")
	}
	fmt.Fprintln(app.stdout, "OK")
	return nil
}

func (app *application) serve(ctx context.Context, args []string) error {
	fs := app.newFlagSet("serve", "")
	port := fs.Int("port", app.cfg.Server.Port, "API server port")
	if err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	// Indices are ready before the listener opens.
	if _, err := app.session.Index(ctx); err != nil {
		return err
	}

	api := restapi.NewRestAPI(app.session, app.logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
