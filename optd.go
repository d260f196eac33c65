// Package optd gives offline access to the OpenTravelData (OPTD) points of
// reference (POR): airports, cities, stations and ports keyed by IATA code,
// UN/LOCODE or Geonames id.
//
// A Session fetches the OPTD POR file once, indexes it in memory and
// answers lookups and serving-point resolutions:
//
//	s := optd.NewSession(optd.WithDataDir("./optd-data"))
//	res, err := s.ResolveServingPoints(ctx, "IEV")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.GeonameIDs())
package optd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opentraveldata/optd-go/internal/logging"
)

// DataSourceID identifies an OPTD data file.
type DataSourceID string

const (
	DataSourcePOR  DataSourceID = "optdPORPublic"
	DataSourceUNLC DataSourceID = "optdPORUNLC"
)

// Default download locations of the OPTD files.
const (
	DefaultPORURL  = "https://raw.githubusercontent.com/opentraveldata/opentraveldata/master/opentraveldata/optd_por_public.csv"
	DefaultUNLCURL = "https://raw.githubusercontent.com/opentraveldata/opentraveldata/master/opentraveldata/optd_por_unlc.csv"
)

// DataSource describes one OPTD data file.
type DataSource struct {
	URL  string       // Download URL
	Path string       // Local file path
	ID   DataSourceID // Identifier of the file
}

// dataSetFiles are the local file names of the OPTD files, relative to
// the data directory.
var dataSetFiles = map[DataSourceID]string{
	DataSourcePOR:  "optd_por_public.csv",
	DataSourceUNLC: "optd_por_unlc.csv",
}

// Config contains the settings of a Session.
type Config struct {
	DataDir    string       // Directory for the downloaded files (default: "./optd-data")
	PORURL     string       // URL of the POR file
	UNLCURL    string       // URL of the UN/LOCODE POR file
	HTTPClient *http.Client // Client used for downloads
	Logger     *slog.Logger // Destination of operational logs
}

// Option is a functional option for configuring a Session.
type Option func(*Config)

// WithDataDir sets the directory for the downloaded OPTD files.
func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.DataDir = dir
	}
}

// WithPORURL sets the download URL of the POR file.
func WithPORURL(url string) Option {
	return func(c *Config) {
		c.PORURL = url
	}
}

// WithUNLCURL sets the download URL of the UN/LOCODE POR file.
func WithUNLCURL(url string) Option {
	return func(c *Config) {
		c.UNLCURL = url
	}
}

// WithHTTPClient sets the client used to download the OPTD files.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithLogger sets the logger of the session.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// httpClient is the default download client. The POR file is ~45MB, hence
// the generous timeout.
var httpClient = &http.Client{
	Timeout: 5 * time.Minute,
}

func defaultConfig() *Config {
	return &Config{
		DataDir:    "./optd-data",
		PORURL:     DefaultPORURL,
		UNLCURL:    DefaultUNLCURL,
		HTTPClient: httpClient,
		Logger:     slog.Default(),
	}
}

// Session owns one set of OPTD indices. The indices are built at most
// once, either explicitly with BuildIndices or on first use from the local
// copy of the POR file, and are read-only afterwards. A Session is safe
// for concurrent use.
type Session struct {
	config     *Config
	buildMu    sync.Mutex
	index      atomic.Pointer[Index]
	downloadMu sync.Mutex
}

// NewSession returns a Session with no index built yet.
func NewSession(opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = httpClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Session{config: cfg}
}

// DataSources returns the OPTD files handled by the session.
func (s *Session) DataSources() []DataSource {
	return []DataSource{
		{URL: s.config.PORURL, Path: s.LocalPath(DataSourcePOR), ID: DataSourcePOR},
		{URL: s.config.UNLCURL, Path: s.LocalPath(DataSourceUNLC), ID: DataSourceUNLC},
	}
}

// LocalPath returns where the given file is stored locally.
func (s *Session) LocalPath(id DataSourceID) string {
	return filepath.Join(s.config.DataDir, dataSetFiles[id])
}

// URL returns the download URL of the given file.
func (s *Session) URL(id DataSourceID) string {
	switch id {
	case DataSourcePOR:
		return s.config.PORURL
	case DataSourceUNLC:
		return s.config.UNLCURL
	}
	return ""
}

// Built reports whether the session indices are available.
func (s *Session) Built() bool {
	return s.index.Load() != nil
}

// BuildIndices builds the session indices from src. Once a build has
// succeeded, further calls return nil without reading src. A failed build
// leaves the session unbuilt.
func (s *Session) BuildIndices(src RecordSource) error {
	if s.Built() {
		return nil
	}
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	if s.Built() {
		return nil
	}
	return s.buildLocked(src)
}

func (s *Session) buildLocked(src RecordSource) error {
	start := time.Now()
	x, err := BuildIndex(src)
	if err != nil {
		logging.LogError(s.config.Logger, "failed to build OPTD indices", err,
			slog.String("component", "index_builder"))
		return err
	}
	s.index.Store(x)

	st := x.Stats()
	logging.LogOperation(s.config.Logger, "optd_indices_built",
		slog.Int("rows", st.Rows),
		slog.Int("geoname_ids", st.GeonameIDs),
		slog.Int("iata_codes", st.IATACodes),
		slog.Int("unlocodes", st.UNLOCODEs),
		slog.Duration("duration", time.Since(start)))
	if st.Replaced > 0 {
		s.config.Logger.Warn("OPTD rows replaced in the IATA index",
			slog.Int("replaced", st.Replaced))
	}
	if st.Untyped > 0 {
		s.config.Logger.Debug("OPTD rows without location type left out of the IATA index",
			slog.Int("untyped", st.Untyped))
	}
	return nil
}

// Index returns the session indices, building them from the local copy of
// the POR file on first use. The file is downloaded first if needed.
func (s *Session) Index(ctx context.Context) (*Index, error) {
	if x := s.index.Load(); x != nil {
		return x, nil
	}
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	if x := s.index.Load(); x != nil {
		return x, nil
	}

	path := s.LocalPath(DataSourcePOR)
	if err := s.EnsureLocalCopy(ctx, s.config.PORURL, path); err != nil {
		return nil, fmt.Errorf("fetching POR file: %w", err)
	}
	src, err := OpenCSVFile(path)
	if err != nil {
		return nil, &DataSourceError{Err: err}
	}
	defer logging.SafeCloseWithLogging(src, s.config.Logger, "close_por_file")

	if err := s.buildLocked(src); err != nil {
		return nil, err
	}
	return s.index.Load(), nil
}

// ResolveServingPoints resolves the POR serving iataCode, building the
// indices first if needed. See Index.ResolveServingPoints.
func (s *Session) ResolveServingPoints(ctx context.Context, iataCode string) (ServingResult, error) {
	x, err := s.Index(ctx)
	if err != nil {
		return ServingResult{}, err
	}
	return x.ResolveServingPoints(iataCode)
}
