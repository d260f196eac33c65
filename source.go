package optd

import (
	"compress/bzip2"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// Delimiter is the field separator of the OPTD data files.
const Delimiter = '^'

// RecordSource yields raw POR rows in file order. Next returns io.EOF once
// the source is exhausted.
type RecordSource interface {
	Next() (*RawPOR, error)
}

// csvSource decodes a '^'-delimited OPTD file with a header row, one row
// per call to Next. The header is read on the first call.
type csvSource struct {
	r      *csv.Reader
	um     *gocsv.Unmarshaller
	header error
}

// NewCSVSource returns a RecordSource reading an OPTD file from r. A
// stream without a header row fails with a *DataSourceError wrapping
// gocsv.ErrEmptyCSVFile; a header with no data rows yields no records.
func NewCSVSource(r io.Reader) RecordSource {
	return &csvSource{r: newOPTDReader(r)}
}

func newOPTDReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.LazyQuotes = true
	return cr
}

func (s *csvSource) Next() (*RawPOR, error) {
	if s.um == nil {
		if s.header != nil {
			return nil, s.header
		}
		um, err := gocsv.NewUnmarshaller(s.r, &RawPOR{})
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = gocsv.ErrEmptyCSVFile
			}
			s.header = &DataSourceError{Err: fmt.Errorf("reading OPTD header: %w", err)}
			return nil, s.header
		}
		s.um = um
	}

	v, err := s.um.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("decoding OPTD row: %w", err)
	}
	return v.(*RawPOR), nil
}

type sliceSource struct {
	rows []RawPOR
	pos  int
}

// NewSliceSource returns a RecordSource over in-memory rows.
func NewSliceSource(rows []RawPOR) RecordSource {
	return &sliceSource{rows: rows}
}

func (s *sliceSource) Next() (*RawPOR, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := &s.rows[s.pos]
	s.pos++
	return row, nil
}

// FileSource is a RecordSource backed by a local file. Close releases the
// file.
type FileSource struct {
	RecordSource
	close func() error
}

// Close closes the underlying file.
func (f *FileSource) Close() error {
	return f.close()
}

// OpenCSVFile opens a local OPTD file. Files ending in .bz2 or .gz are
// decompressed on the fly, and a missing path falls back to path+".bz2".
func OpenCSVFile(path string) (*FileSource, error) {
	r, closeFn, err := openOptionallyCompressedFile(path)
	if err != nil {
		return nil, err
	}
	return &FileSource{RecordSource: NewCSVSource(r), close: closeFn}, nil
}

func openOptionallyCompressedFile(path string) (io.Reader, func() error, error) {
	fh, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) || strings.HasSuffix(path, ".bz2") {
			return nil, nil, fmt.Errorf("opening %s: %w", path, err)
		}
		bzPath := path + ".bz2"
		fh, err = os.Open(bzPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening %s: %w", path, err)
		}
		path = bzPath
	}

	switch {
	case strings.HasSuffix(path, ".bz2"):
		return bzip2.NewReader(fh), fh.Close, nil
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, nil, fmt.Errorf("creating gzip reader for %s: %w", path, err)
		}
		return gz, func() error {
			gz.Close()
			return fh.Close()
		}, nil
	default:
		return fh, fh.Close, nil
	}
}
