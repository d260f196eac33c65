package optd

import "fmt"

// DataSourceError is returned when the record stream cannot be read or a
// row lacks a usable geoname_id. A build that fails with it leaves no
// index behind.
type DataSourceError struct {
	Row   int    // 1-based data row number, 0 when the failure is not row specific
	Field string // offending field, empty for read failures
	Err   error
}

func (e *DataSourceError) Error() string {
	switch {
	case e.Row > 0 && e.Field != "":
		return fmt.Sprintf("optd: data source row %d: field %s: %v", e.Row, e.Field, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("optd: data source row %d: %v", e.Row, e.Err)
	default:
		return fmt.Sprintf("optd: data source: %v", e.Err)
	}
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// UnknownIATACodeError is returned when a queried IATA code, or one listed
// in a city's tvl_por_list, is absent from the by-IATA index.
type UnknownIATACodeError struct {
	Code         string
	ReferencedBy string // city code whose tvl_por_list holds Code, if any
}

func (e *UnknownIATACodeError) Error() string {
	if e.ReferencedBy != "" {
		return fmt.Sprintf("optd: unknown IATA code %q (serving %s)", e.Code, e.ReferencedBy)
	}
	return fmt.Sprintf("optd: unknown IATA code %q", e.Code)
}
