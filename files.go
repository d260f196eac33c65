package optd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// FileHeader returns the first line of an OPTD file, trimmed.
func FileHeader(path string) (string, error) {
	r, closeFn, err := openOptionallyCompressedFile(path)
	if err != nil {
		return "", err
	}
	defer closeFn()

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading header of %s: %w", path, err)
	}
	return strings.TrimSpace(line), nil
}

// FileHead returns up to n rows of an OPTD file, header included, each
// split on the '^' delimiter.
func FileHead(path string, n int) ([][]string, error) {
	r, closeFn, err := openOptionallyCompressedFile(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	cr := newOPTDReader(r)
	cr.FieldsPerRecord = -1

	var rows [][]string
	for len(rows) < n {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
