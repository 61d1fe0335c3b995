package csvstore

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"

	"telescrape/internal/core/tabular"
	perr "telescrape/internal/platform/errors"
)

// ReadTable loads one CSV file into an in-memory table; the first record
// is treated as the header
func ReadTable(path string) (tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return tabular.Table{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // raw files may carry short rows; normalization pads

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return tabular.Table{}, perr.NoDataToMergef("%s is empty", path)
		}
		return tabular.Table{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "read header of %s", path)
	}

	t := tabular.Table{Header: header}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return tabular.Table{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "read %s", path)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// ReadGlob loads every file matching pattern, sorted by name for a
// deterministic merge order. It returns the tables alongside the paths
// that contributed them
func ReadGlob(pattern string) ([]tabular.Table, []string, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "bad glob %q", pattern)
	}
	sort.Strings(paths)

	var (
		out  []tabular.Table
		read []string
	)
	for _, p := range paths {
		t, err := ReadTable(p)
		if err != nil {
			if perr.IsCode(err, perr.ErrorCodeNoDataToMerge) {
				continue // empty file contributes nothing
			}
			return nil, nil, err
		}
		out = append(out, t)
		read = append(read, p)
	}
	return out, read, nil
}
