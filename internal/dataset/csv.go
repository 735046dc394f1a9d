// Package dataset reads and prepares the tabular holdout data used to
// score models.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Holdout is a labeled evaluation set: numeric feature rows plus integer
// class labels, consumed read-only.
type Holdout struct {
	Features     [][]float64
	Labels       []int
	FeatureNames []string
}

// Classes returns the number of distinct labels present in the holdout.
func (h *Holdout) Classes() int {
	seen := map[int]struct{}{}
	for _, y := range h.Labels {
		seen[y] = struct{}{}
	}
	return len(seen)
}

// LoadHoldout reads a CSV file with a header row, treating the target
// column as the label and every other column as a numeric feature. String
// labels are encoded as categorical codes in sorted order, matching how
// the preparation stage encodes them.
func LoadHoldout(path, target string) (*Holdout, error) {
	headers, records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	targetIdx := -1
	for i, h := range headers {
		if h == target {
			targetIdx = i
		}
	}
	if targetIdx < 0 {
		return nil, fmt.Errorf("csv: %s has no %q column", path, target)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s has no data rows", path)
	}

	names := make([]string, 0, len(headers)-1)
	for i, h := range headers {
		if i != targetIdx {
			names = append(names, h)
		}
	}

	// First pass: collect raw labels so string labels get stable codes.
	rawLabels := make([]string, len(records))
	for i, rec := range records {
		rawLabels[i] = rec[targetIdx]
	}
	codes, err := encodeLabels(rawLabels)
	if err != nil {
		return nil, fmt.Errorf("csv: %s: %w", path, err)
	}

	features := make([][]float64, len(records))
	for i, rec := range records {
		row := make([]float64, 0, len(rec)-1)
		for j, cell := range rec {
			if j == targetIdx {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("csv: row %d column %q: %w", i+2, headers[j], err)
			}
			row = append(row, v)
		}
		features[i] = row
	}

	return &Holdout{Features: features, Labels: codes, FeatureNames: names}, nil
}

// encodeLabels converts raw label strings to integer codes. Numeric labels
// are used as-is; anything else is assigned its index in the sorted set of
// distinct values.
func encodeLabels(raw []string) ([]int, error) {
	allNumeric := true
	for _, s := range raw {
		if _, err := strconv.Atoi(s); err != nil {
			allNumeric = false
			break
		}
	}

	codes := make([]int, len(raw))
	if allNumeric {
		for i, s := range raw {
			codes[i], _ = strconv.Atoi(s)
		}
		return codes, nil
	}

	distinct := map[string]int{}
	for _, s := range raw {
		distinct[s] = 0
	}
	ordered := make([]string, 0, len(distinct))
	for s := range distinct {
		ordered = append(ordered, s)
	}
	sort.Strings(ordered)
	for i, s := range ordered {
		distinct[s] = i
	}
	for i, s := range raw {
		codes[i] = distinct[s]
	}
	return codes, nil
}

// readCSV reads a CSV file, returning the header row and data records.
// Every record must have the same column count as the header.
func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}
	return all[0], all[1:], nil
}
