package dataset

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"sort"
)

// SplitFile reads a raw CSV file and writes stratified train/test splits.
// The raw label column is renamed to target in the outputs when it differs
// (public datasets often name it "species" or "class"). String labels are
// left as-is; encoding happens at load time so both splits share codes.
func SplitFile(rawPath, trainPath, testPath string, testSize float64, seed int64, target string) error {
	if testSize <= 0 || testSize >= 1 {
		return fmt.Errorf("split: test size %v outside (0, 1)", testSize)
	}

	headers, records, err := readCSV(rawPath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("split: %s has no data rows", rawPath)
	}

	targetIdx, err := findLabelColumn(headers, target)
	if err != nil {
		return fmt.Errorf("split: %s: %w", rawPath, err)
	}
	headers[targetIdx] = target

	// Group row indices by label so each class splits at the same ratio.
	byLabel := map[string][]int{}
	for i, rec := range records {
		byLabel[rec[targetIdx]] = append(byLabel[rec[targetIdx]], i)
	}
	labels := make([]string, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewSource(seed))
	var trainRows, testRows []int
	for _, l := range labels {
		idx := byLabel[l]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		n := int(float64(len(idx)) * testSize)
		if n == 0 && len(idx) > 1 {
			n = 1
		}
		testRows = append(testRows, idx[:n]...)
		trainRows = append(trainRows, idx[n:]...)
	}
	sort.Ints(trainRows)
	sort.Ints(testRows)

	if err := writeCSV(trainPath, headers, records, trainRows); err != nil {
		return err
	}
	return writeCSV(testPath, headers, records, testRows)
}

// findLabelColumn locates the label column: the target name itself, or one
// of the conventional names raw datasets use.
func findLabelColumn(headers []string, target string) (int, error) {
	candidates := []string{target, "species", "class", "label"}
	for _, want := range candidates {
		for i, h := range headers {
			if h == want {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("no label column (looked for %v)", candidates)
}

func writeCSV(path string, headers []string, records [][]string, rows []int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("split: create %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("split: write %s: %w", path, err)
	}
	for _, i := range rows {
		if err := w.Write(records[i]); err != nil {
			return fmt.Errorf("split: write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("split: write %s: %w", path, err)
	}
	return f.Close()
}
