package dataset

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFileStratified(t *testing.T) {
	dir := t.TempDir()

	var sb strings.Builder
	sb.WriteString("x1,x2,species\n")
	for i := 0; i < 10; i++ {
		sb.WriteString("1.0,2.0,setosa\n")
	}
	for i := 0; i < 10; i++ {
		sb.WriteString("3.0,4.0,versicolor\n")
	}
	raw := writeFile(t, dir, "raw.csv", sb.String())

	trainPath := filepath.Join(dir, "train.csv")
	testPath := filepath.Join(dir, "test.csv")
	require.NoError(t, SplitFile(raw, trainPath, testPath, 0.2, 42, "target"))

	// The raw "species" column is renamed so downstream loads see "target".
	train, err := LoadHoldout(trainPath, "target")
	require.NoError(t, err)
	test, err := LoadHoldout(testPath, "target")
	require.NoError(t, err)

	assert.Len(t, train.Features, 16)
	assert.Len(t, test.Features, 4)

	// Each class contributes 20% of its rows to the test split.
	counts := map[int]int{}
	for _, y := range test.Labels {
		counts[y]++
	}
	assert.Equal(t, map[int]int{0: 2, 1: 2}, counts)
}

func TestSplitFileDeterministic(t *testing.T) {
	dir := t.TempDir()

	var sb strings.Builder
	sb.WriteString("x1,target\n")
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			sb.WriteString("1.0,a\n")
		} else {
			sb.WriteString("2.0,b\n")
		}
	}
	raw := writeFile(t, dir, "raw.csv", sb.String())

	run := func(suffix string) (*Holdout, *Holdout) {
		trainPath := filepath.Join(dir, "train"+suffix+".csv")
		testPath := filepath.Join(dir, "test"+suffix+".csv")
		require.NoError(t, SplitFile(raw, trainPath, testPath, 0.25, 7, "target"))
		train, err := LoadHoldout(trainPath, "target")
		require.NoError(t, err)
		test, err := LoadHoldout(testPath, "target")
		require.NoError(t, err)
		return train, test
	}

	train1, test1 := run("1")
	train2, test2 := run("2")
	assert.Equal(t, train1.Features, train2.Features)
	assert.Equal(t, test1.Features, test2.Features)
}

func TestSplitFileBadTestSize(t *testing.T) {
	raw := writeFile(t, t.TempDir(), "raw.csv", "x,target\n1,a\n")
	err := SplitFile(raw, "train.csv", "test.csv", 1.5, 1, "target")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test size")
}

func TestSplitFileNoLabelColumn(t *testing.T) {
	dir := t.TempDir()
	raw := writeFile(t, dir, "raw.csv", "a,b\n1,2\n")
	err := SplitFile(raw, filepath.Join(dir, "train.csv"), filepath.Join(dir, "test.csv"), 0.2, 1, "target")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no label column")
}
