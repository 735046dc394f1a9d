package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadHoldoutStringLabels(t *testing.T) {
	path := writeFile(t, t.TempDir(), "test.csv",
		"sepal_len,sepal_wid,target\n"+
			"5.1,3.5,setosa\n"+
			"6.2,2.9,versicolor\n"+
			"5.9,3.0,virginica\n"+
			"4.8,3.1,setosa\n")

	h, err := LoadHoldout(path, "target")
	require.NoError(t, err)

	assert.Equal(t, []string{"sepal_len", "sepal_wid"}, h.FeatureNames)
	assert.Equal(t, [][]float64{{5.1, 3.5}, {6.2, 2.9}, {5.9, 3.0}, {4.8, 3.1}}, h.Features)
	// String labels map to sorted-order codes.
	assert.Equal(t, []int{0, 1, 2, 0}, h.Labels)
	assert.Equal(t, 3, h.Classes())
}

func TestLoadHoldoutNumericLabels(t *testing.T) {
	path := writeFile(t, t.TempDir(), "test.csv",
		"x1,x2,target\n1.0,2.0,1\n3.0,4.0,0\n")

	h, err := LoadHoldout(path, "target")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, h.Labels)
}

func TestLoadHoldoutErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{
			name:    "missing file",
			path:    filepath.Join(dir, "nope.csv"),
			wantErr: "open",
		},
		{
			name:    "missing target column",
			path:    writeFile(t, dir, "notarget.csv", "a,b\n1,2\n"),
			wantErr: "no \"target\" column",
		},
		{
			name:    "no data rows",
			path:    writeFile(t, dir, "headeronly.csv", "a,target\n"),
			wantErr: "no data rows",
		},
		{
			name:    "non-numeric feature",
			path:    writeFile(t, dir, "badfeature.csv", "a,target\noops,1\n"),
			wantErr: "row 2",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadHoldout(test.path, "target")
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.wantErr)
		})
	}
}
