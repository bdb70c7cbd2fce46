package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/inferdelta/pkg/errors"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/rf2"
)

const outputName = "sct2_Relationship_Delta_INT_20240131.txt"

type fixture struct {
	stated, inferred, output string
}

func writeSnapshot(t *testing.T, path string, rows ...rf2.Row) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := rf2.NewWriter(f)
	require.NoError(t, w.WriteHeader())
	for _, row := range rows {
		require.NoError(t, w.Write(row))
	}
	require.NoError(t, w.Flush())
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	fx := fixture{
		stated:   filepath.Join(dir, "stated.txt"),
		inferred: filepath.Join(dir, "inferred.txt"),
		output:   filepath.Join(dir, outputName),
	}
	writeSnapshot(t, fx.stated,
		graph.TestIsA("h0", 100, 90),
		graph.TestRow("s1", 100, 200, 50, 1),
	)
	writeSnapshot(t, fx.inferred,
		graph.TestIsA("h0", 100, 90),
		graph.TestIsA("h1", 201, 200),
		graph.TestRow("i1", 100, 201, 50, 1),
	)
	return fx
}

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, in io.Reader, args ...string) (string, error) {
	t.Helper()
	isolate(t)
	t.Setenv("INFERDELTA_LOG_OUTPUT", "discard")

	var out bytes.Buffer
	app, err := New("1.2.3", "abc", "2024-01-01", "test", WithIO(in, &out, io.Discard))
	require.NoError(t, err)

	err = app.Execute(context.Background(), args)
	return out.String(), err
}

func TestExecute_Reconcile(t *testing.T) {
	fx := newFixture(t)

	stdout, err := execute(t, nil, "--format", "json", fx.stated, fx.inferred, fx.output)
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "20240131", report["effective_time"])
	assert.EqualValues(t, 1, report["orphans"])

	data, err := os.ReadFile(fx.output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\r\n"), "\r\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "s1\t20240131\t0\t"), lines[1])
	assert.Contains(t, lines[2], "\t100\t201\t1\t50\t")
}

func TestExecute_AdditionalFile(t *testing.T) {
	fx := newFixture(t)
	additional := filepath.Join(filepath.Dir(fx.stated), "additional.txt")
	writeSnapshot(t, additional, graph.TestRow("a1", 300, 400, 50, 0))

	stdout, err := execute(t, nil, "--format", "yaml", "--identifiers", "keep", fx.stated, fx.inferred, additional, fx.output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "additional: 1")

	data, err := os.ReadFile(fx.output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a1\t20240131\t1\t")
}

func TestExecute_DryRun(t *testing.T) {
	fx := newFixture(t)

	stdout, err := execute(t, nil, "--dry-run", "--format", "table", fx.stated, fx.inferred, fx.output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Summary")

	_, err = os.Stat(fx.output)
	assert.True(t, os.IsNotExist(err), "dry run writes nothing")
}

func TestExecute_ConfigFileFlag(t *testing.T) {
	fx := newFixture(t)
	config := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(config, []byte("dry_run: true\nformat: json\n"), 0o600))

	t.Run("file applies", func(t *testing.T) {
		stdout, err := execute(t, nil, "--config", config, fx.stated, fx.inferred, fx.output)
		require.NoError(t, err)
		assert.True(t, json.Valid([]byte(stdout)))
		_, err = os.Stat(fx.output)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("flags win", func(t *testing.T) {
		_, err := execute(t, nil, "--config", config, "--dry-run=false", fx.stated, fx.inferred, fx.output)
		require.NoError(t, err)
		assert.FileExists(t, fx.output)
	})
}

func TestExecute_Interactive(t *testing.T) {
	fx := newFixture(t)

	stdout, err := execute(t, strings.NewReader("100\nquit\n"), "-i", "--dry-run", "--format", "table", fx.stated, fx.inferred, fx.output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stated 100")
	assert.Contains(t, stdout, "Inferred 100")
	assert.Contains(t, stdout, "Same Group Child")
}

func TestExecute_Errors(t *testing.T) {
	fx := newFixture(t)

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, err error)
	}{
		{
			name: "too few arguments",
			args: []string{fx.stated, fx.inferred},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsValidationError(err))
				assert.Contains(t, err.Error(), "args")
			},
		},
		{
			name: "too many arguments",
			args: []string{fx.stated, fx.inferred, "a", "b", fx.output},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsValidationError(err))
			},
		},
		{
			name: "no date in output name",
			args: []string{fx.stated, fx.inferred, filepath.Join(t.TempDir(), "delta.txt")},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errors.ErrNoEffectiveDate)
			},
		},
		{
			name: "bad format",
			args: []string{"--format", "csv", fx.stated, fx.inferred, fx.output},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsValidationError(err))
			},
		},
		{
			name: "bad identifiers",
			args: []string{"--identifiers", "serial", fx.stated, fx.inferred, fx.output},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsValidationError(err))
			},
		},
		{
			name: "missing stated file",
			args: []string{"--format", "json", filepath.Join(t.TempDir(), "absent.txt"), fx.inferred, fx.output},
			check: func(t *testing.T, err error) {
				var ioErr *errors.IOError
				assert.ErrorAs(t, err, &ioErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, nil, tt.args...)
			tt.check(t, err)
		})
	}
}

func TestExecute_Version(t *testing.T) {
	stdout, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "inferdelta version 1.2.3")
	assert.Contains(t, stdout, "commit: abc")

	stdout, err = execute(t, nil, "--version")
	require.NoError(t, err)
	assert.Equal(t, "inferdelta 1.2.3\n", stdout)
}

func TestInputsFromArgs(t *testing.T) {
	three := inputsFromArgs([]string{"s", "i", "o"})
	assert.Equal(t, "o", three.Output)
	assert.Empty(t, three.Additional)

	four := inputsFromArgs([]string{"s", "i", "a", "o"})
	assert.Equal(t, "a", four.Additional)
	assert.Equal(t, "o", four.Output)
}
