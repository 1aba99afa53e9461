package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/delimtab/pkg/compression"
	"github.com/ajitpratap0/delimtab/pkg/config"
	"github.com/ajitpratap0/delimtab/pkg/errors"
	"github.com/ajitpratap0/delimtab/pkg/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(testutil.TestContext(t))
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "delimtab v"+version)
}

func TestLoadSummary(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", "a,b,c\n1,2,3\n4,x\n5,6,7,8\n")

	out, err := run(t, "load", "--kind", "int", "--log-level", "error", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Columns:         3")
	assert.Contains(t, out, "Rows:            3")
	assert.Contains(t, out, "Header:          a, b, c")
	assert.Contains(t, out, "Padded rows:     1")
	assert.Contains(t, out, "Truncated rows:  1")
	assert.Contains(t, out, "Coerced fields:  1")
	assert.Contains(t, out, "Kind:            int64")
}

func TestLoadCompressedSource(t *testing.T) {
	path := testutil.WriteCompressedFile(t, "data.csv.zst", "x;y\n1.5;2\n", compression.Zstd)

	out, err := run(t, "load", "-k", "float", "-d", ";", "--log-level", "error", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Rows:            1")
	assert.Contains(t, out, "Kind:            float64")
}

func TestLoadMissingSource(t *testing.T) {
	_, err := run(t, "load", "--log-level", "error", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSourceUnavailable))
}

func TestInvalidFlags(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", "a\n")

	_, err := run(t, "load", "--delimiter", "ab", path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = run(t, "load", "--kind", "decimal", path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestShowTable(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", "name,qty\napple,3\npear,5\n")

	out, err := run(t, "show", "--log-level", "error", path)
	require.NoError(t, err)
	for _, want := range []string{"name", "qty", "apple", "pear"} {
		assert.Contains(t, out, want)
	}
}

func TestShowRow(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", "a,b,c\n1,2,3\n4,5,6\n")

	out, err := run(t, "show", "--kind", "int", "--row", "1", "--fields", "-1", "--log-level", "error", path)
	require.NoError(t, err)
	assert.Equal(t, "4, 5\n", out)

	_, err = run(t, "show", "--row", "9", "--log-level", "error", path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndexOutOfRange))
}

func TestExportJSONToStdout(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", "a,b\n1,2\n")

	out, err := run(t, "export", "--kind", "int", "--format", "json", "--log-level", "error", path)
	require.NoError(t, err)

	var doc struct {
		Columns []string  `json:"columns"`
		Rows    [][]int64 `json:"rows"`
	}
	require.NoError(t, gojson.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"a", "b"}, doc.Columns)
	assert.Equal(t, [][]int64{{1, 2}}, doc.Rows)
}

func TestExportArrowToFile(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", "a,b\n1,2\n")
	target := filepath.Join(t.TempDir(), "out.arrow")

	_, err := run(t, "export", "-f", "arrow", "-o", target, "--log-level", "error", path)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("ARROW1")))
}

func TestExportSQLiteRequiresOutput(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", "a\n1\n")
	_, err := run(t, "export", "--format", "sqlite", "--log-level", "error", path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestResolveConfigLayers(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "delimtab.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("delimiter: \";\"\nkind: float\nsource: from-file.csv\n"), 0o600))
	t.Setenv("DELIMTAB_KIND", "int")

	v := newViper()
	cmd := newRootCmdWith(v)
	require.NoError(t, cmd.PersistentFlags().Set(flagConfig, cfgPath))

	cfg, err := resolveConfig(v, nil)
	require.NoError(t, err)
	assert.Equal(t, ";", cfg.Delimiter, "file overrides default")
	assert.Equal(t, config.KindInt, cfg.Kind, "environment overrides file")
	assert.Equal(t, "from-file.csv", cfg.Source)

	require.NoError(t, cmd.PersistentFlags().Set(flagKind, "text"))
	cfg, err = resolveConfig(v, []string{"arg.csv"})
	require.NoError(t, err)
	assert.Equal(t, config.KindText, cfg.Kind, "flags override environment")
	assert.Equal(t, "arg.csv", cfg.Source)
}
