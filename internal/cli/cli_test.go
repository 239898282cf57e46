package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spantable/internal/config"
	"spantable/internal/tui"
)

const page = `<html><body>
<table id="scores">
<thead><tr><th>name</th><th>score</th></tr></thead>
<tbody><tr><td rowspan="2">ann</td><td>1</td></tr><tr><td>2</td></tr></tbody>
</table>
</body></html>`

// run executes the root command with an isolated config file.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "spantable.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format: text\n"), 0600))

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(page))
	cmd.SetArgs(append([]string{"--config=" + cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writePage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0600))
	return path
}

func exitCode(err error) int {
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if err != nil {
		return 1
	}
	return 0
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "spantable v"+Version)
}

func TestDumpCommand(t *testing.T) {
	path := writePage(t)

	out, err := run(t, "dump", "--format", "csv", path)
	require.NoError(t, err)
	assert.Equal(t, "name,score\nann,1\nann,2\n", out)

	out, err = run(t, "dump", "--section", "body", "--format", "json", path)
	require.NoError(t, err)
	var body [][]*string
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "ann", *body[1][0])
}

func TestDumpCommand_Stdin(t *testing.T) {
	out, err := run(t, "dump", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "ann\t2")
}

func TestDumpCommand_UsageErrors(t *testing.T) {
	_, err := run(t, "dump")
	assert.Equal(t, 2, exitCode(err))

	_, err = run(t, "dump", "--bogus", "x.html")
	assert.Equal(t, 2, exitCode(err))

	_, err = run(t, "dump", "--format", "nope", writePage(t))
	assert.Equal(t, 2, exitCode(err))
}

func TestDumpCommand_MissingTable(t *testing.T) {
	_, err := run(t, "dump", "--table", "3", writePage(t))
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}

func TestInspectCommand(t *testing.T) {
	path := writePage(t)

	out, err := run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Tables found: 1")
	assert.Contains(t, out, "scores")

	out, err = run(t, "inspect", "--json", path)
	require.NoError(t, err)
	var rep struct {
		Tables []struct {
			Label string `json:"label"`
			Depth int    `json:"depth"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Tables, 1)
	assert.Equal(t, "scores", rep.Tables[0].Label)
	assert.Equal(t, 3, rep.Tables[0].Depth)
}

func TestTestCommand_Passes(t *testing.T) {
	out, err := run(t, "test", filepath.Join("..", "fixture", "testdata"))
	require.NoError(t, err)
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "01-simple")
	assert.Contains(t, out, "1 skipped")
}

func TestTestCommand_PrefixAndJSON(t *testing.T) {
	out, err := run(t, "test", "--prefix", "0", "--json", filepath.Join("..", "fixture", "testdata"))
	require.NoError(t, err)
	var rep struct {
		Total  int      `json:"total"`
		Passed []string `json:"passed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 4, rep.Total)
	assert.Len(t, rep.Passed, 4)
}

func TestTestCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	fixture := `<table><tr><td>a</td></tr></table>
<pre>{"dims": [1, 2], "rows": [["a", null]]}</pre>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.html"), []byte(fixture), 0600))

	out, err := run(t, "test", dir)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "frame.dims - mismatch")
}

func TestTestCommand_NoFixtures(t *testing.T) {
	_, err := run(t, "test", t.TempDir())
	assert.Error(t, err)
}

func TestInitConfigCommand(t *testing.T) {
	path := writePage(t)
	orig := runWizard
	t.Cleanup(func() { runWizard = orig })

	var seen config.Config
	runWizard = func(_ io.Writer, base config.Config) (tui.Result, error) {
		seen = base
		cfg := base
		cfg.Source = path
		cfg.Format = "csv"
		return tui.Result{Config: cfg, RunNow: true}, nil
	}

	out, err := run(t, "init-config")
	require.NoError(t, err)
	assert.Equal(t, "text", seen.Format)
	assert.Contains(t, out, "name,score")
}

func TestExecute_ExitCodes(t *testing.T) {
	code, err := Execute(context.Background(), []string{"dump", "--no-such-flag"})
	assert.Equal(t, 2, code)
	assert.Error(t, err)

	code, err = Execute(context.Background(), []string{"version"})
	assert.Equal(t, 0, code)
	assert.NoError(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"dump", "inspect", "harvest", "test", "init-config", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	dump, _, _ := root.Find([]string{"dump"})
	for _, flag := range []string{"selector", "exclude", "table", "all", "format", "section", "null", "out", "mode", "timeout", "wait-for", "cache", "rate-limit", "proxy"} {
		assert.NotNil(t, dump.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestHarvestCommand_RequiresOut(t *testing.T) {
	_, err := run(t, "harvest", "https://example.com/")
	assert.Equal(t, 2, exitCode(err))
}
