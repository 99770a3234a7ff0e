package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/threads"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseScenarios(t *testing.T) {
	scenarios, err := parseScenarios([]byte(`
scenarios:
  - name: many
    kind: counter
    threads: 100
    iterations: 10
    mutex_id: 42
  - kind: handoff
    rounds: 5
    mutex_id: 43
    cond_id: 7
  - kind: contention
    hold: 15ms
`))
	require.NoError(t, err)
	require.Len(t, scenarios, 3)

	assert.Equal(t, Scenario{Name: "many", Kind: KindCounter, Threads: 100, Iterations: 10, Rounds: 10, MutexID: 42, Hold: 10 * time.Millisecond}, scenarios[0])
	assert.Equal(t, "handoff", scenarios[1].Name)
	assert.Equal(t, int64(7), scenarios[1].CondID)
	assert.Equal(t, 15*time.Millisecond, scenarios[2].Hold)
}

func TestParseScenariosInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":        "scenarios: []\n",
		"unknown kind": "scenarios:\n  - kind: juggle\n",
		"negative":     "scenarios:\n  - kind: counter\n    threads: -1\n",
		"malformed":    "scenarios: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseScenarios([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestRunScenarios(t *testing.T) {
	for _, s := range []Scenario{
		{Name: "counter-1", Kind: KindCounter, Threads: 1, Iterations: 100, MutexID: 9001},
		{Name: "counter-2", Kind: KindCounter, Threads: 2, Iterations: 100, MutexID: 9001},
		{Name: "counter-100", Kind: KindCounter, Threads: 100, Iterations: 10, MutexID: 9001},
		{Name: "handoff", Kind: KindHandoff, Rounds: 50, MutexID: 9002, CondID: 9002},
		{Name: "contention", Kind: KindContention, MutexID: 9003, Hold: 5 * time.Millisecond},
	} {
		t.Run(s.Name, func(t *testing.T) {
			r := runScenario(context.Background(), s)
			require.NoError(t, r.Err)
			assert.NotEmpty(t, r.Detail)
			require.NoError(t, leakCheck())
		})
	}
}

func TestLeakCheck(t *testing.T) {
	require.NoError(t, leakCheck())

	m, err := threads.NewMutexWithID(9100)
	require.NoError(t, err)
	err = leakCheck()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaked mutex 9100")

	require.NoError(t, m.Free())
	require.NoError(t, leakCheck())
}

func TestRunBuiltins(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "native:")
	assert.Contains(t, out, "counter=8000")
	assert.NotContains(t, out, "FAIL")
}

func TestRunParallelFromFiles(t *testing.T) {
	cfg := writeFile(t, "threads.yaml", "max_threads: 16\nlog_level: error\n")
	scenarios := writeFile(t, "scenarios.yaml", `
scenarios:
  - {name: a, kind: counter, threads: 4, iterations: 50, mutex_id: 9201}
  - {name: b, kind: handoff, rounds: 20, mutex_id: 9202, cond_id: 9202}
  - {name: c, kind: contention, mutex_id: 9203, hold: 5ms}
`)
	t.Cleanup(func() { _ = threads.Configure(threads.DefaultConfig()) })

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", cfg, "-scenarios", scenarios, "-parallel"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "counter=200")
	assert.Contains(t, stdout.String(), "rounds=20")
}

func TestRunFailures(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"-bogus"}, &stdout, &stderr))

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	assert.Equal(t, 1, run(context.Background(), []string{"-scenarios", missing}, &stdout, &stderr))

	bad := writeFile(t, "bad.yaml", "log_level: loud\n")
	assert.Equal(t, 1, run(context.Background(), []string{"-config", bad}, &stdout, &stderr))
	t.Cleanup(func() { _ = threads.Configure(threads.DefaultConfig()) })
}

func TestResultString(t *testing.T) {
	r := Result{Name: "x", Kind: KindCounter, Detail: "counter=1", Elapsed: time.Millisecond}
	assert.Contains(t, r.String(), "ok")
	assert.Contains(t, r.String(), "counter=1")
}
