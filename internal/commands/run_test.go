package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/export"
	"github.com/cleared-dev/tally/internal/model"
)

func initProject(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runTally(t, append([]string{"init", dir, "--name", "Test Ledger"}, args...)...)
	require.NoError(t, err)
	return dir
}

func TestRun_Example(t *testing.T) {
	dir := initProject(t)

	out, err := runTally(t, "run", filepath.Join(dir, "scripts", "example.csv"),
		"--config", filepath.Join(dir, "tally.yaml"), "--verify")
	require.NoError(t, err, out)

	assert.Contains(t, out, "5 transfer -> failed: insufficient funds")
	assert.Contains(t, out, "6 transfer -> 750")
	assert.Contains(t, out, "9 run_scheduled_until -> 2")
	assert.Contains(t, out, "10 merge_accounts -> 610")
	assert.Contains(t, out, "12 top_k_by_outgoing -> [alice bob]")
	assert.Contains(t, out, "13 get_statement -> 1")
	assert.Contains(t, out, "audit: ok")
	assert.Contains(t, out, "run_id=")
}

func TestRun_SummaryWithScale(t *testing.T) {
	dir := initProject(t, "--scale", "2")

	out, err := runTally(t, "run", filepath.Join(dir, "scripts", "example.csv"),
		"--config", filepath.Join(dir, "tally.yaml"), "--summary")
	require.NoError(t, err, out)

	assert.Contains(t, out, "10 merge_accounts -> 6.10")
	assert.Contains(t, out, "== Test Ledger ==")
	assert.Contains(t, out, "pending: 0")
	assert.Contains(t, out, "top senders: alice, bob")
	assert.Regexp(t, `team\s+active\s+6\.10`, out)
	assert.Regexp(t, `alice\s+closed\s+4\.50`, out)
}

func TestRun_Export(t *testing.T) {
	dir := initProject(t)
	exportPath := filepath.Join(dir, "log.csv")

	out, err := runTally(t, "run", filepath.Join(dir, "scripts", "example.csv"),
		"--config", filepath.Join(dir, "tally.yaml"), "--export", exportPath)
	require.NoError(t, err, out)

	f, err := os.Open(exportPath)
	require.NoError(t, err)
	defer f.Close()

	recs, err := export.ReadRecords(f, 0)
	require.NoError(t, err)
	require.Len(t, recs, 4, "one transfer, two scheduled transfers, one merge")
	assert.Equal(t, model.Transfer{From: "alice", To: "bob", Amount: 250, Timestamp: 2}, recs[0])
	assert.Equal(t, model.Merge{A: "alice", B: "bob", Merged: "team", Timestamp: 20}, recs[3])
}

func TestRun_DefaultConfigWhenMissing(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "s.csv")
	require.NoError(t, os.WriteFile(scriptPath, []byte("create_account,A,5\nget_balance,A\n"), 0o644))

	t.Chdir(dir)

	out, err := runTally(t, "run", scriptPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "2 get_balance -> 5")
}

func TestRun_MissingExplicitConfig(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "s.csv")
	require.NoError(t, os.WriteFile(scriptPath, []byte("get_balance,A\n"), 0o644))

	_, err := runTally(t, "run", scriptPath, "--config", filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}

func TestRun_ParseError(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(scriptPath, []byte("create_account,A,5\nwithdraw,A,1\n"), 0o644))

	out, err := runTally(t, "run", scriptPath)
	require.Error(t, err)
	assert.Contains(t, out, "line 2: unknown operation")
}

func TestRun_DebugLogsRejections(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "s.csv")
	require.NoError(t, os.WriteFile(scriptPath, []byte("create_account,A,5\ndeposit,A,0,1\n"), 0o644))

	out, err := runTally(t, "run", scriptPath, "--log-level", "debug")
	require.NoError(t, err, out)
	assert.Contains(t, out, "ledger operation rejected")
	assert.Contains(t, out, "op=deposit")
}
