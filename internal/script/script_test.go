package script

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/ledger"
)

func values(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		if r.Err != nil {
			out[i] = "failed"
			continue
		}
		out[i] = r.Value
	}
	return out
}

func TestParse(t *testing.T) {
	src := `# comment
create_account,A,1000

transfer, A, B, 250, 7
top_k_by_outgoing,0,10,3
`
	ops, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, Op{Line: 2, Kind: OpCreateAccount, IDs: []string{"A"}, Nums: []int64{1000}}, ops[0])
	assert.Equal(t, Op{Line: 4, Kind: OpTransfer, IDs: []string{"A", "B"}, Nums: []int64{250, 7}}, ops[1])
	assert.Equal(t, OpTopKByOutgoing, ops[2].Kind)
	assert.Nil(t, ops[2].IDs)
	assert.Equal(t, "transfer,A,B,250,7", ops[1].String())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown op", "withdraw,A,5\n", "line 1: unknown operation"},
		{"too few args", "create_account,A,1\ndeposit,A,5\n", "line 2: deposit expects 3 arguments, got 2"},
		{"too many args", "get_balance,A,B\n", "get_balance expects 1 arguments, got 2"},
		{"bad integer", "run_scheduled_until,soon\n", `parsing integer "soon"`},
		{"bad schedule id", "run_scheduled_until,5\ncancel_scheduled,transfer-9\n", `line 2: cancel_scheduled: invalid schedule ID format: "transfer-9"`},
		{"negative schedule id", "cancel_scheduled,s-1\n", `line 1: cancel_scheduled: negative sequence in schedule ID "s-1"`},
	}
	for _, tt := range tests {
		_, err := Parse(strings.NewReader(tt.src))
		require.Error(t, err, tt.name)
		assert.Contains(t, err.Error(), tt.want, tt.name)
	}
}

func TestExecute_TransferScenario(t *testing.T) {
	ops, err := Parse(strings.NewReader(`create_account,A,1000
create_account,B,10
transfer,B,A,1000,1
transfer,A,B,250,2
get_balance,A
get_balance,B
`))
	require.NoError(t, err)

	results := Execute(ledger.New(), ops, 0)
	assert.Equal(t, []string{"ok", "ok", "failed", "750", "750", "260"}, values(results))
	assert.ErrorIs(t, results[2].Err, ledger.ErrInsufficientFunds)
	assert.Equal(t, "3 transfer -> failed: insufficient funds: B has 10, needs 1000", results[2].String())
	assert.Equal(t, "4 transfer -> 750", results[3].String())
}

func TestExecute_ScheduleScenario(t *testing.T) {
	ops, err := Parse(strings.NewReader(`create_account,A,1000
create_account,B,1000
create_account,C,0
schedule_transfer,A,B,200,10
schedule_transfer,A,C,300,5
schedule_transfer,B,C,100,10
cancel_scheduled,s9
run_scheduled_until,10
run_scheduled_until,10
get_balance,A
get_balance,B
get_balance,C
`))
	require.NoError(t, err)

	results := Execute(ledger.New(), ops, 0)
	assert.Equal(t, []string{
		"ok", "ok", "ok",
		"s0", "s1", "s2",
		"failed",
		"3", "0",
		"500", "1100", "400",
	}, values(results))
	assert.ErrorIs(t, results[6].Err, ledger.ErrScheduleNotFound)
}

func TestExecute_MergeScript(t *testing.T) {
	ops, err := ParseFile("testdata/merge.csv")
	require.NoError(t, err)

	results := Execute(ledger.New(), ops, 2)
	assert.Equal(t, []string{
		"ok", "ok", "ok",
		"5.00", "7.00",
		"3.00",
		"s0",
		"10.00", "10.00",
		"failed",
		"1",
		"9.00", "3.00",
		"1", "2",
		"[A M]",
	}, values(results))
	assert.ErrorIs(t, results[9].Err, ledger.ErrAccountClosed)
}

func TestExecute_InvalidTopK(t *testing.T) {
	ops, err := Parse(strings.NewReader("top_k_by_outgoing,0,10,0\ntop_k_by_outgoing,10,0,1\nget_statement,ghost,0,1\n"))
	require.NoError(t, err)

	results := Execute(ledger.New(), ops, 0)
	assert.ErrorIs(t, results[0].Err, ledger.ErrInvalidK)
	assert.ErrorIs(t, results[1].Err, ledger.ErrInvalidWindow)
	assert.ErrorIs(t, results[2].Err, ledger.ErrNotFound)
}

func TestExecute_InvalidTopKLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	ops, err := Parse(strings.NewReader("top_k_by_outgoing,0,10,0\n"))
	require.NoError(t, err)

	results := Execute(ledger.New(ledger.WithLogger(logger)), ops, 0)
	assert.ErrorIs(t, results[0].Err, ledger.ErrInvalidK)
	assert.Contains(t, buf.String(), "ledger operation rejected")
	assert.Contains(t, buf.String(), "op=top_k_by_outgoing")
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile("testdata/does-not-exist.csv")
	assert.Error(t, err)
}
