package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testRange(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	from, err := time.Parse("2006-01-02", "2025-08-01")
	require.NoError(t, err)
	to, err := time.Parse("2006-01-02", "2025-08-05")
	require.NoError(t, err)
	return from, to
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"reservations", "daily", "quotas"} {
		kind, err := ParseKind(valid)
		require.NoError(t, err)
		require.Equal(t, StageKind(valid), kind)
	}

	_, err := ParseKind("bookings")
	require.Error(t, err)
}

func TestCommandRunner_PassesDateRangeAsPositionalArgs(t *testing.T) {
	from, to := testRange(t)
	runner := NewCommandRunner(Commands{
		Reservations: []string{"echo", "importing"},
	}, testLogger())

	res, err := runner.RunStage(context.Background(), KindReservations, from, to)
	require.NoError(t, err)
	require.Zero(t, res.ExitStatus)
	require.Equal(t, "importing 2025-08-01 2025-08-05\n", res.Stdout)
}

func TestCommandRunner_NonZeroExitIsCaptured(t *testing.T) {
	from, to := testRange(t)
	runner := NewCommandRunner(Commands{
		Daily: []string{"sh", "-c", "echo broken >&2; exit 3", "import-daily"},
	}, testLogger())

	res, err := runner.RunStage(context.Background(), KindDaily, from, to)
	require.NoError(t, err)
	require.Equal(t, 3, res.ExitStatus)
	require.True(t, res.Failed())
	require.Contains(t, res.Stderr, "broken")
}

func TestCommandRunner_MissingBinaryIsAnError(t *testing.T) {
	from, to := testRange(t)
	runner := NewCommandRunner(Commands{
		Quotas: []string{"hutpipe-no-such-binary"},
	}, testLogger())

	_, err := runner.RunStage(context.Background(), KindQuotas, from, to)
	require.Error(t, err)
}

func TestCommandRunner_DryRunFlagAppendedBeforeDates(t *testing.T) {
	from, to := testRange(t)
	runner := NewCommandRunner(Commands{
		Production: []string{"echo", "commit"},
		DryRunFlag: "--dry-run",
	}, testLogger())

	res, err := runner.RunProduction(context.Background(), from, to, true)
	require.NoError(t, err)
	require.Equal(t, "commit --dry-run 2025-08-01 2025-08-05\n", res.Stdout)

	res, err = runner.RunProduction(context.Background(), from, to, false)
	require.NoError(t, err)
	require.Equal(t, "commit 2025-08-01 2025-08-05\n", res.Stdout)
}

func TestCommandRunner_DryRunWithoutFlagIsAnError(t *testing.T) {
	from, to := testRange(t)
	runner := NewCommandRunner(Commands{
		Production: []string{"echo", "commit"},
	}, testLogger())

	_, err := runner.RunProduction(context.Background(), from, to, true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no dry-run flag configured")

	// The committing invocation is unaffected.
	res, err := runner.RunProduction(context.Background(), from, to, false)
	require.NoError(t, err)
	require.Equal(t, "commit 2025-08-01 2025-08-05\n", res.Stdout)
}

func TestCommandRunner_NoCommandConfigured(t *testing.T) {
	from, to := testRange(t)
	runner := NewCommandRunner(Commands{}, testLogger())

	_, err := runner.RunStage(context.Background(), KindReservations, from, to)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no command configured")
}

func TestStageResult_Combined(t *testing.T) {
	res := &StageResult{Stdout: "out", Stderr: "err"}
	require.Equal(t, "out\nerr", res.Combined())

	require.Equal(t, "out", (&StageResult{Stdout: "out"}).Combined())
	require.Equal(t, "err", (&StageResult{Stderr: "err"}).Combined())
}

func TestTruncate_ShortOutputUnchanged(t *testing.T) {
	s := "a\nb\nc"
	require.Equal(t, s, Truncate(s, 200))
}

func TestTruncate_KeepsHeadAndTail(t *testing.T) {
	lines := make([]string, 300)
	for i := range lines {
		lines[i] = strings.Repeat("x", 3)
	}
	lines[0] = "first"
	lines[299] = "last"

	got := Truncate(strings.Join(lines, "\n"), 200)
	gotLines := strings.Split(got, "\n")
	require.Len(t, gotLines, 201)
	require.Equal(t, "first", gotLines[0])
	require.Equal(t, "last", gotLines[200])
	require.Contains(t, got, "[100 lines elided]")
}

func TestTokenAnalyzer_ExitStatusWins(t *testing.T) {
	ok, reason := NewTokenAnalyzer().Analyze(&StageResult{ExitStatus: 2, Stdout: "all good"})
	require.False(t, ok)
	require.Equal(t, "exit status 2", reason)
}

func TestTokenAnalyzer_FailureTokens(t *testing.T) {
	analyzer := NewTokenAnalyzer()

	for _, out := range []string{
		"migration FAILED on row 7",
		"unhandled Exception in task",
		"transaction rolled back",
	} {
		ok, reason := analyzer.Analyze(&StageResult{Stdout: out})
		require.False(t, ok, out)
		require.NotEmpty(t, reason)
	}

	ok, reason := analyzer.Analyze(&StageResult{Stdout: "imported 120 rows"})
	require.True(t, ok)
	require.Empty(t, reason)
}

func TestTokenAnalyzer_ScansStderrToo(t *testing.T) {
	ok, _ := NewTokenAnalyzer().Analyze(&StageResult{Stderr: "warning: error while parsing"})
	require.False(t, ok)
}
