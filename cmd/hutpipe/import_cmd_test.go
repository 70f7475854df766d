package main

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/report"
)

func TestRunExitError(t *testing.T) {
	now := time.Now()
	run := report.NewRun(uuid.New(), now, now, nil, now)

	run.Finish(now)
	require.NoError(t, runExitError(run))

	run.AddError("reservations import exited with status 1")
	run.Finish(now)
	require.ErrorIs(t, runExitError(run), errRunFailed)
}
