package cyclelog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pathtrack/internal/control"
)

func TestRecordAndReadBack(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "cycles.db")
	l, err := Open(dbPath)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Record(control.CycleRecord{
		Cycle: 1, Status: control.StatusOK,
		Steering: -0.02, Throttle: 0.6,
		CrossTrack: 0.4, HeadingErr: -0.01,
		SpeedMPS: 12.5, SolveMillis: 3.2,
	}))
	require.NoError(t, l.Record(control.CycleRecord{
		Cycle: 2, Status: control.StatusSolveFailure, Throttle: -0.5,
	}))

	rows, err := l.Cycles(l.Session())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Cycle)
	assert.Equal(t, control.StatusOK, rows[0].Status)
	assert.InDelta(t, -0.02, rows[0].Steering, 1e-9)
	assert.InDelta(t, 12.5, rows[0].SpeedMPS, 1e-9)
	assert.Equal(t, control.StatusSolveFailure, rows[1].Status)
}

func TestLatestSession(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "cycles.db")

	first, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.Record(control.CycleRecord{Cycle: 1, Status: control.StatusOK}))
	require.NoError(t, first.Close())

	second, err := Open(dbPath)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Record(control.CycleRecord{Cycle: 1, Status: control.StatusOK}))
	require.NotEqual(t, first.Session(), second.Session())

	latest, err := second.LatestSession()
	require.NoError(t, err)
	assert.Equal(t, second.Session(), latest)

	// Empty session selects the latest one.
	rows, err := second.Cycles("")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, second.Session(), rows[0].Session)
}

func TestLatestSessionEmptyDatabase(t *testing.T) {
	t.Parallel()

	l, err := Open(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer l.Close()

	_, err = l.LatestSession()
	assert.Error(t, err)
}
