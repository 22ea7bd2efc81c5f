package monitoring

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	c := NewCounter("test_events")
	before := c.Value()
	c.Add()
	c.Add()
	assert.Equal(t, before+2, c.Value())
	assert.Equal(t, "test_events", c.Name())

	// Same name returns the same counter.
	again := NewCounter("test_events")
	assert.Same(t, c, again)
}

func TestSnapshotSorted(t *testing.T) {
	NewCounter("test_zzz")
	NewCounter("test_aaa")

	snap := Snapshot()
	require.NotEmpty(t, snap)
	for i := 1; i < len(snap); i++ {
		assert.LessOrEqual(t, snap[i-1].Name(), snap[i].Name())
	}
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	Logf("hello %d", 7)
	require.Len(t, lines, 1)
	assert.True(t, strings.Contains(lines[0], "hello 7"))

	// nil installs a no-op logger rather than panicking.
	SetLogger(nil)
	Logf("dropped")
	assert.Len(t, lines, 1)
}

func TestLogCounters(t *testing.T) {
	defer SetLogger(nil)

	NewCounter("test_logged").Add()
	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	LogCounters()

	found := false
	for _, l := range lines {
		if strings.Contains(l, "test_logged") {
			found = true
		}
	}
	assert.True(t, found)
}
