package asrun

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLastEmptyChannel(t *testing.T) {
	l := NewLog()
	require.Empty(t, l.Last("ch1", 3))
}

func TestAppendAndLastPreservesOrder(t *testing.T) {
	l := NewLog()
	l.Append("ch1", Entry{EventID: "a", EndMS: 100})
	l.Append("ch1", Entry{EventID: "b", EndMS: 200})
	l.Append("ch1", Entry{EventID: "c", EndMS: 300})

	got := l.Last("ch1", 2)
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].EventID)
	require.Equal(t, "c", got[1].EventID)
}

func TestLastNeverExceedsN(t *testing.T) {
	l := NewLog()
	l.Append("ch1", Entry{EventID: "a"})

	require.Len(t, l.Last("ch1", 5), 1)
	require.Empty(t, l.Last("ch1", 0))
}

func TestRemoveFirstMatchOnly(t *testing.T) {
	l := NewLog()
	l.Append("ch1", Entry{EventID: "a", EndMS: 100})
	l.Append("ch1", Entry{EventID: "b", EndMS: 200})
	l.Append("ch1", Entry{EventID: "a", EndMS: 300})

	l.Remove("ch1", "a")

	got := l.Last("ch1", 10)
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].EventID)
	require.Equal(t, "a", got[1].EventID)
	require.Equal(t, int64(300), got[1].EndMS)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	l := NewLog()
	l.Remove("ch1", "ghost")
	l.Append("ch1", Entry{EventID: "a"})
	l.Remove("ch1", "ghost")
	require.Len(t, l.Last("ch1", 10), 1)
}

func TestChannelsAreIndependent(t *testing.T) {
	l := NewLog()
	l.Append("ch1", Entry{EventID: "a"})
	l.Append("ch2", Entry{EventID: "b"})

	l.Remove("ch1", "a")

	require.Empty(t, l.Last("ch1", 10))
	got := l.Last("ch2", 10)
	require.Len(t, got, 1)
	require.Equal(t, "b", got[0].EventID)
}

func TestAppendNoDeduplication(t *testing.T) {
	l := NewLog()
	l.Append("ch1", Entry{EventID: "a"})
	l.Append("ch1", Entry{EventID: "a"})
	require.Equal(t, 2, l.Len("ch1"))
}
