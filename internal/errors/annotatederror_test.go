package errors

import (
	"github.com/stretchr/testify/require"
	"log/slog"
	"slices"
	"testing"
)

func TestAnnotatedError(t *testing.T) {
	err := New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors work as expected.
	sentinel := NewSentinel("test error")
	require.NotErrorIs(t, err, NewSentinel("test error"))
	wrapped := Wrap(sentinel, "wrapping context")
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "wrapping context: test error", wrapped.Error())

	// Ensure log values are coming through.
	group := err.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	source := group[sourceIdx]
	require.Contains(t, source.Value.String(), "annotatederror_test.go")
}

func TestSlogError(t *testing.T) {
	sentinel := NewSentinel("root cause")
	err := Wrap(Wrap(sentinel, "inner", slog.Int("round", 2)), "outer")

	attr := SlogError(err)
	require.Equal(t, "error", attr.Key)

	group := attr.Value.Group()
	msgIdx := slices.IndexFunc(group, func(a slog.Attr) bool { return a.Key == "msg" })
	require.NotEqual(t, -1, msgIdx)
	require.Equal(t, "outer: inner: root cause", group[msgIdx].Value.String())
}
