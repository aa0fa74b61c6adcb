package utils

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetTestFlag sets the command line flag `name` to `value` and restores its previous value when the test is done.
func SetTestFlag(t testing.TB, name, value string) {
	t.Helper()
	flagHolder := flag.Lookup(name)
	require.NotNilf(t, flagHolder, "Flag %s not found", name)
	prevValue := flagHolder.Value.String()
	t.Cleanup(func() { require.NoError(t, flag.Set(name, prevValue)) })
	require.NoError(t, flag.Set(name, value))
}
