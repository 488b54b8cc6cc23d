// Package testutil provides common test utilities and assertions.
package testutil

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// RequireErrorAs asserts that err's chain holds an E and returns it.
func RequireErrorAs[E error](t *testing.T, err error, msgAndArgs ...interface{}) E {
	t.Helper()

	require.Error(t, err, msgAndArgs...)
	var target E
	require.True(t, errors.As(err, &target), "error %q does not hold a %T", err, target)
	return target
}
