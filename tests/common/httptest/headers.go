//go:build unit || e2e

package httptest

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertHeaders checks each expected response header by exact value.
func AssertHeaders(t *testing.T, w *httptest.ResponseRecorder, expected map[string]string) {
	t.Helper()

	for name, want := range expected {
		assert.Equal(t, want, w.Header().Get(name), "header %s mismatch", name)
	}
}
