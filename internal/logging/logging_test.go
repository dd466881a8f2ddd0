package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labstock.log")

	logger, cleanup, err := New("info", path)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("check submitted")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"check submitted"`)
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New("loud", "")
	assert.Error(t, err)
}
