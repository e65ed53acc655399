package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestDeviceCommandPersistsIdentifier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.json")

	first, stderr, err := execute("--config", "", "--device-file", path, "device")
	require.NoError(t, err, stderr)
	second, stderr, err := execute("--config", "", "--device-file", path, "device")
	require.NoError(t, err, stderr)

	assert.Equal(t, first, second)
	_, err = uuid.Parse(strings.TrimSpace(first))
	assert.NoError(t, err)
}

func TestSendCommandUsesEmbeddedTokenServer(t *testing.T) {
	out, stderr, err := execute("--config", "", "--device-file", "", "--log-level", "warn", "send", "hello")
	require.NoError(t, err, stderr)

	assert.Regexp(t, `^Logged in as "[A-Za-z]+\d+"\n`, out)
	assert.Regexp(t, `1 message\(s\):\n- [A-Za-z]+\d+: hello\n$`, out)
}

func TestSendCommandRequiresText(t *testing.T) {
	_, _, err := execute("--config", "", "send")
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := execute("--config", "", "--device-file", "", "--log-level", "loud", "send", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestMissingConfigFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	_, stderr, err := execute("--config", path, "--device-file", "", "device")
	require.NoError(t, err, stderr)
}
