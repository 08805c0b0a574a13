package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-predictor/internal/career/predictor"
	"career-predictor/internal/common/errors"
)

const testConfig = `
app:
  environment: test
prediction:
  provider: stub
  stub_delay: 1
lifecycle:
  progress_interval: 1
  progress_step: 10
  progress_cap: 90
  settle_delay: 1
  success_auto_close: 10
notifications:
  sound: false
logging:
  level: debug
  format: json
`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{
		"--config", writeConfig(t),
		"--log-file", filepath.Join(t.TempDir(), "test.log"),
	}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

var validArgs = []string{
	"predict",
	"--age", "22", "--cgpa", "8.4", "--risk", "6", "--leadership", "7",
	"--networking", "5", "--tech", "9", "--finance", "4", "--siblings", "1",
}

func isLabel(s string) bool {
	for _, l := range predictor.Labels {
		if string(l) == s {
			return true
		}
	}
	return false
}

func TestPredict_PrintsCareer(t *testing.T) {
	stdout, stderr, err := execute(t, validArgs...)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Your Predicted Career!")
	assert.Contains(t, stderr, "[success]")
}

func TestPredict_JSON(t *testing.T) {
	stdout, _, err := execute(t, append(validArgs, "--json")...)
	require.NoError(t, err)

	var out predictResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.NotEmpty(t, out.SubmissionID)
	assert.True(t, isLabel(out.Prediction), "unexpected label %q", out.Prediction)
	assert.Empty(t, out.SharedVia)
}

func TestPredict_ValidationErrors(t *testing.T) {
	_, stderr, err := execute(t, "predict", "--age", "12", "--cgpa", "11")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))

	assert.Contains(t, stderr, "--age: Age must be 15-100")
	assert.Contains(t, stderr, "--cgpa: CGPA must be 0-10")
	assert.Contains(t, stderr, "All fields are required")
}

func TestPredict_RejectsArgs(t *testing.T) {
	_, _, err := execute(t, "predict", "extra")
	assert.Error(t, err)
}

func TestLoadConfig_Verbose(t *testing.T) {
	cfg, err := loadConfig(&rootOptions{configPath: writeConfig(t), verbose: true})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "stub", cfg.Prediction.Provider)
	assert.False(t, cfg.Notifications.Sound)
}
