package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langdetect-agent/src/contracts"
	"langdetect-agent/src/step"
	"langdetect-agent/src/webhook"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"REDPANDA_BROKERS", "POSTGRES_DSN", "LANGDETECT_FAILURE_POLICY"} {
		t.Setenv(key, "")
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		stepFlags = contracts.StepConfig{}
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	out, err := execute(t, "validate", ok.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "API endpoint is valid")

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer broken.Close()

	_, err = execute(t, "validate", broken.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "418")
}

func TestRunCommand(t *testing.T) {
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/widget/languages" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"Go":500,"Python":1200}`))
	}))
	defer gh.Close()

	var gotLanguage string
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLanguage = r.URL.Query().Get("language")
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	t.Setenv("GITHUB_API_URL", gh.URL)
	t.Setenv("GITHUB_TOKEN", "test-token")

	out, err := execute(t, "run", "--repo", "https://github.com/acme/widget", "--endpoint", hook.URL)
	require.NoError(t, err)
	assert.Equal(t, "Python", gotLanguage)
	assert.Contains(t, out, "language Python")
}

func TestRunCommand_MissingToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	_, err := execute(t, "run", "--repo", "acme/widget", "--endpoint", "http://127.0.0.1:1/hook")
	assert.ErrorIs(t, err, errStepFailed)
}

func TestPrintOutcome(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	printOutcome(cmd, step.Outcome{
		Run:      contracts.RunRecord{ID: "run-1"},
		Success:  true,
		Language: "unknown",
		Warnings: []error{&step.Error{Stage: step.StageNotify, Err: &webhook.StatusError{Code: 500}}},
	}, "agent-phase")

	out := buf.String()
	assert.Contains(t, out, "does not fail the step under policy agent-phase")
	assert.Contains(t, out, "Run run-1: language unknown")
}

func TestReportRun(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	assert.NoError(t, reportRun(cmd, contracts.RunRecord{ID: "a", Status: contracts.RunStatusSucceeded, Language: "Go"}))
	assert.ErrorIs(t, reportRun(cmd, contracts.RunRecord{ID: "b", Status: contracts.RunStatusFailed, Error: "boom"}), errStepFailed)
	assert.Contains(t, buf.String(), "Run b failed: boom")
}
