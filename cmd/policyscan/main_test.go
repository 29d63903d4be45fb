package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"policyscan/internal/config"
	"policyscan/internal/report"
)

func TestRunStats(t *testing.T) {
	logger = zap.NewNop()
	cfg = config.DefaultConfig()

	artifact := filepath.Join(t.TempDir(), "results.csv")
	rows := []report.FlatRecord{
		{
			AppID:                       "app1",
			AppName:                     "App One",
			DataCollectionDisclosure:    true,
			DataUsePurposeSpecification: true,
			ThirdPartySharingDisclosure: true,
			DataSecurityEncryption:      true,
		},
		{AppID: "app2", Error: report.ErrEmptyOrShortPolicy},
	}
	require.NoError(t, report.WriteSnapshot(artifact, rows))

	output := captureOutput(t, func() {
		require.NoError(t, runStats(&cobra.Command{}, []string{artifact}))
	})

	assert.Contains(t, output, "ANALYSIS SUMMARY")
	assert.Contains(t, output, "Total apps analyzed: 2")
	assert.Contains(t, output, "Errors: 1")
	assert.Contains(t, output, "empty_or_short_policy: 1")
	assert.Contains(t, output, "MEDIUM risk: 1 apps (100.0%)")
	assert.Contains(t, output, "Average compliance score: 4.00/9")
	assert.Contains(t, output, "data_collection_disclosure: 100.0% compliant")
	assert.Contains(t, output, "parental_consent_mechanism: 0.0% compliant")
}

func TestRunStatsMissingFile(t *testing.T) {
	logger = zap.NewNop()
	cfg = config.DefaultConfig()

	err := runStats(&cobra.Command{}, []string{filepath.Join(t.TempDir(), "absent.csv")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read results")
}

func TestRunSummary(t *testing.T) {
	logger = zap.NewNop()
	cfg = config.DefaultConfig()

	dir := t.TempDir()
	input := filepath.Join(dir, "questionnaire.csv")
	outputPath := filepath.Join(dir, "scored.csv")

	csv := strings.Join([]string{
		"app_id,app_name,What data is collected?,Why is it needed?,Who is it shared with?,misc_hasAds",
		"com.example.math,Math Tutor,Name email address grade level and device identifiers," +
			"To deliver the learning service and improve outcomes,Analytics providers,1",
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(input, []byte(csv), 0o644))

	output := captureOutput(t, func() {
		require.NoError(t, runSummary(&cobra.Command{}, []string{input, outputPath}))
	})

	assert.Contains(t, output, "Found 1 apps to analyze")
	assert.Contains(t, output, "Results saved to "+outputPath)
	assert.Contains(t, output, "MEDIUM risk: 1 apps (100.0%)")

	rows, err := report.ReadSnapshot(outputPath)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "com.example.math", rows[0].AppID)
	assert.True(t, rows[0].DataCollectionDisclosure)
	assert.True(t, rows[0].TrackingTechDisclosure)
	assert.False(t, rows[0].ParentalConsentMechanism)
}

func TestRunInspect(t *testing.T) {
	logger = zap.NewNop()
	cfg = config.DefaultConfig()

	input := filepath.Join(t.TempDir(), "apps.csv")
	csv := "app_id,app_name,privacy_policy_text\n" +
		"com.example.one,Example One,Too short to classify\n"
	require.NoError(t, os.WriteFile(input, []byte(csv), 0o644))

	output := captureOutput(t, func() {
		require.NoError(t, runInspect(&cobra.Command{}, []string{input}))
	})

	assert.Contains(t, output, "Total rows: 1")
	assert.Contains(t, output, "Policy text column: privacy_policy_text")
	assert.Contains(t, output, "App ID column: app_id")
	assert.Contains(t, output, "App name column: app_name")
	assert.Contains(t, output, "Ready to analyze!")
	assert.Contains(t, output, "--policy-column 'privacy_policy_text'")
	assert.Contains(t, output, "Warning: 1 policies are empty or very short")
}

func TestPrintSummaryNoRows(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, report.Summarize(nil))

	out := buf.String()
	assert.Contains(t, out, "Total apps analyzed: 0")
	assert.Contains(t, out, "Average compliance score: 0.00/9")
	assert.NotContains(t, out, "risk:")
}

func TestProbeTargets(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")

	cfg = config.DefaultConfig()
	cfg.Classifier.Provider = "openai"
	cfg.Classifier.APIKey = "cfg-openai-key"

	targets := probeTargets()
	require.Len(t, targets, 2)
	assert.Equal(t, probeTarget{"openai", "cfg-openai-key"}, targets[0])
	assert.Equal(t, probeTarget{"gemini", "env-gemini-key"}, targets[1])
}

func TestProbeTargetsNoKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg = config.DefaultConfig()
	cfg.Classifier.APIKey = ""

	assert.Empty(t, probeTargets())
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "short", maskKey("short"))
	assert.Equal(t, "sk-proj-0123456...", maskKey("sk-proj-0123456789abcdef"))
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}
