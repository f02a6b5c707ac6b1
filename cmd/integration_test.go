package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/healthaudit/internal/audit"
	"github.com/KaramelBytes/healthaudit/internal/dataset"
)

const clinicCSV = `age,BMI,blood_pressure,disease_score
30,20,120,10
45,30,,50
30,20,120,10
NA,40,140,
60,38,130,90
`

// resetFlags clears values and Changed state left over from earlier invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns stdout and the error.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is execCmd that fails the test on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// isolate points HOME at a temp dir and writes the clinic fixture there.
func isolate(t *testing.T) (home, input string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	input = filepath.Join(home, "clinic.csv")
	if err := os.WriteFile(input, []byte(clinicCSV), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return home, input
}

func TestCLI_AuditWritesTableAndReport(t *testing.T) {
	home, input := isolate(t)
	outPath := filepath.Join(home, "out", "classified.csv")
	stdout := runCmd(t, "audit", input, "-o", outPath, "--seed", "7")

	for _, want := range []string{"✓ Wrote 4 rows to " + outPath, "[HEALTH AUDIT]", "Source: clinic.csv", "- Critical: 1", "[RANDOM SAMPLE] (n=4, seed=7)"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}
	got, err := dataset.ReadCSVFile(outPath, dataset.DefaultCSVOptions())
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got.Len() != 4 || !got.Has(dataset.ColRiskStatus) || !got.Has(dataset.ColBMINormalized) {
		t.Fatalf("classified table: len=%d cols=%v", got.Len(), got.Columns())
	}
	last, _ := got.At(3, dataset.ColRiskStatus)
	if s, _ := last.Str(); s != string(audit.Critical) {
		t.Fatalf("last row risk = %v", last)
	}
}

func TestCLI_AuditDefaultOutputAndJSONReport(t *testing.T) {
	home, input := isolate(t)
	report := filepath.Join(home, "report.json")
	runCmd(t, "audit", input, "--json", "--report", report, "--sample", "2")

	if _, err := os.Stat(filepath.Join(home, "clinic.audited.csv")); err != nil {
		t.Fatalf("expected default output next to input: %v", err)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var rep struct {
		RunID string `json:"run_id"`
		Risk  struct {
			Critical int `json:"critical"`
			Stable   int `json:"stable"`
		} `json:"risk"`
		Cleaning struct {
			Duplicates int `json:"duplicates_removed"`
		} `json:"cleaning"`
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		t.Fatalf("decode report: %v\n%s", err, b)
	}
	if rep.RunID == "" || rep.Risk.Critical != 1 || rep.Risk.Stable != 3 || rep.Cleaning.Duplicates != 1 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestCLI_CleanToStdout(t *testing.T) {
	_, input := isolate(t)
	stdout := runCmd(t, "clean", input)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header + 4 rows, got %d:\n%s", len(lines), stdout)
	}
	if lines[0] != "age,BMI,blood_pressure,disease_score,BMI_normalized,disease_score_normalized" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "30,20,120,10,0,0" {
		t.Fatalf("first row = %q", lines[1])
	}
}

func TestCLI_SampleIsReproducible(t *testing.T) {
	_, input := isolate(t)
	a := runCmd(t, "sample", input, "-n", "3", "--seed", "11")
	b := runCmd(t, "sample", input, "-n", "3", "--seed", "11")
	if a != b {
		t.Fatalf("same seed gave different samples:\n%s\n---\n%s", a, b)
	}
	if n := len(strings.Split(strings.TrimSpace(a), "\n")); n != 4 {
		t.Fatalf("expected header + 3 rows, got %d", n)
	}

	_, err := execCmd(t, "sample", input, "--clean", "-n", "5")
	var ie *audit.InsufficientRowsError
	if !errors.As(err, &ie) || ie.Requested != 5 || ie.Available != 4 {
		t.Fatalf("expected InsufficientRowsError, got %v", err)
	}
}

func TestCLI_Ages(t *testing.T) {
	_, input := isolate(t)
	stdout := runCmd(t, "ages", input)
	if want := "age,count\n30,2\n45,1\n60,1\n"; stdout != want {
		t.Fatalf("ages = %q, want %q", stdout, want)
	}
	stdout = runCmd(t, "ages", input, "--clean", "--json")
	var dist audit.Distribution
	if err := json.Unmarshal([]byte(stdout), &dist); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dist.Count(45) != 2 || dist.Total() != 4 {
		t.Fatalf("cleaned ages = %+v", dist)
	}
}

func TestCLI_ClassifyNeedsCleanedInput(t *testing.T) {
	home, input := isolate(t)
	_, err := execCmd(t, "classify", input)
	var me *dataset.MissingColumnError
	if !errors.As(err, &me) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}

	cleaned := filepath.Join(home, "cleaned.csv")
	runCmd(t, "clean", input, "-o", cleaned)
	stdout := runCmd(t, "classify", cleaned, "--disease", "0.4", "--bmi", "0.4")
	if got := strings.Count(stdout, string(audit.Critical)); got != 3 {
		t.Fatalf("expected 3 Critical rows with 0.4 thresholds, got %d:\n%s", got, stdout)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	_, input := isolate(t)
	runCmd(t, "config", "set", "disease_threshold", "0.7")
	runCmd(t, "config", "set", "degenerate_range", "zero")
	stdout := runCmd(t, "config", "show")
	for _, want := range []string{"disease_threshold: 0.7", "degenerate_range: zero", "sample_size: 20"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("config show missing %q:\n%s", want, stdout)
		}
	}
	if _, err := execCmd(t, "config", "set", "bmi_threshold", "2"); err == nil {
		t.Fatalf("expected error for out-of-range threshold")
	}
	if _, err := execCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}

	// A single-row table is degenerate; the saved policy resolves it.
	single := filepath.Join(filepath.Dir(input), "single.csv")
	if err := os.WriteFile(single, []byte("age,BMI,blood_pressure,disease_score\n50,25,120,40\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	stdout = runCmd(t, "audit", single, "--no-write", "--sample", "1")
	if !strings.Contains(stdout, "- Stable: 1") || !strings.Contains(stdout, "has a single distinct value") {
		t.Fatalf("degenerate audit report:\n%s", stdout)
	}
}

func TestCLI_DegenerateFailsByDefault(t *testing.T) {
	home, _ := isolate(t)
	single := filepath.Join(home, "single.csv")
	if err := os.WriteFile(single, []byte("age,BMI,blood_pressure,disease_score\n50,25,120,40\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execCmd(t, "audit", single, "--no-write")
	var de *audit.DegenerateRangeError
	if !errors.As(err, &de) || de.Column != dataset.ColBMI {
		t.Fatalf("expected DegenerateRangeError on BMI, got %v", err)
	}
}

func TestCLI_Profile(t *testing.T) {
	home, input := isolate(t)
	stdout := runCmd(t, "profile", input)
	for _, want := range []string{"[DATASET SUMMARY]", "File: clinic.csv", "Rows: 5", "- age: numeric (non-null 4, missing 20.0%)"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("profile missing %q:\n%s", want, stdout)
		}
	}
	out := filepath.Join(home, "profile.md")
	runCmd(t, "profile", input, "-o", out, "--sample-rows", "0")
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read profile: %v", err)
	}
	if strings.Contains(string(b), "[HEAD AND SAMPLE ROWS]") {
		t.Fatalf("sample rows should be disabled:\n%s", b)
	}
}

func TestCLI_SemicolonInputWithCommaDecimal(t *testing.T) {
	home, _ := isolate(t)
	input := filepath.Join(home, "eu.csv")
	body := "age;BMI;blood_pressure;disease_score\n30;20,5;120;10\n40;30,5;130;50\n50;40,5;140;90\n"
	if err := os.WriteFile(input, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	stdout := runCmd(t, "clean", input, "--delimiter", ";", "--decimal", "comma")
	for _, want := range []string{"30;20,5;120;10;0;0", "40;30,5;130;50;0,5;0,5"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("missing %q in output:\n%s", want, stdout)
		}
	}

	// The cleaned file must classify identically when read back with the same settings.
	cleaned := filepath.Join(home, "eu.cleaned.csv")
	runCmd(t, "clean", input, "--delimiter", ";", "--decimal", "comma", "-o", cleaned)
	stdout = runCmd(t, "classify", cleaned, "--delimiter", ";", "--decimal", "comma")
	if got := strings.Count(stdout, string(audit.Critical)); got != 1 {
		t.Fatalf("expected only the top row Critical, got %d:\n%s", got, stdout)
	}
	if !strings.Contains(stdout, "40;30,5;130;50;0,5;0,5;Stable") {
		t.Fatalf("normalized values changed on re-read:\n%s", stdout)
	}
}
