package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgomes/slumber/slumber"
)

func lintMessages(t *testing.T, source string, applyDecorators bool) []string {
	t.Helper()
	file, err := slumber.Parse(slumber.NewSource("<test>", source))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var out []string
	for _, w := range analyzeFile(file, applyDecorators) {
		out = append(out, w.Message+" ("+w.Function+")")
	}
	return out
}

func TestAnalyzeFileWarnings(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "clean",
			text: "def run()\n  value = 1\n  return value\n",
		},
		{
			name: "after return",
			text: "def run()\n  return 1\n  2\n",
			want: []string{"unreachable statement (run)"},
		},
		{
			name: "after break",
			text: "while true\n  break\n  x = 1\n",
			want: []string{"unreachable statement (<module>)"},
		},
		{
			name: "every branch returns",
			text: "def f(x)\n  if x\n    return 1\n  elif x == 2\n    return 2\n  else\n    return 3\n  x\n",
			want: []string{"unreachable statement (f)"},
		},
		{
			name: "branch without else",
			text: "def f(x)\n  if x\n    return 1\n  x\n",
		},
		{
			name: "yield outside generators",
			text: "def f()\n  yield 1\nyield* f()\ng = \\x. yield x\n",
			want: []string{
				"yield outside a generator function (f)",
				"yield* outside a generator function (<module>)",
				"yield outside a generator function (<lambda>)",
			},
		},
		{
			name: "yield inside generator",
			text: "def* g()\n  yield 1\n  yield* g()\n",
		},
		{
			name: "method context",
			text: "class A\n  def m()\n    return 1\n    2\n",
			want: []string{"unreachable statement (A.m)"},
		},
		{
			name: "ignored decorator",
			text: "def d(f)\n  return f\n@d\ndef g()\n  pass\n",
			want: []string{"decorator on g is ignored (<module>)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lintMessages(t, tt.text, false)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAnalyzeAppliedDecoratorsAreNotReported(t *testing.T) {
	got := lintMessages(t, "def d(f)\n  return f\n@d\ndef g()\n  pass\n", true)
	if len(got) != 0 {
		t.Fatalf("expected no warnings, got %v", got)
	}
}

func TestAnalyzeCommandNoIssues(t *testing.T) {
	scriptPath := writeScript(t, "def run()\n  value = 1\n  return value\n")

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("analyzeCommand failed: %v", err)
	}
	if !strings.Contains(out, "No issues found") {
		t.Fatalf("unexpected analyze output: %q", out)
	}
}

func TestAnalyzeCommandReportsUnreachableStatements(t *testing.T) {
	scriptPath := writeScript(t, "def run()\n  return 1\n  2\n")

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{scriptPath})
	})
	if err == nil {
		t.Fatalf("expected analyze command to report lint failures")
	}
	if !strings.Contains(err.Error(), "analysis found 1 issue(s)") {
		t.Fatalf("unexpected analyze error: %v", err)
	}
	if !strings.Contains(out, ":3:3: unreachable statement (run)") {
		t.Fatalf("expected unreachable statement warning, got %q", out)
	}
}

func TestAnalyzeCommandHonorsConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, configFileName), "[run]\napply-decorators = true\n")
	scriptPath := filepath.Join(dir, "deco.sl")
	writeFile(t, scriptPath, "def d(f)\n  return f\n@d\ndef g()\n  pass\n")

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("analyzeCommand failed: %v (%s)", err, out)
	}
}
