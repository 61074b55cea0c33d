package memcheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeRunner resolves command lines against a canned table and records every
// invocation. Commands without an entry behave like a missing binary.
type fakeRunner struct {
	results map[string]RunResult
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, _ time.Duration, name string, args ...string) RunResult {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if res, ok := f.results[key]; ok {
		return res
	}
	return RunResult{NotFound: true}
}

func newTestToolchain(results map[string]RunResult) (*Toolchain, *fakeRunner, *[]string) {
	runner := &fakeRunner{results: results}
	tc := NewToolchainWithRunner(DefaultConfig(), runner)
	var logged []string
	tc.SetOnLog(func(msg string) { logged = append(logged, msg) })
	return tc, runner, &logged
}

func writeSource(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "prog.c")
	if err := os.WriteFile(src, []byte("int main(void){return 0;}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return src
}

func writeExecutable(t *testing.T) string {
	t.Helper()
	exe := filepath.Join(t.TempDir(), "prog")
	if err := os.WriteFile(exe, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	return exe
}

var ok = RunResult{ExitCode: 0}

func TestProbeEverythingAvailable(t *testing.T) {
	tc, runner, _ := newTestToolchain(map[string]RunResult{
		"gcc --version":          ok,
		"valgrind --version":     ok,
		"wsl --status":           ok,
		"wsl gcc --version":      ok,
		"wsl valgrind --version": ok,
	})

	status := tc.Probe(context.Background())

	if !status.NativeCompiler || !status.NativeChecker || !status.WSL || !status.WSLCompiler || !status.WSLChecker {
		t.Errorf("expected every capability available, got %+v", status)
	}
	if len(status.Lines) != 5 {
		t.Errorf("got %d status lines, want 5: %q", len(status.Lines), status.Lines)
	}
	if status.InstallHint != "" {
		t.Errorf("unexpected install hint: %q", status.InstallHint)
	}
	if len(runner.calls) != 5 {
		t.Errorf("got %d probe invocations, want 5: %q", len(runner.calls), runner.calls)
	}
}

func TestProbeWSLAbsent(t *testing.T) {
	tc, runner, _ := newTestToolchain(map[string]RunResult{
		"gcc --version": ok,
	})

	status := tc.Probe(context.Background())

	if status.WSL || status.WSLCompiler || status.WSLChecker {
		t.Errorf("WSL capabilities reported without a launcher: %+v", status)
	}
	if !status.NativeCompiler {
		t.Error("native compiler not reported")
	}
	// Without a launcher the per-tool WSL probes are pointless and skipped.
	if len(status.Lines) != 3 {
		t.Errorf("got %d status lines, want 3: %q", len(status.Lines), status.Lines)
	}
	for _, call := range runner.calls {
		if strings.HasPrefix(call, "wsl ") && call != "wsl --status" {
			t.Errorf("probed inside an absent WSL: %q", call)
		}
	}
	if status.InstallHint != "" {
		t.Error("install hint set although WSL is absent")
	}
}

func TestProbeWSLPresentToolsMissing(t *testing.T) {
	tc, _, _ := newTestToolchain(map[string]RunResult{
		"wsl --status":      ok,
		"wsl gcc --version": ok,
	})

	status := tc.Probe(context.Background())

	if !status.WSL || !status.WSLCompiler || status.WSLChecker {
		t.Errorf("unexpected capability snapshot: %+v", status)
	}
	if !strings.Contains(status.InstallHint, "sudo apt") {
		t.Errorf("install hint missing or wrong: %q", status.InstallHint)
	}
}

func TestProbeTimeoutReadsAsUnavailable(t *testing.T) {
	tc, _, _ := newTestToolchain(map[string]RunResult{
		"gcc --version": {TimedOut: true},
		"wsl --status":  ok,
	})

	status := tc.Probe(context.Background())
	if status.NativeCompiler {
		t.Error("a timed out probe counted as available")
	}
}

func TestCompileValidation(t *testing.T) {
	tc, runner, _ := newTestToolchain(nil)
	status := &ToolStatus{WSL: true, WSLCompiler: true}

	cases := []struct {
		name string
		src  string
	}{
		{"empty path", ""},
		{"not a C source", filepath.Join(t.TempDir(), "prog.txt")},
		{"missing file", filepath.Join(t.TempDir(), "ghost.c")},
	}

	for _, tc2 := range cases {
		t.Run(tc2.name, func(t *testing.T) {
			outcome, err := tc.Compile(context.Background(), status, tc2.src)
			if outcome != nil {
				t.Error("got an outcome for rejected input")
			}
			if !IsValidation(err) {
				t.Errorf("got %v, want a validation error", err)
			}
		})
	}

	if len(runner.calls) != 0 {
		t.Errorf("rejected input spawned processes: %q", runner.calls)
	}
}

func TestCompileWSLSuccess(t *testing.T) {
	src := writeSource(t)
	exe := strings.TrimSuffix(src, ".c")

	tc, runner, _ := newTestToolchain(map[string]RunResult{
		"wsl gcc -g -o " + exe + " " + src: ok,
	})
	status := &ToolStatus{WSL: true, WSLCompiler: true, NativeCompiler: true}

	outcome, err := tc.Compile(context.Background(), status, src)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Success {
		t.Fatal("compile reported failure")
	}
	if outcome.ExePath != exe {
		t.Errorf("ExePath = %q, want %q", outcome.ExePath, exe)
	}
	if outcome.Backend != "wsl" {
		t.Errorf("Backend = %q, want wsl", outcome.Backend)
	}
	// A successful WSL compile must not also invoke the native compiler.
	if len(runner.calls) != 1 {
		t.Errorf("got %d invocations, want 1: %q", len(runner.calls), runner.calls)
	}
}

func TestCompileWSLFailureFallsThroughToNative(t *testing.T) {
	src := writeSource(t)
	exe := strings.TrimSuffix(src, ".c")

	tc, _, logged := newTestToolchain(map[string]RunResult{
		"wsl gcc -g -o " + exe + " " + src: {ExitCode: 1, Stderr: "prog.c:3: error: expected ';'"},
		"gcc -g -o " + exe + " " + src:     ok,
	})
	status := &ToolStatus{WSL: true, WSLCompiler: true, NativeCompiler: true}

	outcome, err := tc.Compile(context.Background(), status, src)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Success {
		t.Fatal("native fallback did not succeed")
	}
	if outcome.Backend != "native" {
		t.Errorf("Backend = %q, want native", outcome.Backend)
	}

	joined := strings.Join(*logged, "\n")
	if !strings.Contains(joined, "expected ';'") {
		t.Error("WSL compiler diagnostics not logged before the fallback")
	}
}

func TestCompileNativeOnly(t *testing.T) {
	src := writeSource(t)
	exe := strings.TrimSuffix(src, ".c")

	tc, runner, _ := newTestToolchain(map[string]RunResult{
		"gcc -g -o " + exe + " " + src: ok,
	})
	status := &ToolStatus{NativeCompiler: true}

	outcome, err := tc.Compile(context.Background(), status, src)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Success {
		t.Fatal("compile reported failure")
	}
	if outcome.Backend != "native" {
		t.Errorf("Backend = %q, want native", outcome.Backend)
	}
	if outcome.ExePath != exe {
		t.Errorf("ExePath = %q, want %q", outcome.ExePath, exe)
	}
	for _, call := range runner.calls {
		if strings.HasPrefix(call, "wsl ") {
			t.Errorf("WSL invoked without WSL availability: %q", call)
		}
	}
}

func TestCompileFailureReportsDiagnostics(t *testing.T) {
	src := writeSource(t)
	exe := strings.TrimSuffix(src, ".c")

	tc, _, _ := newTestToolchain(map[string]RunResult{
		"gcc -g -o " + exe + " " + src: {ExitCode: 1, Stderr: "undefined reference to `foo'"},
	})
	status := &ToolStatus{NativeCompiler: true}

	outcome, err := tc.Compile(context.Background(), status, src)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Success {
		t.Fatal("failed compile reported success")
	}
	if !strings.Contains(outcome.Diagnostics, "undefined reference") {
		t.Errorf("Diagnostics = %q", outcome.Diagnostics)
	}
}

func TestCompileNoCompilerAnywhere(t *testing.T) {
	src := writeSource(t)
	tc, runner, _ := newTestToolchain(nil)

	outcome, err := tc.Compile(context.Background(), &ToolStatus{}, src)
	if outcome != nil {
		t.Error("got an outcome without any compiler")
	}
	if !errors.Is(err, ErrCompilerNotFound) {
		t.Errorf("got %v, want ErrCompilerNotFound", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("invocations without a compiler: %q", runner.calls)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	tc, runner, _ := newTestToolchain(nil)
	status := &ToolStatus{WSL: true, WSLChecker: true}

	if _, err := tc.Analyze(context.Background(), status, ""); !IsValidation(err) {
		t.Errorf("empty path: got %v, want a validation error", err)
	}
	missing := filepath.Join(t.TempDir(), "ghost")
	if _, err := tc.Analyze(context.Background(), status, missing); !IsValidation(err) {
		t.Errorf("missing file: got %v, want a validation error", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("rejected input spawned processes: %q", runner.calls)
	}
}

func TestAnalyzeWSLCheckerParsesStderr(t *testing.T) {
	exe := writeExecutable(t)

	tc, _, _ := newTestToolchain(map[string]RunResult{
		"wsl valgrind --leak-check=full --track-origins=yes --show-leak-kinds=all " + exe: {
			// The analyzed program's own failure status still counts as a
			// completed checker run.
			ExitCode: 1,
			Stderr:   leakyValgrindOutput,
		},
	})
	status := &ToolStatus{WSL: true, WSLChecker: true}

	outcome, err := tc.Analyze(context.Background(), status, exe)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Mode != "wsl" {
		t.Errorf("Mode = %q, want wsl", outcome.Mode)
	}
	if outcome.Report == nil || !outcome.Report.LeaksDetected {
		t.Fatal("leaky stream not reflected in the report")
	}
}

func TestAnalyzeWSLTimeoutSkipsNative(t *testing.T) {
	exe := writeExecutable(t)

	tc, runner, _ := newTestToolchain(map[string]RunResult{
		"wsl valgrind --leak-check=full --track-origins=yes --show-leak-kinds=all " + exe: {TimedOut: true},
		exe: ok,
	})
	status := &ToolStatus{WSL: true, WSLChecker: true, NativeChecker: true}

	outcome, err := tc.Analyze(context.Background(), status, exe)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Mode != "basic" {
		t.Errorf("Mode = %q, want basic", outcome.Mode)
	}
	for _, call := range runner.calls {
		if strings.HasPrefix(call, "valgrind ") {
			t.Errorf("native checker tried after a WSL timeout: %q", call)
		}
	}
}

func TestAnalyzeWSLFailureTriesNative(t *testing.T) {
	exe := writeExecutable(t)

	tc, _, _ := newTestToolchain(map[string]RunResult{
		"wsl valgrind --leak-check=full --track-origins=yes --show-leak-kinds=all " + exe: {NotFound: true},
		"valgrind --leak-check=full --track-origins=yes " + exe:                           {Stderr: cleanValgrindOutput},
	})
	status := &ToolStatus{WSL: true, WSLChecker: true}

	outcome, err := tc.Analyze(context.Background(), status, exe)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Mode != "native" {
		t.Errorf("Mode = %q, want native", outcome.Mode)
	}
	if outcome.Report == nil || outcome.Report.LeaksDetected {
		t.Error("clean stream not reflected in the report")
	}
}

func TestAnalyzeFallsBackToBasicRun(t *testing.T) {
	exe := writeExecutable(t)

	tc, _, logged := newTestToolchain(map[string]RunResult{
		exe: {ExitCode: 2, Stdout: "hello\n", Stderr: "boom\n"},
	})

	outcome, err := tc.Analyze(context.Background(), &ToolStatus{}, exe)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Mode != "basic" {
		t.Fatalf("Mode = %q, want basic", outcome.Mode)
	}
	if outcome.Basic == nil || outcome.Basic.ExitCode != 2 {
		t.Fatalf("basic run not captured: %+v", outcome.Basic)
	}
	if outcome.Basic.Stdout != "hello\n" || outcome.Basic.Stderr != "boom\n" {
		t.Errorf("basic run streams not captured: %+v", outcome.Basic)
	}

	joined := strings.Join(*logged, "\n")
	if !strings.Contains(joined, "нужен Valgrind") {
		t.Error("basic fallback did not warn that leaks stay undetected")
	}
}

func TestAnalyzeBasicRunTimeout(t *testing.T) {
	exe := writeExecutable(t)

	tc, _, _ := newTestToolchain(map[string]RunResult{
		exe: {TimedOut: true},
	})

	outcome, err := tc.Analyze(context.Background(), &ToolStatus{}, exe)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.TimedOut {
		t.Error("timed out basic run not reported")
	}
	if outcome.Basic != nil {
		t.Error("Basic set despite timeout")
	}
}
