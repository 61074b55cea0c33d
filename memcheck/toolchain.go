// Package memcheck compiles C programs and checks them for memory leaks by
// orchestrating external tools: GCC and Valgrind, either native or hosted in
// WSL. The package does no heavy lifting itself; it probes what is
// installed, shells out with bounded timeouts and turns Valgrind's
// diagnostic stream into a readable report.
package memcheck

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ToolStatus is the availability snapshot of every probed capability. Each
// Probe call rebuilds it wholesale; the orchestrators receive it explicitly
// and never consult hidden global state.
type ToolStatus struct {
	NativeCompiler bool
	NativeChecker  bool
	WSL            bool
	WSLCompiler    bool
	WSLChecker     bool

	Lines       []string // one human-readable line per performed check
	InstallHint string   // set when WSL is present but its tools are not
}

// CompilerAvailable reports whether any backend can compile.
func (ts *ToolStatus) CompilerAvailable() bool {
	return ts.NativeCompiler || (ts.WSL && ts.WSLCompiler)
}

// CheckerAvailable reports whether any backend can run the memory checker.
func (ts *ToolStatus) CheckerAvailable() bool {
	return ts.NativeChecker || (ts.WSL && ts.WSLChecker)
}

// Toolchain owns the ordered backends and runs the probe/compile/analyze
// orchestration. All calls are blocking and synchronous; every external
// invocation is bounded by a timeout from Config.
type Toolchain struct {
	cfg    Config
	runner Runner
	wsl    *wslBackend
	native *nativeBackend

	onLog func(string)
}

// NewToolchain creates a toolchain that shells out for real.
func NewToolchain(cfg Config) *Toolchain {
	return NewToolchainWithRunner(cfg, NewRunner())
}

// NewToolchainWithRunner creates a toolchain on top of a custom Runner.
// Tests use this to substitute a fake process launcher.
func NewToolchainWithRunner(cfg Config, runner Runner) *Toolchain {
	return &Toolchain{
		cfg:    cfg,
		runner: runner,
		wsl:    &wslBackend{cfg: cfg, runner: runner},
		native: &nativeBackend{cfg: cfg, runner: runner},
	}
}

// SetOnLog sets the callback receiving human-readable progress lines.
func (tc *Toolchain) SetOnLog(callback func(string)) {
	tc.onLog = callback
}

func (tc *Toolchain) log(msg string) {
	if tc.onLog != nil {
		tc.onLog(msg)
	}
}

func (tc *Toolchain) logf(format string, args ...any) {
	tc.log(fmt.Sprintf(format, args...))
}

// Probe queries all five capabilities: native gcc, native valgrind, the WSL
// launcher, and gcc/valgrind inside WSL. A capability counts as available
// only when its version query starts and exits with status zero; a missing
// binary and a timeout both simply read as "not available". Probe is
// idempotent and safe to re-run at any time.
func (tc *Toolchain) Probe(ctx context.Context) *ToolStatus {
	native := tc.native.Probe(ctx)
	wsl := tc.wsl.Probe(ctx)

	status := &ToolStatus{
		NativeCompiler: native.Compiler,
		NativeChecker:  native.Checker,
		WSL:            wsl.Present,
		WSLCompiler:    wsl.Compiler,
		WSLChecker:     wsl.Checker,
	}
	status.Lines = append(status.Lines, native.Lines...)
	status.Lines = append(status.Lines, wsl.Lines...)

	if wsl.Present && (!wsl.Compiler || !wsl.Checker) {
		status.InstallHint = "Чтобы установить недостающие инструменты, откройте Ubuntu из меню «Пуск» и выполните:\n\n  sudo apt update && sudo apt install -y gcc valgrind"
	}

	return status
}

// CompileOutcome describes a finished compilation attempt.
type CompileOutcome struct {
	Success     bool
	TimedOut    bool
	ExePath     string // caller path convention; set on success
	Backend     string // "wsl" or "native"
	Diagnostics string // compiler stderr of the last failed attempt
}

// Compile builds src into an executable with debug symbols, preferring the
// WSL compiler when both it and the launcher are available. A failed WSL
// compile reports its diagnostics and falls through to the native compiler
// if one was probed; this one cascade policy applies regardless of how the
// WSL attempt failed. Guard-clause violations return a *ValidationError and
// spawn nothing; ErrCompilerNotFound means no backend could even be tried.
func (tc *Toolchain) Compile(ctx context.Context, status *ToolStatus, src string) (*CompileOutcome, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, &ValidationError{Reason: "не выбран исходный файл C"}
	}
	if !strings.HasSuffix(src, SourceSuffix) {
		return nil, &ValidationError{Path: src, Reason: "выбранный файл не является исходником C (" + SourceSuffix + ")"}
	}
	if _, err := os.Stat(src); err != nil {
		return nil, &ValidationError{Path: src, Reason: "файл не найден"}
	}

	outcome := &CompileOutcome{}
	attempted := false

	// WSL gcc is preferred: the binary it produces is the one Valgrind in
	// WSL can instrument later.
	if status.WSL && status.WSLCompiler {
		attempted = true
		tc.log("Использую компилятор GCC в WSL...")
		res, exe := tc.wsl.Compile(ctx, src)
		switch {
		case res.OK():
			tc.log("✓ Компиляция успешна!")
			tc.log("  Исполняемый файл: " + exe)
			outcome.Success = true
			outcome.ExePath = exe
			outcome.Backend = tc.wsl.Name()
			return outcome, nil
		case res.TimedOut:
			tc.logf("⚠ Компиляция превысила лимит времени (%s)", tc.cfg.CompileTimeout)
			outcome.TimedOut = true
		default:
			tc.log("✗ Ошибка компиляции:\n" + res.Stderr)
			outcome.Diagnostics = res.Stderr
		}
	}

	if status.NativeCompiler {
		attempted = true
		tc.log("Использую нативный компилятор GCC...")
		res, exe := tc.native.Compile(ctx, src)
		switch {
		case res.OK():
			tc.log("✓ Компиляция успешна!")
			tc.log("  Исполняемый файл: " + exe)
			outcome.Success = true
			outcome.TimedOut = false
			outcome.ExePath = exe
			outcome.Backend = tc.native.Name()
		case res.TimedOut:
			tc.logf("⚠ Компиляция превысила лимит времени (%s)", tc.cfg.CompileTimeout)
			outcome.TimedOut = true
		default:
			tc.log("✗ Ошибка компиляции:\n" + res.Stderr)
			outcome.Diagnostics = res.Stderr
		}
		return outcome, nil
	}

	if !attempted {
		return nil, ErrCompilerNotFound
	}
	return outcome, nil
}

// BasicRun is the result of executing the target without any checker.
type BasicRun struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// AnalyzeOutcome describes a finished analysis.
type AnalyzeOutcome struct {
	Mode     string    // "wsl", "native" or "basic"
	Report   *Report   // set when a checker produced a diagnostic stream
	Basic    *BasicRun // set when the fallback execution completed
	TimedOut bool      // the step that ended the cascade timed out
	Failed   bool      // the fallback execution could not be launched
}

// Analyze runs the memory checker against exe, cascading through three
// tiers: WSL Valgrind, native Valgrind, then plain execution with a warning
// that no leak detection happened. A WSL timeout skips straight to the
// basic tier (the target itself is suspect); any other WSL failure tries
// the native checker first. Valgrind passes the target's exit status
// through, so a completed checker run is parsed regardless of exit code.
func (tc *Toolchain) Analyze(ctx context.Context, status *ToolStatus, exe string) (*AnalyzeOutcome, error) {
	exe = strings.TrimSpace(exe)
	if exe == "" {
		return nil, &ValidationError{Reason: "не выбран исполняемый файл"}
	}
	if _, err := os.Stat(exe); err != nil {
		return nil, &ValidationError{Path: exe, Reason: "файл не найден"}
	}

	tryNative := true

	if status.WSL && status.WSLChecker {
		tc.log("Запускаю проверку памяти Valgrind (WSL)...")
		res := tc.wsl.Check(ctx, exe)
		switch {
		case res.Completed():
			// Valgrind prints its diagnostics to stderr; the exit code
			// belongs to the analyzed program.
			report := ParseValgrindOutput(res.Stderr)
			tc.log(report.Format())
			return &AnalyzeOutcome{Mode: tc.wsl.Name(), Report: report}, nil
		case res.TimedOut:
			tc.logf("⚠ Valgrind превысил лимит времени (%s)", tc.cfg.CheckTimeout)
			tc.log("Программа может зависать или работать слишком долго.")
			tryNative = false
		default:
			tc.log("✗ Ошибка запуска Valgrind в WSL.")
		}
	}

	if tryNative {
		tc.log("Пробую нативный Valgrind...")
		res := tc.native.Check(ctx, exe)
		switch {
		case res.Completed():
			report := ParseValgrindOutput(res.Stderr)
			tc.log(report.Format())
			return &AnalyzeOutcome{Mode: tc.native.Name(), Report: report}, nil
		case res.NotFound:
			tc.log("⚠ Valgrind недоступен.")
			tc.log("Установите Valgrind в WSL для обнаружения утечек памяти.")
			tc.log("Перехожу к базовому анализу...")
		case res.TimedOut:
			tc.logf("⚠ Valgrind превысил лимит времени (%s)", tc.cfg.CheckTimeout)
		default:
			tc.logf("✗ Ошибка Valgrind: %v", res.Err)
		}
	}

	return tc.basicAnalysis(ctx, exe), nil
}

// basicAnalysis executes the target directly. It only shows whether the
// program runs; leaks stay invisible, and the log says so explicitly.
func (tc *Toolchain) basicAnalysis(ctx context.Context, exe string) *AnalyzeOutcome {
	tc.log("\n" + strings.Repeat("-", 50))
	tc.log("Запускаю базовое выполнение (без проверки утечек памяти)...")
	tc.log(strings.Repeat("-", 50))

	res := tc.runner.Run(ctx, tc.cfg.RunTimeout, exe)

	switch {
	case res.TimedOut:
		tc.logf("\n⚠ Выполнение программы превысило лимит времени (%s)", tc.cfg.RunTimeout)
		tc.log("Программа может зависать или ждать ввода.")
		return &AnalyzeOutcome{Mode: "basic", TimedOut: true}
	case res.NotFound, res.Err != nil:
		tc.log("\n✗ Ошибка выполнения программы")
		return &AnalyzeOutcome{Mode: "basic", Failed: true}
	}

	verdict := "(ошибка)"
	if res.ExitCode == 0 {
		verdict = "(успех)"
	}
	tc.logf("\nКод возврата: %d %s", res.ExitCode, verdict)

	if res.Stdout != "" {
		tc.log("\nВывод программы:\n" + res.Stdout)
	}
	if res.Stderr != "" {
		tc.log("\nОшибки программы:\n" + res.Stderr)
	}

	tc.log("\n" + strings.Repeat("!", 50))
	tc.log("⚠ ВНИМАНИЕ: для обнаружения утечек памяти нужен Valgrind!")
	tc.log("Установите WSL и Valgrind для полного анализа памяти.")
	tc.log(strings.Repeat("!", 50))

	return &AnalyzeOutcome{
		Mode: "basic",
		Basic: &BasicRun{
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		},
	}
}
