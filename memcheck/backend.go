package memcheck

import (
	"context"
	"runtime"
	"strings"
)

// BackendStatus is the availability snapshot a single backend reports.
type BackendStatus struct {
	Present  bool // the execution environment itself
	Compiler bool
	Checker  bool
	Lines    []string // one human-readable line per performed check
}

// Backend is one candidate execution environment with a uniform
// probe/compile/check surface. The toolchain consults backends in a fixed
// order: WSL first (on Windows its Valgrind is usually the only one
// around), then the native toolchain.
type Backend interface {
	Name() string
	Probe(ctx context.Context) BackendStatus
	// Compile builds src and returns the invocation result together with
	// the produced executable path in the caller's path convention.
	Compile(ctx context.Context, src string) (RunResult, string)
	// Check runs the memory checker against exe.
	Check(ctx context.Context, exe string) RunResult
}

// wslBackend drives gcc and valgrind through the WSL launcher, translating
// paths into the /mnt/<drive> convention on the way in.
type wslBackend struct {
	cfg    Config
	runner Runner
}

func (b *wslBackend) Name() string { return "wsl" }

func (b *wslBackend) Probe(ctx context.Context) BackendStatus {
	var st BackendStatus

	if !b.runner.Run(ctx, b.cfg.ProbeTimeout, b.cfg.WSL, "--status").OK() {
		st.Lines = append(st.Lines, "✗ WSL недоступен")
		return st
	}
	st.Present = true
	st.Lines = append(st.Lines, "✓ WSL доступен")

	if b.runner.Run(ctx, b.cfg.ProbeTimeout, b.cfg.WSL, b.cfg.Compiler, "--version").OK() {
		st.Compiler = true
		st.Lines = append(st.Lines, "✓ GCC доступен в WSL")
	} else {
		st.Lines = append(st.Lines, "✗ GCC не установлен в WSL")
	}

	if b.runner.Run(ctx, b.cfg.ProbeTimeout, b.cfg.WSL, b.cfg.Checker, "--version").OK() {
		st.Checker = true
		st.Lines = append(st.Lines, "✓ Valgrind доступен в WSL")
	} else {
		st.Lines = append(st.Lines, "✗ Valgrind не установлен в WSL")
	}

	return st
}

func (b *wslBackend) Compile(ctx context.Context, src string) (RunResult, string) {
	exe := strings.TrimSuffix(src, SourceSuffix)
	res := b.runner.Run(ctx, b.cfg.CompileTimeout, b.cfg.WSL,
		b.cfg.Compiler, "-g", "-o", ToWSLPath(exe), ToWSLPath(src))
	return res, exe
}

func (b *wslBackend) Check(ctx context.Context, exe string) RunResult {
	return b.runner.Run(ctx, b.cfg.CheckTimeout, b.cfg.WSL,
		b.cfg.Checker,
		"--leak-check=full",
		"--track-origins=yes",
		"--show-leak-kinds=all",
		ToWSLPath(exe))
}

// nativeBackend invokes gcc and valgrind directly, without path
// translation or a launcher.
type nativeBackend struct {
	cfg    Config
	runner Runner
}

func (b *nativeBackend) Name() string { return "native" }

func (b *nativeBackend) Probe(ctx context.Context) BackendStatus {
	st := BackendStatus{Present: true}

	if b.runner.Run(ctx, b.cfg.ProbeTimeout, b.cfg.Compiler, "--version").OK() {
		st.Compiler = true
		st.Lines = append(st.Lines, "✓ Компилятор GCC доступен (нативно)")
	} else {
		st.Lines = append(st.Lines, "✗ Компилятор GCC не найден (нативно)")
	}

	if b.runner.Run(ctx, b.cfg.ProbeTimeout, b.cfg.Checker, "--version").OK() {
		st.Checker = true
		st.Lines = append(st.Lines, "✓ Valgrind доступен (нативно)")
	} else {
		st.Lines = append(st.Lines, "✗ Valgrind недоступен (нативно)")
	}

	return st
}

func (b *nativeBackend) Compile(ctx context.Context, src string) (RunResult, string) {
	exe := strings.TrimSuffix(src, SourceSuffix)
	// Windows is the only platform where the executable suffix is
	// conventional.
	if runtime.GOOS == "windows" {
		exe += ExeSuffix
	}
	res := b.runner.Run(ctx, b.cfg.CompileTimeout, b.cfg.Compiler, "-g", "-o", exe, src)
	return res, exe
}

func (b *nativeBackend) Check(ctx context.Context, exe string) RunResult {
	return b.runner.Run(ctx, b.cfg.CheckTimeout, b.cfg.Checker,
		"--leak-check=full",
		"--track-origins=yes",
		exe)
}
