// Package controller provides the bridge between UI and the toolchain logic
package controller

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kacebover/memleak-detector/memcheck"
)

// ErrBusy is returned when an operation is requested while another one is
// still running. Operations are strictly serialized; the UI stays
// responsive because each one runs in its own goroutine.
var ErrBusy = errors.New("операция уже выполняется")

const sectionWidth = 50

// AppController manages compile and analysis operations and provides
// callbacks for UI updates. All operations are blocking; callers run them
// in goroutines and receive progress through the callbacks.
type AppController struct {
	toolchain *memcheck.Toolchain
	config    *AppConfig

	// Callbacks
	onLog    func(string)
	onStatus func(string)

	// State
	mu     sync.RWMutex
	status *memcheck.ToolStatus
	busy   bool
}

// NewAppController creates a controller with the persisted configuration
// and a real toolchain.
func NewAppController() *AppController {
	config := LoadConfig()
	config.ValidateConfig()
	return NewAppControllerWith(config, memcheck.NewToolchain(config.ToolConfig()))
}

// NewAppControllerWith creates a controller around an explicit toolchain.
// Tests use this to substitute a toolchain with a fake process runner.
func NewAppControllerWith(config *AppConfig, toolchain *memcheck.Toolchain) *AppController {
	ac := &AppController{
		toolchain: toolchain,
		config:    config,
	}
	toolchain.SetOnLog(ac.log)
	return ac
}

// SetOnLog sets the callback for output log lines
func (ac *AppController) SetOnLog(callback func(string)) {
	ac.onLog = callback
}

// SetOnStatus sets the callback for the one-line status indicator
func (ac *AppController) SetOnStatus(callback func(string)) {
	ac.onStatus = callback
}

// GetConfig returns the current configuration
func (ac *AppController) GetConfig() *AppConfig {
	return ac.config
}

// UpdateConfig updates and saves configuration
func (ac *AppController) UpdateConfig(config *AppConfig) error {
	config.ValidateConfig()
	ac.config = config
	return SaveConfig(config)
}

// IsBusy reports whether an operation is currently running
func (ac *AppController) IsBusy() bool {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return ac.busy
}

// ToolStatus returns the snapshot from the last probe, or nil before the
// first one.
func (ac *AppController) ToolStatus() *memcheck.ToolStatus {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return ac.status
}

func (ac *AppController) acquire() error {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.busy {
		return ErrBusy
	}
	ac.busy = true
	return nil
}

func (ac *AppController) release() {
	ac.mu.Lock()
	ac.busy = false
	ac.mu.Unlock()
}

// RefreshTools probes every tool and writes the availability block to the
// output log, followed by install instructions when WSL is present but
// missing gcc or valgrind.
func (ac *AppController) RefreshTools(ctx context.Context) error {
	if err := ac.acquire(); err != nil {
		return err
	}
	defer ac.release()

	ac.setStatus("Проверяю инструменты...")
	ac.logSection("СТАТУС ИНСТРУМЕНТОВ")

	status := ac.toolchain.Probe(ctx)

	for _, line := range status.Lines {
		ac.log(line)
	}
	if status.InstallHint != "" {
		ac.log("")
		ac.log("📝 ИНСТРУКЦИЯ ПО УСТАНОВКЕ")
		ac.log(strings.Repeat("-", sectionWidth))
		ac.log(status.InstallHint)
	}

	ac.mu.Lock()
	ac.status = status
	ac.mu.Unlock()

	switch {
	case status.CompilerAvailable() && status.CheckerAvailable():
		ac.setStatus("Готов к работе")
	case status.CompilerAvailable():
		ac.setStatus("Valgrind недоступен: только компиляция и базовый запуск")
	default:
		ac.setStatus("Инструменты не найдены: установите WSL с GCC и Valgrind")
	}

	return nil
}

// Compile builds the given C source file. On success the outcome carries
// the produced executable path for the UI to pick up.
func (ac *AppController) Compile(ctx context.Context, src string) (*memcheck.CompileOutcome, error) {
	if err := ac.acquire(); err != nil {
		return nil, err
	}
	defer ac.release()

	ac.setStatus("Компиляция...")
	ac.logSection("КОМПИЛЯЦИЯ: " + filepath.Base(src))

	outcome, err := ac.toolchain.Compile(ctx, ac.snapshot(ctx), src)
	if err != nil {
		ac.log("✗ " + err.Error())
		ac.setStatus("Ошибка компиляции")
		return nil, err
	}

	if outcome.Success {
		ac.setStatus(fmt.Sprintf("Компиляция успешна (%s)", backendLabel(outcome.Backend)))
		ac.rememberSource(src)
	} else {
		ac.setStatus("Ошибка компиляции")
	}

	return outcome, nil
}

// Analyze runs the memory check cascade against the given executable.
func (ac *AppController) Analyze(ctx context.Context, exe string) (*memcheck.AnalyzeOutcome, error) {
	if err := ac.acquire(); err != nil {
		return nil, err
	}
	defer ac.release()

	ac.setStatus("Анализ памяти...")
	ac.logSection("АНАЛИЗ ПАМЯТИ: " + filepath.Base(exe))

	outcome, err := ac.toolchain.Analyze(ctx, ac.snapshot(ctx), exe)
	if err != nil {
		ac.log("✗ " + err.Error())
		ac.setStatus("Ошибка анализа")
		return nil, err
	}

	switch {
	case outcome.Report != nil && outcome.Report.LeaksDetected:
		ac.setStatus("⚠ Обнаружены утечки памяти")
	case outcome.Report != nil:
		ac.setStatus("✓ Утечек памяти не обнаружено")
	case outcome.TimedOut:
		ac.setStatus("Превышен лимит времени")
	case outcome.Failed:
		ac.setStatus("Ошибка выполнения программы")
	default:
		ac.setStatus("Выполнен базовый анализ (без Valgrind)")
	}

	return outcome, nil
}

// snapshot returns the current tool availability, probing silently on the
// first use if RefreshTools was never called.
func (ac *AppController) snapshot(ctx context.Context) *memcheck.ToolStatus {
	ac.mu.RLock()
	status := ac.status
	ac.mu.RUnlock()
	if status != nil {
		return status
	}

	status = ac.toolchain.Probe(ctx)
	ac.mu.Lock()
	ac.status = status
	ac.mu.Unlock()
	return status
}

// rememberSource records a successfully compiled source in the recent list.
// A failed save is not worth interrupting the user over.
func (ac *AppController) rememberSource(src string) {
	ac.config.AddRecentFile(src)
	_ = SaveConfig(ac.config)
}

func (ac *AppController) logSection(title string) {
	ac.log("\n" + strings.Repeat("=", sectionWidth))
	ac.log(title)
	ac.log(strings.Repeat("=", sectionWidth))
}

func (ac *AppController) log(message string) {
	if ac.onLog != nil {
		ac.onLog(message)
	}
}

func (ac *AppController) setStatus(message string) {
	if ac.onStatus != nil {
		ac.onStatus(message)
	}
}

func backendLabel(backend string) string {
	switch backend {
	case "wsl":
		return "WSL"
	case "native":
		return "нативно"
	default:
		return backend
	}
}
