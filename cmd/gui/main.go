package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/kacebover/memleak-detector/gui/controller"
	"github.com/kacebover/memleak-detector/memcheck"
)

// DetectorGUI represents the GUI application
type DetectorGUI struct {
	app    fyne.App
	window fyne.Window

	controller *controller.AppController

	// Input fields
	fileEntry    *widget.Entry
	recentSelect *widget.Select

	// Buttons
	compileButton *widget.Button
	analyzeButton *widget.Button
	refreshButton *widget.Button
	clearButton   *widget.Button

	// Output
	outputLog   *widget.Entry
	statusLabel *widget.Label

	// State
	running atomic.Bool
}

// NewDetectorGUI creates a new GUI instance
func NewDetectorGUI() *DetectorGUI {
	a := app.NewWithID("com.memleakdetector.app")
	w := a.NewWindow("🔍 Детектор Утечек Памяти (Windows/WSL)")

	dg := &DetectorGUI{
		app:        a,
		window:     w,
		controller: controller.NewAppController(),
	}

	cfg := dg.controller.GetConfig()
	w.Resize(fyne.NewSize(float32(cfg.WindowWidth), float32(cfg.WindowHeight)))
	w.CenterOnScreen()

	dg.buildUI()
	dg.wireController()
	return dg
}

func (dg *DetectorGUI) buildUI() {
	// === HEADER ===
	titleText := canvas.NewText("🔍 Детектор Утечек Памяти", theme.ForegroundColor())
	titleText.TextSize = 24
	titleText.TextStyle.Bold = true

	subtitleText := canvas.NewText("Компиляция и анализ C-программ через GCC и Valgrind", theme.ForegroundColor())
	subtitleText.TextSize = 13

	header := container.NewVBox(titleText, subtitleText)

	// === FILE SELECTION ===
	fileLabel := widget.NewLabelWithStyle("📁 Файл (.c для компиляции, исполняемый для анализа)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	dg.fileEntry = widget.NewEntry()
	dg.fileEntry.SetPlaceHolder("Выберите или введите путь к файлу...")

	browseBtn := widget.NewButton("📂 Обзор...", dg.onBrowse)

	dg.recentSelect = widget.NewSelect(dg.controller.GetConfig().RecentFiles, func(path string) {
		if path != "" {
			dg.fileEntry.SetText(path)
		}
	})
	dg.recentSelect.PlaceHolder = "Недавние файлы"

	fileRow := container.NewBorder(nil, nil, nil, browseBtn, dg.fileEntry)

	// === ACTIONS ===
	dg.compileButton = widget.NewButton("🔨 Скомпилировать", dg.onCompile)
	dg.compileButton.Importance = widget.HighImportance

	dg.analyzeButton = widget.NewButton("🔬 Анализ памяти", dg.onAnalyze)
	dg.analyzeButton.Importance = widget.HighImportance

	dg.refreshButton = widget.NewButton("🔄 Проверить инструменты", dg.onRefreshTools)
	dg.clearButton = widget.NewButton("🧹 Очистить", dg.onClear)

	buttons := container.NewGridWithColumns(4,
		dg.compileButton, dg.analyzeButton, dg.refreshButton, dg.clearButton)

	// === OUTPUT LOG ===
	dg.outputLog = widget.NewMultiLineEntry()
	dg.outputLog.Wrapping = fyne.TextWrapWord
	dg.outputLog.TextStyle.Monospace = true

	dg.statusLabel = widget.NewLabel("Запуск...")

	top := container.NewVBox(
		container.NewPadded(header),
		widget.NewSeparator(),
		fileLabel,
		fileRow,
		dg.recentSelect,
		buttons,
		widget.NewSeparator(),
	)

	content := container.NewBorder(
		top,
		dg.statusLabel,
		nil, nil,
		container.NewScroll(dg.outputLog),
	)

	dg.window.SetContent(content)
}

// wireController routes controller callbacks onto the UI thread.
func (dg *DetectorGUI) wireController() {
	dg.controller.SetOnLog(func(msg string) {
		dg.appendLog(msg)
	})
	dg.controller.SetOnStatus(func(msg string) {
		fyne.Do(func() {
			dg.statusLabel.SetText(msg)
		})
	})
}

// appendLog adds a line to the output log and keeps it scrolled to the end
func (dg *DetectorGUI) appendLog(msg string) {
	fyne.Do(func() {
		text := dg.outputLog.Text
		if text != "" {
			text += "\n"
		}
		dg.outputLog.SetText(text + msg)
		dg.outputLog.CursorRow = strings.Count(dg.outputLog.Text, "\n")
	})
}

func (dg *DetectorGUI) setButtonsEnabled(enabled bool) {
	fyne.Do(func() {
		if enabled {
			dg.compileButton.Enable()
			dg.analyzeButton.Enable()
			dg.refreshButton.Enable()
		} else {
			dg.compileButton.Disable()
			dg.analyzeButton.Disable()
			dg.refreshButton.Disable()
		}
	})
}

func (dg *DetectorGUI) onBrowse() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, dg.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()
		dg.fileEntry.SetText(reader.URI().Path())
	}, dg.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".c", ".exe"}))
	d.Show()
}

func (dg *DetectorGUI) onRefreshTools() {
	if !dg.running.CompareAndSwap(false, true) {
		return
	}
	dg.setButtonsEnabled(false)

	go func() {
		defer dg.running.Store(false)
		defer dg.setButtonsEnabled(true)

		_ = dg.controller.RefreshTools(context.Background())
	}()
}

func (dg *DetectorGUI) onCompile() {
	src := strings.TrimSpace(dg.fileEntry.Text)
	if src == "" {
		dialog.ShowError(fmt.Errorf("пожалуйста, выберите исходный файл C"), dg.window)
		return
	}
	if !dg.running.CompareAndSwap(false, true) {
		return
	}
	dg.setButtonsEnabled(false)

	go func() {
		defer dg.running.Store(false)
		defer dg.setButtonsEnabled(true)

		outcome, err := dg.controller.Compile(context.Background(), src)
		if err != nil {
			fyne.Do(func() {
				dialog.ShowError(err, dg.window)
			})
			return
		}

		if outcome.Success {
			// The produced executable becomes the next analysis target.
			fyne.Do(func() {
				dg.fileEntry.SetText(outcome.ExePath)
			})
			dg.refreshRecent()
		}
	}()
}

func (dg *DetectorGUI) onAnalyze() {
	exe := strings.TrimSpace(dg.fileEntry.Text)
	if exe == "" {
		dialog.ShowError(fmt.Errorf("пожалуйста, выберите исполняемый файл"), dg.window)
		return
	}
	if strings.HasSuffix(exe, memcheck.SourceSuffix) {
		dialog.ShowError(fmt.Errorf("сначала скомпилируйте исходный файл"), dg.window)
		return
	}
	if !dg.running.CompareAndSwap(false, true) {
		return
	}
	dg.setButtonsEnabled(false)

	go func() {
		defer dg.running.Store(false)
		defer dg.setButtonsEnabled(true)

		outcome, err := dg.controller.Analyze(context.Background(), exe)
		if err != nil {
			fyne.Do(func() {
				dialog.ShowError(err, dg.window)
			})
			return
		}

		dg.notifyResult(exe, outcome)
	}()
}

// notifyResult sends a desktop notification with the analysis verdict
func (dg *DetectorGUI) notifyResult(exe string, outcome *memcheck.AnalyzeOutcome) {
	if !dg.controller.GetConfig().ShowNotifications {
		return
	}

	dg.app.SendNotification(&fyne.Notification{
		Title:   "Анализ завершён",
		Content: analysisNotification(exe, outcome),
	})
}

// analysisNotification builds the one-line verdict for a desktop
// notification
func analysisNotification(exe string, outcome *memcheck.AnalyzeOutcome) string {
	name := filepath.Base(exe)
	switch {
	case outcome.Report != nil && outcome.Report.LeaksDetected:
		return fmt.Sprintf("⚠ В %s обнаружены утечки памяти", name)
	case outcome.Report != nil:
		return fmt.Sprintf("✓ В %s утечек памяти не обнаружено", name)
	default:
		return fmt.Sprintf("Выполнен базовый анализ %s (без Valgrind)", name)
	}
}

// refreshRecent reloads the recent files dropdown from the config
func (dg *DetectorGUI) refreshRecent() {
	fyne.Do(func() {
		dg.recentSelect.Options = dg.controller.GetConfig().RecentFiles
		dg.recentSelect.Refresh()
	})
}

func (dg *DetectorGUI) onClear() {
	dg.outputLog.SetText("")
	dg.onRefreshTools()
}

func (dg *DetectorGUI) Run() {
	// Probe the tools right away so the first thing the user sees is the
	// availability block.
	dg.onRefreshTools()
	dg.window.ShowAndRun()
}

func main() {
	gui := NewDetectorGUI()
	gui.Run()
}
