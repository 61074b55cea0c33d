package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kacebover/memleak-detector/memcheck"
)

// Version is injected at build time via -ldflags
var Version = "dev"

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// cliOptions holds the persistent tool and timeout overrides
type cliOptions struct {
	gcc      string
	valgrind string
	wsl      string

	compileTimeoutSec int
	checkTimeoutSec   int
}

// toolConfig converts the flag values into a toolchain configuration
func (o *cliOptions) toolConfig() memcheck.Config {
	cfg := memcheck.DefaultConfig()
	cfg.Compiler = o.gcc
	cfg.Checker = o.valgrind
	cfg.WSL = o.wsl
	cfg.CompileTimeout = time.Duration(o.compileTimeoutSec) * time.Second
	cfg.CheckTimeout = time.Duration(o.checkTimeoutSec) * time.Second
	return cfg
}

// newToolchain builds a toolchain whose log lines go to out, colorized
func (o *cliOptions) newToolchain(out io.Writer) *memcheck.Toolchain {
	tc := memcheck.NewToolchain(o.toolConfig())
	tc.SetOnLog(func(msg string) {
		fmt.Fprintln(out, colorizeLine(msg))
	})
	return tc
}

// colorizeLine colors a log line by its verdict marker
func colorizeLine(line string) string {
	switch {
	case strings.HasPrefix(line, "✓"):
		return color.GreenString("%s", line)
	case strings.HasPrefix(line, "✗"):
		return color.RedString("%s", line)
	case strings.HasPrefix(line, "⚠"):
		return color.YellowString("%s", line)
	default:
		return line
	}
}

// NewRootCommand creates and returns the root cobra command
func NewRootCommand() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "memleak-detector",
		Short: "Компиляция C-программ и поиск утечек памяти через GCC и Valgrind",
		Long: `memleak-detector компилирует C-программы и проверяет их на утечки
памяти с помощью Valgrind, запуская инструменты либо нативно, либо
внутри WSL.

Порядок работы на Windows: сначала пробуется WSL (где обычно и живёт
Valgrind), затем нативные инструменты, и в крайнем случае выполняется
базовый запуск программы без проверки утечек.

Графическая версия собирается из cmd/gui.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	base := memcheck.DefaultConfig()
	cmd.PersistentFlags().StringVar(&opts.gcc, "gcc", base.Compiler, "команда компилятора GCC")
	cmd.PersistentFlags().StringVar(&opts.valgrind, "valgrind", base.Checker, "команда Valgrind")
	cmd.PersistentFlags().StringVar(&opts.wsl, "wsl", base.WSL, "команда запуска WSL")
	cmd.PersistentFlags().IntVar(&opts.compileTimeoutSec, "compile-timeout",
		int(base.CompileTimeout/time.Second), "лимит времени компиляции в секундах")
	cmd.PersistentFlags().IntVar(&opts.checkTimeoutSec, "check-timeout",
		int(base.CheckTimeout/time.Second), "лимит времени проверки Valgrind в секундах")

	cmd.AddCommand(NewToolsCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewAnalyzeCommand(opts))

	return cmd
}

// NewToolsCommand creates and returns the tools subcommand
func NewToolsCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Проверить доступность GCC, Valgrind и WSL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			tc := opts.newToolchain(out)

			status := tc.Probe(cmd.Context())
			for _, line := range status.Lines {
				fmt.Fprintln(out, colorizeLine(line))
			}
			if status.InstallHint != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "📝 ИНСТРУКЦИЯ ПО УСТАНОВКЕ")
				fmt.Fprintln(out, status.InstallHint)
			}

			if !status.CompilerAvailable() && !status.CheckerAvailable() {
				return fmt.Errorf("инструменты не найдены: установите WSL с GCC и Valgrind")
			}
			return nil
		},
	}
}

// NewCompileCommand creates and returns the compile subcommand
func NewCompileCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <файл.c>",
		Short: "Скомпилировать исходный файл C с отладочными символами",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := opts.newToolchain(cmd.OutOrStdout())
			ctx := cmd.Context()

			outcome, err := tc.Compile(ctx, tc.Probe(ctx), args[0])
			if err != nil {
				return err
			}
			if !outcome.Success {
				return fmt.Errorf("компиляция не удалась")
			}
			return nil
		},
	}
}

// NewAnalyzeCommand creates and returns the analyze subcommand
func NewAnalyzeCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <исполняемый-файл>",
		Short: "Проверить исполняемый файл на утечки памяти",
		Long: `Запускает Valgrind против исполняемого файла, через WSL или нативно.
Если Valgrind недоступен, выполняется базовый запуск без проверки утечек.

Код возврата: 0 если утечек нет, 1 если утечки обнаружены или проверить
не удалось.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := opts.newToolchain(cmd.OutOrStdout())
			ctx := cmd.Context()

			outcome, err := tc.Analyze(ctx, tc.Probe(ctx), args[0])
			if err != nil {
				return err
			}

			switch {
			case outcome.Report != nil && outcome.Report.LeaksDetected:
				return fmt.Errorf("обнаружены утечки памяти")
			case outcome.Report != nil:
				return nil
			case outcome.TimedOut:
				return fmt.Errorf("превышен лимит времени")
			case outcome.Failed:
				return fmt.Errorf("не удалось выполнить программу")
			default:
				// Basic run only: leaks were not checked, do not claim a
				// clean result.
				return fmt.Errorf("утечки не проверены: Valgrind недоступен")
			}
		},
	}
}
