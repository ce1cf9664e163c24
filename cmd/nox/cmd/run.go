package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/nox-lang/nox/internal/ierrors"
	"github.com/nox-lang/nox/internal/interp"
	"github.com/nox-lang/nox/internal/lexer"
	"github.com/nox-lang/nox/internal/parser"
	"github.com/nox-lang/nox/internal/replconfig"
)

var (
	evalExpr   string
	watchMode  bool
	configPath string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a nox file, an inline expression, or start the REPL",
	Long: `Execute a nox program from a file or inline expression.

Examples:
  nox run script.nox
  nox run -e "print 1 + 2"
  nox run --watch script.nox
  nox run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "re-run the file whenever it changes")
	runCmd.Flags().StringVar(&configPath, "config", "", "path to .noxrc.yaml (default: $HOME/.noxrc.yaml)")
}

// runPipeline tokenizes, parses, and evaluates source against env, wrapping
// a lexer or parser failure with its byte position so it can be rendered
// with a source-line excerpt; runtime errors have no tracked position and
// are reported as plain messages.
func runPipeline(source string, env *interp.Environment) error {
	toks, err := lexer.Tokenize(source)
	if err != nil {
		if lexErr, ok := err.(*lexer.Error); ok {
			return &ierrors.SourceError{Pos: lexErr.Pos, Message: lexErr.Message, Source: source}
		}
		return err
	}

	program, err := parser.ParseProgram(toks)
	if err != nil {
		if parseErr, ok := err.(*parser.Error); ok {
			return &ierrors.SourceError{Pos: parseErr.Pos, Message: parseErr.Message, Source: source}
		}
		return err
	}

	_, err = interp.Eval(program, env)
	return err
}

func printPipelineError(err error) {
	if srcErr, ok := err.(*ierrors.SourceError); ok {
		fmt.Printf("Error: %s\n", srcErr.Format())
		return
	}
	fmt.Printf("Error: %s\n", err)
}

func runScript(_ *cobra.Command, args []string) error {
	switch {
	case evalExpr != "":
		env := interp.NewEnvironment()
		if err := runPipeline(evalExpr, env); err != nil {
			printPipelineError(err)
			return fmt.Errorf("execution failed")
		}
		return nil
	case len(args) == 1:
		if watchMode {
			return runWatch(args[0])
		}
		return runFile(args[0])
	default:
		return runREPL()
	}
}

func runFile(filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	env := interp.NewEnvironment()
	if err := runPipeline(string(content), env); err != nil {
		printPipelineError(err)
		return fmt.Errorf("execution failed")
	}
	return nil
}

// runWatch re-runs filename each time it reports a write or create event,
// using fsnotify rather than polling. It watches the containing directory,
// since editors commonly replace-on-save, and ignores events for other files.
func runWatch(filename string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(filename)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	run := func() {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Printf("Error: failed to read file %s: %s\n", filename, err)
			return
		}
		env := interp.NewEnvironment()
		if err := runPipeline(string(content), env); err != nil {
			printPipelineError(err)
		}
	}

	run()
	target, err := filepath.Abs(filename)
	if err != nil {
		target = filename
	}
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			eventPath, _ := filepath.Abs(event.Name)
			if eventPath != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				run()
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("Error: watch error: %s\n", watchErr)
		}
	}
}

func runREPL() error {
	cfg, err := replconfig.Load(configPath)
	if err != nil {
		fmt.Printf("Error: failed to load REPL config: %s\n", err)
		cfg = replconfig.Default()
	}

	var history *os.File
	if cfg.History != "" {
		f, err := os.OpenFile(cfg.History, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			history = f
			defer history.Close()
		}
	}

	env := interp.NewEnvironment()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print(cfg.Prompt)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if line != "" {
			if history != nil {
				fmt.Fprintln(history, line)
			}
			if err := runPipeline(line, env); err != nil {
				printPipelineError(err)
			}
		}
		fmt.Print(cfg.Prompt)
	}
	fmt.Println()
	return nil
}
