package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/tliron/commonlog/simple"

	"github.com/mgomes/slumber/slumber"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "tokens":
		return tokensCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "lsp":
		return runLSP()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	checkOnly := fs.Bool("check", false, "only parse the script without executing")
	dump := fs.String("dump", "", "print module bindings after the run (yaml or cbor)")
	stepQuota := fs.Int("step-quota", 0, "evaluation step budget (negative disables)")
	decorators := fs.Bool("decorators", false, "apply decorators instead of ignoring them")
	var verbosity countFlag
	fs.Var(&verbosity, "v", "raise log verbosity (repeatable)")
	var modulePaths pathList
	fs.Var(&modulePaths, "module-path", "add a module search directory (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !validDumpFormat(*dump) {
		return fmt.Errorf("slumber run: unknown dump format %q", *dump)
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("slumber run: script path required")
	}
	absScriptPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(absScriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	cfg, err := findConfig(filepath.Dir(absScriptPath))
	if err != nil {
		return err
	}
	if *stepQuota != 0 {
		cfg.Run.StepQuota = *stepQuota
	}
	if *decorators {
		cfg.Run.ApplyDecorators = true
	}
	configureLogging(cfg.Log.Verbosity+int(verbosity), cfg.Log.File)

	src := slumber.NewSource(absScriptPath, string(input))
	if _, err := slumber.Parse(src); err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}
	if *checkOnly {
		return nil
	}

	moduleDirs, err := computeModulePaths(absScriptPath, append(cfg.modulePaths(), modulePaths...))
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, moduleDirs)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	module, err := rt.Run(ctx, src, nil)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	if *dump != "" {
		return dumpModule(os.Stdout, *dump, module)
	}
	return nil
}

func newRuntime(cfg *fileConfig, moduleDirs []string) (*slumber.Runtime, error) {
	rtCfg := slumber.Config{
		StepQuota:       cfg.Run.StepQuota,
		RecursionLimit:  cfg.Run.RecursionLimit,
		ApplyDecorators: cfg.Run.ApplyDecorators,
	}
	if len(moduleDirs) > 0 {
		rtCfg.Loader = slumber.FileLoader{Paths: moduleDirs}
	}
	rt, err := slumber.NewRuntime(rtCfg)
	if err != nil {
		return nil, fmt.Errorf("start runtime: %w", err)
	}
	return rt, nil
}

func tokensCommand(args []string) error {
	fs := flag.NewFlagSet("tokens", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("slumber tokens: script path required")
	}
	input, err := os.ReadFile(remaining[0])
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	tokens, err := slumber.Lex(slumber.NewSource(remaining[0], string(input)))
	if err != nil {
		return fmt.Errorf("lex failed: %w", err)
	}
	for _, tok := range tokens {
		fmt.Printf("%d:%d\t%s", tok.Line(), tok.Column(), tok.Type)
		if tok.Value != nil {
			fmt.Printf("\t%s", formatTokenValue(tok.Value))
		}
		fmt.Println()
	}
	return nil
}

func formatTokenValue(v any) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] <script>\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run       execute a script")
	fmt.Fprintln(os.Stderr, "  tokens    print the token stream of a script")
	fmt.Fprintln(os.Stderr, "  analyze   report static warnings")
	fmt.Fprintln(os.Stderr, "  fmt       normalize whitespace in .sl files")
	fmt.Fprintln(os.Stderr, "  repl      start an interactive session")
	fmt.Fprintln(os.Stderr, "  lsp       serve the language server protocol on stdio")
	fmt.Fprintln(os.Stderr, "Run flags:")
	fmt.Fprintln(os.Stderr, "  -check")
	fmt.Fprintln(os.Stderr, "    only parse the script without executing")
	fmt.Fprintln(os.Stderr, "  -dump yaml|cbor")
	fmt.Fprintln(os.Stderr, "    print module bindings after the run")
	fmt.Fprintln(os.Stderr, "  -module-path <dir>")
	fmt.Fprintln(os.Stderr, "    add a directory to module search paths (repeatable)")
	fmt.Fprintln(os.Stderr, "  -step-quota n")
	fmt.Fprintln(os.Stderr, "    evaluation step budget, overriding slumber.toml")
	fmt.Fprintln(os.Stderr, "  -decorators")
	fmt.Fprintln(os.Stderr, "    apply decorators instead of ignoring them")
	fmt.Fprintln(os.Stderr, "  -v")
	fmt.Fprintln(os.Stderr, "    raise log verbosity (repeatable)")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}

type pathList []string

func (l *pathList) String() string {
	return strings.Join(*l, string(os.PathListSeparator))
}

func (l *pathList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// countFlag is a boolean flag that counts repetitions.
type countFlag int

func (c *countFlag) String() string { return strconv.Itoa(int(*c)) }

func (c *countFlag) Set(value string) error {
	on, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	if on {
		*c++
	}
	return nil
}

func (c *countFlag) IsBoolFlag() bool { return true }

func computeModulePaths(scriptPath string, extras []string) ([]string, error) {
	scriptDir := filepath.Dir(scriptPath)
	seen := make(map[string]struct{})
	var dirs []string
	addPath := func(label, p string) error {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s %q: %w", label, p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("access %s %q: %w", label, abs, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s %q is not a directory", label, abs)
		}
		if _, ok := seen[abs]; ok {
			return nil
		}
		seen[abs] = struct{}{}
		dirs = append(dirs, abs)
		return nil
	}
	if err := addPath("script directory", scriptDir); err != nil {
		return nil, err
	}
	for _, extra := range extras {
		if err := addPath("module path", extra); err != nil {
			return nil, err
		}
	}
	return dirs, nil
}
