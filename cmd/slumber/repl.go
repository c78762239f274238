package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgomes/slumber/slumber"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B5CF6")).Bold(true)
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

var replCommands = [][2]string{
	{":help", "list these commands"},
	{":vars", "show session bindings"},
	{":clear", "clear the screen"},
	{":reset", "drop session bindings"},
	{":load <file>", "run a file in the session scope"},
	{":quit", "leave"},
}

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

// replSession is the state shared by every copy of the model: the
// runtime, the persistent scope and print output not yet shown.
type replSession struct {
	rt      *slumber.Runtime
	scope   *slumber.Scope
	printed []string
}

type replModel struct {
	textInput   textinput.Model
	session     *replSession
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	quitting    bool
	initialized bool
}

var (
	quitKey     = key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"))
	previousKey = key.NewBinding(key.WithKeys("up"))
	nextKey     = key.NewBinding(key.WithKeys("down"))
	completeKey = key.NewBinding(key.WithKeys("tab"))
	submitKey   = key.NewBinding(key.WithKeys("enter"))
)

func newREPLModel(cfg *fileConfig, moduleDirs []string) (replModel, error) {
	ti := textinput.New()
	ti.Placeholder = "type a statement..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "slumber> "

	session := &replSession{}
	rtCfg := slumber.Config{
		StepQuota:       cfg.Run.StepQuota,
		RecursionLimit:  cfg.Run.RecursionLimit,
		ApplyDecorators: cfg.Run.ApplyDecorators,
		Print:           func(s string) { session.printed = append(session.printed, s) },
	}
	if len(moduleDirs) > 0 {
		rtCfg.Loader = slumber.FileLoader{Paths: moduleDirs}
	}
	rt, err := slumber.NewRuntime(rtCfg)
	if err != nil {
		return replModel{}, fmt.Errorf("start runtime: %w", err)
	}
	session.rt = rt
	session.scope = rt.NewScope()

	return replModel{
		textInput:  ti,
		session:    session,
		historyIdx: -1,
	}, nil
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 12
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, quitKey):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, previousKey):
			if len(m.cmdHistory) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.cmdHistory) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, nextKey):
			if m.historyIdx != -1 {
				if m.historyIdx < len(m.cmdHistory)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, completeKey):
			m = m.handleAutocomplete()
			return m, nil

		case key.Matches(msg, submitKey):
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, ":") {
				var cmd tea.Cmd
				m, cmd = m.handleCommand(input)
				m.textInput.SetValue("")
				m.historyIdx = -1
				return m, cmd
			}

			output, isErr := m.evaluate(input)
			m.history = append(m.history, historyEntry{
				input:  input,
				output: output,
				isErr:  isErr,
			})
			m.cmdHistory = append(m.cmdHistory, input)
			m.textInput.SetValue("")
			m.historyIdx = -1
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case ":help", ":h":
		lines := make([]string, 0, len(replCommands))
		for _, c := range replCommands {
			lines = append(lines, fmt.Sprintf("%-14s %s", c[0], c[1]))
		}
		m.history = append(m.history, historyEntry{input: input, output: strings.Join(lines, "\n")})
	case ":clear", ":c":
		m.history = nil
	case ":vars", ":v":
		m.history = append(m.history, historyEntry{input: input, output: m.session.describeScope()})
	case ":reset", ":r":
		m.session.scope = m.session.rt.NewScope()
		m.history = append(m.history, historyEntry{
			input:  input,
			output: "Scope reset",
		})
	case ":load", ":l":
		if len(parts) != 2 {
			m.history = append(m.history, historyEntry{input: input, output: "usage: :load <file>", isErr: true})
			break
		}
		output, isErr := m.load(parts[1])
		m.history = append(m.history, historyEntry{input: input, output: output, isErr: isErr})
	case ":quit", ":q":
		m.quitting = true
		m.session.rt.Close()
		return m, tea.Quit
	default:
		m.history = append(m.history, historyEntry{
			input:  input,
			output: fmt.Sprintf("Unknown command: %s", cmd),
			isErr:  true,
		})
	}
	return m, nil
}

func (m replModel) completions(prefix string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(names []string) {
		for _, name := range names {
			if _, ok := seen[name]; ok || !strings.HasPrefix(name, prefix) {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	add(slumber.Keywords())
	add(m.session.rt.Globals().Names())
	add(m.session.scope.Names())
	sort.Strings(out)
	return out
}

func (m replModel) handleAutocomplete() replModel {
	input := m.textInput.Value()
	words := strings.Fields(input)
	if len(words) == 0 {
		return m
	}
	lastWord := words[len(words)-1]
	if i := strings.LastIndexAny(lastWord, "(.,[ "); i >= 0 {
		lastWord = lastWord[i+1:]
	}
	if lastWord == "" {
		return m
	}

	completions := m.completions(lastWord)
	if len(completions) == 1 {
		prefix := strings.TrimSuffix(input, lastWord)
		m.textInput.SetValue(prefix + completions[0])
		m.textInput.CursorEnd()
	} else if len(completions) > 1 {
		m.history = append(m.history, historyEntry{
			output: "Completions: " + strings.Join(completions, ", "),
		})
	}
	return m
}

// evaluate runs one line in the session scope. A lone expression
// reports its repr; anything else reports only what it printed.
func (m replModel) evaluate(input string) (string, bool) {
	src := slumber.NewSource("<repl>", input+"\n")
	file, err := slumber.Parse(src)
	if err != nil {
		return err.Error(), true
	}

	var node slumber.Node = file
	if len(file.Statements) == 1 {
		if stmt, ok := file.Statements[0].(*slumber.ExprStmt); ok {
			node = stmt.Expr
		}
	}
	result, err := m.session.rt.RunToCompletion(context.Background(), node, m.session.scope, false)
	printed := m.session.drainPrinted()
	if err != nil {
		return joinOutput(printed, err.Error()), true
	}
	if _, isExpr := node.(slumber.Expression); !isExpr {
		return joinOutput(printed, ""), false
	}
	repr, err := result.Repr()
	if err != nil {
		return joinOutput(printed, err.Error()), true
	}
	return joinOutput(printed, repr), false
}

func (m replModel) load(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("read %s: %v", path, err), true
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	_, err = m.session.rt.Run(context.Background(), slumber.NewSource(abs, string(data)), m.session.scope)
	printed := m.session.drainPrinted()
	if err != nil {
		return joinOutput(printed, err.Error()), true
	}
	return joinOutput(printed, "Loaded "+path), false
}

func (s *replSession) drainPrinted() []string {
	out := s.printed
	s.printed = nil
	return out
}

func joinOutput(printed []string, last string) string {
	if last != "" {
		printed = append(printed, last)
	}
	return strings.Join(printed, "\n")
}

// describeScope lists the session bindings one per line, or a note
// when there are none.
func (s *replSession) describeScope() string {
	names := s.scope.Names()
	if len(names) == 0 {
		return "(no bindings)"
	}
	lines := make([]string, 0, len(names))
	for _, name := range names {
		val, _ := s.scope.Get(name)
		repr, err := val.Repr()
		if err != nil {
			repr = "<" + err.Error() + ">"
		}
		lines = append(lines, name+" = "+repr)
	}
	return strings.Join(lines, "\n")
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}
	if m.quitting {
		return dimStyle.Render("bye\n")
	}

	var b strings.Builder
	b.WriteString(promptStyle.Render("Slumber REPL") + dimStyle.Render("  :help for commands, ctrl+d to quit") + "\n\n")

	// Each entry takes at least two lines, plus the header and prompt.
	visible := max((m.height-4)/2, 1)
	start := max(len(m.history)-visible, 0)
	for _, entry := range m.history[start:] {
		if entry.input != "" {
			b.WriteString(dimStyle.Render(entry.input) + "\n")
		}
		switch {
		case entry.isErr:
			b.WriteString(errorStyle.Render("✗ "+entry.output) + "\n")
		case entry.output != "":
			b.WriteString(resultStyle.Render("→ "+entry.output) + "\n")
		}
	}

	b.WriteString("\n" + m.textInput.View())
	return b.String()
}

func replCommand(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var modulePaths pathList
	fs.Var(&modulePaths, "module-path", "add a module search directory (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := findConfig(cwd)
	if err != nil {
		return err
	}
	configureLogging(cfg.Log.Verbosity, cfg.Log.File)
	moduleDirs, err := computeModulePaths(filepath.Join(cwd, "<repl>"), append(cfg.modulePaths(), modulePaths...))
	if err != nil {
		return err
	}

	m, err := newREPLModel(cfg, moduleDirs)
	if err != nil {
		return err
	}
	defer m.session.rt.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
