package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/mgomes/slumber/slumber"
)

const lspName = "slumber-lsp"

type lspServer struct {
	mu   sync.Mutex
	docs map[string]string

	// globals maps each builtin or prelude name to its hover detail.
	globals map[string]string

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

func runLSP() error {
	s, err := newLSPServer()
	if err != nil {
		return err
	}
	return s.server.RunStdio()
}

func newLSPServer() (*lspServer, error) {
	rt, err := slumber.NewRuntime(slumber.Config{})
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	s := &lspServer{
		docs:    make(map[string]string),
		globals: make(map[string]string),
		version: "0.1.0",
	}
	globals := rt.Globals()
	for _, name := range globals.Names() {
		val, _ := globals.Get(name)
		s.globals[name] = describeGlobal(rt, val)
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}
	s.server = glspserver.NewServer(&s.handler, lspName, false)
	return s, nil
}

func describeGlobal(rt *slumber.Runtime, val *slumber.Object) string {
	switch {
	case val == nil:
		return "global"
	case val.ClassInfo() != nil:
		return "class"
	case val.IsA(rt.FunctionClass):
		return "builtin function"
	default:
		return "global " + val.ClassName()
	}
}

func (s *lspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.GetLogger("slumber.lsp").Info("initializing")

	capabilities := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	openClose := true
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *lspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *lspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *lspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (s *lspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.setDoc(uri, params.TextDocument.Text)
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, s.diagnostics(uri, params.TextDocument.Text))
	return nil
}

func (s *lspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	last := params.ContentChanges[len(params.ContentChanges)-1]
	whole, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}
	uri := params.TextDocument.URI
	s.setDoc(uri, whole.Text)
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, s.diagnostics(uri, whole.Text))
	return nil
}

func (s *lspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *lspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.doc(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	prefix := extractPrefix(text, params.Position)
	return s.completionItems(prefix), nil
}

func (s *lspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.doc(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	word := wordAtPosition(text, int(params.Position.Line), int(params.Position.Character))
	if word == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindPlainText,
			Value: fmt.Sprintf("%s (%s)", word, s.classifyWord(word)),
		},
	}, nil
}

func (s *lspServer) setDoc(uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()
}

func (s *lspServer) doc(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// diagnostics reports the first lex or parse error, or the analyzer's
// warnings when the document parses.
func (s *lspServer) diagnostics(uri protocol.DocumentUri, text string) protocol.PublishDiagnosticsParams {
	return protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnosticsForSource(string(uri), text),
	}
}

func diagnosticsForSource(uri, text string) []protocol.Diagnostic {
	file, err := slumber.Parse(slumber.NewSource(uri, text))
	if err != nil {
		var serr *slumber.Error
		if errors.As(err, &serr) && len(serr.Trace) > 0 {
			return []protocol.Diagnostic{newDiagnostic(serr.Trace[0], protocol.DiagnosticSeverityError, serr.Message)}
		}
		return []protocol.Diagnostic{newDiagnostic(nil, protocol.DiagnosticSeverityError, err.Error())}
	}

	warnings := analyzeFile(file, false)
	out := make([]protocol.Diagnostic, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, newDiagnostic(w.Tok, protocol.DiagnosticSeverityWarning, w.Message))
	}
	return out
}

func newDiagnostic(tok *slumber.Token, severity protocol.DiagnosticSeverity, message string) protocol.Diagnostic {
	line := max(tok.Line()-1, 0)
	character := max(tok.Column()-1, 0)
	source := lspName
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(character)},
			End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(character + 1)},
		},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// completionItems lists keywords and globals starting with prefix,
// sorted by label.
func (s *lspServer) completionItems(prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	for _, word := range slumber.Keywords() {
		if strings.HasPrefix(word, prefix) {
			kind := protocol.CompletionItemKindKeyword
			detail := "keyword"
			items = append(items, protocol.CompletionItem{Label: word, Kind: &kind, Detail: &detail})
		}
	}
	for name, detail := range s.globals {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindFunction
		if detail == "class" {
			kind = protocol.CompletionItemKindClass
		}
		items = append(items, protocol.CompletionItem{Label: name, Kind: &kind, Detail: &detail})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

func (s *lspServer) classifyWord(word string) string {
	if slumber.IsKeyword(word) {
		return "keyword"
	}
	if detail, ok := s.globals[word]; ok {
		return detail
	}
	return "symbol"
}

// extractPrefix returns the identifier fragment before the cursor.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	runes := []rune(lines[pos.Line])
	col := min(int(pos.Character), len(runes))
	start := col
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	return string(runes[start:col])
}

func wordAtPosition(source string, line, character int) string {
	lines := strings.Split(source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	runes := []rune(lines[line])
	if len(runes) == 0 {
		return ""
	}
	cursor := min(max(character, 0), len(runes))
	if cursor == len(runes) {
		cursor--
	}
	if !isWordRune(runes[cursor]) {
		if cursor > 0 && isWordRune(runes[cursor-1]) {
			cursor--
		} else {
			return ""
		}
	}

	start := cursor
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	end := cursor
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	return string(runes[start:end])
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
