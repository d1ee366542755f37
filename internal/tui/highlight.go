package tui

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// syntaxStyle is the chroma style used for source highlighting.
var syntaxStyle = chromastyles.Get("catppuccin-frappe")

// HighlightLines tokenizes code with a lexer picked from path and
// renders each line with ANSI colors. Returns nil when no lexer
// matches; callers then fall back to plain text.
func HighlightLines(path string, lines []string) []string {
	tokens := tokenize(path, lines)
	if tokens == nil {
		return nil
	}

	out := make([]string, len(lines))
	for i, lineTokens := range tokens {
		out[i] = renderTokens(lineTokens)
	}
	return out
}

// tokenize splits the file into per-line token slices, breaking tokens
// that span line boundaries.
func tokenize(path string, lines []string) [][]chroma.Token {
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Analyse(strings.Join(lines, "\n"))
	}
	if lexer == nil {
		return nil
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, strings.Join(lines, "\n"))
	if err != nil {
		return nil
	}

	result := make([][]chroma.Token, len(lines))
	lineIdx := 0
	for _, tok := range iterator.Tokens() {
		if lineIdx >= len(lines) {
			break
		}
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lineIdx++
				if lineIdx >= len(lines) {
					break
				}
			}
			if part != "" {
				result[lineIdx] = append(result[lineIdx], chroma.Token{Type: tok.Type, Value: part})
			}
		}
	}
	return result
}

func renderTokens(tokens []chroma.Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		color := tokenColor(tok.Type)
		if color == "" {
			sb.WriteString(tok.Value)
			continue
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(tok.Value))
	}
	return sb.String()
}

func tokenColor(tt chroma.TokenType) string {
	if syntaxStyle == nil {
		return ""
	}
	entry := syntaxStyle.Get(tt)
	if !entry.Colour.IsSet() {
		return ""
	}
	return fmt.Sprintf("#%06x", int(entry.Colour)&0xFFFFFF)
}
