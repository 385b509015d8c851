// Package jsoncolor renders JSON with theme colors for terminal output.
package jsoncolor

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"

	"github.com/colonyops/taskboard/internal/core/styles"
)

type kind int

const (
	kindSpace kind = iota
	kindKey
	kindString
	kindNumber
	kindBool
	kindNull
	kindPunct
	kindDelim
)

// Colorize pretty-prints data with two-space indentation and colors each
// token. Invalid JSON is returned unchanged.
func Colorize(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return render(buf.String())
}

// ColorizeLine colors data on a single line. Invalid JSON is returned
// unchanged.
func ColorizeLine(data []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return render(buf.String())
}

func render(src string) string {
	var out strings.Builder
	for i := 0; i < len(src); {
		tok, k := next(src, i)
		if k == kindSpace {
			out.WriteString(tok)
		} else {
			out.WriteString(styleFor(k).Render(tok))
		}
		i += len(tok)
	}
	return out.String()
}

// next returns the token starting at pos in well-formed JSON.
func next(src string, pos int) (string, kind) {
	switch ch := src[pos]; {
	case ch == '"':
		end := stringEnd(src, pos)
		tok := src[pos : end+1]
		if rest := strings.TrimLeft(src[end+1:], " \t\n"); strings.HasPrefix(rest, ":") {
			return tok, kindKey
		}
		return tok, kindString
	case ch == ':' || ch == ',':
		return src[pos : pos+1], kindPunct
	case strings.ContainsRune("{}[]", rune(ch)):
		return src[pos : pos+1], kindDelim
	case ch == '-' || (ch >= '0' && ch <= '9'):
		end := pos + 1
		for end < len(src) && strings.ContainsRune("0123456789.eE+-", rune(src[end])) {
			end++
		}
		return src[pos:end], kindNumber
	case strings.HasPrefix(src[pos:], "true"):
		return "true", kindBool
	case strings.HasPrefix(src[pos:], "false"):
		return "false", kindBool
	case strings.HasPrefix(src[pos:], "null"):
		return "null", kindNull
	default:
		return src[pos : pos+1], kindSpace
	}
}

// stringEnd returns the index of the quote closing the string at pos.
func stringEnd(s string, pos int) int {
	for i := pos + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return len(s) - 1
}

func styleFor(k kind) lipgloss.Style {
	switch k {
	case kindKey:
		return styles.TextPrimaryStyle
	case kindString:
		return styles.TextSuccessStyle
	case kindNumber:
		return styles.TextWarningStyle
	case kindBool:
		return styles.TextSecondaryStyle
	case kindNull:
		return styles.TextErrorStyle
	case kindPunct:
		return styles.TextMutedStyle
	default:
		return styles.TextForegroundStyle
	}
}
