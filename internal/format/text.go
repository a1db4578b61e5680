// Package format provides shared text formatting utilities for terminal and
// markdown report output.
package format

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const variationSelector = '\uFE0F'

// ansiRegex matches ANSI SGR sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripAnsi removes ANSI escape sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// runeCells is the column width of r, given the rune that follows it.
// A base rune followed by VS16 renders as a two-column emoji.
func runeCells(r, next rune) int {
	switch {
	case r == variationSelector:
		return 0
	case next == variationSelector:
		return 2
	default:
		return runewidth.RuneWidth(r)
	}
}

// DisplayWidth returns the visible width of s in terminal columns, ignoring
// ANSI colour codes.
func DisplayWidth(s string) int {
	runes := []rune(StripAnsi(s))
	width := 0
	for i, r := range runes {
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		width += runeCells(r, next)
	}
	return width
}

// TruncateToWidth shortens s to at most maxWidth visible columns, keeping any
// colour codes it passes and ending with "..." and a reset when it cuts.
// Returns the result and its visible width.
func TruncateToWidth(s string, maxWidth int) (string, int) {
	if w := DisplayWidth(s); w <= maxWidth {
		return s, w
	}
	budget := maxWidth - 3
	if budget < 0 {
		budget = 0
	}

	var b strings.Builder
	width := 0
	for pos := 0; pos < len(s); {
		if loc := ansiRegex.FindStringIndex(s[pos:]); loc != nil && loc[0] == 0 {
			b.WriteString(s[pos : pos+loc[1]])
			pos += loc[1]
			continue
		}
		r, size := utf8.DecodeRuneInString(s[pos:])
		next, _ := utf8.DecodeRuneInString(s[pos+size:])
		cells := runeCells(r, next)
		if width+cells > budget {
			break
		}
		b.WriteString(s[pos : pos+size])
		width += cells
		pos += size
	}
	b.WriteString("...\033[0m")
	return b.String(), width + 3
}

// PadRight pads s with spaces to reach the target visible width.
func PadRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}
