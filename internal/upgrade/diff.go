// SPDX-License-Identifier: AGPL-3.0-or-later

package upgrade

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineKind marks a diff line.
type LineKind byte

const (
	LineContext LineKind = ' '
	LineAdded   LineKind = '+'
	LineRemoved LineKind = '-'
)

// Line is one rendered diff line.
type Line struct {
	Kind LineKind
	Text string
}

// Hunk is a contiguous block of diff lines.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Differ computes display hunks between two file versions.
type Differ func(oldContent, newContent string) []Hunk

// GenerateFileDiff pairs lines by position: equal lines at the same index
// are context, any mismatch emits one removal and one addition, and the
// longer tail is emitted as pure removals or additions. It does not
// resynchronize after insertions. Empty content on either side counts as
// absent and yields no hunks.
func GenerateFileDiff(oldContent, newContent string) []Hunk {
	if oldContent == "" || newContent == "" {
		return nil
	}
	oldLines := strings.Split(oldContent, "\n")
	newLines := strings.Split(newContent, "\n")

	var lines []Line
	i, j := 0, 0
	for i < len(oldLines) && j < len(newLines) {
		if oldLines[i] == newLines[j] {
			lines = append(lines, Line{Kind: LineContext, Text: oldLines[i]})
		} else {
			lines = append(lines,
				Line{Kind: LineRemoved, Text: oldLines[i]},
				Line{Kind: LineAdded, Text: newLines[j]},
			)
		}
		i++
		j++
	}
	for ; i < len(oldLines); i++ {
		lines = append(lines, Line{Kind: LineRemoved, Text: oldLines[i]})
	}
	for ; j < len(newLines); j++ {
		lines = append(lines, Line{Kind: LineAdded, Text: newLines[j]})
	}

	return []Hunk{{
		OldStart: 1,
		OldLines: len(oldLines),
		NewStart: 1,
		NewLines: len(newLines),
		Lines:    lines,
	}}
}

// MyersDiff computes a minimal line diff with diffmatchpatch. It follows the
// same absent-content rule and single-hunk shape as GenerateFileDiff.
func MyersDiff(oldContent, newContent string) []Hunk {
	if oldContent == "" || newContent == "" {
		return nil
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	a, b, lineArray := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var lines []Line
	for _, d := range diffs {
		kind := LineContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = LineAdded
		case diffmatchpatch.DiffDelete:
			kind = LineRemoved
		}
		for _, text := range splitChunk(d.Text) {
			lines = append(lines, Line{Kind: kind, Text: text})
		}
	}

	return []Hunk{{
		OldStart: 1,
		OldLines: len(strings.Split(oldContent, "\n")),
		NewStart: 1,
		NewLines: len(strings.Split(newContent, "\n")),
		Lines:    lines,
	}}
}

// splitChunk splits a diffmatchpatch line chunk. Every line in a chunk ends
// with a newline except possibly the last line of the file.
func splitChunk(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// Format renders hunks in unified diff style.
func Format(file string, hunks []Hunk) string {
	if len(hunks) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", file, file)
	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
		for _, l := range h.Lines {
			b.WriteByte(byte(l.Kind))
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
