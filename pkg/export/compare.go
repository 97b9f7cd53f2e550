package export

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeKind classifies a line of a ranking comparison.
type ChangeKind int

// Change kinds.
const (
	Unchanged ChangeKind = iota
	Removed
	Added
)

// DiffLine is one method in a ranking comparison. Ranks are 1-based; zero
// means the method is absent from that side.
type DiffLine struct {
	Kind    ChangeKind
	Method  string
	OldRank int
	NewRank int
}

// Comparison is the line diff between two method rankings.
type Comparison struct {
	Lines []DiffLine
}

// CompareRankings diffs the method order of two CSV exports. Methods that
// only moved appear as a removal plus an addition with both ranks set.
func CompareRankings(oldRows, newRows []Row) *Comparison {
	oldMethods, newMethods := methods(oldRows), methods(newRows)
	oldRank, newRank := rankIndex(oldMethods), rankIndex(newMethods)

	dmp := diffmatchpatch.New()
	src, dst, _ := dmp.DiffLinesToRunes(joinLines(oldMethods), joinLines(newMethods))
	diffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(src, dst, false))

	result := &Comparison{Lines: make([]DiffLine, 0, max(len(oldMethods), len(newMethods)))}
	oi, ni := 0, 0

	for _, d := range diffs {
		count := utf8.RuneCountInString(d.Text)

		for range count {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				m := oldMethods[oi]
				result.Lines = append(result.Lines, DiffLine{Kind: Unchanged, Method: m, OldRank: oi + 1, NewRank: ni + 1})
				oi++
				ni++
			case diffmatchpatch.DiffDelete:
				m := oldMethods[oi]
				result.Lines = append(result.Lines, DiffLine{Kind: Removed, Method: m, OldRank: oi + 1, NewRank: newRank[m]})
				oi++
			case diffmatchpatch.DiffInsert:
				m := newMethods[ni]
				result.Lines = append(result.Lines, DiffLine{Kind: Added, Method: m, OldRank: oldRank[m], NewRank: ni + 1})
				ni++
			}
		}
	}

	return result
}

// Changed reports whether the rankings differ.
func (c *Comparison) Changed() bool {
	for _, line := range c.Lines {
		if line.Kind != Unchanged {
			return true
		}
	}

	return false
}

// Counts returns the number of unchanged, removed and added lines.
func (c *Comparison) Counts() (unchanged, removed, added int) {
	for _, line := range c.Lines {
		switch line.Kind {
		case Unchanged:
			unchanged++
		case Removed:
			removed++
		case Added:
			added++
		}
	}

	return unchanged, removed, added
}

// WriteText writes the comparison in a unified-diff-like form.
func (c *Comparison) WriteText(w io.Writer) error {
	for _, line := range c.Lines {
		var err error

		switch line.Kind {
		case Unchanged:
			_, err = fmt.Fprintf(w, "  %4d  %s\n", line.NewRank, line.Method)
		case Removed:
			_, err = fmt.Fprintf(w, "- %4d  %s%s\n", line.OldRank, line.Method, movedTo(line.NewRank))
		case Added:
			_, err = fmt.Fprintf(w, "+ %4d  %s%s\n", line.NewRank, line.Method, movedFrom(line.OldRank))
		}

		if err != nil {
			return fmt.Errorf("write comparison: %w", err)
		}
	}

	return nil
}

func movedTo(rank int) string {
	if rank == 0 {
		return ""
	}

	return fmt.Sprintf(" (now #%d)", rank)
}

func movedFrom(rank int) string {
	if rank == 0 {
		return ""
	}

	return fmt.Sprintf(" (was #%d)", rank)
}

func methods(rows []Row) []string {
	out := make([]string, len(rows))

	for i, row := range rows {
		out[i] = row.Method
	}

	return out
}

func rankIndex(methods []string) map[string]int {
	index := make(map[string]int, len(methods))

	for i, m := range methods {
		if _, ok := index[m]; !ok {
			index[m] = i + 1
		}
	}

	return index
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}
