// Package position implements paragraph-index addressing for document
// evidence. All functions are pure: they never mutate their inputs and
// never fail on out-of-range values. Validate reports problems; every
// other function clamps or skips and keeps going, because upstream
// collaborators routinely return positions that are slightly off.
package position

import (
	"fmt"
	"sort"
	"strings"
)

// ParagraphSeparator joins paragraphs when a range is materialized into text.
const ParagraphSeparator = "\n\n"

// Range is an inclusive pair of paragraph indices. A single paragraph is
// expressed as Start == End.
//
// A Range is either absolute (indices into the full document's paragraph
// sequence) or relative (indices into the paragraph split of a parent
// node's extracted evidence). The two must never be conflated; ToAbsolute
// converts the latter into the former.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Content is the materialized result of resolving one Range against a
// paragraph sequence.
type Content struct {
	Text           string `json:"text"`
	Range          Range  `json:"range"`
	ParagraphCount int    `json:"paragraph_count"`
	WordCount      int    `json:"word_count"`
	Normalized     bool   `json:"is_normalized"`
}

// Extract resolves each position against paragraphs and returns one Content
// per position, in input order. When parent is non-nil the positions are
// treated as relative and shifted by parent.Start first. Positions are
// clamped into [0, len(paragraphs)-1] and inverted ranges are swapped.
// Positions whose resolved text is empty are skipped.
func Extract(positions []Range, paragraphs []string, parent *Range) []Content {
	if len(positions) == 0 || len(paragraphs) == 0 {
		return nil
	}

	var out []Content
	for _, pos := range positions {
		if parent != nil {
			pos.Start += parent.Start
			pos.End += parent.Start
		}
		pos = clampRange(pos, len(paragraphs))

		parts := make([]string, 0, pos.End-pos.Start+1)
		for i := pos.Start; i <= pos.End; i++ {
			p := normalizeText(paragraphs[i])
			if p == "" {
				continue
			}
			parts = append(parts, p)
		}
		if len(parts) == 0 {
			continue
		}

		text := strings.Join(parts, ParagraphSeparator)
		out = append(out, Content{
			Text:           text,
			Range:          pos,
			ParagraphCount: pos.End - pos.Start + 1,
			WordCount:      len(strings.Fields(text)),
			Normalized:     true,
		})
	}
	return out
}

// ToAbsolute shifts relative positions into absolute ones by adding the
// parent range's start to both endpoints.
func ToAbsolute(positions []Range, parent Range) []Range {
	if len(positions) == 0 {
		return nil
	}
	out := make([]Range, len(positions))
	for i, pos := range positions {
		out[i] = Range{Start: pos.Start + parent.Start, End: pos.End + parent.Start}
	}
	return out
}

// Validate checks positions against a paragraph count and reports every
// problem found. It never mutates its input; Clamp is the recovery
// counterpart.
func Validate(positions []Range, paragraphCount int) (bool, []string) {
	var problems []string
	for i, pos := range positions {
		if pos.Start < 0 {
			problems = append(problems, fmt.Sprintf("position %d: negative start %d", i, pos.Start))
		}
		if pos.End < 0 {
			problems = append(problems, fmt.Sprintf("position %d: negative end %d", i, pos.End))
		}
		if pos.Start >= paragraphCount {
			problems = append(problems, fmt.Sprintf("position %d: start %d beyond paragraph count %d", i, pos.Start, paragraphCount))
		}
		if pos.End >= paragraphCount {
			problems = append(problems, fmt.Sprintf("position %d: end %d beyond paragraph count %d", i, pos.End, paragraphCount))
		}
		if pos.Start > pos.End {
			problems = append(problems, fmt.Sprintf("position %d: inverted range [%d,%d]", i, pos.Start, pos.End))
		}
	}
	return len(problems) == 0, problems
}

// Clamp forces every position into [0, paragraphCount-1] and swaps
// inverted ranges. Clamp is idempotent.
func Clamp(positions []Range, paragraphCount int) []Range {
	if len(positions) == 0 {
		return nil
	}
	out := make([]Range, len(positions))
	for i, pos := range positions {
		out[i] = clampRange(pos, paragraphCount)
	}
	return out
}

// MergeOverlapping sorts ranges by start and merges every pair that
// overlaps or is adjacent (next.Start <= current.End+1).
func MergeOverlapping(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	merged := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Coverage reports the fraction of paragraphs covered by positions after
// clamping and overlap merging, in [0,1].
func Coverage(positions []Range, paragraphCount int) float64 {
	if len(positions) == 0 || paragraphCount <= 0 {
		return 0.0
	}

	merged := MergeOverlapping(Clamp(positions, paragraphCount))
	covered := 0
	for _, r := range merged {
		covered += r.End - r.Start + 1
	}
	return float64(covered) / float64(paragraphCount)
}

func clampRange(pos Range, paragraphCount int) Range {
	maxIdx := paragraphCount - 1
	if maxIdx < 0 {
		maxIdx = 0
	}
	if pos.Start > pos.End {
		pos.Start, pos.End = pos.End, pos.Start
	}
	pos.Start = clampIndex(pos.Start, maxIdx)
	pos.End = clampIndex(pos.End, maxIdx)
	return pos
}

func clampIndex(idx, maxIdx int) int {
	if idx < 0 {
		return 0
	}
	if idx > maxIdx {
		return maxIdx
	}
	return idx
}

func normalizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}

// SplitParagraphs splits evidence text back into its paragraph sequence,
// the inverse of the join performed by Extract. Used when a node's own
// extracted content becomes the addressing base for its children.
func SplitParagraphs(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, ParagraphSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
