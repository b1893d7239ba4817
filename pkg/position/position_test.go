package position

import (
	"math"
	"reflect"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name           string
		positions      []Range
		paragraphCount int
		want           []Range
	}{
		{
			name:           "empty input",
			positions:      nil,
			paragraphCount: 10,
			want:           nil,
		},
		{
			name:           "in range untouched",
			positions:      []Range{{Start: 2, End: 5}},
			paragraphCount: 10,
			want:           []Range{{Start: 2, End: 5}},
		},
		{
			name:           "negative start",
			positions:      []Range{{Start: -3, End: 4}},
			paragraphCount: 10,
			want:           []Range{{Start: 0, End: 4}},
		},
		{
			name:           "end beyond count",
			positions:      []Range{{Start: 8, End: 25}},
			paragraphCount: 10,
			want:           []Range{{Start: 8, End: 9}},
		},
		{
			name:           "inverted range swapped",
			positions:      []Range{{Start: 7, End: 3}},
			paragraphCount: 10,
			want:           []Range{{Start: 3, End: 7}},
		},
		{
			name:           "inverted and out of range",
			positions:      []Range{{Start: 30, End: -2}},
			paragraphCount: 10,
			want:           []Range{{Start: 0, End: 9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.positions, tt.paragraphCount)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Clamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampIdempotent(t *testing.T) {
	inputs := [][]Range{
		{{Start: -5, End: 100}, {Start: 9, End: 2}, {Start: 0, End: 0}},
		{{Start: 3, End: 3}},
		{{Start: 50, End: 50}},
	}
	for _, positions := range inputs {
		for _, count := range []int{1, 5, 20} {
			once := Clamp(positions, count)
			twice := Clamp(once, count)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("Clamp not idempotent for %v count=%d: %v != %v", positions, count, once, twice)
			}
		}
	}
}

func TestToAbsolute(t *testing.T) {
	parent := Range{Start: 10, End: 20}
	got := ToAbsolute([]Range{{Start: 0, End: 3}, {Start: 5, End: 5}}, parent)
	want := []Range{{Start: 10, End: 13}, {Start: 15, End: 15}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToAbsolute() = %v, want %v", got, want)
	}
}

func TestToAbsoluteRoundTrip(t *testing.T) {
	parent := Range{Start: 7, End: 19}
	for r := 0; r <= parent.End-parent.Start; r++ {
		abs := ToAbsolute([]Range{{Start: r, End: r}}, parent)
		if abs[0].Start-parent.Start != r {
			t.Errorf("round trip failed for relative %d: got absolute %d", r, abs[0].Start)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		positions    []Range
		count        int
		wantOK       bool
		wantProblems int
	}{
		{
			name:      "valid positions",
			positions: []Range{{Start: 0, End: 4}, {Start: 9, End: 9}},
			count:     10,
			wantOK:    true,
		},
		{
			name:         "negative index",
			positions:    []Range{{Start: -1, End: 4}},
			count:        10,
			wantOK:       false,
			wantProblems: 1,
		},
		{
			name:         "beyond count",
			positions:    []Range{{Start: 0, End: 10}},
			count:        10,
			wantOK:       false,
			wantProblems: 1,
		},
		{
			name:         "inverted",
			positions:    []Range{{Start: 5, End: 2}},
			count:        10,
			wantOK:       false,
			wantProblems: 1,
		},
		{
			name:   "empty input valid",
			count:  10,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, problems := Validate(tt.positions, tt.count)
			if ok != tt.wantOK {
				t.Errorf("Validate() ok = %v, want %v (problems: %v)", ok, tt.wantOK, problems)
			}
			if tt.wantProblems > 0 && len(problems) != tt.wantProblems {
				t.Errorf("Validate() reported %d problems, want %d: %v", len(problems), tt.wantProblems, problems)
			}
		})
	}
}

func TestMergeOverlapping(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
		want   []Range
	}{
		{
			name:   "empty",
			ranges: nil,
			want:   nil,
		},
		{
			name:   "overlapping pair plus separate",
			ranges: []Range{{0, 5}, {3, 8}, {10, 12}},
			want:   []Range{{0, 8}, {10, 12}},
		},
		{
			name:   "adjacent ranges merge",
			ranges: []Range{{0, 5}, {6, 10}, {11, 15}},
			want:   []Range{{0, 15}},
		},
		{
			name:   "unsorted input",
			ranges: []Range{{10, 12}, {0, 5}, {3, 8}},
			want:   []Range{{0, 8}, {10, 12}},
		},
		{
			name:   "contained range",
			ranges: []Range{{0, 10}, {2, 4}},
			want:   []Range{{0, 10}},
		},
		{
			name:   "gap of two stays split",
			ranges: []Range{{0, 5}, {7, 9}},
			want:   []Range{{0, 5}, {7, 9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeOverlapping(tt.ranges)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeOverlapping() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoverage(t *testing.T) {
	tests := []struct {
		name      string
		positions []Range
		count     int
		want      float64
	}{
		{
			name:      "spec example",
			positions: []Range{{0, 4}, {8, 9}},
			count:     20,
			want:      0.35,
		},
		{
			name:      "empty positions",
			positions: nil,
			count:     20,
			want:      0.0,
		},
		{
			name:      "zero paragraphs",
			positions: []Range{{0, 4}},
			count:     0,
			want:      0.0,
		},
		{
			name:      "full coverage",
			positions: []Range{{0, 19}},
			count:     20,
			want:      1.0,
		},
		{
			name:      "overlaps counted once",
			positions: []Range{{0, 9}, {5, 9}},
			count:     20,
			want:      0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coverage(tt.positions, tt.count)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Coverage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	paragraphs := []string{
		"First paragraph here.",
		"Second paragraph with more words.",
		"  Third needs trimming.  ",
		"",
		"Fifth paragraph.",
	}

	tests := []struct {
		name      string
		positions []Range
		parent    *Range
		wantTexts []string
		wantWords []int
	}{
		{
			name:      "single range",
			positions: []Range{{Start: 0, End: 1}},
			wantTexts: []string{"First paragraph here.\n\nSecond paragraph with more words."},
			wantWords: []int{8},
		},
		{
			name:      "empty paragraph dropped from join",
			positions: []Range{{Start: 2, End: 4}},
			wantTexts: []string{"Third needs trimming.\n\nFifth paragraph."},
			wantWords: []int{5},
		},
		{
			name:      "relative shifted by parent",
			positions: []Range{{Start: 0, End: 0}},
			parent:    &Range{Start: 4, End: 4},
			wantTexts: []string{"Fifth paragraph."},
			wantWords: []int{2},
		},
		{
			name:      "out of range clamped",
			positions: []Range{{Start: 3, End: 99}},
			wantTexts: []string{"Fifth paragraph."},
			wantWords: []int{2},
		},
		{
			name:      "multiple positions preserve order",
			positions: []Range{{Start: 4, End: 4}, {Start: 0, End: 0}},
			wantTexts: []string{"Fifth paragraph.", "First paragraph here."},
			wantWords: []int{2, 3},
		},
		{
			name:      "empty input",
			positions: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.positions, paragraphs, tt.parent)
			if len(got) != len(tt.wantTexts) {
				t.Fatalf("Extract() returned %d items, want %d", len(got), len(tt.wantTexts))
			}
			for i, item := range got {
				if item.Text != tt.wantTexts[i] {
					t.Errorf("item[%d].Text = %q, want %q", i, item.Text, tt.wantTexts[i])
				}
				if item.WordCount != tt.wantWords[i] {
					t.Errorf("item[%d].WordCount = %d, want %d", i, item.WordCount, tt.wantWords[i])
				}
				if !item.Normalized {
					t.Errorf("item[%d].Normalized = false, want true", i)
				}
			}
		})
	}
}

func TestExtractDegenerateRangeSkipped(t *testing.T) {
	paragraphs := []string{"", "   ", "content"}
	got := Extract([]Range{{Start: 0, End: 1}, {Start: 2, End: 2}}, paragraphs, nil)
	if len(got) != 1 {
		t.Fatalf("Extract() returned %d items, want 1", len(got))
	}
	if got[0].Text != "content" {
		t.Errorf("Extract() text = %q, want %q", got[0].Text, "content")
	}
}

func TestSplitParagraphsRoundTrip(t *testing.T) {
	paragraphs := []string{"alpha", "beta", "gamma"}
	content := Extract([]Range{{Start: 0, End: 2}}, paragraphs, nil)
	if len(content) != 1 {
		t.Fatalf("Extract() returned %d items, want 1", len(content))
	}
	got := SplitParagraphs(content[0].Text)
	if !reflect.DeepEqual(got, paragraphs) {
		t.Errorf("SplitParagraphs() = %v, want %v", got, paragraphs)
	}
}
