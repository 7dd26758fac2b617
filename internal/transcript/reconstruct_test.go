package transcript

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"vidscribe/internal/recognition"
)

func TestReconstructExample(t *testing.T) {
	words := []recognition.Word{
		{Text: "hi", Start: 0.0, End: 0.2},
		{Text: "there", Start: 0.3, End: 0.6},
		{Text: "bye", Start: 2.0, End: 2.3},
	}
	lines := Reconstruct(words, 0.8)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(lines), lines)
	}
	if got := FormatLine(lines[0]); got != "[0.0] hi there" {
		t.Fatalf("line 1 = %q", got)
	}
	if got := FormatLine(lines[1]); got != "[2.0] bye" {
		t.Fatalf("line 2 = %q", got)
	}
}

func TestReconstructEdgeCases(t *testing.T) {
	if lines := Reconstruct(nil, DefaultPauseThreshold); len(lines) != 0 {
		t.Fatalf("empty input produced %v", lines)
	}

	single := Reconstruct([]recognition.Word{{Text: "hello", Start: 1.25, End: 1.25}}, DefaultPauseThreshold)
	if len(single) != 1 || single[0].Start != 1.25 || single[0].Text() != "hello" {
		t.Fatalf("single token produced %+v", single)
	}

	// A gap equal to the threshold does not split.
	exact := Reconstruct([]recognition.Word{
		{Text: "a", Start: 0, End: 1},
		{Text: "b", Start: 1.5, End: 2},
	}, 0.5)
	if len(exact) != 1 {
		t.Fatalf("gap equal to threshold should not split: %+v", exact)
	}
}

func TestReconstructZeroPauseSplitsEveryGap(t *testing.T) {
	lines := Reconstruct([]recognition.Word{
		{Text: "a", Start: 0, End: 0.1},
		{Text: "b", Start: 0.2, End: 0.3},
		{Text: "c", Start: 0.3, End: 0.5},
	}, 0)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %+v", lines)
	}
	if got := FormatLine(lines[0]); got != "[0.0] a" {
		t.Fatalf("line 1 = %q", got)
	}
	// Touching words have no gap and stay together.
	if got := FormatLine(lines[1]); got != "[0.2] b c" {
		t.Fatalf("line 2 = %q", got)
	}
}

func randomWords(r *rand.Rand, n int) []recognition.Word {
	words := make([]recognition.Word, 0, n)
	t := 0.0
	for i := range n {
		t += r.Float64() * 2
		length := r.Float64() * 0.6
		if i%7 == 0 {
			length = 0
		}
		words = append(words, recognition.Word{Text: "w", Start: t, End: t + length})
		t += length
	}
	return words
}

func TestReconstructProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for iter := range 200 {
		words := randomWords(r, r.IntN(40))
		pause := 0.2 + r.Float64()
		if iter%5 == 0 {
			pause = 0
		}
		lines := Reconstruct(words, pause)

		if len(lines) > len(words) {
			t.Fatalf("iter %d: %d lines from %d words", iter, len(lines), len(words))
		}
		if (len(lines) == 0) != (len(words) == 0) {
			t.Fatalf("iter %d: lines empty=%v, words empty=%v", iter, len(lines) == 0, len(words) == 0)
		}

		// Gap property, walking lines and words in lockstep.
		idx := 0
		for li, line := range lines {
			if line.Start != words[idx].Start {
				t.Fatalf("iter %d: line %d starts at %v, first word at %v", iter, li, line.Start, words[idx].Start)
			}
			for wi := range line.Words {
				if wi > 0 {
					if gap := words[idx].Start - words[idx-1].End; gap > pause {
						t.Fatalf("iter %d: gap %v inside a line exceeds %v", iter, gap, pause)
					}
				} else if idx > 0 {
					if gap := words[idx].Start - words[idx-1].End; gap <= pause {
						t.Fatalf("iter %d: line break at gap %v <= %v", iter, gap, pause)
					}
				}
				idx++
			}
		}
		if idx != len(words) {
			t.Fatalf("iter %d: lines hold %d words, want %d", iter, idx, len(words))
		}

		// Idempotence: re-running on the words of each line keeps the grouping.
		idx = 0
		var again []Line
		for _, line := range lines {
			again = append(again, Reconstruct(words[idx:idx+len(line.Words)], pause)...)
			idx += len(line.Words)
		}
		if !reflect.DeepEqual(again, lines) {
			t.Fatalf("iter %d: regrouping changed lines", iter)
		}
		if !reflect.DeepEqual(Reconstruct(words, pause), lines) {
			t.Fatalf("iter %d: reconstruct is not deterministic", iter)
		}
	}
}

func TestFromSegments(t *testing.T) {
	lines := FromSegments([]recognition.Segment{
		{Start: 12.34, Text: "  Good   morning. "},
		{Start: 15, Text: " "},
		{Start: 3723.05, Text: "Later."},
	})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %+v", lines)
	}
	if FormatLine(lines[0]) != "[12.3] Good morning." || FormatLine(lines[1]) != "[3723.1] Later." {
		t.Fatalf("unexpected rendering %q / %q", FormatLine(lines[0]), FormatLine(lines[1]))
	}
}
