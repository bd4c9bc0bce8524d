package usecase

import (
	"strings"

	"voicechat/internal/domain"
)

// transcriptAccumulator collects finalized segments for one listening session.
// Segments are stored by absolute result index, so a batch that re-delivers an
// index replaces the earlier text instead of appending it twice. Interim
// segments are never stored.
type transcriptAccumulator struct {
	finals []string
	filled []bool
}

func newTranscriptAccumulator() *transcriptAccumulator {
	return &transcriptAccumulator{}
}

// Add applies a result batch and returns the interim text for display.
func (a *transcriptAccumulator) Add(event domain.RecognitionEvent) string {
	var interim strings.Builder
	for i, result := range event.Results {
		if !result.Final {
			interim.WriteString(result.Transcript)
			continue
		}
		index := event.ResultIndex + i
		if index < 0 {
			continue
		}
		a.grow(index + 1)
		a.finals[index] = result.Transcript
		a.filled[index] = true
	}
	return interim.String()
}

// Text returns the finalized segments in index order.
func (a *transcriptAccumulator) Text() string {
	var b strings.Builder
	for i, text := range a.finals {
		if a.filled[i] {
			b.WriteString(text)
		}
	}
	return b.String()
}

func (a *transcriptAccumulator) Reset() {
	a.finals = a.finals[:0]
	a.filled = a.filled[:0]
}

func (a *transcriptAccumulator) grow(size int) {
	for len(a.finals) < size {
		a.finals = append(a.finals, "")
		a.filled = append(a.filled, false)
	}
}
