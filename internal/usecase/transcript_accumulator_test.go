package usecase

import (
	"testing"

	"voicechat/internal/domain"
)

func resultBatch(index int, results ...domain.RecognitionResult) domain.RecognitionEvent {
	return domain.RecognitionEvent{Kind: domain.RecognitionEventResult, ResultIndex: index, Results: results}
}

func final(text string) domain.RecognitionResult {
	return domain.RecognitionResult{Transcript: text, Final: true}
}

func interim(text string) domain.RecognitionResult {
	return domain.RecognitionResult{Transcript: text}
}

func TestTranscriptAccumulatorKeepsFinalsAcrossBatches(t *testing.T) {
	t.Parallel()

	acc := newTranscriptAccumulator()
	if got := acc.Add(resultBatch(0, interim("hel"))); got != "hel" {
		t.Fatalf("unexpected interim: %q", got)
	}
	if got := acc.Add(resultBatch(0, final("hello "))); got != "" {
		t.Fatalf("expected no interim, got %q", got)
	}
	if got := acc.Add(resultBatch(1, interim("there"))); got != "there" {
		t.Fatalf("unexpected interim: %q", got)
	}
	acc.Add(resultBatch(1, interim("there you")))
	acc.Add(resultBatch(1, final("there you go")))

	if got := acc.Text(); got != "hello there you go" {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestTranscriptAccumulatorReplacesRedeliveredIndex(t *testing.T) {
	t.Parallel()

	acc := newTranscriptAccumulator()
	acc.Add(resultBatch(0, final("one "), final("too ")))
	acc.Add(resultBatch(1, final("two "), final("three")))

	if got := acc.Text(); got != "one two three" {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestTranscriptAccumulatorOrdersByIndexNotArrival(t *testing.T) {
	t.Parallel()

	acc := newTranscriptAccumulator()
	acc.Add(resultBatch(2, final("c")))
	acc.Add(resultBatch(0, final("a"), final("b")))

	if got := acc.Text(); got != "abc" {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestTranscriptAccumulatorInterimNeverOverwritesFinal(t *testing.T) {
	t.Parallel()

	acc := newTranscriptAccumulator()
	acc.Add(resultBatch(0, final("kept")))
	if got := acc.Add(resultBatch(0, interim("noise"), interim(" more"))); got != "noise more" {
		t.Fatalf("unexpected interim: %q", got)
	}
	if got := acc.Text(); got != "kept" {
		t.Fatalf("unexpected transcript: %q", got)
	}
}

func TestTranscriptAccumulatorInterimOnlyBatches(t *testing.T) {
	t.Parallel()

	acc := newTranscriptAccumulator()
	for i := 0; i < 5; i++ {
		acc.Add(resultBatch(0, interim("thinking")))
	}
	if got := acc.Text(); got != "" {
		t.Fatalf("expected empty transcript, got %q", got)
	}
}

func TestTranscriptAccumulatorReset(t *testing.T) {
	t.Parallel()

	acc := newTranscriptAccumulator()
	acc.Add(resultBatch(0, final("stale")))
	acc.Reset()
	acc.Add(resultBatch(0, final("fresh")))
	if got := acc.Text(); got != "fresh" {
		t.Fatalf("unexpected transcript after reset: %q", got)
	}
}
