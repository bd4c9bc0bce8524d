package domain

import (
	"errors"
	"testing"
)

func TestRecognitionErrorMessage(t *testing.T) {
	t.Parallel()

	cases := map[RecognitionErrorCode]string{
		RecognitionErrorNoSpeech:     "I didn't hear anything. Please try again.",
		RecognitionErrorAudioCapture: "I didn't hear anything. Please try again.",
		RecognitionErrorNotAllowed:   "Microphone access was denied. Please enable it in your system settings.",
		RecognitionErrorNetwork:      "An error occurred: network",
		"bad-grammar":                "An error occurred: bad-grammar",
	}
	for code, want := range cases {
		code := code
		want := want
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			if got := RecognitionErrorMessage(code); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}
}

func TestSnapshotHint(t *testing.T) {
	t.Parallel()

	if got := (Snapshot{ErrorText: "boom", Processing: true}).Hint(); got != "boom" {
		t.Fatalf("expected error text to win, got %q", got)
	}
	if got := (Snapshot{Processing: true}).Hint(); got != "Thinking..." {
		t.Fatalf("unexpected processing hint: %q", got)
	}
	if got := (Snapshot{Listening: true}).Hint(); got != "Listening... Toggle the mic to finish." {
		t.Fatalf("unexpected listening hint: %q", got)
	}
	if got := (Snapshot{}).Hint(); got != "Toggle the microphone to start speaking" {
		t.Fatalf("unexpected idle hint: %q", got)
	}
}

func TestSnapshotLastReply(t *testing.T) {
	t.Parallel()

	snap := Snapshot{History: []ChatEntry{
		{Role: RoleModel, Text: "hi"},
		{Role: RoleUser, Text: "question"},
		{Role: RoleModel, Text: "answer"},
		{Role: RoleUser, Text: "follow up"},
	}}
	got, ok := snap.LastReply()
	if !ok || got != "answer" {
		t.Fatalf("unexpected last reply: %q ok=%v", got, ok)
	}

	if _, ok := (Snapshot{}).LastReply(); ok {
		t.Fatalf("expected no reply in empty history")
	}
}

func TestRecognitionErrorEvent(t *testing.T) {
	t.Parallel()

	ev := RecognitionErrorEvent(&RecognitionError{Code: RecognitionErrorNotAllowed, Err: errors.New("denied")})
	if ev.Kind != RecognitionEventError || ev.Code != RecognitionErrorNotAllowed || ev.Detail != "denied" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	ev = RecognitionErrorEvent(errors.New("dial failed"))
	if ev.Code != RecognitionErrorNetwork || ev.Detail != "dial failed" {
		t.Fatalf("unexpected fallback event: %+v", ev)
	}
}

func TestNewModelRequestError(t *testing.T) {
	t.Parallel()

	if NewModelRequestError("send", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}

	base := errors.New("timeout")
	err := NewModelRequestError("send", base)
	var modelErr *ModelRequestError
	if !errors.As(err, &modelErr) || !errors.Is(err, base) {
		t.Fatalf("expected wrapped model error, got %v", err)
	}
	if again := NewModelRequestError("outer", err); again != err {
		t.Fatalf("expected existing model error to pass through")
	}
}
