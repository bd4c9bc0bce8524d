package domain

// SessionState models the voice session lifecycle.
type SessionState string

const (
	SessionStateIdle       SessionState = "idle"
	SessionStateListening  SessionState = "listening"
	SessionStateProcessing SessionState = "processing"
)

// Role identifies who authored a chat entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatEntry is one turn of the transcript. Entries are never edited once appended.
type ChatEntry struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Snapshot is the read-only projection of controller state handed to views.
type Snapshot struct {
	State       SessionState `json:"state"`
	Listening   bool         `json:"listening"`
	Processing  bool         `json:"processing"`
	History     []ChatEntry  `json:"history"`
	InterimText string       `json:"interimText"`
	ErrorText   string       `json:"errorText,omitempty"`
}

// Hint returns the footer status line for the snapshot.
func (s Snapshot) Hint() string {
	switch {
	case s.ErrorText != "":
		return s.ErrorText
	case s.Processing:
		return "Thinking..."
	case s.Listening:
		return "Listening... Toggle the mic to finish."
	default:
		return "Toggle the microphone to start speaking"
	}
}

// LastReply returns the most recent model entry text, if any.
func (s Snapshot) LastReply() (string, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleModel {
			return s.History[i].Text, true
		}
	}
	return "", false
}

// RecognitionEventKind identifies a speech recognition event.
type RecognitionEventKind string

const (
	RecognitionEventResult RecognitionEventKind = "result"
	RecognitionEventEnd    RecognitionEventKind = "end"
	RecognitionEventError  RecognitionEventKind = "error"
)

// RecognitionResult is a single recognized segment.
type RecognitionResult struct {
	Transcript string `json:"transcript"`
	Final      bool   `json:"final"`
}

// RecognitionEvent is emitted by a listening session.
//
// For result events, Results[i] is the segment at absolute index ResultIndex+i.
// A later batch may start at an index that was already delivered; it replaces
// those segments.
type RecognitionEvent struct {
	Kind        RecognitionEventKind `json:"kind"`
	ResultIndex int                  `json:"resultIndex,omitempty"`
	Results     []RecognitionResult  `json:"results,omitempty"`
	Code        RecognitionErrorCode `json:"code,omitempty"`
	Detail      string               `json:"detail,omitempty"`
}

// RecognitionErrorCode is the fixed vocabulary of recognition failures.
type RecognitionErrorCode string

const (
	RecognitionErrorNoSpeech             RecognitionErrorCode = "no-speech"
	RecognitionErrorAborted              RecognitionErrorCode = "aborted"
	RecognitionErrorAudioCapture         RecognitionErrorCode = "audio-capture"
	RecognitionErrorNetwork              RecognitionErrorCode = "network"
	RecognitionErrorNotAllowed           RecognitionErrorCode = "not-allowed"
	RecognitionErrorServiceNotAllowed    RecognitionErrorCode = "service-not-allowed"
	RecognitionErrorLanguageNotSupported RecognitionErrorCode = "language-not-supported"
)

// RecognitionErrorMessage maps a recognition error code to user-facing text.
func RecognitionErrorMessage(code RecognitionErrorCode) string {
	switch code {
	case RecognitionErrorNoSpeech, RecognitionErrorAudioCapture:
		return "I didn't hear anything. Please try again."
	case RecognitionErrorNotAllowed:
		return "Microphone access was denied. Please enable it in your system settings."
	default:
		return "An error occurred: " + string(code)
	}
}

const (
	// UnsupportedMessage is shown once when no recognition engine is available.
	UnsupportedMessage = "Speech recognition is not supported on this system."
	// ModelErrorMessage is the transient banner shown after a failed model request.
	ModelErrorMessage = "Sorry, I encountered an error. Please try again."
	// ModelFallbackReply is appended to the history in place of a failed reply.
	ModelFallbackReply = "I seem to have hit a snag. Could you repeat that?"
	// DefaultGreeting seeds an empty history.
	DefaultGreeting = "Hello! How can I assist you today? Toggle the microphone to speak."
	// DefaultSystemInstruction is sent when the model session is created.
	DefaultSystemInstruction = "You are a helpful and friendly voice assistant. Provide concise and clear answers."
)
