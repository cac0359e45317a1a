// Package voice defines recording encodings and the capture state machine.
package voice

// Encoding is a container/codec the capture device may produce.
type Encoding struct {
	MimeType  string `json:"mime_type"`
	Extension string `json:"extension"`
}

// Preferences is the encoding preference order, best first.
var Preferences = []Encoding{
	{MimeType: "audio/webm;codecs=opus", Extension: "webm"},
	{MimeType: "audio/webm", Extension: "webm"},
	{MimeType: "audio/ogg;codecs=opus", Extension: "ogg"},
	{MimeType: "audio/ogg", Extension: "ogg"},
	{MimeType: "audio/mp4", Extension: "mp4"},
	{MimeType: "audio/wav", Extension: "wav"},
}

// Fallback is used when the device reports none of the preferences.
var Fallback = Encoding{MimeType: "audio/webm", Extension: "webm"}

// Select returns the first preference the device supports, or Fallback.
func Select(supports func(mimeType string) bool) Encoding {
	for _, e := range Preferences {
		if supports(e.MimeType) {
			return e
		}
	}
	return Fallback
}

// Filename is the upload name for a recording in e.
func (e Encoding) Filename() string { return "recording." + e.Extension }

// ForExtension finds the first preference with the given file extension.
func ForExtension(ext string) (Encoding, bool) {
	for _, e := range Preferences {
		if e.Extension == ext {
			return e, true
		}
	}
	return Encoding{}, false
}

// State is the capture pipeline state.
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
)

// Transcription is the backend's reply for an uploaded recording.
type Transcription struct {
	Text    string `json:"transcription"`
	Success bool   `json:"success"`
}

// OK reports whether the transcription produced usable text.
func (t Transcription) OK() bool { return t.Success && t.Text != "" }

// AppendTo joins text onto existing input with a single space.
func AppendTo(input, text string) string {
	if input == "" {
		return text
	}
	return input + " " + text
}
