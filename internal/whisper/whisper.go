package whisper

import "context"

// Request is the input for a transcription
type Request struct {
	FilePath string // absolute path to the audio file
	Language string // "auto", "en", "ko", etc.
	Model    string // model size tier ("tiny", "small", "medium", ...)
}

// Result is the output of a transcription
type Result struct {
	Text     string    // plain transcription text
	Language string    // detected language
	Segments []Segment // timed segments when the engine provides them
}

// Segment is a timed span of transcribed speech.
type Segment struct {
	StartMs uint64
	EndMs   uint64
	Text    string
}

// Transcriber is the common interface for all whisper engines
type Transcriber interface {
	// Transcribe converts an audio file to text
	Transcribe(ctx context.Context, req Request) (*Result, error)
	// Name returns the engine name
	Name() string
}
