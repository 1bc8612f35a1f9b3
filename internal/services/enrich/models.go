package enrich

import "github.com/Abdulla090/knote/internal/services/notes"

// Result is the outcome of a JSON-producing enrichment. The model's reply is
// always observable: when it parsed, Value holds it and Parsed is true; when
// it did not, Raw still carries the text instead of a silent default.
type Result[T any] struct {
	Value  T      `json:"value"`
	Raw    string `json:"raw,omitempty"`
	Parsed bool   `json:"parsed"`
}

// Transcript is a timestamped transcription with optional speaker labels.
type Transcript struct {
	Language string                       `json:"language"`
	Segments []notes.TranscriptionSegment `json:"segments"`
}

// Category is a folder suggestion for a note.
type Category struct {
	Folder             *string `json:"folder"`
	Confidence         float64 `json:"confidence"`
	SuggestedNewFolder *string `json:"suggestedNewFolder"`
}

// Mood is the emotional read of a note. Score runs 0 (very negative) to 1
// (very positive).
type Mood struct {
	Mood   string  `json:"mood"`
	Reason string  `json:"reason"`
	Score  float64 `json:"score"`
}

// Flashcard is one study question generated from note content.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MindMapNode is one node of a hierarchical mind map.
type MindMapNode struct {
	ID       string        `json:"id"`
	Label    string        `json:"label"`
	Children []MindMapNode `json:"children,omitempty"`
}
