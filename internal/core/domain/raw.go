package domain

// RawDocument represents bytes read from outside the core.
// It is the loader's output before normalisation.
type RawDocument struct {
	// SourcePath is the original location (file path, URL, etc).
	SourcePath string

	// Kind selects the extraction function.
	Kind ContentKind

	// Content is the raw bytes.
	Content []byte

	// SizeBytes is the size reported by the source. Zero means len(Content).
	SizeBytes int
}

// Size returns the reported size, falling back to the content length.
func (r *RawDocument) Size() int {
	if r.SizeBytes > 0 {
		return r.SizeBytes
	}
	return len(r.Content)
}

// ChangeType represents the type of document change.
type ChangeType int

const (
	// ChangeCreated indicates a new document.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified document.
	ChangeUpdated

	// ChangeDeleted indicates a removed document.
	ChangeDeleted
)

// String returns the string representation.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return unknownDescription
	}
}

// RawDocumentChange represents a change event from a watcher.
// For ChangeDeleted only Document.SourcePath is set.
type RawDocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Document is the affected document.
	Document RawDocument
}
