// Package listing models generated low-level program listings whose
// lines are optionally annotated with the source location they were
// produced from, and provides providers that build such listings.
package listing

import "strings"

// idPrefix namespaces derived listing identities so they can never
// collide with a plain source file path.
const idPrefix = "asm://"

// SourceRef ties a listing line back to its originating source line.
// Line is 1-based, as emitted by compilers and binutils.
type SourceRef struct {
	File string
	Line int
}

// Line is one line of a listing. Index is its 0-based position.
// Source is nil when the line has no source annotation.
type Line struct {
	Index  int
	Text   string
	Source *SourceRef
}

// Listing is an immutable snapshot of a generated listing. A
// regeneration produces a whole new Listing; Lines are never mutated
// in place.
type Listing struct {
	ID    string
	Lines []Line
}

// LineCount returns the number of lines in the listing.
func (l *Listing) LineCount() int {
	if l == nil {
		return 0
	}
	return len(l.Lines)
}

// ID derives the canonical listing identity for a source document.
func ID(sourcePath string) string {
	return idPrefix + sourcePath
}

// SourcePath recovers the source document path from a listing identity.
// The second return is false when id is not a listing identity.
func SourcePath(id string) (string, bool) {
	if !strings.HasPrefix(id, idPrefix) {
		return "", false
	}
	return strings.TrimPrefix(id, idPrefix), true
}
