// Package linemap builds the line-correspondence index between a source
// document and its generated listing.
//
// Matching a listing annotation to the active source document is by
// filename suffix: the source path must end with the basename of the
// annotated file. This tolerates path normalization differences between
// the listing tool and the editor, at the cost of not disambiguating
// two source files that share a basename. That limitation is inherited
// behavior and intentionally kept.
package linemap

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/hartfelt/asmlens/internal/core/listing"
)

// Index maps a 0-based source line to the listing line indices
// produced from it, in ascending listing order. An Index is built once
// and never mutated; a listing change builds a replacement.
type Index struct {
	buckets map[int][]int
}

// Build indexes lines against the source document at sourcePath.
// Computed source lines outside the document's range are recorded
// as-is; range checks belong to lookup-time consumers, which know the
// current line counts.
func Build(lines []listing.Line, sourcePath string) *Index {
	buckets := map[int][]int{}
	for _, line := range lines {
		src, ok := Resolve(line, sourcePath)
		if !ok {
			continue
		}
		buckets[src] = append(buckets[src], line.Index)
	}
	return &Index{buckets: buckets}
}

// Resolve applies the per-line source test: the line must carry an
// annotation whose file basename the source path ends with. Returns
// the effective 0-based source line.
func Resolve(line listing.Line, sourcePath string) (int, bool) {
	if line.Source == nil {
		return 0, false
	}
	if !strings.HasSuffix(sourcePath, filepath.Base(line.Source.File)) {
		return 0, false
	}
	return line.Source.Line - 1, true
}

// Lookup returns the listing indices for a 0-based source line, or nil
// when the line produced no listing lines.
func (x *Index) Lookup(sourceLine int) []int {
	if x == nil {
		return nil
	}
	return x.buckets[sourceLine]
}

// Len returns the number of source lines with at least one listing line.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.buckets)
}

// SourceLines returns the indexed source lines in ascending order.
func (x *Index) SourceLines() []int {
	if x == nil {
		return nil
	}
	out := make([]int, 0, len(x.buckets))
	for s := range x.buckets {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// Unused returns the 0-based source lines in [0, lineCount) that have
// no corresponding listing lines, in ascending order. Recomputed in
// full on every call; no incremental diffing.
func (x *Index) Unused(lineCount int) []int {
	var out []int
	for s := 0; s < lineCount; s++ {
		if x == nil || len(x.buckets[s]) == 0 {
			out = append(out, s)
		}
	}
	return out
}
