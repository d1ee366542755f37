package linemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartfelt/asmlens/internal/core/listing"
)

func ref(file string, line int) *listing.SourceRef {
	return &listing.SourceRef{File: file, Line: line}
}

// The canonical four-line listing: one unannotated line, two lines from
// a.c:3, one from a.c:10.
func sampleLines() []listing.Line {
	return []listing.Line{
		{Index: 0, Text: "main:"},
		{Index: 1, Text: "push %rbp", Source: ref("a.c", 3)},
		{Index: 2, Text: "mov %rsp,%rbp", Source: ref("a.c", 3)},
		{Index: 3, Text: "ret", Source: ref("a.c", 10)},
	}
}

func TestBuild_Sample(t *testing.T) {
	x := Build(sampleLines(), "/proj/a.c")

	assert.Equal(t, 2, x.Len())
	assert.Equal(t, []int{1, 2}, x.Lookup(2))
	assert.Equal(t, []int{3}, x.Lookup(9))
	assert.Nil(t, x.Lookup(5))
	assert.Equal(t, []int{2, 9}, x.SourceLines())
}

func TestBuild_Unused(t *testing.T) {
	x := Build(sampleLines(), "/proj/a.c")

	unused := x.Unused(12)
	want := []int{0, 1, 3, 4, 5, 6, 7, 8, 10, 11}
	assert.Equal(t, want, unused)
}

func TestBuild_SuffixMatching(t *testing.T) {
	lines := []listing.Line{
		{Index: 0, Source: ref("/build/tmp/a.c", 1)},
		{Index: 1, Source: ref("b.c", 1)},
		{Index: 2, Source: ref("../a.c", 2)},
	}

	x := Build(lines, "/proj/a.c")

	// Matching is by basename suffix: annotations from any path whose
	// basename is a.c attach; b.c does not.
	assert.Equal(t, []int{0}, x.Lookup(0))
	assert.Equal(t, []int{2}, x.Lookup(1))

	// A file merely ending in the same letters is still a match by the
	// suffix rule; sharing basenames is not disambiguated.
	y := Build([]listing.Line{{Index: 0, Source: ref("a.c", 1)}}, "/other/dir/a.c")
	assert.Equal(t, []int{0}, y.Lookup(0))
}

func TestBuild_BucketOrderIsAscending(t *testing.T) {
	lines := []listing.Line{
		{Index: 0, Source: ref("a.c", 7)},
		{Index: 1, Source: ref("a.c", 2)},
		{Index: 2, Source: ref("a.c", 7)},
		{Index: 3, Source: ref("a.c", 7)},
	}

	x := Build(lines, "a.c")
	assert.Equal(t, []int{0, 2, 3}, x.Lookup(6))
	assert.Equal(t, []int{1}, x.Lookup(1))
}

func TestBuild_OutOfRangeRecorded(t *testing.T) {
	// Line 0 in the annotation maps to source line -1; it is recorded
	// at build time and only filtered by lookup-time consumers.
	lines := []listing.Line{
		{Index: 0, Source: ref("a.c", 0)},
		{Index: 1, Source: ref("a.c", 4000)},
	}

	x := Build(lines, "a.c")
	assert.Equal(t, []int{0}, x.Lookup(-1))
	assert.Equal(t, []int{1}, x.Lookup(3999))
}

func TestResolve(t *testing.T) {
	line := listing.Line{Index: 4, Source: ref("/x/y/a.c", 12)}

	src, ok := Resolve(line, "/proj/a.c")
	require.True(t, ok)
	assert.Equal(t, 11, src)

	_, ok = Resolve(listing.Line{Index: 0}, "/proj/a.c")
	assert.False(t, ok, "no annotation means no source")

	_, ok = Resolve(line, "/proj/b.c")
	assert.False(t, ok, "basename mismatch means no source")
}

func TestIndex_NilSafety(t *testing.T) {
	var x *Index
	assert.Nil(t, x.Lookup(0))
	assert.Equal(t, 0, x.Len())
	assert.Nil(t, x.SourceLines())
	assert.Equal(t, []int{0, 1}, x.Unused(2))
}

func TestUnused_EmptyDocument(t *testing.T) {
	x := Build(nil, "a.c")
	assert.Nil(t, x.Unused(0))
}
