package listing

import (
	"regexp"
	"strconv"
	"strings"
)

// Format selects how source annotations are recognized in listing text.
type Format string

const (
	// FormatAuto sniffs the input: gas when .file/.loc directives are
	// present, objdump when path:NN marker lines are, plain otherwise.
	FormatAuto Format = "auto"
	// FormatGas reads assembler output with -g debug directives
	// (.file N "path" and .loc N LINE [COL]).
	FormatGas Format = "gas"
	// FormatObjdump reads objdump -d -l output where a bare path:NN
	// line attributes the instructions that follow it.
	FormatObjdump Format = "objdump"
	// FormatPlain treats every line as unannotated.
	FormatPlain Format = "plain"
)

// IsValid reports whether f is a recognized format name.
func (f Format) IsValid() bool {
	switch f {
	case FormatAuto, FormatGas, FormatObjdump, FormatPlain:
		return true
	default:
		return false
	}
}

var (
	gasFileRe = regexp.MustCompile(`^\s*\.file\s+(\d+)\s+"((?:[^"\\]|\\.)*)"`)
	gasLocRe  = regexp.MustCompile(`^\s*\.loc\s+(\d+)\s+(\d+)`)

	// objdump -l emits the originating location as a bare "path:NN"
	// line. Require a path-ish prefix so instruction text with colons
	// is not misread.
	objdumpLocRe = regexp.MustCompile(`^([^\s:][^:]*):(\d+)(?:\s+\(discriminator \d+\))?$`)
)

// Parse splits text into annotated listing lines for the given id.
// Annotation marker lines (.file/.loc directives, objdump location
// lines) are consumed as attribution and do not appear in the result;
// every other line becomes a listing line carrying the most recent
// attribution, or none if no marker has been seen yet.
func Parse(id, text string, format Format) *Listing {
	if format == FormatAuto {
		format = sniff(text)
	}

	raw := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(raw) == 1 && raw[0] == "" {
		raw = nil
	}

	lines := make([]Line, 0, len(raw))
	appendLine := func(s string, ref *SourceRef) {
		lines = append(lines, Line{Index: len(lines), Text: s, Source: ref})
	}

	switch format {
	case FormatGas:
		files := map[int]string{}
		var current *SourceRef
		for _, s := range raw {
			if m := gasFileRe.FindStringSubmatch(s); m != nil {
				n, _ := strconv.Atoi(m[1])
				files[n] = m[2]
				continue
			}
			if m := gasLocRe.FindStringSubmatch(s); m != nil {
				n, _ := strconv.Atoi(m[1])
				ln, _ := strconv.Atoi(m[2])
				if file, ok := files[n]; ok {
					current = &SourceRef{File: file, Line: ln}
				} else {
					current = nil
				}
				continue
			}
			appendLine(s, current)
		}

	case FormatObjdump:
		var current *SourceRef
		for _, s := range raw {
			if m := objdumpLocRe.FindStringSubmatch(s); m != nil {
				ln, _ := strconv.Atoi(m[2])
				current = &SourceRef{File: m[1], Line: ln}
				continue
			}
			appendLine(s, current)
		}

	default:
		for _, s := range raw {
			appendLine(s, nil)
		}
	}

	return &Listing{ID: id, Lines: lines}
}

func sniff(text string) Format {
	for _, line := range strings.Split(text, "\n") {
		if gasLocRe.MatchString(line) || gasFileRe.MatchString(line) {
			return FormatGas
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if objdumpLocRe.MatchString(line) {
			return FormatObjdump
		}
	}
	return FormatPlain
}
