// Package segmenting splits contract text into ordered, titled sections.
package segmenting

import (
	"strings"

	"github.com/jonathan/contract-review/internal/ingestion"
	"github.com/jonathan/contract-review/internal/types"
)

// DefaultHeadingWordLimit is the longest heading line (in words) kept verbatim as a title
const DefaultHeadingWordLimit = 10

// Options tunes segmentation
type Options struct {
	// HeadingWordLimit is the maximum number of words a heading line may have to be
	// used as its own title. Longer heading lines are tagged types.TitleClause.
	HeadingWordLimit int
}

// DefaultOptions returns the default segmentation options
func DefaultOptions() Options {
	return Options{HeadingWordLimit: DefaultHeadingWordLimit}
}

// Segment splits raw contract text using the default options
func Segment(raw string) []types.ContractSection {
	return SegmentWith(raw, DefaultOptions())
}

// SegmentWith splits raw contract text into sections in input order.
// A line containing ':' or written entirely in capitals opens a new section;
// any other line continues the open section.
func SegmentWith(raw string, opts Options) []types.ContractSection {
	if opts.HeadingWordLimit <= 0 {
		opts.HeadingWordLimit = DefaultHeadingWordLimit
	}

	st := state{opts: opts}
	for _, line := range splitLines(raw) {
		st = st.step(line)
	}
	return st.sections()
}

// state is the segmentation accumulator: closed sections plus the open one.
// step never mutates a closed section.
type state struct {
	opts   Options
	closed []types.ContractSection
	open   *openSection
}

type openSection struct {
	title string
	parts []string
}

func (st state) step(line string) state {
	if isHeading(line) {
		return st.closeOpen().begin(st.titleFor(line), line)
	}
	if st.open == nil {
		return st.begin(types.TitleIntroduction, line)
	}
	return st.appendBody(line)
}

func (st state) begin(title, line string) state {
	st.open = &openSection{title: title, parts: []string{line}}
	return st
}

func (st state) appendBody(line string) state {
	parts := make([]string, len(st.open.parts), len(st.open.parts)+1)
	copy(parts, st.open.parts)
	st.open = &openSection{title: st.open.title, parts: append(parts, line)}
	return st
}

func (st state) closeOpen() state {
	if st.open == nil {
		return st
	}
	closed := make([]types.ContractSection, len(st.closed), len(st.closed)+1)
	copy(closed, st.closed)
	st.closed = append(closed, types.ContractSection{
		Order: len(st.closed),
		Title: st.open.title,
		Text:  strings.Join(st.open.parts, " "),
	})
	st.open = nil
	return st
}

func (st state) sections() []types.ContractSection {
	final := st.closeOpen().closed
	if final == nil {
		return []types.ContractSection{}
	}
	return final
}

func (st state) titleFor(line string) string {
	if ingestion.CountWords(line) <= st.opts.HeadingWordLimit {
		return line
	}
	return types.TitleClause
}

// isHeading reports whether a line opens a new section
func isHeading(line string) bool {
	return strings.Contains(line, ":") || ingestion.IsUpperText(line)
}

// splitLines returns the non-empty trimmed lines of raw in order
func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
