// Package format parses raw message text into typed display blocks for the
// console: section headers, bullet lists, horizontal rules, contact and
// appointment lines, and plain paragraphs, with inline **bold** runs.
package format

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type BlockKind string

const (
	BlockSection     BlockKind = "section"
	BlockList        BlockKind = "list"
	BlockRule        BlockKind = "rule"
	BlockContact     BlockKind = "contact"
	BlockAppointment BlockKind = "appointment"
	BlockParagraph   BlockKind = "paragraph"
)

// Run is a span of text, plain or bold.
type Run struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// Block is one display unit. Runs carries the text for every kind except
// list, which uses Items (one run slice per bullet), and rule, which has no
// text at all.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Runs  []Run     `json:"runs,omitempty"`
	Items [][]Run   `json:"items,omitempty"`
}

// Section titles the assistant emits for cruise answers.
var sectionPrefixes = []string{
	"Itinéraires populaires",
	"Types de cabines",
	"Installations et activités",
	"Tarifs et promotions",
}

const (
	contactMarker        = "📞"
	appointmentSubstring = "rendez-vous est prévu"
	dedupeMinLength      = 5
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// DedupeLines drops lines whose whitespace-normalized form already appeared.
// Lines with fewer than 5 trimmed characters always pass through, so short
// fragments like greetings are never collapsed. Idempotent.
func DedupeLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	unique := make([]string, 0, len(lines))
	seen := make(map[string]bool)

	for _, line := range lines {
		if utf8.RuneCountInString(strings.TrimSpace(line)) < dedupeMinLength {
			unique = append(unique, line)
			continue
		}
		normalized := whitespaceRun.ReplaceAllString(strings.TrimSpace(line), " ")
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		unique = append(unique, line)
	}

	return unique
}

// ParseRuns splits text into alternating plain/bold runs on **...** pairs.
// Text with no complete pair comes back as a single plain run; an unmatched
// trailing ** stays literal.
func ParseRuns(text string) []Run {
	var runs []Run
	last := 0

	for {
		open := strings.Index(text[last:], "**")
		if open < 0 {
			break
		}
		open += last
		end := strings.Index(text[open+2:], "**")
		if end < 0 {
			break
		}
		end += open + 2

		if open > last {
			runs = append(runs, Run{Text: text[last:open]})
		}
		runs = append(runs, Run{Text: text[open+2 : end], Bold: true})
		last = end + 2
	}

	if len(runs) == 0 {
		return []Run{{Text: text}}
	}
	if last < len(text) {
		runs = append(runs, Run{Text: text[last:]})
	}
	return runs
}

func isSectionHeader(line string) bool {
	for _, prefix := range sectionPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func isListItem(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•")
}

func stripListMarker(line string) string {
	if strings.HasPrefix(line, "•") {
		return strings.TrimSpace(strings.TrimPrefix(line, "•"))
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "-"))
}

// Format parses message text into an ordered block sequence. Empty input
// yields an empty sequence.
func Format(text string) []Block {
	if text == "" {
		return nil
	}

	lines := DedupeLines(text)
	var blocks []Block
	var list [][]Run

	flushList := func() {
		if list != nil {
			blocks = append(blocks, Block{Kind: BlockList, Items: list})
			list = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case isSectionHeader(trimmed):
			flushList()
			blocks = append(blocks, Block{Kind: BlockSection, Runs: ParseRuns(trimmed)})

		case isListItem(trimmed):
			list = append(list, ParseRuns(stripListMarker(trimmed)))

		case len(trimmed) > 0:
			flushList()
			switch {
			case strings.Contains(trimmed, "---"):
				blocks = append(blocks, Block{Kind: BlockRule})
			case strings.HasPrefix(trimmed, contactMarker):
				blocks = append(blocks, Block{Kind: BlockContact, Runs: ParseRuns(trimmed)})
			case strings.Contains(trimmed, appointmentSubstring):
				blocks = append(blocks, Block{Kind: BlockAppointment, Runs: ParseRuns(trimmed)})
			default:
				blocks = append(blocks, Block{Kind: BlockParagraph, Runs: ParseRuns(trimmed)})
			}
		}
		// Empty lines neither emit nor flush.
	}

	flushList()
	return blocks
}
