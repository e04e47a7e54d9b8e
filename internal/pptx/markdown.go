package pptx

import (
	"fmt"
	"strings"
)

// TableFormat selects how tables are rendered.
type TableFormat string

const (
	// TableList writes one bullet per table row.
	TableList TableFormat = "list"
	// TableMarkdown writes a pipe table with the first row as header.
	TableMarkdown TableFormat = "table"
)

// ParseTableFormat validates a table format name.
func ParseTableFormat(s string) (TableFormat, error) {
	switch f := TableFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case TableList, TableMarkdown:
		return f, nil
	}
	return "", fmt.Errorf("table format must be %q or %q (got %q)", TableList, TableMarkdown, s)
}

// Options controls rendering.
type Options struct {
	MaxTags      int // keywords listed under "# Tags"; 0 lists none
	IncludeNotes bool
	TableFormat  TableFormat // unknown values render as TableList
}

// DefaultOptions returns the rendering defaults.
func DefaultOptions() Options {
	return Options{MaxTags: 20, TableFormat: TableList}
}

const (
	emptySlideLine = "- （本頁無可擷取的文字內容）"
	noTagsLine     = "- （無）"
	notesHeading   = "#### 備註"
)

// Render writes deck as a Markdown text document: a "# Tags" section of
// keywords drawn from all slide text, then one "###" section per slide.
func Render(deck *Deck, opts Options) string {
	var (
		corpus []string
		slides = make([][]string, 0, len(deck.Slides))
	)
	for _, s := range deck.Slides {
		lines, text := slideLines(s, opts)
		slides = append(slides, lines)
		corpus = append(corpus, text...)
	}

	tags := Keywords(strings.Join(corpus, "\n"), opts.MaxTags)

	md := []string{"# Tags"}
	if len(tags) == 0 {
		md = append(md, noTagsLine)
	}
	for _, t := range tags {
		md = append(md, "- "+t)
	}
	md = append(md, "\n---\n", "# 內容")
	for _, lines := range slides {
		md = append(md, lines...)
		md = append(md, "")
	}

	return strings.TrimSpace(strings.Join(md, "\n")) + "\n"
}

// slideLines renders one slide. The second result is the slide's text for
// keyword extraction.
func slideLines(s Slide, opts Options) (lines, corpus []string) {
	if title := strings.TrimSpace(s.Title); title != "" {
		lines = append(lines, fmt.Sprintf("### 第 %d 頁：%s", s.Number, escapeMarkdown(title)))
		corpus = append(corpus, title)
	} else {
		lines = append(lines, fmt.Sprintf("### 第 %d 頁", s.Number))
	}

	for _, sh := range s.Shapes {
		for _, ln := range shapeLines(sh, opts.TableFormat) {
			if strings.TrimSpace(ln) == "" {
				continue
			}
			lines = append(lines, ln)
			corpus = append(corpus, corpusText(ln))
		}
	}

	if opts.IncludeNotes {
		if notes := paragraphLines(s.Notes); len(notes) > 0 {
			lines = append(lines, notesHeading)
			lines = append(lines, notes...)
			for _, ln := range notes {
				corpus = append(corpus, corpusText(ln))
			}
		}
	}

	if len(lines) == 1 {
		lines = append(lines, emptySlideLine)
	}
	return lines, corpus
}

func corpusText(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, "- "))
}

func shapeLines(sh Shape, format TableFormat) []string {
	switch sh.Kind {
	case KindText:
		return paragraphLines(sh.Paragraphs)
	case KindTable:
		return tableLines(sh.Rows, format)
	}
	if label, ok := objectLabels[sh.Kind]; ok {
		return []string{"- [物件：" + label + "]"}
	}
	return nil
}

// paragraphLines renders non-blank paragraphs as bullets indented two
// spaces per outline level.
func paragraphLines(paras []Paragraph) []string {
	var lines []string
	for _, p := range paras {
		txt := strings.TrimSpace(p.Text)
		if txt == "" {
			continue
		}
		lines = append(lines, strings.Repeat("  ", max(p.Level, 0))+"- "+escapeMarkdown(txt))
	}
	return lines
}

func tableLines(rows [][]string, format TableFormat) []string {
	if len(rows) == 0 {
		return nil
	}

	escaped := make([][]string, len(rows))
	for i, r := range rows {
		escaped[i] = make([]string, len(r))
		for j, c := range r {
			escaped[i][j] = escapeMarkdown(c)
		}
	}

	if format != TableMarkdown {
		out := make([]string, 0, len(escaped))
		for i, cells := range escaped {
			out = append(out, fmt.Sprintf("- 表格第 %d 行： %s", i+1, strings.Join(cells, " | ")))
		}
		return out
	}

	// A single row has no body to put under a header.
	if len(escaped) == 1 {
		return []string{"- 表格： " + strings.Join(escaped[0], " | ")}
	}

	header := escaped[0]
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}

	out := make([]string, 0, len(escaped)+1)
	out = append(out, "| "+strings.Join(header, " | ")+" |")
	out = append(out, "| "+strings.Join(sep, " | ")+" |")
	for _, r := range escaped[1:] {
		out = append(out, "| "+strings.Join(r, " | ")+" |")
	}
	return out
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
