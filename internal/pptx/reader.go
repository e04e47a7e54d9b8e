package pptx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
)

const (
	presentationPart = "ppt/presentation.xml"

	// maxPartSize bounds how much of a single XML part is decoded.
	maxPartSize = 64 << 20
)

// ErrNotPresentation is returned for input that is not a .pptx package.
var ErrNotPresentation = errors.New("not a pptx presentation")

// Open reads the presentation file at name.
func Open(name string) (*Deck, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrNotPresentation, err)
		}
		return nil, fmt.Errorf("open deck: %w", err)
	}
	defer func() { _ = zr.Close() }()

	return readDeck(&zr.Reader)
}

// Read reads a presentation of the given size from r.
func Read(r io.ReaderAt, size int64) (*Deck, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPresentation, err)
	}
	return readDeck(zr)
}

type point struct {
	top, left int64
}

// layoutInfo holds the placeholder positions a slide can inherit.
type layoutInfo struct {
	byIdx map[int]point
}

type pkg struct {
	files   map[string]*zip.File
	layouts map[string]*layoutInfo
	masters map[string]map[string]point
}

func readDeck(zr *zip.Reader) (*Deck, error) {
	p := &pkg{
		files:   make(map[string]*zip.File, len(zr.File)),
		layouts: make(map[string]*layoutInfo),
		masters: make(map[string]map[string]point),
	}
	for _, f := range zr.File {
		p.files[strings.TrimPrefix(f.Name, "/")] = f
	}

	var pres xmlPresentation
	if err := p.decode(presentationPart, &pres); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotPresentation
		}
		return nil, err
	}

	rels, err := p.rels(presentationPart)
	if err != nil {
		return nil, err
	}

	deck := &Deck{Slides: make([]Slide, 0, len(pres.SlideIDs))}
	for i, id := range pres.SlideIDs {
		rel, ok := rels[id.RelID]
		if !ok {
			return nil, fmt.Errorf("slide %d: missing relationship %q", i+1, id.RelID)
		}
		slide, err := p.readSlide(resolve(presentationPart, rel.Target), i+1)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		deck.Slides = append(deck.Slides, slide)
	}
	return deck, nil
}

func (p *pkg) decode(name string, v any) error {
	f, ok := p.files[name]
	if !ok {
		return fmt.Errorf("part %s: %w", name, fs.ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("part %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	if err := xml.NewDecoder(io.LimitReader(rc, maxPartSize)).Decode(v); err != nil {
		return fmt.Errorf("part %s: %w", name, err)
	}
	return nil
}

// rels loads the relationships of part keyed by id. A part without a
// relationships file has none.
func (p *pkg) rels(part string) (map[string]xmlRelationship, error) {
	name := path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")

	var x xmlRelationships
	if err := p.decode(name, &x); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]xmlRelationship{}, nil
		}
		return nil, err
	}

	out := make(map[string]xmlRelationship, len(x.Rels))
	for _, r := range x.Rels {
		out[r.ID] = r
	}
	return out, nil
}

// relTarget returns the part the first relationship of the given kind
// points at, or "".
func relTarget(part string, rels map[string]xmlRelationship, kind string) string {
	// Map order is random; pick the lowest id for a stable answer.
	ids := make([]string, 0, len(rels))
	for id, r := range rels {
		if r.kind() == kind {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ""
	}
	sort.Strings(ids)
	return resolve(part, rels[ids[0]].Target)
}

func resolve(part, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(part), target)
}

func (p *pkg) readSlide(part string, number int) (Slide, error) {
	var x xmlSlidePart
	if err := p.decode(part, &x); err != nil {
		return Slide{}, err
	}
	rels, err := p.rels(part)
	if err != nil {
		return Slide{}, err
	}

	layout, err := p.layout(relTarget(part, rels, "slideLayout"))
	if err != nil {
		return Slide{}, err
	}

	slide := Slide{Number: number}
	titleSeen := false
	for _, xs := range x.Tree.Shapes {
		shape := convertShape(xs)

		ph := xs.placeholder()
		if ph != nil {
			if _, _, ok := xs.offset(); !ok {
				if pt, ok := layout.byIdx[ph.Idx]; ok {
					shape.Top, shape.Left = pt.top, pt.left
				}
			}
			// The title is the first placeholder with index 0.
			if !titleSeen && ph.Idx == 0 {
				titleSeen = true
				if shape.Kind == KindText {
					slide.Title = joinParagraphs(xs.TxBody)
				}
			}
		}

		slide.Shapes = append(slide.Shapes, shape)
	}

	sort.SliceStable(slide.Shapes, func(i, j int) bool {
		a, b := slide.Shapes[i], slide.Shapes[j]
		if a.Top != b.Top {
			return a.Top < b.Top
		}
		return a.Left < b.Left
	})

	if notesPart := relTarget(part, rels, "notesSlide"); notesPart != "" {
		notes, err := p.readNotes(notesPart)
		if err != nil {
			return Slide{}, err
		}
		slide.Notes = notes
	}

	return slide, nil
}

// layout returns the inheritable placeholder positions of a slide layout,
// resolving those the layout leaves unset from its master.
func (p *pkg) layout(part string) (*layoutInfo, error) {
	if part == "" {
		return &layoutInfo{byIdx: map[int]point{}}, nil
	}
	if l, ok := p.layouts[part]; ok {
		return l, nil
	}

	var x xmlSlidePart
	if err := p.decode(part, &x); err != nil {
		return nil, err
	}
	rels, err := p.rels(part)
	if err != nil {
		return nil, err
	}
	master, err := p.master(relTarget(part, rels, "slideMaster"))
	if err != nil {
		return nil, err
	}

	l := &layoutInfo{byIdx: make(map[int]point)}
	for _, xs := range x.Tree.Shapes {
		ph := xs.placeholder()
		if ph == nil {
			continue
		}
		if _, seen := l.byIdx[ph.Idx]; seen {
			continue
		}
		if top, left, ok := xs.offset(); ok {
			l.byIdx[ph.Idx] = point{top: top, left: left}
		} else if pt, ok := master[masterType(ph.phType())]; ok {
			l.byIdx[ph.Idx] = pt
		}
	}

	p.layouts[part] = l
	return l, nil
}

// master returns placeholder positions on a slide master keyed by type.
func (p *pkg) master(part string) (map[string]point, error) {
	if part == "" {
		return map[string]point{}, nil
	}
	if m, ok := p.masters[part]; ok {
		return m, nil
	}

	var x xmlSlidePart
	if err := p.decode(part, &x); err != nil {
		return nil, err
	}

	m := make(map[string]point)
	for _, xs := range x.Tree.Shapes {
		ph := xs.placeholder()
		if ph == nil {
			continue
		}
		t := masterType(ph.phType())
		if _, seen := m[t]; seen {
			continue
		}
		if top, left, ok := xs.offset(); ok {
			m[t] = point{top: top, left: left}
		}
	}

	p.masters[part] = m
	return m, nil
}

// masterType maps a layout placeholder type to the master placeholder it
// inherits from. Content-like placeholders all inherit from the body.
func masterType(t string) string {
	switch t {
	case "ctrTitle", "title":
		return "title"
	case "body", "chart", "clipArt", "dgm", "media", "obj", "pic", "subTitle", "tbl":
		return "body"
	default:
		return t
	}
}

// readNotes returns the body placeholder paragraphs of a notes page, or nil
// when the page has no body placeholder.
func (p *pkg) readNotes(part string) ([]Paragraph, error) {
	var x xmlSlidePart
	if err := p.decode(part, &x); err != nil {
		return nil, err
	}
	for _, xs := range x.Tree.Shapes {
		if ph := xs.placeholder(); xs.Element == "sp" && ph != nil && ph.phType() == "body" {
			return paragraphs(xs.TxBody), nil
		}
	}
	return nil, nil
}

func convertShape(xs xmlShape) Shape {
	var s Shape
	s.Top, s.Left, _ = xs.offset()

	switch xs.Element {
	case "sp":
		s.Kind = KindText
		s.Paragraphs = paragraphs(xs.TxBody)
	case "pic":
		s.Kind = KindPicture
		if xs.PicPh != nil {
			s.Kind = KindPlaceholderPicture
		}
	case "grpSp":
		s.Kind = KindGroup
	case "cxnSp":
		s.Kind = KindConnector
	case "graphicFrame":
		s.Kind = KindOther
		g := xs.Graphic
		switch {
		case g == nil:
		case g.Table != nil:
			s.Kind = KindTable
			s.Rows = tableRows(g.Table)
		case strings.HasSuffix(g.URI, "/chart"):
			s.Kind = KindChart
		case strings.HasSuffix(g.URI, "/ole"):
			s.Kind = KindEmbeddedObject
			if g.OLE != nil && g.OLE.Link != nil {
				s.Kind = KindLinkedObject
			}
		}
	}
	return s
}

func paragraphs(body *xmlTextBody) []Paragraph {
	if body == nil {
		return nil
	}
	out := make([]Paragraph, 0, len(body.Paragraphs))
	for _, xp := range body.Paragraphs {
		out = append(out, Paragraph{Level: xp.Level, Text: xp.runText()})
	}
	return out
}

// joinParagraphs flattens a text body into one line.
func joinParagraphs(body *xmlTextBody) string {
	if body == nil {
		return ""
	}
	parts := make([]string, 0, len(body.Paragraphs))
	for _, xp := range body.Paragraphs {
		parts = append(parts, xp.fullText())
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func tableRows(t *xmlTable) [][]string {
	rows := make([][]string, 0, len(t.Rows))
	for _, tr := range t.Rows {
		cells := make([]string, 0, len(tr.Cells))
		for _, tc := range tr.Cells {
			var texts []string
			if tc.TxBody != nil {
				for _, xp := range tc.TxBody.Paragraphs {
					if txt := strings.TrimSpace(xp.fullText()); txt != "" {
						texts = append(texts, txt)
					}
				}
			}
			cells = append(cells, strings.Join(texts, " "))
		}
		rows = append(rows, cells)
	}
	return rows
}
