package pptx

import (
	"encoding/xml"
	"strconv"
	"strings"
)

const relationshipsNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// Raw OOXML shapes. Elements are matched by local name; only what the
// renderer needs is decoded.

type xmlRelationships struct {
	Rels []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// kind is the last path segment of the relationship type URI, e.g.
// "slide", "slideLayout" or "notesSlide".
func (r xmlRelationship) kind() string {
	return r.Type[strings.LastIndex(r.Type, "/")+1:]
}

type xmlPresentation struct {
	SlideIDs []xmlSlideID `xml:"sldIdLst>sldId"`
}

type xmlSlideID struct {
	// sldId also has an unqualified id attribute; only r:id names the part.
	RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// xmlSlidePart covers slides, layouts, masters and notes pages alike.
type xmlSlidePart struct {
	Tree xmlShapeTree `xml:"cSld>spTree"`
}

// xmlShapeTree keeps the top-level shapes in document order. Shapes nested
// in groups are not descended into.
type xmlShapeTree struct {
	Shapes []xmlShape
}

func (t *xmlShapeTree) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "sp", "pic", "cxnSp", "grpSp", "graphicFrame":
				var shp xmlShape
				if err := d.DecodeElement(&shp, &el); err != nil {
					return err
				}
				shp.Element = el.Name.Local
				t.Shapes = append(t.Shapes, shp)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

type xmlShape struct {
	Element string `xml:"-"`

	SpPh    *xmlPlaceholder `xml:"nvSpPr>nvPr>ph"`
	PicPh   *xmlPlaceholder `xml:"nvPicPr>nvPr>ph"`
	FramePh *xmlPlaceholder `xml:"nvGraphicFramePr>nvPr>ph"`

	SpXfrm    *xmlXfrm `xml:"spPr>xfrm"`
	GrpXfrm   *xmlXfrm `xml:"grpSpPr>xfrm"`
	FrameXfrm *xmlXfrm `xml:"xfrm"`

	TxBody  *xmlTextBody    `xml:"txBody"`
	Graphic *xmlGraphicData `xml:"graphic>graphicData"`
}

func (s xmlShape) placeholder() *xmlPlaceholder {
	switch {
	case s.SpPh != nil:
		return s.SpPh
	case s.PicPh != nil:
		return s.PicPh
	default:
		return s.FramePh
	}
}

// offset returns the shape's own top-left corner, if it declares one.
func (s xmlShape) offset() (top, left int64, ok bool) {
	for _, x := range []*xmlXfrm{s.SpXfrm, s.GrpXfrm, s.FrameXfrm} {
		if x != nil && x.Off != nil {
			return x.Off.Y, x.Off.X, true
		}
	}
	return 0, 0, false
}

type xmlPlaceholder struct {
	Type string `xml:"type,attr"`
	Idx  int    `xml:"idx,attr"`
}

// phType returns the placeholder type with the schema default applied.
func (p xmlPlaceholder) phType() string {
	if p.Type == "" {
		return "obj"
	}
	return p.Type
}

type xmlXfrm struct {
	Off *xmlPoint `xml:"off"`
}

type xmlPoint struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type xmlTextBody struct {
	Paragraphs []xmlParagraph `xml:"p"`
}

type segmentKind int

const (
	segRun segmentKind = iota
	segField
	segBreak
)

type segment struct {
	kind segmentKind
	text string
}

// xmlParagraph keeps runs, fields and line breaks in order.
type xmlParagraph struct {
	Level    int
	Segments []segment
}

func (p *xmlParagraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "pPr":
				for _, a := range el.Attr {
					if a.Name.Local == "lvl" {
						p.Level, _ = strconv.Atoi(a.Value)
					}
				}
				if err := d.Skip(); err != nil {
					return err
				}
			case "r", "fld":
				var r struct {
					Text string `xml:"t"`
				}
				if err := d.DecodeElement(&r, &el); err != nil {
					return err
				}
				kind := segRun
				if el.Name.Local == "fld" {
					kind = segField
				}
				p.Segments = append(p.Segments, segment{kind: kind, text: r.Text})
			case "br":
				p.Segments = append(p.Segments, segment{kind: segBreak})
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// fullText is the paragraph as displayed: runs and fields in order, line
// breaks as spaces.
func (p xmlParagraph) fullText() string {
	var b strings.Builder
	for _, s := range p.Segments {
		if s.kind == segBreak {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(s.text)
	}
	return b.String()
}

// runText joins only the plain runs, falling back to fullText when the
// paragraph has none (e.g. it holds just a slide-number field).
func (p xmlParagraph) runText() string {
	var (
		b    strings.Builder
		runs int
	)
	for _, s := range p.Segments {
		if s.kind == segRun {
			b.WriteString(s.text)
			runs++
		}
	}
	if runs == 0 {
		return p.fullText()
	}
	return b.String()
}

type xmlGraphicData struct {
	URI   string    `xml:"uri,attr"`
	Table *xmlTable `xml:"tbl"`
	OLE   *xmlOLE   `xml:"oleObj"`
}

type xmlOLE struct {
	Link *struct{} `xml:"link"`
}

type xmlTable struct {
	Rows []xmlTableRow `xml:"tr"`
}

type xmlTableRow struct {
	Cells []xmlTableCell `xml:"tc"`
}

type xmlTableCell struct {
	TxBody *xmlTextBody `xml:"txBody"`
}
