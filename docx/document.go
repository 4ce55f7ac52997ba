package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// WordprocessingML is built by hand here. No maintained Go docx writer covers
// headers, footers and page-number fields, and the documents we emit only need
// a small, fixed subset of the format.

const (
	wNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	rNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	// A4 page, dimensions in twips
	pageWidth  = 11906
	pageHeight = 16838
	// 3cm margins
	pageMargin = 1701
)

// run is a span of text with uniform formatting. Size is in half-points.
// If field is set the run renders a dynamic field (PAGE, NUMPAGES) instead.
type run struct {
	text   string
	field  string
	bold   bool
	italic bool
	size   int
	color  string
}

// paragraph holds runs plus paragraph-level properties. Spacing values are in
// twentieths of a point, indent in twips.
type paragraph struct {
	style        string
	align        string
	before       int
	after        int
	line         int
	indent       int
	bottomBorder bool
	runs         []run
}

// document accumulates paragraphs for the body, header and footer, then packs
// them into a .docx archive.
type document struct {
	body   []paragraph
	header []paragraph
	footer []paragraph
}

func (d *document) add(p paragraph) {
	d.body = append(d.body, p)
}

func esc(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func (r run) writeXML(sb *strings.Builder) {
	sb.WriteString("<w:r><w:rPr>")
	if r.bold {
		sb.WriteString("<w:b/>")
	}
	if r.italic {
		sb.WriteString("<w:i/>")
	}
	if r.size > 0 {
		fmt.Fprintf(sb, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.size, r.size)
	}
	if r.color != "" {
		fmt.Fprintf(sb, `<w:color w:val="%s"/>`, r.color)
	}
	sb.WriteString("</w:rPr>")
	if r.field != "" {
		fmt.Fprintf(sb, `<w:fldChar w:fldCharType="begin"/></w:r><w:r><w:instrText xml:space="preserve"> %s </w:instrText></w:r><w:r><w:fldChar w:fldCharType="end"/>`, r.field)
	} else {
		fmt.Fprintf(sb, `<w:t xml:space="preserve">%s</w:t>`, esc(r.text))
	}
	sb.WriteString("</w:r>")
}

func (p paragraph) writeXML(sb *strings.Builder) {
	sb.WriteString("<w:p><w:pPr>")
	if p.style != "" {
		fmt.Fprintf(sb, `<w:pStyle w:val="%s"/>`, p.style)
	}
	if p.bottomBorder {
		sb.WriteString(`<w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="6366F1"/></w:pBdr>`)
	}
	if p.indent > 0 {
		fmt.Fprintf(sb, `<w:ind w:left="%d"/>`, p.indent)
	}
	if p.before > 0 || p.after > 0 || p.line > 0 {
		sb.WriteString("<w:spacing")
		if p.before > 0 {
			fmt.Fprintf(sb, ` w:before="%d"`, p.before)
		}
		if p.after > 0 {
			fmt.Fprintf(sb, ` w:after="%d"`, p.after)
		}
		if p.line > 0 {
			fmt.Fprintf(sb, ` w:line="%d" w:lineRule="auto"`, p.line)
		}
		sb.WriteString("/>")
	}
	if p.align != "" {
		fmt.Fprintf(sb, `<w:jc w:val="%s"/>`, p.align)
	}
	sb.WriteString("</w:pPr>")
	for _, r := range p.runs {
		r.writeXML(sb)
	}
	sb.WriteString("</w:p>")
}

func paragraphsXML(ps []paragraph) string {
	var sb strings.Builder
	for _, p := range ps {
		p.writeXML(&sb)
	}
	return sb.String()
}

func (d *document) documentXML() string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	fmt.Fprintf(&sb, `<w:document xmlns:w="%s" xmlns:r="%s"><w:body>`, wNS, rNS)
	sb.WriteString(paragraphsXML(d.body))
	fmt.Fprintf(&sb, `<w:sectPr><w:headerReference w:type="default" r:id="rId2"/><w:footerReference w:type="default" r:id="rId3"/><w:pgSz w:w="%d" w:h="%d"/><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="709" w:footer="709"/></w:sectPr>`,
		pageWidth, pageHeight, pageMargin, pageMargin, pageMargin, pageMargin)
	sb.WriteString("</w:body></w:document>")
	return sb.String()
}

func (d *document) headerXML() string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	fmt.Fprintf(&sb, `<w:hdr xmlns:w="%s">%s</w:hdr>`, wNS, paragraphsXML(d.header))
	return sb.String()
}

func (d *document) footerXML() string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	fmt.Fprintf(&sb, `<w:ftr xmlns:w="%s">%s</w:ftr>`, wNS, paragraphsXML(d.footer))
	return sb.String()
}

const contentTypesXML = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/><Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/><Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/></Types>`

const rootRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const documentRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/><Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/></Relationships>`

// Arial 12pt body, bold headings, matching the firm letterhead palette.
const stylesXML = xml.Header + `<w:styles xmlns:w="` + wNS + `"><w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial"/><w:sz w:val="24"/><w:szCs w:val="24"/></w:rPr></w:rPrDefault></w:docDefaults><w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:rPr><w:b/><w:sz w:val="32"/><w:szCs w:val="32"/><w:color w:val="0F172A"/></w:rPr></w:style><w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:rPr><w:b/><w:sz w:val="26"/><w:szCs w:val="26"/><w:color w:val="1E293B"/></w:rPr></w:style></w:styles>`

// pack writes the assembled parts as a docx archive.
func (d *document) pack() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"word/document.xml", d.documentXML()},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/header1.xml", d.headerXML()},
		{"word/footer1.xml", d.footerXML()},
	}

	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize document: %w", err)
	}
	return buf.Bytes(), nil
}
