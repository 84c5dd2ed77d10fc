package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"socialrss/app/cfg"
)

// Generator serializes a Document into RSS 2.0 XML. The output is
// written by hand so element order and formatting stay stable across
// runs.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(feedID string, doc *Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", doc.Title, 4)
	g.writeElement(&buf, "link", doc.SourceLink, 4)
	g.writeElement(&buf, "description", doc.Description, 4)

	selfLink := g.selfLink(feedID)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	g.writeElement(&buf, "language", doc.Language, 4)
	g.writeElement(&buf, "generator", doc.Generator, 4)
	g.writeElement(&buf, "lastBuildDate", doc.BuiltAt.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "pubDate", doc.BuiltAt.Format(time.RFC1123Z), 4)

	buf.WriteString("    <image>\n")
	g.writeElement(&buf, "url", g.baseURL()+"/static/logo.png", 6)
	g.writeElement(&buf, "title", doc.Title, 6)
	g.writeElement(&buf, "link", doc.SourceLink, 6)
	buf.WriteString("    </image>\n")

	editor := fmt.Sprintf("%s (%s)", cfg.Get().AuthorEmail, cfg.Get().AuthorName)
	g.writeElement(&buf, "managingEditor", editor, 4)
	g.writeElement(&buf, "webMaster", editor, 4)
	g.writeElement(&buf, "category", "Social Media", 4)
	g.writeElement(&buf, "ttl", "60", 4)

	for _, entry := range doc.Entries {
		g.writeItem(&buf, entry)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, entry Entry) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", entry.Title, 6)

	if entry.Link != "" {
		g.writeElement(buf, "link", entry.Link, 6)
	}

	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", entry.GUIDIsPermalink))
	xml.EscapeText(buf, []byte(entry.GUID))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "description", entry.Description, 6)

	if entry.ContentHTML != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(entry.ContentHTML)
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", entry.PubDate.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "author", entry.Author, 6)

	for _, category := range entry.Categories {
		if category != "" {
			g.writeElement(buf, "category", category, 6)
		}
	}

	for _, enclosure := range entry.Enclosures {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"%d\" type=\"%s\" />\n",
			html.EscapeString(enclosure.URL),
			enclosure.Length,
			html.EscapeString(enclosure.Type)))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) baseURL() string {
	if cfg.Get().BaseUrl != "" {
		return cfg.Get().BaseUrl
	}
	return "http://localhost:" + cfg.Get().Port
}

func (g *Generator) selfLink(feedID string) string {
	return fmt.Sprintf("%s/feeds/%s.xml", g.baseURL(), feedID)
}
