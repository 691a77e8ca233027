package xmldoc

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"aqwari.net/xml/xmltree"
)

// Normalize re-serializes a document with an XML declaration and two-space
// indentation. Processing instructions outside the root element are kept
// ahead of it, in document order. Comments are dropped.
func Normalize(data []byte) ([]byte, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}
	body := xmltree.MarshalIndent(root, "", "  ")

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	for _, pi := range doc.ProcInsts {
		if pi.Line > doc.Root.Line {
			continue
		}
		buf.WriteString(pi.String())
		buf.WriteByte('\n')
	}
	buf.Write(bytes.TrimSpace(body))
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
