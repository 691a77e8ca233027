package xmldoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// Parse builds a Document from raw bytes. Documents that are not
// well-formed produce a *SyntaxError with the position of the failure.
func Parse(data []byte) (*Document, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = true
	d.CharsetReader = charset.NewReaderLabel

	doc := &Document{}
	var stack []*Node

	for {
		offset := d.InputOffset()
		line, col := d.InputPos()

		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, syntaxError(d, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{
				Name:   t.Name.Local,
				Line:   line,
				Column: col,
				Start:  offset,
			}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if doc.Root != nil {
					return nil, &SyntaxError{Line: line, Column: col, Message: ErrMultipleRoots}
				}
				doc.Root = n
			} else {
				parent := stack[len(stack)-1]
				n.Parent = parent
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			n := stack[len(stack)-1]
			n.End = d.InputOffset()
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			} else if len(bytes.TrimSpace(t)) > 0 {
				endLine, endCol := d.InputPos()
				return nil, &SyntaxError{Line: endLine, Column: endCol, Message: ErrTextOutsideRoot}
			}

		case xml.ProcInst:
			if t.Target == "xml" {
				continue
			}
			doc.ProcInsts = append(doc.ProcInsts, ProcInst{
				Target: t.Target,
				Inst:   string(bytes.TrimSpace(t.Inst)),
				Line:   line,
				Column: col,
			})
		}
	}

	if len(stack) > 0 {
		line, col := d.InputPos()
		return nil, &SyntaxError{Line: line, Column: col, Message: fmt.Sprintf(ErrUnclosedElements, stack[len(stack)-1].Name)}
	}
	if doc.Root == nil {
		line, col := d.InputPos()
		return nil, &SyntaxError{Line: line, Column: col, Message: ErrEmptyDocument}
	}
	return doc, nil
}

func syntaxError(d *xml.Decoder, err error) *SyntaxError {
	line, col := d.InputPos()
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &SyntaxError{Line: se.Line, Column: col, Message: se.Msg}
	}
	return &SyntaxError{Line: line, Column: col, Message: err.Error()}
}
