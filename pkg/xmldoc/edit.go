package xmldoc

import (
	"fmt"
	"sort"
)

// Edit replaces the bytes [Start, End) of a document with Text.
type Edit struct {
	Start int64
	End   int64
	Text  string
}

// RemoveNode returns an edit deleting n from data. When the element is the
// only thing on its lines, the leading indentation and the trailing newline
// go with it.
func RemoveNode(data []byte, n *Node) Edit {
	start, end := n.Start, n.End

	lineStart := start
	for lineStart > 0 && (data[lineStart-1] == ' ' || data[lineStart-1] == '\t') {
		lineStart--
	}
	lineEnd := end
	for lineEnd < int64(len(data)) && (data[lineEnd] == ' ' || data[lineEnd] == '\t' || data[lineEnd] == '\r') {
		lineEnd++
	}
	if (lineStart == 0 || data[lineStart-1] == '\n') && (lineEnd == int64(len(data)) || data[lineEnd] == '\n') {
		start = lineStart
		end = lineEnd
		if end < int64(len(data)) {
			end++
		}
	}
	return Edit{Start: start, End: end}
}

// ApplyEdits applies non-overlapping edits to data and returns the result.
func ApplyEdits(data []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return data, nil
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := make([]byte, 0, len(data))
	var pos int64
	for _, e := range sorted {
		if e.Start < pos || e.End < e.Start || e.End > int64(len(data)) {
			return nil, fmt.Errorf("invalid edit [%d,%d) at offset %d", e.Start, e.End, pos)
		}
		out = append(out, data[pos:e.Start]...)
		out = append(out, e.Text...)
		pos = e.End
	}
	out = append(out, data[pos:]...)
	return out, nil
}
