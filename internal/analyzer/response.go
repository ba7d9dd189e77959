package analyzer

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"morphcorpus/internal"
)

// decodeTree converts an XML document into nested maps using the badgerfish convention:
// element text under "$", attributes under "@name", repeated children as a list.
func decodeTree(body []byte) (map[string]any, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel

	type frame struct {
		name string
		node map[string]any
		text strings.Builder
	}
	var stack []*frame
	var root map[string]any

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			f := &frame{name: t.Name.Local, node: map[string]any{}}
			for _, attr := range t.Attr {
				f.node["@"+attr.Name.Local] = attr.Value
			}
			stack = append(stack, f)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New("unbalanced xml")
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if text := strings.TrimSpace(f.text.String()); text != "" {
				f.node["$"] = text
			}
			if len(stack) == 0 {
				root = map[string]any{f.name: f.node}
				continue
			}
			addChild(stack[len(stack)-1].node, f.name, f.node)
		}
	}

	if root == nil {
		return nil, errors.New("empty xml document")
	}
	return root, nil
}

func addChild(parent map[string]any, name string, child map[string]any) {
	existing, ok := parent[name]
	if !ok {
		parent[name] = child
		return
	}
	switch v := existing.(type) {
	case []any:
		parent[name] = append(v, child)
	default:
		parent[name] = []any{v, child}
	}
}

// DecodeResponse turns an analyzer response body into a lookup result. Bodies that are
// not well-formed XML, or have no <analyses> root, yield an empty analysis flagged
// Undecodable rather than an error. An empty <analyses/> is a valid answer.
func DecodeResponse(body []byte, lang string) internal.LookupResult {
	tree, err := decodeTree(body)
	if err != nil {
		return internal.LookupResult{Analysis: internal.Analysis{Fields: map[string]string{}}, Undecodable: true}
	}

	analyses, ok := tree["analyses"].(map[string]any)
	if !ok {
		return internal.LookupResult{Analysis: internal.Analysis{Fields: map[string]string{}}, Undecodable: true}
	}
	raw, _ := json.Marshal(analyses)
	return internal.LookupResult{Analysis: extractAnalysis(analyses, lang), Raw: raw}
}

// extractAnalysis keeps the first analysis as the token attributes and the remaining ones
// as alternatives; Count is the total number of analyses.
func extractAnalysis(analyses map[string]any, lang string) internal.Analysis {
	out := internal.Analysis{Fields: map[string]string{}}
	if len(analyses) == 0 {
		return out
	}

	var items []map[string]any
	switch v := analyses["analysis"].(type) {
	case map[string]any:
		items = []map[string]any{v}
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				items = append(items, m)
			}
		}
	}
	if len(items) == 0 {
		return out
	}

	out.Count = len(items)
	out.Fields = flattenAnalysis(items[0], lang)
	for _, item := range items[1:] {
		out.Alternatives = append(out.Alternatives, flattenAnalysis(item, lang))
	}
	return out
}

func flattenAnalysis(item map[string]any, lang string) map[string]string {
	fields := make(map[string]string, len(item))
	for k, v := range item {
		if strings.HasPrefix(k, "@") || k == "$" {
			continue
		}
		fields[k] = textOf(v)
	}
	if fields["lang"] == "" {
		if form, ok := item["form"].(map[string]any); ok {
			if l, ok := form["@lang"].(string); ok && l != "" {
				fields["lang"] = l
			}
		}
	}
	if fields["lang"] == "" && lang != "" {
		fields["lang"] = lang
	}
	return fields
}

func textOf(v any) string {
	switch t := v.(type) {
	case map[string]any:
		s, _ := t["$"].(string)
		return s
	case []any:
		if len(t) > 0 {
			return textOf(t[0])
		}
	case string:
		return t
	}
	return ""
}
