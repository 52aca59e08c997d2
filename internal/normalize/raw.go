package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RawExtraction is the loosely-shaped analysis response. Every field is
// optional; a nil slice means the field was absent.
type RawExtraction struct {
	Summary       *string
	ItemsDetected []RawItem
	Tasks         []RawTask
	Events        []RawEvent
	Notes         []RawNote
	StudyPlan     []string
}

// RawItem is one detected object as returned by the analysis service.
type RawItem struct {
	Name       string
	Category   string
	Confidence float64
}

// RawTask is one task as returned by the analysis service.
type RawTask struct {
	Title    string
	Deadline string
	Priority string
}

// RawEvent is one event as returned by the analysis service.
type RawEvent struct {
	Title    string
	Date     string
	Time     string
	Location string
}

// RawNote is one note as returned by the analysis service.
type RawNote struct {
	Title   string
	Content string
	Tags    []string
}

// DecodeRaw parses the analysis response text. Only a document that is not
// a JSON object is rejected; malformed fields and elements are kept
// best-effort with their unreadable parts left empty.
func DecodeRaw(data []byte) (*RawExtraction, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("normalize: decode extraction: %w", err)
	}
	if top == nil {
		return nil, fmt.Errorf("normalize: extraction is not an object")
	}

	raw := &RawExtraction{}
	if v, ok := top["summary"]; ok {
		var s any
		if json.Unmarshal(v, &s) == nil {
			if str, ok := s.(string); ok {
				raw.Summary = &str
			}
		}
	}

	if els, ok := elements(top["itemsDetected"]); ok {
		raw.ItemsDetected = make([]RawItem, 0, len(els))
		for _, el := range els {
			m, name := fields(el)
			if m == nil {
				raw.ItemsDetected = append(raw.ItemsDetected, RawItem{Name: name})
				continue
			}
			raw.ItemsDetected = append(raw.ItemsDetected, RawItem{
				Name:       str(m["name"]),
				Category:   str(m["category"]),
				Confidence: num(m["confidence"]),
			})
		}
	}

	if els, ok := elements(top["tasks"]); ok {
		raw.Tasks = make([]RawTask, 0, len(els))
		for _, el := range els {
			m, title := fields(el)
			if m == nil {
				raw.Tasks = append(raw.Tasks, RawTask{Title: title})
				continue
			}
			raw.Tasks = append(raw.Tasks, RawTask{
				Title:    str(m["title"]),
				Deadline: str(m["deadline"]),
				Priority: str(m["priority"]),
			})
		}
	}

	if els, ok := elements(top["events"]); ok {
		raw.Events = make([]RawEvent, 0, len(els))
		for _, el := range els {
			m, title := fields(el)
			if m == nil {
				raw.Events = append(raw.Events, RawEvent{Title: title})
				continue
			}
			raw.Events = append(raw.Events, RawEvent{
				Title:    str(m["title"]),
				Date:     str(m["date"]),
				Time:     str(m["time"]),
				Location: str(m["location"]),
			})
		}
	}

	if els, ok := elements(top["notes"]); ok {
		raw.Notes = make([]RawNote, 0, len(els))
		for _, el := range els {
			m, content := fields(el)
			if m == nil {
				raw.Notes = append(raw.Notes, RawNote{Content: content})
				continue
			}
			raw.Notes = append(raw.Notes, RawNote{
				Title:   str(m["title"]),
				Content: str(m["content"]),
				Tags:    strs(m["tags"]),
			})
		}
	}

	if els, ok := elements(top["studyPlan"]); ok {
		raw.StudyPlan = make([]string, 0, len(els))
		for _, el := range els {
			if s := str(el); s != "" {
				raw.StudyPlan = append(raw.StudyPlan, s)
			}
		}
	}

	return raw, nil
}

// elements decodes v as a JSON array. ok is false when v is absent or not an array.
func elements(v json.RawMessage) ([]any, bool) {
	if len(v) == 0 {
		return nil, false
	}
	var out []any
	if err := json.Unmarshal(v, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

// fields returns el as an object. A scalar element yields a nil map and its
// string form, which callers use as the record's primary text.
func fields(el any) (map[string]any, string) {
	if m, ok := el.(map[string]any); ok {
		return m, ""
	}
	return nil, str(el)
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func num(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func strs(v any) []string {
	list, ok := v.([]any)
	if !ok {
		if s := str(v); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
