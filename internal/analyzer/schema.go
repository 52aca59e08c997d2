package analyzer

// Prompt is the instruction sent alongside every image.
const Prompt = `Analyze this image (which may be a messy desk, a document, a handwritten note, or a screenshot).
Act as an expert organizer.
1. Identify physical objects.
2. Read all text, including handwriting.
3. Extract actionable tasks, calendar events, and key notes.
4. If it looks like study material, suggest a study plan.
5. Return the result in strictly structured JSON.`

type schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*schema `json:"properties,omitempty"`
	Items       *schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

func str(desc string) *schema { return &schema{Type: "STRING", Description: desc} }

func object(props map[string]*schema) *schema { return &schema{Type: "OBJECT", Properties: props} }

func array(items *schema, desc string) *schema {
	return &schema{Type: "ARRAY", Items: items, Description: desc}
}

// ResponseSchema is the structured-output contract requested from the model.
var ResponseSchema = object(map[string]*schema{
	"summary": str("A brief summary of what is seen in the image."),
	"itemsDetected": array(object(map[string]*schema{
		"name":       str(""),
		"category":   str(""),
		"confidence": {Type: "NUMBER"},
	}), ""),
	"tasks": array(object(map[string]*schema{
		"title":    str("Actionable task extracted from text"),
		"deadline": str("YYYY-MM-DD format if available"),
		"priority": {Type: "STRING", Enum: []string{"High", "Medium", "Low"}},
	}), ""),
	"events": array(object(map[string]*schema{
		"title":    str(""),
		"date":     str("YYYY-MM-DD"),
		"time":     str("HH:MM"),
		"location": str(""),
	}), ""),
	"notes": array(object(map[string]*schema{
		"title":   str(""),
		"content": str(""),
		"tags":    array(str(""), ""),
	}), ""),
	"studyPlan": array(str(""), "If academic content is found, suggest a study plan step."),
})
