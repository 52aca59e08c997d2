package mcpserver

import (
	"encoding/json"

	"github.com/starford/scanboard/internal/analyzer"
)

// ExtractionSchemaURI identifies the extraction contract resource.
const ExtractionSchemaURI = "scanboard://extraction-schema"

// ExtractionContract describes what the image analysis returns and how
// scanboard normalizes it into a stored scan.
const ExtractionContract = `# Scanboard Extraction Contract

Every analyzed image yields one JSON object. All fields are optional; a
document that is not a JSON object is rejected as an analysis failure.

## Fields

| Field | Type | Normalized as |
|---|---|---|
| summary | string | "No summary available." when missing or blank |
| itemsDetected | [{name, category, confidence}] | confidence clamped to 0..1, non-numbers become 0 |
| tasks | [{title, deadline, priority}] | priority High, Medium or Low (default Medium); completed is always false |
| events | [{title, date, time, location}] | date YYYY-MM-DD, time HH:MM |
| notes | [{title, content, tags}] | tags default to an empty list |
| studyPlan | [string] | kept in order |

Every scan, task, event and note receives a fresh identifier when stored.
Malformed elements are kept with empty fields rather than failing the scan.

## Calendar placement

Events appear on the calendar day parsed from ` + "`date`" + `. Events whose
date cannot be parsed stay in the event list but are not placed on the grid.
Within the event list, events with a ` + "`time`" + ` are ordered by it; events
without one keep their position.

## Response schema
`

func extractionContract() string {
	schema, _ := json.MarshalIndent(analyzer.ResponseSchema, "", "  ")
	return ExtractionContract + "\n```json\n" + string(schema) + "\n```\n"
}
