// Package report defines the structured market-research report produced by the
// language model and the schema it must validate against.
package report

import "google.golang.org/genai"

// KeyPerson is a named individual at the company.
type KeyPerson struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

// Report is the structured market-research report.
type Report struct {
	CompanyName           string      `json:"companyName"`
	CompanyURL            string      `json:"companyUrl,omitempty"`
	Mission               string      `json:"mission,omitempty"`
	Overview              string      `json:"overview"`
	KeyPersons            []KeyPerson `json:"keyPersons,omitempty"`
	Products              []string    `json:"products,omitempty"`
	Clients               []string    `json:"clients,omitempty"`
	Competitors           []string    `json:"competitors,omitempty"`
	MarketPositionSummary string      `json:"marketPositionSummary"`
	MermaidDiagram        string      `json:"mermaidDiagram"`
}

// JSONSchema is the JSON Schema document a Report must satisfy.
const JSONSchema = `{
  "type": "object",
  "properties": {
    "companyName": {"type": "string", "minLength": 1},
    "companyUrl": {"type": "string"},
    "mission": {"type": "string"},
    "overview": {"type": "string", "minLength": 1},
    "keyPersons": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "title": {"type": "string"}
        },
        "required": ["name"]
      }
    },
    "products": {"type": "array", "items": {"type": "string"}},
    "clients": {"type": "array", "items": {"type": "string"}},
    "competitors": {"type": "array", "items": {"type": "string"}},
    "marketPositionSummary": {"type": "string", "minLength": 1},
    "mermaidDiagram": {"type": "string", "minLength": 1}
  },
  "required": ["companyName", "overview", "marketPositionSummary", "mermaidDiagram"]
}`

// GenAISchema renders the report shape as a Gemini response schema.
func GenAISchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	list := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: &genai.Schema{Type: genai.TypeString}}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"companyName": str("Name of the company"),
			"companyUrl":  str("Primary website of the company"),
			"mission":     str("Mission statement or purpose"),
			"overview":    str("Complete overview of the company"),
			"keyPersons": {
				Type:        genai.TypeArray,
				Description: "Key persons at the company",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":  str("Full name"),
						"title": str("Role or title"),
					},
					Required: []string{"name"},
				},
			},
			"products":              list("Products and services"),
			"clients":               list("Known clients"),
			"competitors":           list("Main competitors"),
			"marketPositionSummary": str("Summary of the company's market position"),
			"mermaidDiagram":        str("Mermaid diagram of the company's structure and market position"),
		},
		Required: []string{"companyName", "overview", "marketPositionSummary", "mermaidDiagram"},
		PropertyOrdering: []string{
			"companyName", "companyUrl", "mission", "overview", "keyPersons",
			"products", "clients", "competitors", "marketPositionSummary", "mermaidDiagram",
		},
	}
}
