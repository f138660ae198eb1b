package report

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReport = `{
  "companyName": "Acme",
  "overview": "Acme builds anvils.",
  "keyPersons": [{"name": "Wile E. Coyote", "title": "Chief Customer"}],
  "marketPositionSummary": "Dominant in desert logistics.",
  "mermaidDiagram": "graph TD; Acme --> Anvils"
}`

func TestDecode(t *testing.T) {
	r, err := Decode(validReport)
	require.NoError(t, err)
	assert.Equal(t, "Acme", r.CompanyName)
	assert.Equal(t, "graph TD; Acme --> Anvils", r.MermaidDiagram)
	require.Len(t, r.KeyPersons, 1)
	assert.Equal(t, "Chief Customer", r.KeyPersons[0].Title)
}

func TestDecodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing required fields", `{"companyName": "Acme"}`},
		{"wrong type", `{"companyName": "Acme", "overview": 3, "marketPositionSummary": "x", "mermaidDiagram": "y"}`},
		{"empty required string", `{"companyName": "", "overview": "o", "marketPositionSummary": "x", "mermaidDiagram": "y"}`},
		{"key person without name", `{"companyName": "A", "overview": "o", "marketPositionSummary": "x", "mermaidDiagram": "y", "keyPersons": [{"title": "CEO"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Errors)
			assert.Contains(t, ve.Error(), "report failed schema validation")
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode("  \n ")
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode(`{"companyName": `)
	require.Error(t, err)
}

func TestPrettyJSONKeepsArrows(t *testing.T) {
	out, err := PrettyJSON(map[string]string{"diagram": "A --> B & C"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"diagram\": \"A --> B & C\"\n}", out)
}

func TestPrettyJSONRawMessage(t *testing.T) {
	out, err := PrettyJSON(json.RawMessage(`{"name":"Acme"}`))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"Acme\"\n}", out)
}

func TestGenAISchemaMatchesJSONSchema(t *testing.T) {
	var doc struct {
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	require.NoError(t, json.Unmarshal([]byte(JSONSchema), &doc))

	gs := GenAISchema()

	var want, got []string
	for k := range doc.Properties {
		want = append(want, k)
	}
	for k := range gs.Properties {
		got = append(got, k)
	}
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
	assert.ElementsMatch(t, doc.Required, gs.Required)
	assert.ElementsMatch(t, got, gs.PropertyOrdering)
}
