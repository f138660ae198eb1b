package research

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Tekunalogy/company-researcher/pkg/report"
)

const searchResultsHeading = "ADDITIONAL DATA FETCHED FROM THE WEB ABOUT THE COMPANY:"

// DataBlock is the crawled site data plus any fallback search results, shared
// by the initial and revision prompts.
type DataBlock struct {
	ExtractedData string
	SearchSection string
}

// BuildDataBlock pretty-prints the crawled data and, when there are any, the
// fallback search results. Nil and empty result lists render identically.
func BuildDataBlock(crawled json.RawMessage, results []json.RawMessage) (DataBlock, error) {
	var block DataBlock

	if len(crawled) == 0 {
		block.ExtractedData = "null"
	} else {
		extracted, err := report.PrettyJSON(crawled)
		if err != nil {
			return DataBlock{}, fmt.Errorf("failed to serialize crawled data: %w", err)
		}
		block.ExtractedData = extracted
	}

	if len(results) > 0 {
		serialized, err := report.PrettyJSON(results)
		if err != nil {
			return DataBlock{}, fmt.Errorf("failed to serialize search results: %w", err)
		}
		block.SearchSection = "\n\n" + searchResultsHeading + "\n" + serialized
	}

	return block, nil
}

// String renders the block as it appears at the end of every prompt.
func (b DataBlock) String() string {
	return b.ExtractedData + "\n" + b.SearchSection
}

// InitialPrompt asks for a complete report on the company at companyURL.
func InitialPrompt(companyURL string, data DataBlock) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant and an expert at company market research.\n")
	fmt.Fprintf(&sb, "Below, you are provided data extracted from the company's website: %s. ", companyURL)
	sb.WriteString("Use this data to generate a useful report that provides a complete overview of the company including its mission, key persons, products, clients, competitors, and other relevant market research info for accurate prospecting.\n\n")
	sb.WriteString("RULES:\n")
	sb.WriteString("- Your final report MUST include a summary of company's market position and a concise overview diagram of the company's structure and market position in mermaid format.\n")
	sb.WriteString("- Your report MUST be in JSON format.\n\n")
	sb.WriteString("EXTRACTED DATA:\n")
	sb.WriteString(data.String())
	return sb.String()
}

// RevisionPrompt asks for priorReport to be revised per instructions.
func RevisionPrompt(instructions, priorReport string, data DataBlock) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant and an expert at market research. ")
	sb.WriteString("Below, you are provided with extracted data about a company and your recent generated report based on this data.\n\n")
	sb.WriteString("Please revise and edit the generated report as per the user's instructions below:\n")
	sb.WriteString("<REVISION INSTRUCTIONS>\n")
	sb.WriteString(" " + instructions + "\n")
	sb.WriteString("</REVISION INSTRUCTIONS>\n\n")
	sb.WriteString("If the user's prompt is not clear or is unrelated to revising the report, please ignore the revision request and return the original report.\n\n")
	sb.WriteString("Your revised report MUST be in JSON format.\n\n")
	sb.WriteString("Below is your most recent generated report revision the user would like to change:\n")
	sb.WriteString(priorReport + "\n\n")
	sb.WriteString("Original extracted data used to generate the report:\n")
	sb.WriteString(data.String())
	return sb.String()
}
