package types

// ReportStatusOK is the status carried by every successfully built report payload
const ReportStatusOK = "ok"

// ComplianceReport is the terminal artifact of a review run
type ComplianceReport struct {
	ProblematicCount int             `json:"problematic_count"`
	Items            []ClauseVerdict `json:"items"`
}

// ReportItem is one entry of the downstream report payload
type ReportItem struct {
	ClauseIndex int    `json:"clause_index"`
	ClauseTitle string `json:"clause_title"`
	ClauseText  string `json:"clause_text"`
	Issue       string `json:"issue"`
	Suggestion  string `json:"suggestion"`
}

// ReportPayload is the structured payload returned to callers
type ReportPayload struct {
	Status           string       `json:"status"`
	ProblematicCount int          `json:"problematic_count"`
	Output           []ReportItem `json:"output"`
}

// ContractMessage is a review request as delivered by the upload front end
type ContractMessage struct {
	ID            string `json:"id"`
	FileName      string `json:"fileName"`
	ExtractedText string `json:"extractedText"`
	Header        string `json:"header,omitempty"`
}
