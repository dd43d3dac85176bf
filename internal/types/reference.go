package types

// ReferenceEntry is a passage of the legal corpus (for example one article group of the labor code)
type ReferenceEntry struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ReferenceMatch is a corpus passage returned as the closest match to a clause
type ReferenceMatch struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ClauseRef identifies a clause submitted to the reference retriever
type ClauseRef struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ClauseRefFromSection converts a section into a retrieval query
func ClauseRefFromSection(s ContractSection) ClauseRef {
	return ClauseRef{Index: s.Order, Title: s.Title, Text: s.Text}
}
