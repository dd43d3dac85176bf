package types

import "fmt"

// ArtifactName identifies an intermediate artifact of a review run
type ArtifactName string

// Artifacts written by every review run
const (
	ArtifactSections   ArtifactName = "contract_sections"
	ArtifactReferences ArtifactName = "retrieval_output"
	ArtifactIssues     ArtifactName = "llm_issues"
)

// ArtifactNames returns the artifacts in the order a run produces them
func ArtifactNames() []ArtifactName {
	return []ArtifactName{ArtifactSections, ArtifactReferences, ArtifactIssues}
}

// ParseArtifactName validates a user-supplied artifact name
func ParseArtifactName(s string) (ArtifactName, error) {
	for _, n := range ArtifactNames() {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown artifact %q", s)
}

// FileName returns the artifact's file name on disk
func (n ArtifactName) FileName() string {
	return string(n) + ".json"
}
