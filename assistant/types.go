// Package assistant assembles role-scoped, redacted context from stored
// records and answers chat questions through the generation collaborator. Its
// single entry point, GetResponse, never returns an error to the caller:
// every failure mode resolves to a fixed human-readable fallback.
package assistant

import "github.com/forsa/assistant/store"

// ContextPayload is the bounded evidence bundle handed to the generation
// provider. It is built fresh per call and discarded afterwards; no field
// carries a raw internal identifier, password, or unmasked email.
type ContextPayload struct {
	Role store.Role `json:"-"`

	// Student-role fields.
	StudentProfile  map[string]any `json:"student_profile,omitempty"`
	CVContent       string         `json:"cv_content,omitempty"`
	RelevantMatches []string       `json:"relevant_matches,omitempty"`

	// Company-role fields.
	CompanyProfile     map[string]any   `json:"company_profile,omitempty"`
	CompanyInternships []map[string]any `json:"company_internships,omitempty"`
	RelevantCandidates []Candidate      `json:"relevant_candidates,omitempty"`

	RecentConversation string `json:"recent_conversation,omitempty"`
}

// Candidate is one retrieved candidate match for the company role.
type Candidate struct {
	Name    string `json:"student_name"`
	Content string `json:"content"`
}

// noDocumentText is what the document-excerpt field states when the subject
// has not uploaded a résumé.
const noDocumentText = "No CV uploaded"
