package assistant

import (
	"encoding/json"
	"fmt"

	"github.com/forsa/assistant/store"
)

const (
	studentQuery = "internship requirements and skills"
	companyQuery = "candidate skills and experience"
)

// systemPrompt renders the role-appropriate instruction block around the
// assembled payload. The user's message is never interpolated here; it
// travels separately as the user turn.
func systemPrompt(payload *ContextPayload) string {
	if payload.Role == store.RoleCompany {
		return companySystemPrompt(payload)
	}
	return studentSystemPrompt(payload)
}

func studentSystemPrompt(payload *ContextPayload) string {
	return fmt.Sprintf(`You are an AI assistant helping students with internships.
Student Profile: %s
CV Content: %s
Recent conversation: %s
Available Internships: %s

Respond with specific information from the internships database.
If asked about CV or profile, use only the student profile and CV content.
If asked about internships, list matching opportunities from the database.`,
		asJSON(payload.StudentProfile),
		orDefault(payload.CVContent, noDocumentText),
		orDefault(payload.RecentConversation, "No previous context"),
		asJSON(payload.RelevantMatches),
	)
}

func companySystemPrompt(payload *ContextPayload) string {
	return fmt.Sprintf(`You are an AI assistant helping with candidate matching.
Company Profile: %s
Company Internships: %s
Recent conversation: %s
Matching Candidates: %s

Focus on matching candidates to internship requirements.
Provide specific details about candidates' qualifications.`,
		asJSON(payload.CompanyProfile),
		asJSON(payload.CompanyInternships),
		orDefault(payload.RecentConversation, "No previous context"),
		asJSON(payload.RelevantCandidates),
	)
}

func asJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
