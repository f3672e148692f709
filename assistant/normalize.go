package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forsa/assistant/chunker"
	"github.com/forsa/assistant/index"
	"github.com/forsa/assistant/store"
)

// internshipDoc is the user-facing serialization of a posting. Absent fields
// serialize as empty strings, never null, so downstream formatting stays
// stable.
type internshipDoc struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Type         string   `json:"type"`
	Salary       string   `json:"salary"`
	Duration     string   `json:"duration"`
}

// studentUnits normalizes a job-seeker's evidence: one profile unit, zero or
// more résumé chunks, and one unit per visible posting.
func studentUnits(st *store.Student, cvText string, postings []store.Internship, spec chunker.Spec) []index.TextUnit {
	units := make([]index.TextUnit, 0, len(postings)+4)

	units = append(units, index.TextUnit{
		Text: profileText(st),
		Metadata: map[string]string{
			index.MetaSource: index.SourceProfile,
		},
	})

	for _, chunk := range chunker.Chunk(cvText, spec) {
		units = append(units, index.TextUnit{
			Text: chunk,
			Metadata: map[string]string{
				index.MetaSource: index.SourceCV,
			},
		})
	}

	units = append(units, internshipUnits(postings)...)
	return units
}

// companyUnits normalizes a hiring organization's evidence: one unit per
// visible candidate and one unit per owned posting. excerpts maps a student
// name to a short résumé excerpt; candidates without one still get a
// profile-only unit.
func companyUnits(candidates []store.Student, excerpts map[string]string, postings []store.Internship) []index.TextUnit {
	units := make([]index.TextUnit, 0, len(candidates)+len(postings))

	for _, st := range candidates {
		excerpt := excerpts[st.Name]
		text := candidateText(&st, excerpt)

		source := index.SourceProfile
		if excerpt != "" {
			source = index.SourceCV
		}

		units = append(units, index.TextUnit{
			Text: text,
			Metadata: map[string]string{
				index.MetaSource:     source,
				"student_name":       st.Name,
				"student_degree":     st.Degree,
				"student_university": st.University,
			},
		})
	}

	units = append(units, internshipUnits(postings)...)
	return units
}

func internshipUnits(postings []store.Internship) []index.TextUnit {
	units := make([]index.TextUnit, 0, len(postings))
	for _, posting := range postings {
		doc := internshipDoc{
			Title:        posting.Title,
			Description:  posting.Description,
			Technologies: posting.Technologies,
			Type:         posting.Type,
			Salary:       posting.Salary,
			Duration:     posting.Duration,
		}
		if doc.Technologies == nil {
			doc.Technologies = []string{}
		}

		data, err := json.Marshal(doc)
		if err != nil {
			continue
		}

		units = append(units, index.TextUnit{
			Text: string(data),
			Metadata: map[string]string{
				index.MetaSource: index.SourceInternship,
				"title":          posting.Title,
			},
		})
	}
	return units
}

func profileText(st *store.Student) string {
	return fmt.Sprintf(
		"Student Profile:\nName: %s\nUniversity: %s\nDegree: %s\nYear: %s",
		st.Name, st.University, st.Degree, st.Year,
	)
}

func candidateText(st *store.Student, excerpt string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		"Candidate Profile:\nName: %s\nUniversity: %s\nDegree: %s\nYear: %s",
		st.Name, st.University, st.Degree, st.Year,
	))
	if excerpt != "" {
		sb.WriteString("\nResume Excerpt:\n")
		sb.WriteString(excerpt)
	}
	return sb.String()
}

// formatTurns renders a conversation window as alternating role-tagged
// lines, oldest first.
func formatTurns(turns []store.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, len(turns))
	for i, turn := range turns {
		lines[i] = turn.Role + ": " + turn.Content
	}
	return strings.Join(lines, "\n")
}
