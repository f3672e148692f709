package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/forsa/assistant/chunker"
	"github.com/forsa/assistant/config"
	"github.com/forsa/assistant/embeddings"
	"github.com/forsa/assistant/extract"
	"github.com/forsa/assistant/index"
	"github.com/forsa/assistant/llm"
	"github.com/forsa/assistant/store"
)

// Fixed user-visible fallback strings. Every internal failure mode maps to
// exactly one of these; nothing in the pipeline is retried.
const (
	refusalMessage = "Sorry, I can't process that request. Please ask a plain question about internships or candidates."

	screenedMessage = "I put together a response that looked like it contained internal account data, so I have withheld it. Please try rephrasing your question."

	generationFailedMessage = "I apologize, but I couldn't generate a proper response. Please try again."

	internalErrorMessage = "I encountered an error while processing your request. Please try again."
)

const defaultTopK = 5

// Assistant orchestrates normalization, indexing, retrieval, redaction, and
// generation for one user turn at a time. It keeps no state across calls
// beyond the injected collaborators.
type Assistant struct {
	records       store.RecordStore
	conversations store.ConversationStore
	extractor     *extract.Extractor
	embedder      embeddings.Embedder
	llm           llm.Client
	redactor      *Redactor
	retrieval     config.Retrieval
	logger        zerolog.Logger
}

func New(
	records store.RecordStore,
	conversations store.ConversationStore,
	extractor *extract.Extractor,
	embedder embeddings.Embedder,
	llmClient llm.Client,
	cfg *config.Config,
	logger zerolog.Logger,
) *Assistant {
	retrieval := cfg.Retrieval
	if retrieval.TopK <= 0 {
		retrieval.TopK = defaultTopK
	}
	if retrieval.ChunkSize <= 0 {
		retrieval.ChunkSize = 1000
	}
	if retrieval.ChunkOverlap < 0 {
		retrieval.ChunkOverlap = 0
	}
	if retrieval.HistoryTurns <= 0 {
		retrieval.HistoryTurns = 3
	}
	if retrieval.ExcerptChars <= 0 {
		retrieval.ExcerptChars = 500
	}

	return &Assistant{
		records:       records,
		conversations: conversations,
		extractor:     extractor,
		embedder:      embedder,
		llm:           llmClient,
		redactor:      NewRedactor(cfg.Guard),
		retrieval:     retrieval,
		logger:        logger,
	}
}

// GetResponse answers one user message. It always returns a human-readable
// string: sanitization trips, screening trips, and internal failures all
// resolve to their fixed fallback instead of an error.
func (a *Assistant) GetResponse(ctx context.Context, message string, role store.Role, userID uuid.UUID) (response string) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error().Interface("panic", rec).Msg("recovered in GetResponse")
			response = internalErrorMessage
		}
	}()

	if !role.Valid() {
		a.logger.Error().Str("role", string(role)).Msg("unknown role")
		return internalErrorMessage
	}

	sanitized, tripped := a.redactor.SanitizeInput(message)
	if tripped {
		a.logger.Warn().Str("user", userID.String()).Msg("blocked phrase in user message")
		return refusalMessage
	}

	payload, err := a.assembleContext(ctx, role, userID)
	if err != nil {
		a.logger.Error().Err(err).Str("user", userID.String()).Msg("context assembly failed")
		return internalErrorMessage
	}

	answer, err := a.llm.Complete(ctx, systemPrompt(payload), sanitized)
	if err != nil {
		a.logger.Error().Err(err).Msg("generation failed")
		return generationFailedMessage
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		a.logger.Error().Msg("generation returned empty response")
		return generationFailedMessage
	}

	if a.redactor.ScreenOutput(answer) {
		a.logger.Warn().Str("user", userID.String()).Msg("generated response failed output screening")
		return screenedMessage
	}

	now := time.Now().UTC()
	turns := []store.Turn{
		{Role: "user", Content: sanitized, Timestamp: now},
		{Role: "assistant", Content: answer, Timestamp: now},
	}
	if err := a.conversations.Append(ctx, userID, turns); err != nil {
		// The answer is already safe to return; losing the history write
		// only shortens the next call's conversation window.
		a.logger.Error().Err(err).Str("user", userID.String()).Msg("history append failed")
	}

	return answer
}

// assembleContext runs the per-call pipeline: fetch records, normalize,
// chunk, build the ephemeral index, retrieve, redact, and bound field sizes.
func (a *Assistant) assembleContext(ctx context.Context, role store.Role, userID uuid.UUID) (*ContextPayload, error) {
	turns, err := a.conversations.Recent(ctx, userID, a.retrieval.HistoryTurns)
	if err != nil {
		return nil, fmt.Errorf("fetch conversation window: %w", err)
	}
	conversation := formatTurns(turns)

	if role == store.RoleCompany {
		return a.companyContext(ctx, userID, conversation)
	}
	return a.studentContext(ctx, userID, conversation)
}

func (a *Assistant) studentContext(ctx context.Context, userID uuid.UUID, conversation string) (*ContextPayload, error) {
	student, err := a.records.Student(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("student %s not found", userID)
	}

	postings, err := a.records.Internships(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch internships: %w", err)
	}

	var cvText string
	if student.ResumeURL != "" {
		cvText = a.extractor.Extract(ctx, student.ResumeURL)
	}

	spec := chunker.Spec{Size: a.retrieval.ChunkSize, Overlap: a.retrieval.ChunkOverlap}
	units := studentUnits(student, cvText, postings, spec)

	matches, err := a.retrieve(ctx, units, studentQuery)
	if err != nil {
		return nil, err
	}

	// The profile is already a dedicated payload field; echoing it into the
	// match list would only duplicate it.
	matchTexts := make([]string, 0, len(matches))
	for _, match := range matches {
		if match.Unit.Metadata[index.MetaSource] == index.SourceProfile {
			continue
		}
		matchTexts = append(matchTexts, a.redactor.MaskText(match.Unit.Text))
	}

	profile := a.redactor.Redact(map[string]any{
		"name":       student.Name,
		"university": student.University,
		"degree":     student.Degree,
		"year":       student.Year,
	}).(map[string]any)

	return &ContextPayload{
		Role:               store.RoleStudent,
		StudentProfile:     profile,
		CVContent:          a.excerpt(cvText),
		RelevantMatches:    matchTexts,
		RecentConversation: conversation,
	}, nil
}

func (a *Assistant) companyContext(ctx context.Context, userID uuid.UUID, conversation string) (*ContextPayload, error) {
	company, err := a.records.Company(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("company %s not found", userID)
	}

	candidates, err := a.records.Students(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	postings, err := a.records.CompanyInternships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch company internships: %w", err)
	}

	excerpts := make(map[string]string, len(candidates))
	for _, candidate := range candidates {
		if candidate.ResumeURL == "" {
			continue
		}
		if text := a.extractor.Extract(ctx, candidate.ResumeURL); text != "" {
			excerpts[candidate.Name] = boundText(text, a.retrieval.ExcerptChars)
		}
	}

	units := companyUnits(candidates, excerpts, postings)

	matches, err := a.retrieve(ctx, units, companyQuery)
	if err != nil {
		return nil, err
	}

	matched := make([]Candidate, 0, len(matches))
	for _, match := range matches {
		name, ok := match.Unit.Metadata["student_name"]
		if !ok {
			continue
		}
		matched = append(matched, Candidate{
			Name:    name,
			Content: a.redactor.MaskText(match.Unit.Text),
		})
	}

	internships := make([]map[string]any, len(postings))
	for i, posting := range postings {
		internships[i] = a.redactor.Redact(map[string]any{
			"title":        posting.Title,
			"technologies": posting.Technologies,
		}).(map[string]any)
	}

	profile := a.redactor.Redact(map[string]any{
		"name": company.Name,
	}).(map[string]any)

	return &ContextPayload{
		Role:               store.RoleCompany,
		CompanyProfile:     profile,
		CompanyInternships: internships,
		RelevantCandidates: matched,
		RecentConversation: conversation,
	}, nil
}

// retrieve builds the disposable index over units and runs one fixed
// role-determined query against it. The user's literal message is never used
// as the retrieval query.
func (a *Assistant) retrieve(ctx context.Context, units []index.TextUnit, query string) ([]index.Match, error) {
	idx, err := index.Build(ctx, a.embedder, units)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	defer idx.Release()

	matches, err := idx.Search(ctx, query, a.retrieval.TopK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return matches, nil
}

// excerpt caps a document excerpt to the configured character budget with a
// visible truncation suffix, or states that no document exists.
func (a *Assistant) excerpt(text string) string {
	if text == "" {
		return noDocumentText
	}
	return boundText(text, a.retrieval.ExcerptChars)
}

func boundText(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return cutAtRune(text, limit) + "..."
}
