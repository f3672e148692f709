package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements RecordStore and ConversationStore on a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Connect opens a pgx pool for the given DSN.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	return pool, nil
}

func (s *Postgres) Student(ctx context.Context, id uuid.UUID) (*Student, error) {
	var st Student
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(email, ''), COALESCE(university, ''),
		       COALESCE(degree, ''), COALESCE(year, ''), COALESCE(resume_url, '')
		FROM users
		WHERE id = $1 AND role = 'student'
	`, id).Scan(&st.ID, &st.Name, &st.Email, &st.University, &st.Degree, &st.Year, &st.ResumeURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query student: %w", err)
	}
	return &st, nil
}

func (s *Postgres) Company(ctx context.Context, id uuid.UUID) (*Company, error) {
	var c Company
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(email, '')
		FROM users
		WHERE id = $1 AND role = 'company'
	`, id).Scan(&c.ID, &c.Name, &c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query company: %w", err)
	}
	return &c, nil
}

func (s *Postgres) Students(ctx context.Context) ([]Student, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(email, ''), COALESCE(university, ''),
		       COALESCE(degree, ''), COALESCE(year, ''), COALESCE(resume_url, '')
		FROM users
		WHERE role = 'student'
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	students := make([]Student, 0)
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Email, &st.University, &st.Degree, &st.Year, &st.ResumeURL); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

func (s *Postgres) Internships(ctx context.Context) ([]Internship, error) {
	return s.queryInternships(ctx, `
		SELECT id, company_id, COALESCE(title, ''), COALESCE(description, ''),
		       COALESCE(salary, ''), COALESCE(technologies, '{}'),
		       COALESCE(type, ''), COALESCE(duration, '')
		FROM internships
		ORDER BY created_at
	`)
}

func (s *Postgres) CompanyInternships(ctx context.Context, companyID uuid.UUID) ([]Internship, error) {
	return s.queryInternships(ctx, `
		SELECT id, company_id, COALESCE(title, ''), COALESCE(description, ''),
		       COALESCE(salary, ''), COALESCE(technologies, '{}'),
		       COALESCE(type, ''), COALESCE(duration, '')
		FROM internships
		WHERE company_id = $1
		ORDER BY created_at
	`, companyID)
}

func (s *Postgres) queryInternships(ctx context.Context, sql string, args ...any) ([]Internship, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query internships: %w", err)
	}
	defer rows.Close()

	internships := make([]Internship, 0)
	for rows.Next() {
		var in Internship
		if err := rows.Scan(&in.ID, &in.CompanyID, &in.Title, &in.Description,
			&in.Salary, &in.Technologies, &in.Type, &in.Duration); err != nil {
			return nil, fmt.Errorf("scan internship: %w", err)
		}
		internships = append(internships, in)
	}
	return internships, rows.Err()
}

// Append writes all turns in one statement so a crash mid-call can never
// record a user message without its assistant reply.
func (s *Postgres) Append(ctx context.Context, userID uuid.UUID, turns []Turn) error {
	if len(turns) == 0 {
		return nil
	}

	payload, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("marshal turns: %w", err)
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO chat_history (user_id, messages, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET messages = chat_history.messages || EXCLUDED.messages,
		    updated_at = NOW()
	`, userID, payload); err != nil {
		return fmt.Errorf("append turns: %w", err)
	}
	return nil
}

func (s *Postgres) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]Turn, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		"SELECT messages FROM chat_history WHERE user_id = $1", userID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []Turn{}, nil
		}
		return nil, fmt.Errorf("query chat history: %w", err)
	}

	var turns []Turn
	if err := json.Unmarshal(payload, &turns); err != nil {
		return nil, fmt.Errorf("unmarshal chat history: %w", err)
	}

	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

var (
	_ RecordStore       = (*Postgres)(nil)
	_ ConversationStore = (*Postgres)(nil)
)
