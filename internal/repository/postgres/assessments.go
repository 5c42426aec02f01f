package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/offerpilot/offerpilot/internal/domain"
)

// AssessmentRepository persists scored assessments keyed by lead id.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// assessmentRow represents the database row structure
type assessmentRow struct {
	ID        uuid.UUID `db:"id"`
	LeadID    string    `db:"lead_id"`
	Answers   []byte    `db:"answers"`
	Result    []byte    `db:"result"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *assessmentRow) toDomain() (*domain.AssessmentRecord, error) {
	var answers domain.QualificationAnswers
	if err := json.Unmarshal(r.Answers, &answers); err != nil {
		return nil, err
	}
	var result domain.ScoreResult
	if err := json.Unmarshal(r.Result, &result); err != nil {
		return nil, err
	}

	return &domain.AssessmentRecord{
		ID:        r.ID,
		LeadID:    r.LeadID,
		Answers:   answers,
		Result:    result,
		CreatedAt: r.CreatedAt,
	}, nil
}

// Create inserts a new assessment record
func (r *AssessmentRepository) Create(ctx context.Context, record *domain.AssessmentRecord) error {
	answers, err := json.Marshal(record.Answers)
	if err != nil {
		return err
	}
	result, err := json.Marshal(record.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO assessments (id, lead_id, answers, result, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.LeadID,
		answers,
		result,
		record.CreatedAt,
	)
	return err
}

// GetLatestByLeadID retrieves a lead's most recent assessment
func (r *AssessmentRepository) GetLatestByLeadID(ctx context.Context, leadID string) (*domain.AssessmentRecord, error) {
	query := `
		SELECT id, lead_id, answers, result, created_at
		FROM assessments
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var row assessmentRow
	if err := r.db.GetContext(ctx, &row, query, leadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("assessment", leadID)
		}
		return nil, err
	}
	return row.toDomain()
}
