package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/offerpilot/offerpilot/internal/domain"
)

// OfferRepository persists generated offers keyed by lead id.
type OfferRepository struct {
	db *sqlx.DB
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// offerRow represents the database row structure
type offerRow struct {
	ID        uuid.UUID `db:"id"`
	LeadID    string    `db:"lead_id"`
	Offer     []byte    `db:"offer"`
	ModelUsed string    `db:"model_used"`
	AIPowered bool      `db:"ai_powered"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *offerRow) toDomain() (*domain.OfferRecord, error) {
	var offer domain.GeneratedOffer
	if err := json.Unmarshal(r.Offer, &offer); err != nil {
		return nil, err
	}

	return &domain.OfferRecord{
		ID:        r.ID,
		LeadID:    r.LeadID,
		Offer:     &offer,
		ModelUsed: r.ModelUsed,
		AIPowered: r.AIPowered,
		CreatedAt: r.CreatedAt,
	}, nil
}

// Create inserts a new offer record
func (r *OfferRepository) Create(ctx context.Context, record *domain.OfferRecord) error {
	offer, err := json.Marshal(record.Offer)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO offers (id, lead_id, offer, model_used, ai_powered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.LeadID,
		offer,
		record.ModelUsed,
		record.AIPowered,
		record.CreatedAt,
	)
	return err
}

// ListByLeadID retrieves all offers for a lead, newest first
func (r *OfferRepository) ListByLeadID(ctx context.Context, leadID string) ([]*domain.OfferRecord, error) {
	query := `
		SELECT id, lead_id, offer, model_used, ai_powered, created_at
		FROM offers
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`

	var rows []offerRow
	if err := r.db.SelectContext(ctx, &rows, query, leadID); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.NotFoundError("offers", leadID)
	}

	records := make([]*domain.OfferRecord, 0, len(rows))
	for i := range rows {
		record, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
