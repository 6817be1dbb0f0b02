// Package postgres implements the service repositories against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/service/popup"
)

// PopupRepo implements popup.Repository against PostgreSQL. Structured rule
// fields (content, appearance, targeting) are stored as JSONB; trigger and
// frequency are flattened to columns so they can be indexed and validated in
// SQL.
type PopupRepo struct{ db *sql.DB }

// NewPopupRepo creates a Postgres-backed popup repository.
func NewPopupRepo(db *sql.DB) *PopupRepo { return &PopupRepo{db: db} }

const popupColumns = `id, name, is_active, priority, content, appearance,
	trigger_type, trigger_value, frequency_type, frequency_value,
	targeting, impressions, clicks, created_at, updated_at`

func (r *PopupRepo) ListActive(ctx context.Context) ([]domain.Popup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+popupColumns+`
		FROM popups
		WHERE is_active = true
		ORDER BY priority DESC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list active popups: %w", err)
	}
	defer rows.Close()
	return scanPopups(rows)
}

func (r *PopupRepo) Get(ctx context.Context, id string) (*domain.Popup, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+popupColumns+`
		FROM popups
		WHERE id = $1
	`, id)

	p, err := scanPopup(row)
	if err == sql.ErrNoRows {
		return nil, popup.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get popup: %w", err)
	}
	return p, nil
}

func (r *PopupRepo) List(ctx context.Context, f popup.ListFilter) ([]domain.Popup, int, error) {
	where := ""
	if f.ActiveOnly {
		where = "WHERE is_active = true"
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM popups `+where,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count popups: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = total
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+popupColumns+`
		FROM popups `+where+`
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list popups: %w", err)
	}
	defer rows.Close()

	out, err := scanPopups(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PopupRepo) Create(ctx context.Context, p *domain.Popup) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	content, appearance, targetingJSON, err := marshalPopupJSON(p)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO popups (id, name, is_active, priority, content, appearance,
			trigger_type, trigger_value, frequency_type, frequency_value,
			targeting, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`, p.ID, p.Name, p.IsActive, p.Priority, content, appearance,
		p.Trigger.Type, p.Trigger.Value, p.Frequency.Type, p.Frequency.Value,
		targetingJSON)
	if err != nil {
		return fmt.Errorf("create popup: %w", err)
	}
	return nil
}

func (r *PopupRepo) Update(ctx context.Context, p *domain.Popup) error {
	content, appearance, targetingJSON, err := marshalPopupJSON(p)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE popups
		SET name = $2, is_active = $3, priority = $4, content = $5,
			appearance = $6, trigger_type = $7, trigger_value = $8,
			frequency_type = $9, frequency_value = $10, targeting = $11,
			updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.IsActive, p.Priority, content, appearance,
		p.Trigger.Type, p.Trigger.Value, p.Frequency.Type, p.Frequency.Value,
		targetingJSON)
	if err != nil {
		return fmt.Errorf("update popup: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return popup.ErrNotFound
	}
	return nil
}

func (r *PopupRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM popups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete popup: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return popup.ErrNotFound
	}
	return nil
}

func (r *PopupRepo) IncrementImpressions(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE popups SET impressions = impressions + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment impressions: %w", err)
	}
	return nil
}

func (r *PopupRepo) IncrementClicks(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE popups SET clicks = clicks + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}
	return nil
}

func marshalPopupJSON(p *domain.Popup) (content, appearance, targeting []byte, err error) {
	if content, err = json.Marshal(p.Content); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal popup content: %w", err)
	}
	if appearance, err = json.Marshal(p.Appearance); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal popup appearance: %w", err)
	}
	if targeting, err = json.Marshal(p.Targeting); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal popup targeting: %w", err)
	}
	return content, appearance, targeting, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPopup(row scanner) (*domain.Popup, error) {
	var p domain.Popup
	var content, appearance, targetingJSON []byte
	err := row.Scan(&p.ID, &p.Name, &p.IsActive, &p.Priority, &content,
		&appearance, &p.Trigger.Type, &p.Trigger.Value,
		&p.Frequency.Type, &p.Frequency.Value, &targetingJSON,
		&p.Impressions, &p.Clicks, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(content, &p.Content); err != nil {
		return nil, fmt.Errorf("unmarshal popup content: %w", err)
	}
	if err := json.Unmarshal(appearance, &p.Appearance); err != nil {
		return nil, fmt.Errorf("unmarshal popup appearance: %w", err)
	}
	if err := json.Unmarshal(targetingJSON, &p.Targeting); err != nil {
		return nil, fmt.Errorf("unmarshal popup targeting: %w", err)
	}
	return &p, nil
}

func scanPopups(rows *sql.Rows) ([]domain.Popup, error) {
	var out []domain.Popup
	for rows.Next() {
		p, err := scanPopup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan popup: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
