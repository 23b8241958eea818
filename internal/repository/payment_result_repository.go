package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/akylbek/payment-system/payment-result/internal/models"
)

type PaymentResultRepository struct {
	db *sql.DB
}

func NewPaymentResultRepository(db *sql.DB) *PaymentResultRepository {
	return &PaymentResultRepository{db: db}
}

func (r *PaymentResultRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS payment_results (
			order_code VARCHAR(255) PRIMARY KEY,
			status VARCHAR(50) NOT NULL,
			previous_status VARCHAR(50),
			error_code VARCHAR(50),
			result JSONB NOT NULL,
			resolutions INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_results_status ON payment_results(status)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// Record upserts the latest result for its order code. A stored success is
// only ever replaced by another success.
func (r *PaymentResultRepository) Record(ctx context.Context, result models.PaymentResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO payment_results (order_code, status, previous_status, error_code, result)
		VALUES ($1, $2, '', $3, $4)
		ON CONFLICT (order_code) DO UPDATE
		SET previous_status = payment_results.status,
			status = EXCLUDED.status,
			error_code = EXCLUDED.error_code,
			result = EXCLUDED.result,
			resolutions = payment_results.resolutions + 1,
			updated_at = NOW()
		WHERE payment_results.status <> 'success' OR EXCLUDED.status = 'success'
	`, result.OrderCode, result.Status, result.ErrorCode, payload)
	return err
}

func (r *PaymentResultRepository) GetByOrderCode(ctx context.Context, orderCode string) (*models.PaymentResult, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT result FROM payment_results WHERE order_code = $1`, orderCode).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}

	var result models.PaymentResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
