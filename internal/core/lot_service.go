package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type lotService struct {
	pool *pgxpool.Pool
}

// NewLotService constructs a LotService backed by PostgreSQL.
func NewLotService(pool *pgxpool.Pool) LotService {
	return &lotService{pool: pool}
}

const lotColumns = `id, lot_number, title, description, estimate_low, estimate_high, created_at`

func scanLot(row pgx.Row) (*Lot, error) {
	l := &Lot{}
	err := row.Scan(&l.ID, &l.Number, &l.Title, &l.Description, &l.EstimateLow, &l.EstimateHigh, &l.CreatedAt)
	return l, err
}

func (s *lotService) List(ctx context.Context) ([]Lot, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+lotColumns+` FROM lots ORDER BY lot_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	var lots []Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		lots = append(lots, *l)
	}
	return lots, rows.Err()
}

func (s *lotService) GetByNumber(ctx context.Context, number int) (*Lot, error) {
	l, err := scanLot(s.pool.QueryRow(ctx, `SELECT `+lotColumns+` FROM lots WHERE lot_number = $1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lot %d: %w", number, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get lot %d: %w", number, err)
	}
	return l, nil
}

func (s *lotService) Create(ctx context.Context, input LotInput) (*Lot, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	l, err := scanLot(s.pool.QueryRow(ctx, `
		INSERT INTO lots (lot_number, title, description, estimate_low, estimate_high)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+lotColumns,
		input.Number, input.Title, input.Description, input.EstimateLow, input.EstimateHigh,
	))
	if err != nil {
		return nil, fmt.Errorf("create lot %d: %w", input.Number, err)
	}
	return l, nil
}
