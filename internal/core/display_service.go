package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MaxBannerLen bounds the projector banner.
const MaxBannerLen = 200

type displayService struct {
	pool *pgxpool.Pool
	lots LotService
}

// NewDisplayService constructs a DisplayService backed by PostgreSQL.
func NewDisplayService(pool *pgxpool.Pool, lots LotService) DisplayService {
	return &displayService{pool: pool, lots: lots}
}

func (s *displayService) Get(ctx context.Context) (*Display, error) {
	d := &Display{}
	var lotNumber *int
	err := s.pool.QueryRow(ctx, `
		SELECT ds.banner, ds.updated_at, l.lot_number
		FROM display_settings ds
		LEFT JOIN lots l ON l.id = ds.current_lot_id
		WHERE ds.id = 1`,
	).Scan(&d.Banner, &d.UpdatedAt, &lotNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get display: %w", err)
	}
	if lotNumber != nil {
		lot, err := s.lots.GetByNumber(ctx, *lotNumber)
		if err != nil {
			return nil, err
		}
		d.CurrentLot = lot
	}
	return d, nil
}

func (s *displayService) SetBanner(ctx context.Context, banner string) error {
	if len([]rune(banner)) > MaxBannerLen {
		return errInvalid(fmt.Sprintf("banner is longer than %d characters", MaxBannerLen))
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO display_settings (id, banner, updated_at) VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET banner = EXCLUDED.banner, updated_at = now()`,
		banner,
	)
	if err != nil {
		return fmt.Errorf("set banner: %w", err)
	}
	return nil
}

func (s *displayService) ShowLot(ctx context.Context, number int) (*Lot, error) {
	lot, err := s.lots.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO display_settings (id, current_lot_id, updated_at) VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET current_lot_id = EXCLUDED.current_lot_id, updated_at = now()`,
		lot.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("show lot %d: %w", number, err)
	}
	return lot, nil
}
