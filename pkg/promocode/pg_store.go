package promocode

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muhammadiwa/youtube-automation-sub003/pkg/checkout"
)

// PgStore loads promo codes from PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE promo_codes (
//	    code            TEXT PRIMARY KEY,
//	    discount_type   TEXT NOT NULL,
//	    discount_value  DOUBLE PRECISION NOT NULL,
//	    applies_to      TEXT[] NOT NULL DEFAULT '{}',
//	    valid_from      TIMESTAMPTZ,
//	    valid_until     TIMESTAMPTZ,
//	    max_redemptions INT NOT NULL DEFAULT 0,
//	    redemptions     INT NOT NULL DEFAULT 0,
//	    min_amount      BIGINT NOT NULL DEFAULT 0
//	);
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PostgreSQL-backed Store. Panics on a nil pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	if pool == nil {
		panic("promocode: pgxpool.Pool is required")
	}
	return &PgStore{pool: pool}
}

const getCodeQuery = `
SELECT code, discount_type, discount_value, applies_to,
       valid_from, valid_until, max_redemptions, redemptions, min_amount
FROM promo_codes
WHERE code = $1`

func (s *PgStore) Get(ctx context.Context, code string) (Code, error) {
	var (
		c   Code
		typ string
	)
	err := s.pool.QueryRow(ctx, getCodeQuery, code).Scan(
		&c.Code, &typ, &c.Value, &c.AppliesTo,
		&c.ValidFrom, &c.ValidUntil, &c.MaxRedemptions, &c.Redemptions, &c.MinAmount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Code{}, ErrCodeNotFound
		}
		return Code{}, errors.Join(ErrStoreFailure, err)
	}

	c.Type = checkout.DiscountType(typ)
	return c, nil
}
