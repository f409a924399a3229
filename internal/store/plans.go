// internal/store/plans.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"phoneplan-workers/internal/common/database"
	"phoneplan-workers/internal/common/logger"
	"phoneplan-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

// CatalogCacheKey holds the JSON-encoded full plan catalog.
const CatalogCacheKey = "plans:catalog"

const planColumns = `id, name, cost, data, minutes, sms, carrier, extra_benefits`

// PlanStore reads and writes the plan catalog. Full catalog reads go through
// a redis read-through cache that every mutation invalidates.
type PlanStore struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewPlanStore(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *PlanStore {
	return &PlanStore{
		db:       db,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"store": "plans"}),
	}
}

// List returns every plan ordered by id.
func (s *PlanStore) List(ctx context.Context) ([]models.Plan, error) {
	if s.redis != nil {
		var cached []models.Plan
		found, err := database.GetJSON(ctx, s.redis, CatalogCacheKey, &cached)
		if err != nil {
			s.logger.Warn("catalog cache read failed", map[string]interface{}{"error": err.Error()})
		}
		if found {
			return cached, nil
		}
	}

	plans, err := s.query(ctx, "plans.list", `SELECT `+planColumns+` FROM plans ORDER BY id`)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := database.SetJSON(ctx, s.redis, CatalogCacheKey, plans, s.cacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return plans, nil
}

// ListByCarrier returns the plans of one carrier. The all-carriers values
// return the whole catalog.
func (s *PlanStore) ListByCarrier(ctx context.Context, carrier string) ([]models.Plan, error) {
	if models.IsAllCarriers(carrier) {
		return s.List(ctx)
	}
	return s.query(ctx, "plans.list_by_carrier",
		`SELECT `+planColumns+` FROM plans WHERE carrier = $1 ORDER BY id`, carrier)
}

func (s *PlanStore) Get(ctx context.Context, id int64) (*models.Plan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id)

	var p models.Plan
	err := row.Scan(&p.ID, &p.Name, &p.Cost, &p.Data, &p.Minutes, &p.SMS, &p.Carrier, &p.ExtraBenefits)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, queryError("plans.get", err)
	}
	return &p, nil
}

// Create inserts p and returns the new id.
func (s *PlanStore) Create(ctx context.Context, p *models.Plan) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO plans (name, cost, data, minutes, sms, carrier, extra_benefits)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		p.Name, p.Cost, p.Data, p.Minutes, p.SMS, p.Carrier, p.ExtraBenefits,
	).Scan(&id)
	if err != nil {
		return 0, queryError("plans.create", err)
	}

	s.Invalidate(ctx)
	return id, nil
}

// Update overwrites the plan with p.ID.
func (s *PlanStore) Update(ctx context.Context, p *models.Plan) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE plans
		SET name = $1, cost = $2, data = $3, minutes = $4, sms = $5, carrier = $6, extra_benefits = $7
		WHERE id = $8`,
		p.Name, p.Cost, p.Data, p.Minutes, p.SMS, p.Carrier, p.ExtraBenefits, p.ID,
	)
	if err != nil {
		return queryError("plans.update", err)
	}
	n, err := res.RowsAffected()
	if err := rowsAffected("plans.update", n, err); err != nil {
		return err
	}

	s.Invalidate(ctx)
	return nil
}

func (s *PlanStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if isViolation(err, pqForeignKeyViolation) {
		return ErrInUse
	}
	if err != nil {
		return queryError("plans.delete", err)
	}
	n, err := res.RowsAffected()
	if err := rowsAffected("plans.delete", n, err); err != nil {
		return err
	}

	s.Invalidate(ctx)
	return nil
}

// Invalidate drops the cached catalog.
func (s *PlanStore) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, CatalogCacheKey).Err(); err != nil {
		s.logger.Warn("catalog cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *PlanStore) query(ctx context.Context, op, query string, args ...interface{}) ([]models.Plan, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError(op, err)
	}
	defer rows.Close()

	plans := make([]models.Plan, 0)
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Cost, &p.Data, &p.Minutes, &p.SMS, &p.Carrier, &p.ExtraBenefits); err != nil {
			return nil, queryError(op, err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(op, err)
	}
	return plans, nil
}
