// internal/store/subscriptions.go
package store

import (
	"context"
	"database/sql"
	"errors"

	"phoneplan-workers/internal/common/database"
	"phoneplan-workers/internal/models"
)

type SubscriptionStore struct {
	db *sql.DB
}

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Create inserts sub after checking, in the same transaction, that the phone
// number is free and that both the user and the plan exist.
func (s *SubscriptionStore) Create(ctx context.Context, sub *models.Subscription) (int64, error) {
	var id int64
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var taken, userOK, planOK bool
		err := tx.QueryRowContext(ctx, `
			SELECT
				EXISTS (SELECT 1 FROM subscriptions WHERE phone_number = $1),
				EXISTS (SELECT 1 FROM users WHERE id = $2),
				EXISTS (SELECT 1 FROM plans WHERE id = $3)`,
			sub.PhoneNumber, sub.UserID, sub.PlanID,
		).Scan(&taken, &userOK, &planOK)
		if err != nil {
			return queryError("subscriptions.check", err)
		}
		if taken {
			return ErrDuplicatePhone
		}
		if !userOK || !planOK {
			return ErrInvalidReference
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO subscriptions (user_id, plan_id, phone_number, subscribed_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			sub.UserID, sub.PlanID, sub.PhoneNumber, sub.SubscribedAt,
		).Scan(&id)
		switch {
		case isViolation(err, pqUniqueViolation):
			return ErrDuplicatePhone
		case isViolation(err, pqForeignKeyViolation):
			return ErrInvalidReference
		case err != nil:
			return queryError("subscriptions.create", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SubscriptionStore) Get(ctx context.Context, id int64) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, plan_id, phone_number, subscribed_at
		FROM subscriptions WHERE id = $1`, id,
	).Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.PhoneNumber, &sub.SubscribedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, queryError("subscriptions.get", err)
	}
	return &sub, nil
}

// ListByUser returns a user's subscriptions with their plan names.
func (s *SubscriptionStore) ListByUser(ctx context.Context, userID int64) ([]models.UserSubscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.phone_number, s.subscribed_at, p.name
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.user_id = $1
		ORDER BY s.subscribed_at DESC, s.id DESC`, userID)
	if err != nil {
		return nil, queryError("subscriptions.list_by_user", err)
	}
	defer rows.Close()

	out := make([]models.UserSubscription, 0)
	for rows.Next() {
		var us models.UserSubscription
		if err := rows.Scan(&us.ID, &us.PhoneNumber, &us.SubscribedAt, &us.PlanName); err != nil {
			return nil, queryError("subscriptions.list_by_user", err)
		}
		out = append(out, us)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("subscriptions.list_by_user", err)
	}
	return out, nil
}

func (s *SubscriptionStore) ListAll(ctx context.Context) ([]models.Subscription, error) {
	return s.list(ctx, "subscriptions.list_all", `
		SELECT id, user_id, plan_id, phone_number, subscribed_at
		FROM subscriptions ORDER BY id`)
}

func (s *SubscriptionStore) ListByPlan(ctx context.Context, planID int64) ([]models.Subscription, error) {
	return s.list(ctx, "subscriptions.list_by_plan", `
		SELECT id, user_id, plan_id, phone_number, subscribed_at
		FROM subscriptions WHERE plan_id = $1 ORDER BY id`, planID)
}

// TopPlans counts subscriptions per plan, most subscribed first.
func (s *SubscriptionStore) TopPlans(ctx context.Context) ([]models.PlanPopularity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT plan_id, COUNT(*) AS total
		FROM subscriptions
		GROUP BY plan_id
		ORDER BY total DESC, plan_id`)
	if err != nil {
		return nil, queryError("subscriptions.top_plans", err)
	}
	defer rows.Close()

	out := make([]models.PlanPopularity, 0)
	for rows.Next() {
		var pp models.PlanPopularity
		if err := rows.Scan(&pp.PlanID, &pp.TotalSubscriptions); err != nil {
			return nil, queryError("subscriptions.top_plans", err)
		}
		out = append(out, pp)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("subscriptions.top_plans", err)
	}
	return out, nil
}

// Update moves a subscription to another user, plan or phone number. The
// subscription date is kept.
func (s *SubscriptionStore) Update(ctx context.Context, sub *models.Subscription) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET user_id = $1, plan_id = $2, phone_number = $3
		WHERE id = $4`,
		sub.UserID, sub.PlanID, sub.PhoneNumber, sub.ID)
	switch {
	case isViolation(err, pqUniqueViolation):
		return ErrDuplicatePhone
	case isViolation(err, pqForeignKeyViolation):
		return ErrInvalidReference
	case err != nil:
		return queryError("subscriptions.update", err)
	}
	n, err := res.RowsAffected()
	return rowsAffected("subscriptions.update", n, err)
}

func (s *SubscriptionStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return queryError("subscriptions.delete", err)
	}
	n, err := res.RowsAffected()
	return rowsAffected("subscriptions.delete", n, err)
}

func (s *SubscriptionStore) list(ctx context.Context, op, query string, args ...interface{}) ([]models.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError(op, err)
	}
	defer rows.Close()

	out := make([]models.Subscription, 0)
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.PhoneNumber, &sub.SubscribedAt); err != nil {
			return nil, queryError(op, err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(op, err)
	}
	return out, nil
}
