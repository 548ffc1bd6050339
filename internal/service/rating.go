package service

import (
	"context"
	"fmt"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/lifecycle"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrInvalidRating  = invalid("rating must be between 1 and 5")
	ErrInvalidStaffID = invalid("invalid staff_id")
	ErrInvalidOrderID = invalid("invalid order_id")
	ErrNotWaitstaff   = invalid("only waitstaff can be rated")
)

const (
	defaultRatingLimit = 5
	maxRatingLimit     = 50
)

// RatingStore defines the DB methods needed for customer feedback.
type RatingStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetStaff(ctx context.Context, id uuid.UUID) (database.Staff, error)
	CreateRating(ctx context.Context, arg database.CreateRatingParams) (database.Rating, error)
	ListRecentRatings(ctx context.Context, arg database.ListRecentRatingsParams) ([]database.ListRecentRatingsRow, error)
	ListWaitstaffScores(ctx context.Context) ([]database.WaitstaffScore, error)
}

type NewRatingStore func(db database.DBTX) RatingStore

type CreateRatingRequest struct {
	StaffID string
	OrderID string
	Rating  int32
	Comment string
	Actor   lifecycle.Actor
}

// RatingService records customer ratings of their server and feeds the
// waitstaff dashboard.
type RatingService struct {
	pool     TxBeginner
	newStore NewRatingStore
}

func NewRatingService(pool TxBeginner, newStore NewRatingStore) *RatingService {
	return &RatingService{pool: pool, newStore: newStore}
}

// Create stores a rating from a signed-in customer. When only the order is
// given, the rating goes to the waiter who took it.
func (s *RatingService) Create(ctx context.Context, req CreateRatingRequest) (database.Rating, error) {
	if req.Actor.Role != enum.RoleCustomer {
		return database.Rating{}, fmt.Errorf("%w: only customers leave ratings", lifecycle.ErrActorNotAllowed)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return database.Rating{}, ErrInvalidRating
	}
	staffID, err := optionalUUID(req.StaffID, ErrInvalidStaffID)
	if err != nil {
		return database.Rating{}, err
	}
	orderID, err := optionalUUID(req.OrderID, ErrInvalidOrderID)
	if err != nil {
		return database.Rating{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Rating{}, persist("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if orderID.Valid {
		order, err := store.GetOrder(ctx, orderID.Bytes)
		if err != nil {
			return database.Rating{}, notFoundOr("get order", err, "order")
		}
		if !order.CustomerID.Valid || uuid.UUID(order.CustomerID.Bytes) != req.Actor.CustomerID {
			return database.Rating{}, fmt.Errorf("order: %w", ErrNotFound)
		}
		if !staffID.Valid {
			staffID = order.StaffID
		}
	}
	if staffID.Valid {
		member, err := store.GetStaff(ctx, staffID.Bytes)
		if err != nil {
			return database.Rating{}, notFoundOr("get staff", err, "staff")
		}
		if member.Position != database.StaffPositionWaitstaff {
			return database.Rating{}, ErrNotWaitstaff
		}
	}

	rating, err := store.CreateRating(ctx, database.CreateRatingParams{
		CustomerID: pgtype.UUID{Bytes: req.Actor.CustomerID, Valid: true},
		StaffID:    staffID,
		OrderID:    orderID,
		Rating:     req.Rating,
		Comment:    optionalText(req.Comment),
	})
	if err != nil {
		return database.Rating{}, persist("create rating", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Rating{}, persist("commit tx", err)
	}
	return rating, nil
}

// ListRecent returns the newest ratings, optionally for one waiter. A
// non-positive limit means the dashboard default; large limits are capped.
func (s *RatingService) ListRecent(ctx context.Context, staffID uuid.UUID, limit int32) ([]database.ListRecentRatingsRow, error) {
	switch {
	case limit <= 0:
		limit = defaultRatingLimit
	case limit > maxRatingLimit:
		limit = maxRatingLimit
	}
	params := database.ListRecentRatingsParams{Limit: limit}
	if staffID != uuid.Nil {
		params.StaffID = pgtype.UUID{Bytes: staffID, Valid: true}
	}
	var out []database.ListRecentRatingsRow
	err := readTx(ctx, s.pool, func(db database.DBTX) error {
		var err error
		out, err = s.newStore(db).ListRecentRatings(ctx, params)
		if err != nil {
			return persist("list ratings", err)
		}
		return nil
	})
	return out, err
}

// WaitstaffScores lists active waitstaff with their average rating.
func (s *RatingService) WaitstaffScores(ctx context.Context) ([]database.WaitstaffScore, error) {
	var out []database.WaitstaffScore
	err := readTx(ctx, s.pool, func(db database.DBTX) error {
		var err error
		out, err = s.newStore(db).ListWaitstaffScores(ctx)
		if err != nil {
			return persist("list waitstaff scores", err)
		}
		return nil
	})
	return out, err
}
