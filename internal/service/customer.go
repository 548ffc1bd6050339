package service

import (
	"context"
	"errors"
	"strings"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrNameRequired = invalid("name is required")
	ErrInvalidPhone = invalid("phone must be 9 to 15 digits")
)

// CustomerStore defines the DB methods needed for customer sign-in.
type CustomerStore interface {
	GetCustomerByPhone(ctx context.Context, phone string) (database.Customer, error)
	CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error)
	IncrementCustomerVisits(ctx context.Context, id uuid.UUID) (database.Customer, error)
}

type NewCustomerStore func(db database.DBTX) CustomerStore

// CustomerService signs guests in by phone number. There is no password;
// the phone number is the identity.
type CustomerService struct {
	pool     TxBeginner
	newStore NewCustomerStore
}

func NewCustomerService(pool TxBeginner, newStore NewCustomerStore) *CustomerService {
	return &CustomerService{pool: pool, newStore: newStore}
}

// Login finds the customer with phone, or creates one, and counts the visit.
func (s *CustomerService) Login(ctx context.Context, name, phone, email string) (database.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return database.Customer{}, ErrNameRequired
	}
	phone, ok := NormalizePhone(phone)
	if !ok {
		return database.Customer{}, ErrInvalidPhone
	}

	// One retry covers two first-time sign-ins racing on the same phone.
	c, err := s.loginTx(ctx, name, phone, email)
	if isUniqueViolation(err, "") {
		c, err = s.loginTx(ctx, name, phone, email)
	}
	if isUniqueViolation(err, "") {
		return database.Customer{}, persist("create customer", err)
	}
	return c, err
}

func (s *CustomerService) loginTx(ctx context.Context, name, phone, email string) (database.Customer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Customer{}, persist("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	var c database.Customer
	existing, err := store.GetCustomerByPhone(ctx, phone)
	switch {
	case err == nil:
		c, err = store.IncrementCustomerVisits(ctx, existing.ID)
		if err != nil {
			return database.Customer{}, persist("increment visits", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		emailText := pgtype.Text{}
		if e := strings.TrimSpace(email); e != "" {
			emailText = pgtype.Text{String: e, Valid: true}
		}
		c, err = store.CreateCustomer(ctx, database.CreateCustomerParams{
			Name:  name,
			Phone: phone,
			Email: emailText,
		})
		if err != nil {
			if isUniqueViolation(err, "") {
				return database.Customer{}, err
			}
			return database.Customer{}, persist("create customer", err)
		}
	default:
		return database.Customer{}, persist("get customer by phone", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Customer{}, persist("commit tx", err)
	}
	return c, nil
}

// NormalizePhone strips spaces, dashes and a leading plus.
func NormalizePhone(s string) (string, bool) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0, r == ' ', r == '-':
		default:
			return "", false
		}
	}
	out := b.String()
	if len(out) < 9 || len(out) > 15 {
		return "", false
	}
	return out, true
}
