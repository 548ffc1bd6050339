package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/handler"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/lifecycle"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock ReservationServicer ---

type mockReservationService struct {
	createFn func(ctx context.Context, req service.CreateReservationRequest) (database.Reservation, error)
	listFn   func(ctx context.Context, f service.ReservationFilter, actor lifecycle.Actor) ([]database.Reservation, error)
	moveFn   func(op string, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error)
}

func (m *mockReservationService) Create(ctx context.Context, req service.CreateReservationRequest) (database.Reservation, error) {
	return m.createFn(ctx, req)
}

func (m *mockReservationService) Get(_ context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error) {
	return m.moveFn("get", id, actor)
}

func (m *mockReservationService) List(ctx context.Context, f service.ReservationFilter, actor lifecycle.Actor) ([]database.Reservation, error) {
	return m.listFn(ctx, f, actor)
}

func (m *mockReservationService) Confirm(_ context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error) {
	return m.moveFn("confirm", id, actor)
}

func (m *mockReservationService) CheckIn(_ context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error) {
	return m.moveFn("check-in", id, actor)
}

func (m *mockReservationService) CheckOut(_ context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error) {
	return m.moveFn("check-out", id, actor)
}

func (m *mockReservationService) Cancel(_ context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error) {
	return m.moveFn("cancel", id, actor)
}

func setupReservationRouter(svc *mockReservationService) *chi.Mux {
	h := handler.NewReservationHandler(svc, nil)
	r := chi.NewRouter()
	r.Route("/reservations", h.RegisterRoutes)
	return r
}

func testRoomReservation(status database.ReservationStatus) database.Reservation {
	return database.Reservation{
		ID:              uuid.New(),
		ReservationType: database.ReservationTypeRoom,
		CustomerID:      uuid.New(),
		RoomID:          pgtype.UUID{Bytes: uuid.New(), Valid: true},
		CheckIn:         pgtype.Date{Time: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), Valid: true},
		CheckOut:        pgtype.Date{Time: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), Valid: true},
		Guests:          2,
		Status:          status,
		PrepayAmount:    testNum("8000"),
		PrepayStatus:    database.PaymentStatusPaid,
		PaymentMethod:   database.NullPaymentMethod{PaymentMethod: database.PaymentMethodMpesa, Valid: true},
		CreatedAt:       time.Now(),
	}
}

func TestReservationCreate(t *testing.T) {
	claims := staffClaims(enum.RoleReceptionist)
	var got service.CreateReservationRequest
	svc := &mockReservationService{createFn: func(_ context.Context, req service.CreateReservationRequest) (database.Reservation, error) {
		got = req
		return testRoomReservation(database.ReservationStatusPending), nil
	}}
	router := setupReservationRouter(svc)

	rr := doRequest(t, router, http.MethodPost, "/reservations", map[string]interface{}{
		"reservation_type": "room",
		"customer_id":      uuid.NewString(),
		"room_id":          uuid.NewString(),
		"check_in":         "2025-03-12",
		"check_out":        "2025-03-14",
		"guests":           2,
		"payment_method":   "mpesa",
	}, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.ReservationType != "room" || got.CheckIn != "2025-03-12" || got.Guests != 2 || got.Actor.StaffID != claims.StaffID {
		t.Errorf("unexpected request %+v", got)
	}
	resp := decodeResponse(t, rr)
	if resp["prepay_amount"] != "8000.00" || resp["check_in"] != "2025-03-12" || resp["payment_method"] != "mpesa" {
		t.Errorf("unexpected response %v", resp)
	}
	if resp["table_id"] != nil {
		t.Error("room booking should have no table")
	}
}

func TestReservationCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"room under maintenance", wrap("room unavailable", service.ErrStatusConflict), http.StatusConflict},
		{"unknown room", wrap("room", service.ErrNotFound), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReservationService{createFn: func(context.Context, service.CreateReservationRequest) (database.Reservation, error) {
				return database.Reservation{}, tt.err
			}}
			rr := doRequest(t, setupReservationRouter(svc), http.MethodPost, "/reservations",
				map[string]string{"reservation_type": "room"}, staffClaims(enum.RoleReceptionist))
			if rr.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestReservationList_Filters(t *testing.T) {
	var got service.ReservationFilter
	svc := &mockReservationService{listFn: func(_ context.Context, f service.ReservationFilter, _ lifecycle.Actor) ([]database.Reservation, error) {
		got = f
		return []database.Reservation{testRoomReservation(database.ReservationStatusConfirmed)}, nil
	}}

	rr := doRequest(t, setupReservationRouter(svc), http.MethodGet, "/reservations?status=pending,confirmed&type=room&limit=5", nil, customerClaims(uuid.New()))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(got.Statuses) != 2 || got.ReservationType != "room" || got.Limit != 5 {
		t.Errorf("unexpected filter %+v", got)
	}
	if list := decodeList(t, rr); len(list) != 1 || list[0]["status"] != "confirmed" {
		t.Errorf("unexpected list %v", list)
	}
}

func TestReservationTransitions_Routed(t *testing.T) {
	want := map[string]database.ReservationStatus{
		"confirm":   database.ReservationStatusConfirmed,
		"check-in":  database.ReservationStatusCheckedIn,
		"check-out": database.ReservationStatusCheckedOut,
		"cancel":    database.ReservationStatusCancelled,
	}
	var called string
	svc := &mockReservationService{moveFn: func(op string, id uuid.UUID, _ lifecycle.Actor) (database.Reservation, error) {
		called = op
		res := testRoomReservation(want[op])
		res.ID = id
		return res, nil
	}}
	router := setupReservationRouter(svc)

	for op, status := range want {
		t.Run(op, func(t *testing.T) {
			id := uuid.New()
			rr := doRequest(t, router, http.MethodPost, "/reservations/"+id.String()+"/"+op, nil, staffClaims(enum.RoleReceptionist))
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			if called != op {
				t.Errorf("expected %s to be called, got %s", op, called)
			}
			resp := decodeResponse(t, rr)
			if resp["status"] != string(status) || resp["id"] != id.String() {
				t.Errorf("unexpected response %v", resp)
			}
		})
	}
}

func TestReservationTransitions_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"illegal", wrap("checked_out -> cancelled", lifecycle.ErrIllegalTransition), http.StatusConflict},
		{"customer confirm", wrap("customer", lifecycle.ErrActorNotAllowed), http.StatusForbidden},
		{"someone else's booking", wrap("reservation", service.ErrNotFound), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReservationService{moveFn: func(string, uuid.UUID, lifecycle.Actor) (database.Reservation, error) {
				return database.Reservation{}, tt.err
			}}
			rr := doRequest(t, setupReservationRouter(svc), http.MethodPost, "/reservations/"+uuid.NewString()+"/confirm", nil, customerClaims(uuid.New()))
			if rr.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}
