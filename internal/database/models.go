package database

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderType string

const (
	OrderTypeDineIn      OrderType = "dine_in"
	OrderTypeRoomService OrderType = "room_service"
	OrderTypeDelivery    OrderType = "delivery"
	OrderTypeTakeaway    OrderType = "takeaway"
)

func (e *OrderType) Scan(src interface{}) error { return scanEnum(src, (*string)(e), "OrderType") }

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (e *OrderStatus) Scan(src interface{}) error { return scanEnum(src, (*string)(e), "OrderStatus") }

// IsTerminal reports whether no further transition is possible.
func (e OrderStatus) IsTerminal() bool {
	return e == OrderStatusCompleted || e == OrderStatusCancelled
}

type OrderItemStatus string

const (
	OrderItemStatusPending   OrderItemStatus = "pending"
	OrderItemStatusPreparing OrderItemStatus = "preparing"
	OrderItemStatusReady     OrderItemStatus = "ready"
	OrderItemStatusServed    OrderItemStatus = "served"
)

func (e *OrderItemStatus) Scan(src interface{}) error {
	return scanEnum(src, (*string)(e), "OrderItemStatus")
}

type PaymentMethod string

const (
	PaymentMethodMpesa       PaymentMethod = "mpesa"
	PaymentMethodCash        PaymentMethod = "cash"
	PaymentMethodCard        PaymentMethod = "card"
	PaymentMethodTcash       PaymentMethod = "tcash"
	PaymentMethodAirtelMoney PaymentMethod = "airtel_money"
)

func (e *PaymentMethod) Scan(src interface{}) error {
	return scanEnum(src, (*string)(e), "PaymentMethod")
}

type NullPaymentMethod struct {
	PaymentMethod PaymentMethod
	Valid         bool // Valid is true if PaymentMethod is not NULL
}

// Scan implements the Scanner interface.
func (ns *NullPaymentMethod) Scan(value interface{}) error {
	if value == nil {
		ns.PaymentMethod, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.PaymentMethod.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullPaymentMethod) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.PaymentMethod), nil
}

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (e *PaymentStatus) Scan(src interface{}) error {
	return scanEnum(src, (*string)(e), "PaymentStatus")
}

type ReservationType string

const (
	ReservationTypeRoom  ReservationType = "room"
	ReservationTypeTable ReservationType = "table"
)

func (e *ReservationType) Scan(src interface{}) error {
	return scanEnum(src, (*string)(e), "ReservationType")
}

type ReservationStatus string

const (
	ReservationStatusPending    ReservationStatus = "pending"
	ReservationStatusConfirmed  ReservationStatus = "confirmed"
	ReservationStatusCheckedIn  ReservationStatus = "checked_in"
	ReservationStatusCheckedOut ReservationStatus = "checked_out"
	ReservationStatusCancelled  ReservationStatus = "cancelled"
)

func (e *ReservationStatus) Scan(src interface{}) error {
	return scanEnum(src, (*string)(e), "ReservationStatus")
}

func (e ReservationStatus) IsTerminal() bool {
	return e == ReservationStatusCheckedOut || e == ReservationStatusCancelled
}

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusCleaning    RoomStatus = "cleaning"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

func (e *RoomStatus) Scan(src interface{}) error { return scanEnum(src, (*string)(e), "RoomStatus") }

type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusOccupied  TableStatus = "occupied"
	TableStatusReserved  TableStatus = "reserved"
	TableStatusCleaning  TableStatus = "cleaning"
)

func (e *TableStatus) Scan(src interface{}) error { return scanEnum(src, (*string)(e), "TableStatus") }

type StaffPosition string

const (
	StaffPositionAdmin        StaffPosition = "admin"
	StaffPositionManager      StaffPosition = "manager"
	StaffPositionReceptionist StaffPosition = "receptionist"
	StaffPositionWaitstaff    StaffPosition = "waitstaff"
	StaffPositionKitchen      StaffPosition = "kitchen"
	StaffPositionCleaning     StaffPosition = "cleaning"
	StaffPositionDelivery     StaffPosition = "delivery"
)

func (e *StaffPosition) Scan(src interface{}) error {
	return scanEnum(src, (*string)(e), "StaffPosition")
}

type DeliveryStatus string

const (
	DeliveryStatusAssigned  DeliveryStatus = "assigned"
	DeliveryStatusPickedUp  DeliveryStatus = "picked_up"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
)

func (e *DeliveryStatus) Scan(src interface{}) error {
	return scanEnum(src, (*string)(e), "DeliveryStatus")
}

type MenuCategory string

const (
	MenuCategoryNyama      MenuCategory = "nyama"
	MenuCategoryWok        MenuCategory = "wok"
	MenuCategoryVegetarian MenuCategory = "vegetarian"
	MenuCategorySeafood    MenuCategory = "seafood"
	MenuCategorySweets     MenuCategory = "sweets"
	MenuCategoryDrinks     MenuCategory = "drinks"
)

func (e *MenuCategory) Scan(src interface{}) error {
	return scanEnum(src, (*string)(e), "MenuCategory")
}

func scanEnum(src interface{}, dst *string, name string) error {
	switch s := src.(type) {
	case []byte:
		*dst = string(s)
	case string:
		*dst = s
	default:
		return fmt.Errorf("unsupported scan type for %s: %T", name, src)
	}
	return nil
}

type Customer struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	Phone            string      `json:"phone"`
	Email            pgtype.Text `json:"email"`
	IsLoyal          bool        `json:"is_loyal"`
	TotalVisits      int32       `json:"total_visits"`
	PreferredStaffID pgtype.UUID `json:"preferred_staff_id"`
	CreatedAt        time.Time   `json:"created_at"`
}

type Staff struct {
	ID             uuid.UUID     `json:"id"`
	FullName       string        `json:"full_name"`
	Email          string        `json:"email"`
	HashedPassword string        `json:"hashed_password"`
	Position       StaffPosition `json:"position"`
	Phone          pgtype.Text   `json:"phone"`
	IsActive       bool          `json:"is_active"`
	HireDate       pgtype.Date   `json:"hire_date"`
	CreatedAt      time.Time     `json:"created_at"`
}

type Room struct {
	ID         uuid.UUID      `json:"id"`
	ClassType  string         `json:"class_type"`
	Name       string         `json:"name"`
	RoomNumber string         `json:"room_number"`
	Price      pgtype.Numeric `json:"price"`
	Status     RoomStatus     `json:"status"`
	Floor      int32          `json:"floor"`
	CreatedAt  time.Time      `json:"created_at"`
}

type DiningTable struct {
	ID          uuid.UUID   `json:"id"`
	ClassType   string      `json:"class_type"`
	TableNumber int32       `json:"table_number"`
	Capacity    int32       `json:"capacity"`
	Status      TableStatus `json:"status"`
	Location    string      `json:"location"`
	CreatedAt   time.Time   `json:"created_at"`
}

type MenuItem struct {
	ID              uuid.UUID      `json:"id"`
	Category        MenuCategory   `json:"category"`
	Name            string         `json:"name"`
	Description     pgtype.Text    `json:"description"`
	Price           pgtype.Numeric `json:"price"`
	PreparationTime int32          `json:"preparation_time"`
	IsAvailable     bool           `json:"is_available"`
	CreatedAt       time.Time      `json:"created_at"`
}

type Order struct {
	ID              uuid.UUID          `json:"id"`
	OrderNumber     int32              `json:"order_number"`
	OrderType       OrderType          `json:"order_type"`
	CustomerID      pgtype.UUID        `json:"customer_id"`
	StaffID         pgtype.UUID        `json:"staff_id"`
	TableID         pgtype.UUID        `json:"table_id"`
	RoomID          pgtype.UUID        `json:"room_id"`
	Status          OrderStatus        `json:"status"`
	Subtotal        pgtype.Numeric     `json:"subtotal"`
	ServiceCharge   pgtype.Numeric     `json:"service_charge"`
	Vat             pgtype.Numeric     `json:"vat"`
	Discount        pgtype.Numeric     `json:"discount"`
	Total           pgtype.Numeric     `json:"total"`
	PaymentMethod   NullPaymentMethod  `json:"payment_method"`
	PaymentStatus   PaymentStatus      `json:"payment_status"`
	TransactionCode pgtype.Text        `json:"transaction_code"`
	Notes           pgtype.Text        `json:"notes"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	CompletedAt     pgtype.Timestamptz `json:"completed_at"`
}

type OrderItem struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"order_id"`
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Quantity   int32           `json:"quantity"`
	UnitPrice  pgtype.Numeric  `json:"unit_price"`
	TotalPrice pgtype.Numeric  `json:"total_price"`
	Status     OrderItemStatus `json:"status"`
	Notes      pgtype.Text     `json:"notes"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Reservation struct {
	ID              uuid.UUID         `json:"id"`
	ReservationType ReservationType   `json:"reservation_type"`
	CustomerID      uuid.UUID         `json:"customer_id"`
	RoomID          pgtype.UUID       `json:"room_id"`
	TableID         pgtype.UUID       `json:"table_id"`
	CheckIn         pgtype.Date       `json:"check_in"`
	CheckOut        pgtype.Date       `json:"check_out"`
	TimeSlot        pgtype.Text       `json:"time_slot"`
	Guests          int32             `json:"guests"`
	Status          ReservationStatus `json:"status"`
	PrepayAmount    pgtype.Numeric    `json:"prepay_amount"`
	PrepayStatus    PaymentStatus     `json:"prepay_status"`
	PaymentMethod   NullPaymentMethod `json:"payment_method"`
	TransactionCode pgtype.Text       `json:"transaction_code"`
	SpecialRequests pgtype.Text       `json:"special_requests"`
	CreatedAt       time.Time         `json:"created_at"`
}

type Delivery struct {
	ID              uuid.UUID          `json:"id"`
	OrderID         uuid.UUID          `json:"order_id"`
	StaffID         pgtype.UUID        `json:"staff_id"`
	Status          DeliveryStatus     `json:"status"`
	DeliveryAddress pgtype.Text        `json:"delivery_address"`
	PickupTime      pgtype.Timestamptz `json:"pickup_time"`
	DeliveryTime    pgtype.Timestamptz `json:"delivery_time"`
	CustomerPhone   pgtype.Text        `json:"customer_phone"`
	Notes           pgtype.Text        `json:"notes"`
	CreatedAt       time.Time          `json:"created_at"`
}

type MaintenanceRequest struct {
	ID         uuid.UUID          `json:"id"`
	RoomID     uuid.UUID          `json:"room_id"`
	ReportedBy pgtype.UUID        `json:"reported_by"`
	Issue      string             `json:"issue"`
	Priority   string             `json:"priority"`
	Status     string             `json:"status"`
	ResolvedAt pgtype.Timestamptz `json:"resolved_at"`
	Notes      pgtype.Text        `json:"notes"`
	CreatedAt  time.Time          `json:"created_at"`
}

type CleaningTask struct {
	ID          uuid.UUID          `json:"id"`
	RoomID      uuid.UUID          `json:"room_id"`
	StaffID     pgtype.UUID        `json:"staff_id"`
	TaskType    string             `json:"task_type"`
	Status      string             `json:"status"`
	RequestedBy pgtype.UUID        `json:"requested_by"`
	CompletedAt pgtype.Timestamptz `json:"completed_at"`
	Notes       pgtype.Text        `json:"notes"`
	CreatedAt   time.Time          `json:"created_at"`
}

type Rating struct {
	ID         uuid.UUID   `json:"id"`
	CustomerID pgtype.UUID `json:"customer_id"`
	StaffID    pgtype.UUID `json:"staff_id"`
	OrderID    pgtype.UUID `json:"order_id"`
	Rating     int32       `json:"rating"`
	Comment    pgtype.Text `json:"comment"`
	CreatedAt  time.Time   `json:"created_at"`
}
