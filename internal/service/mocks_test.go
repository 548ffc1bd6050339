package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/billing"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/events"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/lifecycle"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr   error
	rollbackErr error
	commits     int
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitErr == nil {
		m.commits++
	}
	return m.commitErr
}
func (m *mockTx) Rollback(ctx context.Context) error { return m.rollbackErr }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner.
type mockTxBeginner struct {
	tx  pgx.Tx
	err error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, m.err
}

// memStore is an in-memory database that satisfies every store interface
// in this package. Status updates are compare-and-set like the SQL they
// stand in for. fail injects an error for a method name and failOnce does
// the same for a single call; createOrderErrs
// are returned by successive CreateOrder calls before it starts succeeding.
type memStore struct {
	menu         map[uuid.UUID]database.MenuItem
	customers    map[uuid.UUID]database.Customer
	orders       map[uuid.UUID]database.Order
	items        map[uuid.UUID][]database.OrderItem
	rooms        map[uuid.UUID]database.Room
	tables       map[uuid.UUID]database.DiningTable
	reservations map[uuid.UUID]database.Reservation
	deliveries   map[uuid.UUID]database.Delivery
	maintenance  []database.MaintenanceRequest
	cleaning     []database.CleaningTask
	members      map[uuid.UUID]database.Staff
	ratings      []database.Rating

	nextOrderNumber int32
	createOrderErrs []error
	fail            map[string]error
	failOnce        map[string]error
	calls           map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		menu:            map[uuid.UUID]database.MenuItem{},
		customers:       map[uuid.UUID]database.Customer{},
		orders:          map[uuid.UUID]database.Order{},
		items:           map[uuid.UUID][]database.OrderItem{},
		rooms:           map[uuid.UUID]database.Room{},
		tables:          map[uuid.UUID]database.DiningTable{},
		reservations:    map[uuid.UUID]database.Reservation{},
		deliveries:      map[uuid.UUID]database.Delivery{},
		members:         map[uuid.UUID]database.Staff{},
		nextOrderNumber: 1,
		fail:            map[string]error{},
		failOnce:        map[string]error{},
		calls:           map[string]int{},
	}
}

func (m *memStore) hook(name string) error {
	m.calls[name]++
	if err, ok := m.failOnce[name]; ok {
		delete(m.failOnce, name)
		return err
	}
	return m.fail[name]
}

// --- seeding helpers ---

func (m *memStore) addMenuItem(name, price string, available bool) uuid.UUID {
	id := uuid.New()
	m.menu[id] = database.MenuItem{
		ID:          id,
		Category:    database.MenuCategoryNyama,
		Name:        name,
		Price:       num(price),
		IsAvailable: available,
	}
	return id
}

func (m *memStore) addCustomer(name, phone string) uuid.UUID {
	id := uuid.New()
	m.customers[id] = database.Customer{ID: id, Name: name, Phone: phone, TotalVisits: 1}
	return id
}

func (m *memStore) addRoom(number, price string, status database.RoomStatus) uuid.UUID {
	id := uuid.New()
	m.rooms[id] = database.Room{
		ID:         id,
		ClassType:  "safari",
		Name:       "Safari " + number,
		RoomNumber: number,
		Price:      num(price),
		Status:     status,
	}
	return id
}

func (m *memStore) addTable(number, capacity int32, status database.TableStatus) uuid.UUID {
	id := uuid.New()
	m.tables[id] = database.DiningTable{
		ID:          id,
		ClassType:   "family",
		TableNumber: number,
		Capacity:    capacity,
		Status:      status,
	}
	return id
}

func (m *memStore) addStaff(name string, position database.StaffPosition) uuid.UUID {
	id := uuid.New()
	m.members[id] = database.Staff{ID: id, FullName: name, Position: position, IsActive: true}
	return id
}

func (m *memStore) addOrder(o database.Order) uuid.UUID {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = database.PaymentStatusUnpaid
	}
	if o.Status == "" {
		o.Status = database.OrderStatusPending
	}
	if o.OrderType == "" {
		o.OrderType = database.OrderTypeDineIn
	}
	m.orders[o.ID] = o
	return o.ID
}

// --- OrderStore ---

func (m *memStore) GetNextOrderNumber(ctx context.Context) (int32, error) {
	if err := m.hook("GetNextOrderNumber"); err != nil {
		return 0, err
	}
	return m.nextOrderNumber, nil
}

func (m *memStore) GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error) {
	if err := m.hook("GetMenuItem"); err != nil {
		return database.MenuItem{}, err
	}
	mi, ok := m.menu[id]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	return mi, nil
}

func (m *memStore) GetCustomer(ctx context.Context, id uuid.UUID) (database.Customer, error) {
	if err := m.hook("GetCustomer"); err != nil {
		return database.Customer{}, err
	}
	c, ok := m.customers[id]
	if !ok {
		return database.Customer{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *memStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	if err := m.hook("CreateOrder"); err != nil {
		return database.Order{}, err
	}
	if len(m.createOrderErrs) > 0 {
		err := m.createOrderErrs[0]
		m.createOrderErrs = m.createOrderErrs[1:]
		m.nextOrderNumber++
		return database.Order{}, err
	}
	now := time.Now()
	o := database.Order{
		ID:            uuid.New(),
		OrderNumber:   arg.OrderNumber,
		OrderType:     arg.OrderType,
		CustomerID:    arg.CustomerID,
		StaffID:       arg.StaffID,
		TableID:       arg.TableID,
		RoomID:        arg.RoomID,
		Status:        database.OrderStatusPending,
		Subtotal:      arg.Subtotal,
		ServiceCharge: arg.ServiceCharge,
		Vat:           arg.Vat,
		Discount:      num("0"),
		Total:         arg.Total,
		PaymentStatus: database.PaymentStatusUnpaid,
		Notes:         arg.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.orders[o.ID] = o
	m.nextOrderNumber++
	return o, nil
}

func (m *memStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	if err := m.hook("CreateOrderItem"); err != nil {
		return database.OrderItem{}, err
	}
	it := database.OrderItem{
		ID:         uuid.New(),
		OrderID:    arg.OrderID,
		MenuItemID: arg.MenuItemID,
		Quantity:   arg.Quantity,
		UnitPrice:  arg.UnitPrice,
		TotalPrice: arg.TotalPrice,
		Status:     database.OrderItemStatusPending,
		Notes:      arg.Notes,
	}
	m.items[arg.OrderID] = append(m.items[arg.OrderID], it)
	return it, nil
}

func (m *memStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	if err := m.hook("GetOrder"); err != nil {
		return database.Order{}, err
	}
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *memStore) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error) {
	if err := m.hook("GetOrderForUpdate"); err != nil {
		return database.Order{}, err
	}
	return m.GetOrder(ctx, id)
}

func (m *memStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	if err := m.hook("ListOrders"); err != nil {
		return nil, err
	}
	var out []database.Order
	for _, o := range m.orders {
		if len(arg.Statuses) > 0 && !enum.Contains(arg.Statuses, string(o.Status)) {
			continue
		}
		if arg.CustomerID.Valid && o.CustomerID != arg.CustomerID {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber > out[j].OrderNumber })
	return out, nil
}

func (m *memStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemsByOrderRow, error) {
	if err := m.hook("ListOrderItemsByOrder"); err != nil {
		return nil, err
	}
	var out []database.ListOrderItemsByOrderRow
	for _, it := range m.items[orderID] {
		out = append(out, database.ListOrderItemsByOrderRow{
			ID:           it.ID,
			OrderID:      it.OrderID,
			MenuItemID:   it.MenuItemID,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			TotalPrice:   it.TotalPrice,
			Status:       it.Status,
			Notes:        it.Notes,
			MenuItemName: m.menu[it.MenuItemID].Name,
		})
	}
	return out, nil
}

func (m *memStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	if err := m.hook("UpdateOrderStatus"); err != nil {
		return database.Order{}, err
	}
	o, ok := m.orders[arg.ID]
	if !ok || o.Status != arg.ExpectedStatus {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	if arg.Status == database.OrderStatusCompleted {
		o.CompletedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *memStore) UpdateOrderItemsStatus(ctx context.Context, arg database.UpdateOrderItemsStatusParams) error {
	if err := m.hook("UpdateOrderItemsStatus"); err != nil {
		return err
	}
	for i := range m.items[arg.OrderID] {
		m.items[arg.OrderID][i].Status = arg.Status
	}
	return nil
}

func (m *memStore) CreateDelivery(ctx context.Context, arg database.CreateDeliveryParams) (database.Delivery, error) {
	if err := m.hook("CreateDelivery"); err != nil {
		return database.Delivery{}, err
	}
	d := database.Delivery{
		ID:              uuid.New(),
		OrderID:         arg.OrderID,
		StaffID:         arg.StaffID,
		Status:          database.DeliveryStatusPickedUp,
		DeliveryAddress: arg.DeliveryAddress,
		PickupTime:      pgtype.Timestamptz{Time: time.Now(), Valid: true},
		CustomerPhone:   arg.CustomerPhone,
		Notes:           arg.Notes,
	}
	m.deliveries[d.ID] = d
	return d, nil
}

// --- SettlementStore ---

func (m *memStore) SettleOrder(ctx context.Context, arg database.SettleOrderParams) (database.Order, error) {
	if err := m.hook("SettleOrder"); err != nil {
		return database.Order{}, err
	}
	o, ok := m.orders[arg.ID]
	if !ok || o.Status != arg.ExpectedStatus || o.PaymentStatus == database.PaymentStatusPaid {
		return database.Order{}, pgx.ErrNoRows
	}
	o.PaymentMethod = database.NullPaymentMethod{PaymentMethod: arg.PaymentMethod, Valid: true}
	o.PaymentStatus = database.PaymentStatusPaid
	o.TransactionCode = arg.TransactionCode
	o.Discount = arg.Discount
	o.Total = arg.Total
	o.Status = database.OrderStatusCompleted
	o.CompletedAt = pgtype.Timestamptz{Time: time.Date(2025, 3, 14, 16, 30, 0, 0, time.UTC), Valid: true}
	m.orders[o.ID] = o
	return o, nil
}

// --- ReservationStore ---

func (m *memStore) GetRoom(ctx context.Context, id uuid.UUID) (database.Room, error) {
	if err := m.hook("GetRoom"); err != nil {
		return database.Room{}, err
	}
	r, ok := m.rooms[id]
	if !ok {
		return database.Room{}, pgx.ErrNoRows
	}
	return r, nil
}

func (m *memStore) GetDiningTable(ctx context.Context, id uuid.UUID) (database.DiningTable, error) {
	if err := m.hook("GetDiningTable"); err != nil {
		return database.DiningTable{}, err
	}
	t, ok := m.tables[id]
	if !ok {
		return database.DiningTable{}, pgx.ErrNoRows
	}
	return t, nil
}

func (m *memStore) CreateReservation(ctx context.Context, arg database.CreateReservationParams) (database.Reservation, error) {
	if err := m.hook("CreateReservation"); err != nil {
		return database.Reservation{}, err
	}
	r := database.Reservation{
		ID:              uuid.New(),
		ReservationType: arg.ReservationType,
		CustomerID:      arg.CustomerID,
		RoomID:          arg.RoomID,
		TableID:         arg.TableID,
		CheckIn:         arg.CheckIn,
		CheckOut:        arg.CheckOut,
		TimeSlot:        arg.TimeSlot,
		Guests:          arg.Guests,
		Status:          database.ReservationStatusPending,
		PrepayAmount:    arg.PrepayAmount,
		PrepayStatus:    database.PaymentStatusUnpaid,
		PaymentMethod:   arg.PaymentMethod,
		TransactionCode: arg.TransactionCode,
		SpecialRequests: arg.SpecialRequests,
	}
	m.reservations[r.ID] = r
	return r, nil
}

func (m *memStore) GetReservation(ctx context.Context, id uuid.UUID) (database.Reservation, error) {
	if err := m.hook("GetReservation"); err != nil {
		return database.Reservation{}, err
	}
	r, ok := m.reservations[id]
	if !ok {
		return database.Reservation{}, pgx.ErrNoRows
	}
	return r, nil
}

func (m *memStore) GetReservationForUpdate(ctx context.Context, id uuid.UUID) (database.Reservation, error) {
	if err := m.hook("GetReservationForUpdate"); err != nil {
		return database.Reservation{}, err
	}
	return m.GetReservation(ctx, id)
}

func (m *memStore) ListReservations(ctx context.Context, arg database.ListReservationsParams) ([]database.Reservation, error) {
	if err := m.hook("ListReservations"); err != nil {
		return nil, err
	}
	var out []database.Reservation
	for _, r := range m.reservations {
		if arg.CustomerID.Valid && r.CustomerID != uuid.UUID(arg.CustomerID.Bytes) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) UpdateReservationStatus(ctx context.Context, arg database.UpdateReservationStatusParams) (database.Reservation, error) {
	if err := m.hook("UpdateReservationStatus"); err != nil {
		return database.Reservation{}, err
	}
	r, ok := m.reservations[arg.ID]
	if !ok || r.Status != arg.ExpectedStatus {
		return database.Reservation{}, pgx.ErrNoRows
	}
	r.Status = arg.Status
	m.reservations[r.ID] = r
	return r, nil
}

func (m *memStore) UpdateRoomStatus(ctx context.Context, arg database.UpdateRoomStatusParams) (database.Room, error) {
	if err := m.hook("UpdateRoomStatus"); err != nil {
		return database.Room{}, err
	}
	r, ok := m.rooms[arg.ID]
	if !ok || !enum.Contains(arg.FromStatuses, string(r.Status)) {
		return database.Room{}, pgx.ErrNoRows
	}
	r.Status = arg.Status
	m.rooms[r.ID] = r
	return r, nil
}

func (m *memStore) UpdateDiningTableStatus(ctx context.Context, arg database.UpdateDiningTableStatusParams) (database.DiningTable, error) {
	if err := m.hook("UpdateDiningTableStatus"); err != nil {
		return database.DiningTable{}, err
	}
	t, ok := m.tables[arg.ID]
	if !ok || !enum.Contains(arg.FromStatuses, string(t.Status)) {
		return database.DiningTable{}, pgx.ErrNoRows
	}
	t.Status = arg.Status
	m.tables[t.ID] = t
	return t, nil
}

// --- HousekeepingStore ---

func (m *memStore) CreateMaintenanceRequest(ctx context.Context, arg database.CreateMaintenanceRequestParams) (database.MaintenanceRequest, error) {
	if err := m.hook("CreateMaintenanceRequest"); err != nil {
		return database.MaintenanceRequest{}, err
	}
	mr := database.MaintenanceRequest{
		ID:         uuid.New(),
		RoomID:     arg.RoomID,
		ReportedBy: arg.ReportedBy,
		Issue:      arg.Issue,
		Priority:   arg.Priority,
		Status:     "reported",
		Notes:      arg.Notes,
	}
	m.maintenance = append(m.maintenance, mr)
	return mr, nil
}

func (m *memStore) GetDelivery(ctx context.Context, id uuid.UUID) (database.Delivery, error) {
	if err := m.hook("GetDelivery"); err != nil {
		return database.Delivery{}, err
	}
	d, ok := m.deliveries[id]
	if !ok {
		return database.Delivery{}, pgx.ErrNoRows
	}
	return d, nil
}

func (m *memStore) ListDeliveries(ctx context.Context, arg database.ListDeliveriesParams) ([]database.Delivery, error) {
	if err := m.hook("ListDeliveries"); err != nil {
		return nil, err
	}
	var out []database.Delivery
	for _, d := range m.deliveries {
		if arg.StaffID.Valid && d.StaffID != arg.StaffID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *memStore) MarkDeliveryDelivered(ctx context.Context, id uuid.UUID) (database.Delivery, error) {
	if err := m.hook("MarkDeliveryDelivered"); err != nil {
		return database.Delivery{}, err
	}
	d, ok := m.deliveries[id]
	if !ok || (d.Status != database.DeliveryStatusPickedUp && d.Status != database.DeliveryStatusInTransit) {
		return database.Delivery{}, pgx.ErrNoRows
	}
	d.Status = database.DeliveryStatusDelivered
	d.DeliveryTime = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	m.deliveries[id] = d
	return d, nil
}

func (m *memStore) ListMaintenanceRequests(ctx context.Context, statuses []string) ([]database.ListMaintenanceRequestsRow, error) {
	if err := m.hook("ListMaintenanceRequests"); err != nil {
		return nil, err
	}
	var out []database.ListMaintenanceRequestsRow
	for _, mr := range m.maintenance {
		if !enum.Contains(statuses, mr.Status) {
			continue
		}
		out = append(out, database.ListMaintenanceRequestsRow{MaintenanceRequest: mr, RoomNumber: m.rooms[mr.RoomID].RoomNumber})
	}
	return out, nil
}

func (m *memStore) CreateCleaningTask(ctx context.Context, arg database.CreateCleaningTaskParams) (database.CleaningTask, error) {
	if err := m.hook("CreateCleaningTask"); err != nil {
		return database.CleaningTask{}, err
	}
	t := database.CleaningTask{
		ID:          uuid.New(),
		RoomID:      arg.RoomID,
		TaskType:    arg.TaskType,
		Status:      "pending",
		RequestedBy: arg.RequestedBy,
		Notes:       arg.Notes,
		CreatedAt:   time.Now(),
	}
	m.cleaning = append(m.cleaning, t)
	return t, nil
}

func (m *memStore) CompleteCleaningTasks(ctx context.Context, arg database.CompleteCleaningTasksParams) (int64, error) {
	if err := m.hook("CompleteCleaningTasks"); err != nil {
		return 0, err
	}
	var n int64
	for i, t := range m.cleaning {
		if t.RoomID != arg.RoomID || t.Status == "completed" {
			continue
		}
		t.Status = "completed"
		if !t.StaffID.Valid {
			t.StaffID = arg.StaffID
		}
		t.CompletedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
		m.cleaning[i] = t
		n++
	}
	return n, nil
}

func (m *memStore) ListCleaningTasks(ctx context.Context, arg database.ListCleaningTasksParams) ([]database.ListCleaningTasksRow, error) {
	if err := m.hook("ListCleaningTasks"); err != nil {
		return nil, err
	}
	var out []database.ListCleaningTasksRow
	for i := len(m.cleaning) - 1; i >= 0 && int32(len(out)) < arg.Limit; i-- {
		t := m.cleaning[i]
		if len(arg.Statuses) > 0 && !enum.Contains(arg.Statuses, t.Status) {
			continue
		}
		room := m.rooms[t.RoomID]
		out = append(out, database.ListCleaningTasksRow{CleaningTask: t, RoomNumber: room.RoomNumber, RoomClassType: room.ClassType})
	}
	return out, nil
}

// --- RatingStore ---

func (m *memStore) GetStaff(ctx context.Context, id uuid.UUID) (database.Staff, error) {
	if err := m.hook("GetStaff"); err != nil {
		return database.Staff{}, err
	}
	s, ok := m.members[id]
	if !ok {
		return database.Staff{}, pgx.ErrNoRows
	}
	return s, nil
}

func (m *memStore) CreateRating(ctx context.Context, arg database.CreateRatingParams) (database.Rating, error) {
	if err := m.hook("CreateRating"); err != nil {
		return database.Rating{}, err
	}
	r := database.Rating{
		ID:         uuid.New(),
		CustomerID: arg.CustomerID,
		StaffID:    arg.StaffID,
		OrderID:    arg.OrderID,
		Rating:     arg.Rating,
		Comment:    arg.Comment,
		CreatedAt:  time.Now(),
	}
	m.ratings = append(m.ratings, r)
	return r, nil
}

func (m *memStore) ListRecentRatings(ctx context.Context, arg database.ListRecentRatingsParams) ([]database.ListRecentRatingsRow, error) {
	if err := m.hook("ListRecentRatings"); err != nil {
		return nil, err
	}
	var out []database.ListRecentRatingsRow
	for i := len(m.ratings) - 1; i >= 0 && int32(len(out)) < arg.Limit; i-- {
		r := m.ratings[i]
		if arg.StaffID.Valid && r.StaffID != arg.StaffID {
			continue
		}
		row := database.ListRecentRatingsRow{Rating: r}
		if c, ok := m.customers[r.CustomerID.Bytes]; ok && r.CustomerID.Valid {
			row.CustomerName = pgtype.Text{String: c.Name, Valid: true}
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *memStore) ListWaitstaffScores(ctx context.Context) ([]database.WaitstaffScore, error) {
	if err := m.hook("ListWaitstaffScores"); err != nil {
		return nil, err
	}
	var out []database.WaitstaffScore
	for _, s := range m.members {
		if s.Position != database.StaffPositionWaitstaff || !s.IsActive {
			continue
		}
		sum, n := 0, 0
		for _, r := range m.ratings {
			if r.StaffID.Valid && uuid.UUID(r.StaffID.Bytes) == s.ID {
				sum += int(r.Rating)
				n++
			}
		}
		avg := decimal.Zero
		if n > 0 {
			avg = decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(n))).Round(1)
		}
		out = append(out, database.WaitstaffScore{ID: s.ID, FullName: s.FullName, Rating: billing.ToNumeric(avg)})
	}
	return out, nil
}

// --- CustomerStore ---

func (m *memStore) GetCustomerByPhone(ctx context.Context, phone string) (database.Customer, error) {
	if err := m.hook("GetCustomerByPhone"); err != nil {
		return database.Customer{}, err
	}
	for _, c := range m.customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return database.Customer{}, pgx.ErrNoRows
}

func (m *memStore) CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error) {
	if err := m.hook("CreateCustomer"); err != nil {
		return database.Customer{}, err
	}
	c := database.Customer{ID: uuid.New(), Name: arg.Name, Phone: arg.Phone, Email: arg.Email, TotalVisits: 1}
	m.customers[c.ID] = c
	return c, nil
}

func (m *memStore) IncrementCustomerVisits(ctx context.Context, id uuid.UUID) (database.Customer, error) {
	if err := m.hook("IncrementCustomerVisits"); err != nil {
		return database.Customer{}, err
	}
	c, ok := m.customers[id]
	if !ok {
		return database.Customer{}, pgx.ErrNoRows
	}
	c.TotalVisits++
	m.customers[id] = c
	return c, nil
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// --- Test helpers ---

func num(val string) pgtype.Numeric {
	return billing.ToNumeric(decimal.RequireFromString(val))
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	return billing.FromNumeric(n).Equal(decimal.RequireFromString(expected))
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func staff(role string) lifecycle.Actor {
	return lifecycle.Actor{Role: role, StaffID: uuid.New()}
}

func customer(id uuid.UUID) lifecycle.Actor {
	return lifecycle.Actor{Role: enum.RoleCustomer, CustomerID: id}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type testEnv struct {
	store *memStore
	tx    *mockTx
	pool  *mockTxBeginner
	pub   *recordingPublisher
}

func newTestEnv() *testEnv {
	tx := &mockTx{}
	return &testEnv{
		store: newMemStore(),
		tx:    tx,
		pool:  &mockTxBeginner{tx: tx},
		pub:   &recordingPublisher{},
	}
}

func (e *testEnv) notifier() Notifier {
	return Notifier{Publisher: e.pub}
}

func (e *testEnv) orderService() *OrderService {
	return NewOrderService(e.pool, func(db database.DBTX) OrderStore { return e.store }, billing.DefaultRates, e.notifier())
}

func (e *testEnv) settlementService() *SettlementService {
	hotel := billing.Hotel{Name: "SAVANNAH PALACE HOTEL", Address: "Moi Avenue, Nairobi", Phone: "+254 700 123 456", VATReg: "P0512345678S"}
	s := NewSettlementService(e.pool, func(db database.DBTX) SettlementStore { return e.store }, billing.DefaultRates, hotel, e.notifier())
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func (e *testEnv) reservationService() *ReservationService {
	s := NewReservationService(e.pool, func(db database.DBTX) ReservationStore { return e.store }, decimal.NewFromInt(500), e.notifier())
	s.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	return s
}

func (e *testEnv) housekeepingService() *HousekeepingService {
	return NewHousekeepingService(e.pool, func(db database.DBTX) HousekeepingStore { return e.store }, e.notifier())
}

func (e *testEnv) ratingService() *RatingService {
	return NewRatingService(e.pool, func(db database.DBTX) RatingStore { return e.store })
}

func (e *testEnv) customerService() *CustomerService {
	return NewCustomerService(e.pool, func(db database.DBTX) CustomerStore { return e.store })
}
