package enum

// ── Group A: Session descriptors (carried in the JWT) ──

const (
	PortalManagement = "management"
	PortalStaff      = "staff"
	PortalCustomer   = "customer"
)

// Staff positions double as actor roles for lifecycle transitions.
const (
	RoleAdmin        = "admin"
	RoleManager      = "manager"
	RoleReceptionist = "receptionist"
	RoleWaitstaff    = "waitstaff"
	RoleKitchen      = "kitchen"
	RoleCleaning     = "cleaning"
	RoleDelivery     = "delivery"
	RoleCustomer     = "customer"
)

// ManagementRoles may sign in through the management portal.
var ManagementRoles = []string{RoleAdmin, RoleManager}

// BillingRoles may settle orders and print receipts.
var BillingRoles = []string{RoleAdmin, RoleManager, RoleReceptionist}

// ── Group B: Domain events ──

const (
	EventOrderCreated             = "order.created"
	EventOrderStatusChanged       = "order.status_changed"
	EventOrderSettled             = "order.settled"
	EventReservationCreated       = "reservation.created"
	EventReservationStatusChanged = "reservation.status_changed"
	EventRoomStatusChanged        = "room.status_changed"
	EventTableStatusChanged       = "table.status_changed"
	EventDeliveryCompleted        = "delivery.completed"
)

// Websocket topics dashboards subscribe to.
const (
	TopicOrders       = "orders"
	TopicReservations = "reservations"
	TopicRooms        = "rooms"
)

// TopicForEvent maps an event type to the dashboard topic that receives it.
func TopicForEvent(eventType string) string {
	switch eventType {
	case EventReservationCreated, EventReservationStatusChanged:
		return TopicReservations
	case EventRoomStatusChanged, EventTableStatusChanged:
		return TopicRooms
	default:
		return TopicOrders
	}
}

// IsTopic reports whether s names a websocket topic.
func IsTopic(s string) bool {
	switch s {
	case TopicOrders, TopicReservations, TopicRooms:
		return true
	}
	return false
}

// Contains reports whether role is one of roles.
func Contains(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
