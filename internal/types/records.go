package types

import "time"

// Lease statuses.
const (
	LeaseActive     = "active"
	LeasePending    = "pending"
	LeaseExpired    = "expired"
	LeaseTerminated = "terminated"
)

// Payment statuses.
const (
	PaymentPaid    = "paid"
	PaymentLate    = "late"
	PaymentMissed  = "missed"
	PaymentPending = "pending"
)

// Maintenance ticket statuses and priorities.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"

	TicketPriorityLow       = "low"
	TicketPriorityMedium    = "medium"
	TicketPriorityHigh      = "high"
	TicketPriorityEmergency = "emergency"
)

// Property types used by the desirability heuristic.
const (
	PropertyApartment = "apartment"
	PropertyStudio    = "studio"
	PropertyHouse     = "house"
	PropertyCondo     = "condo"
	PropertyTownhouse = "townhouse"
)

// Property statuses. Only active properties serve as rent comparables.
const (
	PropertyStatusActive   = "active"
	PropertyStatusInactive = "inactive"
)

// Address represents a US postal address.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`       // 2-letter state code
	PostalCode string `json:"postal_code"` // ZIP or ZIP+4
}

// Landlord owns a portfolio of properties.
type Landlord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Property is a rentable unit as seen by the engine. Optional attributes are
// pointers so that missing data can be told apart from zero.
type Property struct {
	ID           string   `json:"id"`
	LandlordID   string   `json:"landlord_id"`
	Name         string   `json:"name"`
	Address      Address  `json:"address"`
	PropertyType string   `json:"property_type"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *float64 `json:"bathrooms,omitempty"`
	SquareFeet   *float64 `json:"square_feet,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
	MonthlyRent  float64  `json:"monthly_rent"`
	Status       string   `json:"status"` // "active", "inactive"
}

// Lease is a tenancy on a property.
type Lease struct {
	ID              string     `json:"id"`
	PropertyID      string     `json:"property_id"`
	TenantID        string     `json:"tenant_id"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	MonthlyRent     float64    `json:"monthly_rent"`
	Status          string     `json:"status"`
	TerminatedEarly bool       `json:"terminated_early"`
	TerminatedAt    *time.Time `json:"terminated_at,omitempty"`
}

// IsActiveAt reports whether the lease is active and covers t.
func (l Lease) IsActiveAt(t time.Time) bool {
	if l.Status != LeaseActive {
		return false
	}
	if !l.StartDate.IsZero() && t.Before(l.StartDate) {
		return false
	}
	return l.EndDate.IsZero() || !t.After(l.EndDate)
}

// Payment is a rent charge and its settlement.
type Payment struct {
	ID         string     `json:"id"`
	LeaseID    string     `json:"lease_id"`
	PropertyID string     `json:"property_id"`
	Amount     float64    `json:"amount"`
	DueDate    time.Time  `json:"due_date"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	Status     string     `json:"status"`
}

// Collected reports whether the payment brought in revenue.
func (p Payment) Collected() bool {
	return p.Status == PaymentPaid || p.Status == PaymentLate
}

// MaintenanceTicket is a maintenance request on a property.
type MaintenanceTicket struct {
	ID         string     `json:"id"`
	PropertyID string     `json:"property_id"`
	Title      string     `json:"title"`
	Priority   string     `json:"priority"`
	Status     string     `json:"status"`
	Cost       float64    `json:"cost"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// IsOpen reports whether the ticket still needs work.
func (t MaintenanceTicket) IsOpen() bool {
	return t.Status == TicketOpen || t.Status == TicketInProgress
}

// IsHighPriority reports whether the ticket is high priority or an emergency.
func (t MaintenanceTicket) IsHighPriority() bool {
	return t.Priority == TicketPriorityHigh || t.Priority == TicketPriorityEmergency
}

// Tenant is the profile of the person on a lease.
type Tenant struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	BudgetMin   *float64 `json:"budget_min,omitempty"`
	BudgetMax   *float64 `json:"budget_max,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
}
