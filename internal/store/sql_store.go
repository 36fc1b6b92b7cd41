package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/matthewbaird/insights/internal/types"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Table names.
const (
	tableLandlords  = "landlords"
	tableProperties = "properties"
	tableLeases     = "leases"
	tablePayments   = "payments"
	tableTickets    = "maintenance_tickets"
	tableTenants    = "tenants"
)

var (
	landlordColumns = []string{"id", "name", "email"}
	propertyColumns = []string{
		"id", "landlord_id", "name", "line1", "line2", "city", "state", "postal_code",
		"property_type", "bedrooms", "bathrooms", "square_feet", "amenities", "monthly_rent", "status",
	}
	leaseColumns = []string{
		"id", "property_id", "tenant_id", "start_date", "end_date", "monthly_rent",
		"status", "terminated_early", "terminated_at",
	}
	paymentColumns = []string{"id", "lease_id", "property_id", "amount", "due_date", "paid_at", "status"}
	ticketColumns  = []string{"id", "property_id", "title", "priority", "status", "cost", "created_at", "resolved_at"}
	tenantColumns  = []string{
		"id", "first_name", "last_name", "email", "phone", "budget_min", "budget_max", "preferences",
	}
)

// SQLStore implements Store on SQLite or Postgres. Queries are built with the
// ent SQL builder so the same code emits the right placeholders for either
// dialect. Timestamps are stored as UTC unix nanoseconds so range filters
// compare the same way on both.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// Open connects to the database with the given driver (DriverSQLite or
// DriverPostgres).
func Open(driver, dsn string) (*SQLStore, error) {
	var d string
	switch driver {
	case DriverSQLite:
		d = dialect.SQLite
	case DriverPostgres:
		d = dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return NewSQLStore(db, d), nil
}

// NewSQLStore wraps an open database. d is an ent dialect name.
func NewSQLStore(db *sql.DB, d string) *SQLStore {
	return &SQLStore{db: db, dialect: d}
}

// Close closes the database.
func (s *SQLStore) Close() error { return s.db.Close() }

// Migrate creates or updates the tables and indexes through ent's Atlas-backed
// schema migration.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if s.dialect == dialect.SQLite {
		if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("enabling foreign keys: %w", err)
		}
	}
	m, err := schema.NewMigrate(entsql.OpenDB(s.dialect, s.db), schema.WithForeignKeys(false))
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Create(ctx, Tables()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Tables describes the store schema. Every table is keyed by a text id;
// timestamps are bigint unix nanoseconds.
func Tables() []*schema.Table {
	id := func() *schema.Column { return &schema.Column{Name: "id", Type: field.TypeString} }
	text := func(name string) *schema.Column {
		return &schema.Column{Name: name, Type: field.TypeString, Nullable: true}
	}
	textNN := func(name string) *schema.Column { return &schema.Column{Name: name, Type: field.TypeString} }
	double := func(name string) *schema.Column {
		return &schema.Column{Name: name, Type: field.TypeFloat64, Nullable: true}
	}
	stamp := func(name string) *schema.Column {
		return &schema.Column{Name: name, Type: field.TypeInt64, Nullable: true}
	}
	table := func(name string, cols ...*schema.Column) *schema.Table {
		t := schema.NewTable(name).AddPrimary(id())
		for _, c := range cols {
			t.AddColumn(c)
		}
		return t
	}

	landlords := table(tableLandlords, textNN("name"), text("email"))
	properties := table(tableProperties,
		textNN("landlord_id"), text("name"),
		text("line1"), text("line2"), text("city"), text("state"), text("postal_code"),
		text("property_type"), &schema.Column{Name: "bedrooms", Type: field.TypeInt, Nullable: true}, double("bathrooms"),
		double("square_feet"), text("amenities"), double("monthly_rent"), text("status"),
	).AddIndex("idx_properties_landlord", false, []string{"landlord_id"})
	leases := table(tableLeases,
		textNN("property_id"), text("tenant_id"),
		stamp("start_date"), stamp("end_date"), double("monthly_rent"), text("status"),
		&schema.Column{Name: "terminated_early", Type: field.TypeBool, Default: false},
		stamp("terminated_at"),
	).AddIndex("idx_leases_property", false, []string{"property_id"})
	payments := table(tablePayments,
		text("lease_id"), text("property_id"), double("amount"),
		stamp("due_date"), stamp("paid_at"), text("status"),
	).
		AddIndex("idx_payments_lease", false, []string{"lease_id"}).
		AddIndex("idx_payments_property", false, []string{"property_id"})
	tickets := table(tableTickets,
		textNN("property_id"), text("title"), text("priority"), text("status"),
		double("cost"), stamp("created_at"), stamp("resolved_at"),
	).AddIndex("idx_tickets_property", false, []string{"property_id"})
	tenants := table(tableTenants,
		text("first_name"), text("last_name"), text("email"), text("phone"),
		double("budget_min"), double("budget_max"), text("preferences"),
	)
	return []*schema.Table{landlords, properties, leases, payments, tickets, tenants}
}

// ─── Reads ─────────────────────────────────────────────────────────────────────

func (s *SQLStore) Landlord(ctx context.Context, id string) (types.Landlord, error) {
	q := entsql.Dialect(s.dialect).Select(landlordColumns...).From(entsql.Table(tableLandlords)).Where(entsql.EQ("id", id))
	var l types.Landlord
	var email sql.NullString
	err := s.queryRow(ctx, q, &l.ID, &l.Name, &email)
	if err != nil {
		return types.Landlord{}, notFound(err, "landlord", id)
	}
	l.Email = email.String
	return l, nil
}

func (s *SQLStore) Property(ctx context.Context, id string) (types.Property, error) {
	q := entsql.Dialect(s.dialect).Select(propertyColumns...).From(entsql.Table(tableProperties)).Where(entsql.EQ("id", id))
	props, err := s.queryProperties(ctx, q)
	if err != nil {
		return types.Property{}, err
	}
	if len(props) == 0 {
		return types.Property{}, fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	return props[0], nil
}

func (s *SQLStore) PropertiesByLandlord(ctx context.Context, landlordID string) ([]types.Property, error) {
	q := entsql.Dialect(s.dialect).Select(propertyColumns...).From(entsql.Table(tableProperties)).
		Where(entsql.EQ("landlord_id", landlordID)).
		OrderBy("id")
	return s.queryProperties(ctx, q)
}

func (s *SQLStore) Comparables(ctx context.Context, c ComparableCriteria) ([]types.Property, error) {
	preds := []*entsql.Predicate{
		entsql.EQ("status", types.PropertyStatusActive),
		entsql.NEQ("id", c.ExcludeID),
	}
	if c.City != "" {
		preds = append(preds, entsql.EqualFold("city", c.City))
	}
	if c.State != "" {
		preds = append(preds, entsql.EqualFold("state", c.State))
	}
	if c.PropertyType != "" {
		preds = append(preds, entsql.EQ("property_type", c.PropertyType))
	}
	if c.Bedrooms != nil {
		preds = append(preds, entsql.EQ("bedrooms", *c.Bedrooms))
	}
	q := entsql.Dialect(s.dialect).Select(propertyColumns...).From(entsql.Table(tableProperties)).
		Where(entsql.And(preds...)).
		OrderBy("id").
		Limit(c.EffectiveLimit())
	return s.queryProperties(ctx, q)
}

func (s *SQLStore) Lease(ctx context.Context, id string) (types.Lease, error) {
	q := entsql.Dialect(s.dialect).Select(leaseColumns...).From(entsql.Table(tableLeases)).Where(entsql.EQ("id", id))
	leases, err := s.queryLeases(ctx, q)
	if err != nil {
		return types.Lease{}, err
	}
	if len(leases) == 0 {
		return types.Lease{}, fmt.Errorf("lease %s: %w", id, ErrNotFound)
	}
	return leases[0], nil
}

func (s *SQLStore) LeasesByProperty(ctx context.Context, propertyID string, statuses ...string) ([]types.Lease, error) {
	preds := []*entsql.Predicate{entsql.EQ("property_id", propertyID)}
	if len(statuses) > 0 {
		preds = append(preds, entsql.In("status", anySlice(statuses)...))
	}
	q := entsql.Dialect(s.dialect).Select(leaseColumns...).From(entsql.Table(tableLeases)).
		Where(entsql.And(preds...)).
		OrderBy("start_date", "id")
	return s.queryLeases(ctx, q)
}

func (s *SQLStore) LeasesByLandlord(ctx context.Context, landlordID string, statuses ...string) ([]types.Lease, error) {
	b := entsql.Dialect(s.dialect)
	owned := b.Select("id").From(entsql.Table(tableProperties)).Where(entsql.EQ("landlord_id", landlordID))
	preds := []*entsql.Predicate{entsql.In("property_id", owned)}
	if len(statuses) > 0 {
		preds = append(preds, entsql.In("status", anySlice(statuses)...))
	}
	q := b.Select(leaseColumns...).From(entsql.Table(tableLeases)).
		Where(entsql.And(preds...)).
		OrderBy("start_date", "id")
	return s.queryLeases(ctx, q)
}

func (s *SQLStore) Payments(ctx context.Context, f PaymentFilter) ([]types.Payment, error) {
	var preds []*entsql.Predicate
	if f.LeaseID != "" {
		preds = append(preds, entsql.EQ("lease_id", f.LeaseID))
	}
	if len(f.PropertyIDs) > 0 {
		preds = append(preds, entsql.In("property_id", anySlice(f.PropertyIDs)...))
	}
	preds = append(preds, rangePreds("due_date", f.Since, f.Until)...)

	q := entsql.Dialect(s.dialect).Select(paymentColumns...).From(entsql.Table(tablePayments)).
		OrderBy("due_date", "id")
	if len(preds) > 0 {
		q.Where(entsql.And(preds...))
	}
	query, args := q.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var out []types.Payment
	for rows.Next() {
		var p types.Payment
		var leaseID, propertyID, status sql.NullString
		var due, paid sql.NullInt64
		if err := rows.Scan(&p.ID, &leaseID, &propertyID, &p.Amount, &due, &paid, &status); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.LeaseID, p.PropertyID, p.Status = leaseID.String, propertyID.String, status.String
		p.DueDate = fromNanos(due)
		p.PaidAt = fromNanosPtr(paid)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) Tickets(ctx context.Context, f TicketFilter) ([]types.MaintenanceTicket, error) {
	var preds []*entsql.Predicate
	if len(f.PropertyIDs) > 0 {
		preds = append(preds, entsql.In("property_id", anySlice(f.PropertyIDs)...))
	}
	if len(f.Statuses) > 0 {
		preds = append(preds, entsql.In("status", anySlice(f.Statuses)...))
	}
	preds = append(preds, rangePreds("created_at", f.Since, f.Until)...)

	q := entsql.Dialect(s.dialect).Select(ticketColumns...).From(entsql.Table(tableTickets)).
		OrderBy("created_at", "id")
	if len(preds) > 0 {
		q.Where(entsql.And(preds...))
	}
	query, args := q.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var out []types.MaintenanceTicket
	for rows.Next() {
		var t types.MaintenanceTicket
		var title, priority, status sql.NullString
		var cost sql.NullFloat64
		var created, resolved sql.NullInt64
		if err := rows.Scan(&t.ID, &t.PropertyID, &title, &priority, &status, &cost, &created, &resolved); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		t.Title, t.Priority, t.Status, t.Cost = title.String, priority.String, status.String, cost.Float64
		t.CreatedAt = fromNanos(created)
		t.ResolvedAt = fromNanosPtr(resolved)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) Tenant(ctx context.Context, id string) (types.Tenant, error) {
	q := entsql.Dialect(s.dialect).Select(tenantColumns...).From(entsql.Table(tableTenants)).Where(entsql.EQ("id", id))
	var t types.Tenant
	var first, last, email, phone, prefs sql.NullString
	var budgetMin, budgetMax sql.NullFloat64
	if err := s.queryRow(ctx, q, &t.ID, &first, &last, &email, &phone, &budgetMin, &budgetMax, &prefs); err != nil {
		return types.Tenant{}, notFound(err, "tenant", id)
	}
	t.FirstName, t.LastName, t.Email, t.Phone = first.String, last.String, email.String, phone.String
	t.BudgetMin = floatPtr(budgetMin)
	t.BudgetMax = floatPtr(budgetMax)
	t.Preferences = decodeList(prefs)
	return t, nil
}

func (s *SQLStore) queryRow(ctx context.Context, q *entsql.Selector, dest ...any) error {
	query, args := q.Query()
	return s.db.QueryRowContext(ctx, query, args...).Scan(dest...)
}

func (s *SQLStore) queryProperties(ctx context.Context, q *entsql.Selector) ([]types.Property, error) {
	query, args := q.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	var out []types.Property
	for rows.Next() {
		var p types.Property
		var name, line1, line2, city, state, postal, ptype, amenities, status sql.NullString
		var bedrooms sql.NullInt64
		var bathrooms, sqft, rent sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.LandlordID, &name, &line1, &line2, &city, &state, &postal,
			&ptype, &bedrooms, &bathrooms, &sqft, &amenities, &rent, &status); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		p.Name = name.String
		p.Address = types.Address{Line1: line1.String, Line2: line2.String, City: city.String, State: state.String, PostalCode: postal.String}
		p.PropertyType = ptype.String
		if bedrooms.Valid {
			n := int(bedrooms.Int64)
			p.Bedrooms = &n
		}
		p.Bathrooms = floatPtr(bathrooms)
		p.SquareFeet = floatPtr(sqft)
		p.Amenities = decodeList(amenities)
		p.MonthlyRent = rent.Float64
		p.Status = status.String
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) queryLeases(ctx context.Context, q *entsql.Selector) ([]types.Lease, error) {
	query, args := q.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leases: %w", err)
	}
	defer rows.Close()

	var out []types.Lease
	for rows.Next() {
		var l types.Lease
		var tenantID, status sql.NullString
		var start, end, terminated sql.NullInt64
		var rent sql.NullFloat64
		if err := rows.Scan(&l.ID, &l.PropertyID, &tenantID, &start, &end, &rent,
			&status, &l.TerminatedEarly, &terminated); err != nil {
			return nil, fmt.Errorf("scan lease: %w", err)
		}
		l.TenantID, l.Status, l.MonthlyRent = tenantID.String, status.String, rent.Float64
		l.StartDate = fromNanos(start)
		l.EndDate = fromNanos(end)
		l.TerminatedAt = fromNanosPtr(terminated)
		out = append(out, l)
	}
	return out, rows.Err()
}

// ─── Writes ────────────────────────────────────────────────────────────────────

func (s *SQLStore) PutLandlord(ctx context.Context, l types.Landlord) error {
	return s.upsert(ctx, tableLandlords, landlordColumns, l.ID, l.Name, l.Email)
}

func (s *SQLStore) PutProperty(ctx context.Context, p types.Property) error {
	var bedrooms any
	if p.Bedrooms != nil {
		bedrooms = *p.Bedrooms
	}
	return s.upsert(ctx, tableProperties, propertyColumns,
		p.ID, p.LandlordID, p.Name, p.Address.Line1, p.Address.Line2, p.Address.City, p.Address.State,
		p.Address.PostalCode, p.PropertyType, bedrooms, nullableFloat(p.Bathrooms), nullableFloat(p.SquareFeet),
		encodeList(p.Amenities), p.MonthlyRent, p.Status)
}

func (s *SQLStore) PutLease(ctx context.Context, l types.Lease) error {
	return s.upsert(ctx, tableLeases, leaseColumns,
		l.ID, l.PropertyID, l.TenantID, nanos(l.StartDate), nanos(l.EndDate), l.MonthlyRent,
		l.Status, l.TerminatedEarly, nanosPtr(l.TerminatedAt))
}

func (s *SQLStore) PutPayment(ctx context.Context, p types.Payment) error {
	return s.upsert(ctx, tablePayments, paymentColumns,
		p.ID, p.LeaseID, p.PropertyID, p.Amount, nanos(p.DueDate), nanosPtr(p.PaidAt), p.Status)
}

func (s *SQLStore) PutTicket(ctx context.Context, t types.MaintenanceTicket) error {
	return s.upsert(ctx, tableTickets, ticketColumns,
		t.ID, t.PropertyID, t.Title, t.Priority, t.Status, t.Cost, nanos(t.CreatedAt), nanosPtr(t.ResolvedAt))
}

func (s *SQLStore) PutTenant(ctx context.Context, t types.Tenant) error {
	return s.upsert(ctx, tableTenants, tenantColumns,
		t.ID, t.FirstName, t.LastName, t.Email, t.Phone,
		nullableFloat(t.BudgetMin), nullableFloat(t.BudgetMax), encodeList(t.Preferences))
}

// upsert inserts a row, replacing every column when the id already exists.
func (s *SQLStore) upsert(ctx context.Context, table string, columns []string, values ...any) error {
	query, args := entsql.Dialect(s.dialect).Insert(table).
		Columns(columns...).
		Values(values...).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

// ─── Helpers ───────────────────────────────────────────────────────────────────

func notFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("query %s %s: %w", kind, id, err)
}

func rangePreds(column string, since, until time.Time) []*entsql.Predicate {
	var preds []*entsql.Predicate
	if !since.IsZero() {
		preds = append(preds, entsql.GTE(column, since.UTC().UnixNano()))
	}
	if !until.IsZero() {
		preds = append(preds, entsql.LTE(column, until.UTC().UnixNano()))
	}
	return preds
}

func nanos(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().UnixNano()
}

func nanosPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return nanos(*t)
}

func fromNanos(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return time.Unix(0, n.Int64).UTC()
}

func fromNanosPtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromNanos(n)
	return &t
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func encodeList(list []string) any {
	if len(list) == 0 {
		return nil
	}
	data, _ := json.Marshal(list)
	return string(data)
}

func decodeList(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s.String), &out); err != nil {
		return nil
	}
	return out
}

func anySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
