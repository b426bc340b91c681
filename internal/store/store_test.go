package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gowheels/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestStore(t *testing.T) *Store {
	return New(openTestDB(t))
}

func seedUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: "Test User", Phone: "9999999999", PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedVehicle(t *testing.T, s *Store, name string, price float64) *models.Vehicle {
	t.Helper()
	v := &models.Vehicle{
		Name: name, Type: "SUV", ImageURL: "/img.png", Seats: 5,
		Transmission: "Automatic", FuelType: "Petrol", PricePerDay: price,
		LocationAddress: "Mumbai Central", AvailabilityStatus: true, IsActive: true,
		Amenities: models.StringList{"AC"},
	}
	require.NoError(t, s.CreateVehicle(context.Background(), v))
	return v
}

func seedBooking(t *testing.T, s *Store, userID, vehicleID uint) *models.Booking {
	t.Helper()
	b := &models.Booking{
		UserID: userID, VehicleID: vehicleID,
		PickupDate: "2025-01-01", ReturnDate: "2025-01-03",
		PickupAddress: "A", DropoffAddress: "B",
		DriverName: "D", DriverPhone: "1", DriverEmail: "d@example.com",
		BasePrice: "5000.00", ExtrasPrice: "0.00", Taxes: "900.00",
		TotalAmount: "5900.00", DepositAmount: "1770.00",
		PaymentMethod: "card", Status: models.BookingPending,
	}
	require.NoError(t, s.CreateBooking(context.Background(), b))
	return b
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, Page{Limit: 10, Offset: 0}, ParsePage("", ""))
	assert.Equal(t, Page{Limit: 100, Offset: 0}, ParsePage("101", ""))
	assert.Equal(t, Page{Limit: 10, Offset: 0}, ParsePage("-5", "-3"))
	assert.Equal(t, Page{Limit: 10, Offset: 0}, ParsePage("abc", "xyz"))
	assert.Equal(t, Page{Limit: 25, Offset: 50}, ParsePage("25", "50"))
}

func TestReferenceFormat(t *testing.T) {
	g := &ReferenceGenerator{
		Now:  func() time.Time { return time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC) },
		Intn: func(n int) int { return 0 },
	}
	assert.Equal(t, "BK-20250309-1000", g.Next(BookingPrefix))

	g.Intn = func(n int) int { return n - 1 }
	assert.Equal(t, "SUPP-20250309-9999", g.Next(ConversationPrefix))
}

func TestReferenceUsesUTCDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	g := &ReferenceGenerator{
		Now:  func() time.Time { return time.Date(2025, 3, 10, 2, 0, 0, 0, ist) },
		Intn: func(n int) int { return 1 },
	}
	assert.Equal(t, "BK-20250309-1001", g.Next(BookingPrefix))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "a@example.com")

	dup := &models.User{Email: "a@example.com", Name: "B", Phone: "1", PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	err := s.CreateUser(context.Background(), dup)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserLookups(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "look@example.com")

	got, err := s.UserByEmail(ctx, "  LOOK@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.UserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.SetUserActive(ctx, u.ID, false)
	require.NoError(t, err)
	_, err = s.ActiveUserByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	at := time.Now().UTC().Truncate(time.Second)
	updated, err := s.TouchLastLogin(ctx, u.ID, at)
	require.NoError(t, err)
	require.NotNil(t, updated.LastLoginAt)
	assert.True(t, at.Equal(updated.LastLoginAt.UTC()))
}

func TestUpdateUserReturnsRowOrNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "upd@example.com")

	updated, err := s.UpdateUser(ctx, u.ID, map[string]interface{}{"name": "New Name"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "upd@example.com", updated.Email)

	_, err = s.UpdateUser(ctx, 4242, map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsersFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	_, err := s.SetUserActive(ctx, bob.ID, false)
	require.NoError(t, err)

	users, err := s.ListUsers(ctx, UserFilter{Search: "ALICE"}, ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0].Email)

	inactive := false
	users, err = s.ListUsers(ctx, UserFilter{IsActive: &inactive}, ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, bob.ID, users[0].ID)
}

func TestVehicleSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	v := seedVehicle(t, s, "Creta", 2500)

	deleted, err := s.DeactivateVehicle(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, deleted.IsActive)
	assert.Equal(t, models.StringList{"AC"}, deleted.Amenities)

	got, err := s.VehicleByID(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = s.DeactivateVehicle(ctx, 777)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListVehiclesFiltersAndSort(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedVehicle(t, s, "Swift", 1500)
	seedVehicle(t, s, "Fortuner", 4500)
	hidden := seedVehicle(t, s, "Old Jeep", 1000)
	_, err := s.DeactivateVehicle(ctx, hidden.ID)
	require.NoError(t, err)

	active := true
	vehicles, err := s.ListVehicles(ctx, VehicleFilter{IsActive: &active, Sort: SortPriceAsc}, ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, vehicles, 2)
	assert.Equal(t, "Swift", vehicles[0].Name)
	assert.Equal(t, "Fortuner", vehicles[1].Name)

	minPrice := 2000.0
	vehicles, err = s.ListVehicles(ctx, VehicleFilter{IsActive: &active, MinPrice: &minPrice}, ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "Fortuner", vehicles[0].Name)

	vehicles, err = s.ListVehicles(ctx, VehicleFilter{Search: "jeep"}, ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.False(t, vehicles[0].IsActive)

	vehicles, err = s.ListVehicles(ctx, VehicleFilter{}, ParsePage("2", "0"))
	require.NoError(t, err)
	assert.Len(t, vehicles, 2)
}

func TestCreateBookingRetriesReferenceCollision(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "ref@example.com")
	v := seedVehicle(t, s, "i20", 2000)

	draws := []int{5, 5, 6}
	s.Refs = &ReferenceGenerator{
		Now: time.Now,
		Intn: func(n int) int {
			d := draws[0]
			draws = draws[1:]
			return d
		},
	}
	first := seedBooking(t, s, u.ID, v.ID)
	second := seedBooking(t, s, u.ID, v.ID)

	assert.Contains(t, first.BookingReference, "-1005")
	assert.Contains(t, second.BookingReference, "-1006")
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateBookingReferenceExhausted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "ex@example.com")
	v := seedVehicle(t, s, "i10", 1200)

	s.Refs = &ReferenceGenerator{Now: time.Now, Intn: func(int) int { return 0 }}
	seedBooking(t, s, u.ID, v.ID)

	b := &models.Booking{
		UserID: u.ID, VehicleID: v.ID, PickupDate: "2025-01-01", ReturnDate: "2025-01-02",
		PickupAddress: "A", DropoffAddress: "B", DriverName: "D", DriverPhone: "1",
		DriverEmail: "d@example.com", BasePrice: "1", Taxes: "0", TotalAmount: "1",
		PaymentMethod: "card", Status: models.BookingPending,
	}
	assert.ErrorIs(t, s.CreateBooking(ctx, b), ErrReferenceExhausted)
}

func TestBookingTransitions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "tr@example.com")
	v := seedVehicle(t, s, "City", 1800)
	b := seedBooking(t, s, u.ID, v.ID)

	_, err := s.TransitionBooking(ctx, b.ID, models.BookingCompleted)
	assert.ErrorIs(t, err, ErrConflict)

	confirmed, err := s.TransitionBooking(ctx, b.ID, models.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, confirmed.Status)

	cancelled, err := s.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.Equal(t, b.BookingReference, cancelled.BookingReference)

	again, err := s.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, again.Status)

	_, err = s.CancelBooking(ctx, 31337)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := s.BookingByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.User)
	require.NotNil(t, stored.Vehicle)
	assert.Equal(t, "City", stored.Vehicle.Name)
}

func TestListBookingsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "ls@example.com")
	other := seedUser(t, s, "other@example.com")
	v := seedVehicle(t, s, "Nexon", 2200)
	older := seedBooking(t, s, u.ID, v.ID)
	newer := seedBooking(t, s, u.ID, v.ID)
	seedBooking(t, s, other.ID, v.ID)

	bookings, err := s.ListBookings(ctx, BookingFilter{UserID: &u.ID}, ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, newer.ID, bookings[0].ID)
	assert.Equal(t, older.ID, bookings[1].ID)
	assert.NotNil(t, bookings[0].Vehicle)
}

func TestPaymentsByUserAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "pay@example.com")
	other := seedUser(t, s, "nopay@example.com")
	v := seedVehicle(t, s, "Verna", 2600)
	b := seedBooking(t, s, u.ID, v.ID)
	ob := seedBooking(t, s, other.ID, v.ID)

	p := &models.Payment{BookingID: b.ID, RazorpayOrderID: "order_1", Amount: "5900.00", Currency: "INR", Status: models.PaymentPending, PaymentType: "full"}
	require.NoError(t, s.CreatePayment(ctx, p))
	require.NoError(t, s.CreatePayment(ctx, &models.Payment{BookingID: ob.ID, RazorpayOrderID: "order_2", Amount: "1.00", Currency: "INR", Status: models.PaymentPending, PaymentType: "full"}))

	payments, err := s.ListPayments(ctx, PaymentFilter{UserID: &u.ID}, ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "order_1", payments[0].RazorpayOrderID)

	_, err = s.UpdatePayment(ctx, p.ID, map[string]interface{}{"status": models.PaymentCaptured}, []string{models.PaymentPending})
	require.NoError(t, err)
	_, err = s.UpdatePayment(ctx, p.ID, map[string]interface{}{"status": models.PaymentCaptured}, []string{models.PaymentPending})
	assert.ErrorIs(t, err, ErrConflict)

	deleted, err := s.DeletePayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "order_1", deleted.RazorpayOrderID)

	_, err = s.PaymentByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeletePayment(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConversationAndMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "chat@example.com")

	c := &models.SupportConversation{UserID: u.ID, Status: models.ConversationActive, AgentName: models.DefaultAgentName, IsAIHandled: true}
	require.NoError(t, s.CreateConversation(ctx, c))
	assert.Regexp(t, `^SUPP-\d{8}-\d{4}$`, c.ConversationReference)

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, s.CreateMessage(ctx, &models.SupportMessage{ConversationID: c.ID, SenderType: models.SenderUser, Content: content}))
	}

	detail, err := s.ConversationByID(ctx, c.ID, true)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 3)
	assert.Equal(t, "first", detail.Messages[0].Content)

	msgs, err := s.ListMessages(ctx, MessageFilter{ConversationID: &c.ID}, ParsePage("2", ""))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "third", msgs[0].Content)

	now := time.Now()
	updated, err := s.UpdateConversation(ctx, c.ID, map[string]interface{}{
		"status": models.ConversationEscalated, "escalated_at": now, "is_ai_handled": false,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConversationEscalated, updated.Status)
	assert.False(t, updated.IsAIHandled)
	assert.NotNil(t, updated.EscalatedAt)
}

func TestUpsertSetting(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	desc := "GST"

	st, err := s.UpsertSetting(ctx, models.SettingTaxRate, "18.0", &desc)
	require.NoError(t, err)
	assert.Equal(t, "18.0", st.SettingValue)

	st, err = s.UpsertSetting(ctx, models.SettingTaxRate, "12.0", nil)
	require.NoError(t, err)
	assert.Equal(t, "12.0", st.SettingValue)
	require.NotNil(t, st.Description)
	assert.Equal(t, "GST", *st.Description)

	values, err := s.SettingValues(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tax_rate": "12.0"}, values)
}

func TestInsuranceOptions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	v := seedVehicle(t, s, "XUV", 3000)
	require.NoError(t, s.CreateInsuranceOption(ctx, &models.VehicleInsuranceOption{VehicleID: v.ID, Type: "premium", PricePerDay: 800, Description: "Zero dep"}))
	require.NoError(t, s.CreateInsuranceOption(ctx, &models.VehicleInsuranceOption{VehicleID: v.ID, Type: "basic", PricePerDay: 300, Description: "Third party"}))

	options, err := s.InsuranceOptions(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "basic", options[0].Type)
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	s := New(db)
	u := seedUser(t, s, "stats@example.com")
	v := seedVehicle(t, s, "Baleno", 1700)
	b := seedBooking(t, s, u.ID, v.ID)
	seedBooking(t, s, u.ID, v.ID)
	_, err := s.TransitionBooking(ctx, b.ID, models.BookingConfirmed)
	require.NoError(t, err)
	require.NoError(t, s.CreatePayment(ctx, &models.Payment{BookingID: b.ID, RazorpayOrderID: "o", Amount: "5900.00", Currency: "INR", Status: models.PaymentCaptured, PaymentType: "full"}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	stats, err := NewReports(sqlx.NewDb(sqlDB, "sqlite")).Dashboard(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 1, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.ActiveVehicles)
	assert.EqualValues(t, 2, stats.TotalBookings)
	assert.EqualValues(t, 1, stats.BookingsByStatus[models.BookingPending])
	assert.EqualValues(t, 1, stats.BookingsByStatus[models.BookingConfirmed])
	assert.EqualValues(t, 0, stats.BookingsByStatus[models.BookingCancelled])
	assert.InDelta(t, 5900.0, stats.Revenue, 0.001)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	v := seedVehicle(t, s, "Alto", 900)

	err := s.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.UpdateVehicle(ctx, v.ID, map[string]interface{}{"name": "Changed"}); err != nil {
			return err
		}
		return ErrConflict
	})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := s.VehicleByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alto", got.Name)
}
