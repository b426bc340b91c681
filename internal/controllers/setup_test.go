package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gowheels/internal/assistant"
	"gowheels/internal/controllers"
	"gowheels/internal/middleware"
	"gowheels/internal/models"
	"gowheels/internal/notify"
	"gowheels/internal/payment"
	"gowheels/internal/realtime"
	"gowheels/internal/routes"
	"gowheels/internal/store"
)

const gatewaySecret = "test-gateway-secret"

type testEnv struct {
	t       *testing.T
	db      *gorm.DB
	store   *store.Store
	gateway *payment.Gateway
	hub     *realtime.Hub
	h       *controllers.Handler
	router  *gin.Engine
}

func newTestEnv(t *testing.T, notifiers ...notify.Notifier) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	controllers.BcryptCost = bcrypt.MinCost
	middleware.Configure("test-jwt-secret", time.Hour)

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

	ctx, cancel := context.WithCancel(context.Background())
	hub := realtime.NewHub()
	go hub.Run(ctx)

	bot := assistant.New(0)
	bot.Intn = func(int) int { return 0 }
	gateway := payment.NewGateway("rzp_test_key", gatewaySecret, 0)

	s := store.New(db)
	h := controllers.NewHandler(s, store.NewReports(sqlx.NewDb(sqlDB, "sqlite")), bot, gateway, hub, notifiers...).
		WithContext(ctx)
	t.Cleanup(func() {
		h.Wait()
		cancel()
	})

	return &testEnv{
		t:       t,
		db:      db,
		store:   s,
		gateway: gateway,
		hub:     hub,
		h:       h,
		router:  routes.SetupRouter(h),
	}
}

// do sends body (a string is sent verbatim, anything else as JSON).
func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorBody {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode[errorBody](t, w)
	assert.Equal(t, code, body.Code)
	return body
}

func (e *testEnv) createUser(email, role string) (*models.User, string) {
	e.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(e.t, err)
	u := &models.User{
		Email: email, Name: "Test User", Phone: "+919800000000",
		PasswordHash: string(hash), Role: role, IsActive: true,
	}
	require.NoError(e.t, e.store.CreateUser(context.Background(), u))
	token, err := middleware.GenerateToken(u.ID, u.Role)
	require.NoError(e.t, err)
	return u, token
}

func (e *testEnv) createVehicle(name string, price float64) *models.Vehicle {
	e.t.Helper()
	lat, lng := 19.0760, 72.8777
	v := &models.Vehicle{
		Name: name, Type: "SUV", ImageURL: "/img.png", Seats: 5,
		Transmission: "Automatic", FuelType: "Petrol", PricePerDay: price,
		LocationAddress: "Mumbai Central", LocationLat: &lat, LocationLng: &lng,
		AvailabilityStatus: true, IsActive: true,
	}
	require.NoError(e.t, e.store.CreateVehicle(context.Background(), v))
	return v
}

func bookingBody(userID, vehicleID uint) map[string]interface{} {
	return map[string]interface{}{
		"userId":         userID,
		"vehicleId":      vehicleID,
		"pickupDate":     "2025-01-01",
		"returnDate":     "2025-01-03",
		"pickupAddress":  "Andheri East",
		"dropoffAddress": "Bandra West",
		"driverName":     "Asha Rao",
		"driverPhone":    "+919811111111",
		"driverEmail":    "asha@example.com",
		"paymentMethod":  "card",
	}
}

// createBooking books a 2500/day vehicle for two days: 5000 + 18% tax.
func (e *testEnv) createBooking() (*models.User, *models.Booking) {
	e.t.Helper()
	u, _ := e.createUser(uuid.NewString()+"@example.com", models.RoleUser)
	v := e.createVehicle("Honda City", 2500)
	w := e.do("POST", "/api/bookings", bookingBody(u.ID, v.ID), "")
	require.Equal(e.t, 201, w.Code, w.Body.String())
	b := decode[models.Booking](e.t, w)
	return u, &b
}
