package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotel-reservation/controllers"
	"hotel-reservation/models"
	"hotel-reservation/repositories"
	"hotel-reservation/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"
)

type RouterSuite struct {
	suite.Suite
	router *gin.Engine
	store  *repositories.Store
	sinks  []interface{ Close(context.Context) error }
}

var (
	reception = map[string]string{"X-Actor": "ana", "X-Actor-Role": "RECEPTIONIST"}
	admin     = map[string]string{"X-Actor": "root", "X-Actor-Role": "ADMIN"}
	owner     = map[string]string{"X-Actor-Role": "CLIENT", "X-Client-ID": "7"}
	stranger  = map[string]string{"X-Actor-Role": "CLIENT", "X-Client-ID": "8"}
)

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

// SetupTest wires a fresh memory-backed server with one room (id 1, 80/night).
func (s *RouterSuite) SetupTest() {
	log := zaptest.NewLogger(s.T()).Sugar()
	store := repositories.NewMemoryStore().Store()
	clock := services.NewSystemClock(time.UTC)
	locker := services.NewKeyedLocker()
	wait := time.Second

	audit := services.NewAuditService(store.Audit, clock, 256, log)
	notify := services.NewNotificationService(store.Notifications, clock, 256, log)
	s.sinks = []interface{ Close(context.Context) error }{audit, notify}

	oracle := services.NewAvailabilityOracle(store.Rooms, store.Reservations)
	evaluator := services.NewDiscountEvaluator(store.Discounts, clock)
	catalog := services.NewCatalogService(store.Services, audit)
	rooms := services.NewRoomService(store.Rooms, store.Reservations, locker, clock, audit, wait, log)
	discounts := services.NewDiscountService(store.Discounts, locker, audit, wait)
	reservations := services.NewReservationService(services.ReservationDeps{
		Rooms:        store.Rooms,
		Reservations: store.Reservations,
		Oracle:       oracle,
		Discounts:    evaluator,
		Catalog:      catalog,
		RoomService:  rooms,
		Locker:       locker,
		Payments:     services.NewLocalPaymentProcessor(log),
		Audit:        audit,
		Notify:       notify,
		Clock:        clock,
		LockWait:     wait,
		Logger:       log,
	})
	syncer := services.NewRoomSynchronizer(store.Rooms, store.Reservations, rooms, locker, clock, audit, wait, log)

	s.router = SetupRouter(Controllers{
		Rooms:        controllers.NewRoomController(rooms, oracle, reservations),
		Reservations: controllers.NewReservationController(reservations, log),
		Discounts:    controllers.NewDiscountController(discounts),
		Catalog:      controllers.NewCatalogController(catalog),
		System:       controllers.NewSystemController(audit, notify, syncer, time.Minute),
	}, []string{"*"}, log)
	s.store = store

	s.Require().NoError(store.Rooms.Save(context.Background(),
		&models.Room{RoomNumber: "101", Type: "Doble", PricePerNight: 80, Status: models.RoomAvailable}))
}

func (s *RouterSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for _, sink := range s.sinks {
		_ = sink.Close(ctx)
	}
}

func (s *RouterSuite) do(method, path string, headers map[string]string, body interface{}) (int, string) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w.Code, w.Body.String()
}

func reservationBody(start, end string) gin.H {
	return gin.H{"clientId": 7, "roomId": 1, "startDate": start, "endDate": end}
}

// book creates a reservation as the front desk and returns its id.
func (s *RouterSuite) book(start, end string) int64 {
	code, body := s.do(http.MethodPost, "/api/reservations", reception, reservationBody(start, end))
	s.Require().Equal(http.StatusCreated, code, body)
	return gjson.Get(body, "data.id").Int()
}

func (s *RouterSuite) TestHealth() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("ok", gjson.Get(w.Body.String(), "status").String())
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *RouterSuite) TestCreateReservation_OverlapIsConflict() {
	code, body := s.do(http.MethodPost, "/api/reservations", reception, reservationBody("2099-01-10", "2099-01-15"))
	s.Require().Equal(http.StatusCreated, code, body)
	s.True(gjson.Get(body, "success").Bool())
	s.Equal("PROCESSING", gjson.Get(body, "data.status").String())
	s.Equal(int64(5), gjson.Get(body, "data.nights").Int())
	s.Equal(400.0, gjson.Get(body, "data.basePrice").Float())

	code, body = s.do(http.MethodPost, "/api/reservations", reception, reservationBody("2099-01-15", "2099-01-20"))
	s.Equal(http.StatusConflict, code)
	s.False(gjson.Get(body, "success").Bool())
	s.Equal("error.room_unavailable", gjson.Get(body, "error.code").String())

	code, _ = s.do(http.MethodPost, "/api/reservations", reception, reservationBody("2099-01-16", "2099-01-20"))
	s.Equal(http.StatusCreated, code)
}

func (s *RouterSuite) TestCreateReservation_Validation() {
	code, body := s.do(http.MethodPost, "/api/reservations", reception, reservationBody("10/01/2099", "2099-01-15"))
	s.Equal(http.StatusBadRequest, code)
	s.Equal("error.validation", gjson.Get(body, "error.code").String())

	code, _ = s.do(http.MethodPost, "/api/reservations", reception, reservationBody("2099-01-15", "2099-01-10"))
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/reservations", reception,
		gin.H{"clientId": 7, "roomId": 99, "startDate": "2099-01-10", "endDate": "2099-01-12"})
	s.Equal(http.StatusNotFound, code)
}

func (s *RouterSuite) TestIdentityAndCapabilities() {
	body := reservationBody("2099-02-01", "2099-02-03")

	code, resp := s.do(http.MethodPost, "/api/reservations", nil, body)
	s.Equal(http.StatusForbidden, code)
	s.Equal("error.forbidden", gjson.Get(resp, "error.code").String())

	code, _ = s.do(http.MethodPost, "/api/reservations", map[string]string{"X-Actor-Role": "CLIENT"}, body)
	s.Equal(http.StatusBadRequest, code, "client without X-Client-ID")

	code, _ = s.do(http.MethodPost, "/api/reservations", map[string]string{"X-Actor-Role": "GUEST"}, body)
	s.Equal(http.StatusBadRequest, code, "unknown role")

	room := gin.H{"roomNumber": "900", "type": "Simple", "pricePerNight": 50}
	code, _ = s.do(http.MethodPost, "/api/rooms", reception, room)
	s.Equal(http.StatusForbidden, code)
	code, _ = s.do(http.MethodPost, "/api/rooms", admin, room)
	s.Equal(http.StatusCreated, code)
}

func (s *RouterSuite) TestClientOwnsReservation() {
	// A client's own id always wins over the body.
	body := reservationBody("2099-03-01", "2099-03-04")
	body["clientId"] = 55
	code, resp := s.do(http.MethodPost, "/api/reservations", owner, body)
	s.Require().Equal(http.StatusCreated, code, resp)
	s.Equal(int64(7), gjson.Get(resp, "data.clientId").Int())

	path := fmt.Sprintf("/api/reservations/%d", gjson.Get(resp, "data.id").Int())
	code, _ = s.do(http.MethodGet, path, stranger, nil)
	s.Equal(http.StatusForbidden, code)
	code, _ = s.do(http.MethodPost, path+"/cancel", stranger, nil)
	s.Equal(http.StatusForbidden, code)
	code, _ = s.do(http.MethodPost, path+"/checkin", owner, nil)
	s.Equal(http.StatusForbidden, code)

	code, resp = s.do(http.MethodGet, path, owner, nil)
	s.Equal(http.StatusOK, code)
	s.Equal(240.0, gjson.Get(resp, "data.total").Float())

	code, resp = s.do(http.MethodGet, "/api/reservations/mine", owner, nil)
	s.Equal(http.StatusOK, code)
	s.Len(gjson.Get(resp, "data").Array(), 1)

	code, resp = s.do(http.MethodPost, path+"/cancel", owner, nil)
	s.Require().Equal(http.StatusOK, code, resp)
	s.Equal("CANCELLED", gjson.Get(resp, "data.status").String())

	code, resp = s.do(http.MethodPost, path+"/cancel", owner, nil)
	s.Equal(http.StatusConflict, code)
	s.Equal("error.invalid_state_transition", gjson.Get(resp, "error.code").String())
}

func (s *RouterSuite) TestApplyUnknownDiscount() {
	id := s.book("2099-04-01", "2099-04-02")

	code, resp := s.do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/discount", id), reception, gin.H{"code": "NOPE"})
	s.Equal(http.StatusUnprocessableEntity, code)
	s.Equal("error.discount_invalid", gjson.Get(resp, "error.code").String())
}

func (s *RouterSuite) TestAvailableRooms() {
	const path = "/api/rooms/available?start=2099-05-01&end=2099-05-03"

	code, resp := s.do(http.MethodGet, path, nil, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Len(gjson.Get(resp, "data").Array(), 1)

	s.book("2099-05-02", "2099-05-04")

	_, resp = s.do(http.MethodGet, path, nil, nil)
	s.Empty(gjson.Get(resp, "data").Array())

	code, _ = s.do(http.MethodGet, "/api/rooms/available?start=bad&end=2099-05-03", nil, nil)
	s.Equal(http.StatusBadRequest, code)
}

func (s *RouterSuite) TestRunSync() {
	code, _ := s.do(http.MethodPost, "/api/sync", reception, nil)
	s.Equal(http.StatusForbidden, code)

	code, resp := s.do(http.MethodPost, "/api/sync?deep=true", admin, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(services.PassDeep, gjson.Get(resp, "data.kind").String())
}

func (s *RouterSuite) TestReservationStats() {
	s.book("2099-06-01", "2099-06-03")

	code, _ := s.do(http.MethodGet, "/api/reservations/stats", owner, nil)
	s.Equal(http.StatusForbidden, code)

	code, resp := s.do(http.MethodGet, "/api/reservations/stats", reception, nil)
	s.Require().Equal(http.StatusOK, code, resp)
	s.Equal(int64(1), gjson.Get(resp, "data.total").Int())
	s.Equal(int64(1), gjson.Get(resp, "data.byStatus.PROCESSING").Int())
	s.Equal(int64(0), gjson.Get(resp, "data.byStatus.FINALIZED").Int())
	s.Zero(gjson.Get(resp, "data.revenue").Float())
}
