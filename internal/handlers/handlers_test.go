package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotbook/internal/cache"
	"slotbook/internal/logger"
	"slotbook/internal/messaging/messagingtest"
	"slotbook/internal/middleware"
	"slotbook/internal/models"
	"slotbook/internal/repository/repositorytest"
	"slotbook/internal/service"
)

type sessions map[string]cache.Session

func (s sessions) Session(_ context.Context, token string) (*cache.Session, error) {
	if sess, ok := s[token]; ok {
		return &sess, nil
	}
	return nil, cache.ErrSessionNotFound
}

type testEnv struct {
	router *gin.Engine
	store  *repositorytest.Store
	pub    *messagingtest.Recorder
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.InitWriter(io.Discard, "error", "json")

	store := repositorytest.New()
	store.AddEvent(true, true)
	store.AddUser(2, "Admin", "admin@example.com")
	store.GrantRole(2, models.RoleAdmin)
	store.AddUser(3, "Reviewer", "")
	store.GrantRole(3, models.RolePrivateAdmin)

	pub := &messagingtest.Recorder{}
	services := service.NewServices(store.Stores(), pub, nil, nil)

	auth := middleware.SessionAuth(sessions{
		"alice":    {VID: 1, Name: "Alice", Email: "alice@example.com"},
		"bob":      {VID: 4, Name: "Bob"},
		"admin":    {VID: 2, Name: "Admin"},
		"reviewer": {VID: 3, Name: "Reviewer"},
	}, services.Users, "slotbook_session")

	r := gin.New()
	NewHandlers(services).RegisterRoutes(r.Group("/api", auth))

	return &testEnv{router: r, store: store, pub: pub}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
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
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func flightBody() models.FlightRequest {
	return models.FlightRequest{
		FlightNumber:      "FYC701",
		AirlineName:       "Air Arabia",
		OriginICAO:        "OMDB",
		DestinationICAO:   "OEJN",
		DepartureTimeZulu: "08:00",
		Aircraft:          "A320",
		Category:          models.CategoryDeparture,
	}
}

func (e *testEnv) createFlight(t *testing.T) models.Flight {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/admin/flights", "admin", flightBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Flight](t, w)
}

func TestTimetable(t *testing.T) {
	env := setupRouter(t)
	env.createFlight(t)

	w := env.do(t, http.MethodGet, "/api/timetable?category=departure", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.TimetableResponse](t, w)
	assert.True(t, resp.Settings.IsOpen)
	require.Len(t, resp.Flights, 1)
	assert.Equal(t, "FYC701", resp.Flights[0].FlightNumber)
	assert.Nil(t, resp.Flights[0].BookedByVID)

	w = env.do(t, http.MethodGet, "/api/timetable?category=cargo", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/timetable/search?q=oejn", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FYC701")
}

func TestBookingFlow(t *testing.T) {
	env := setupRouter(t)
	f := env.createFlight(t)
	path := "/api/flights/" + itoa(f.ID) + "/booking"

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, path, "", nil).Code)

	w := env.do(t, http.MethodPost, path, "alice", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := decode[models.Booking](t, w)
	assert.Equal(t, int64(1), booking.BookedByVID)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, path, "bob", nil).Code)

	w = env.do(t, http.MethodGet, "/api/bookings", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FYC701")

	// bob cannot release alice's booking, an admin can
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, "bob", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, path, "admin", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, "admin", nil).Code)

	assert.Equal(t, []string{models.EventBookingConfirmed, models.EventBookingCancelled}, env.pub.Subjects())
}

func TestBookingClosed(t *testing.T) {
	env := setupRouter(t)
	f := env.createFlight(t)
	env.store.AddEvent(false, false)

	w := env.do(t, http.MethodPost, "/api/flights/"+itoa(f.ID)+"/booking", "alice", nil)
	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Equal(t, 0, env.store.BookingCount())
}

func TestBookingBadInput(t *testing.T) {
	env := setupRouter(t)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/flights/abc/booking", "alice", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/flights/999/booking", "alice", nil).Code)
}

func TestAdminFlightManagement(t *testing.T) {
	env := setupRouter(t)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/admin/flights", "alice", flightBody()).Code)

	f := env.createFlight(t)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/admin/flights", "admin", flightBody()).Code)

	bad := flightBody()
	bad.FlightNumber = "AAAA2"
	w := env.do(t, http.MethodPost, "/api/admin/flights", "admin", bad)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"flight_number"`)

	update := flightBody()
	gate := "C4"
	update.Gate = &gate
	w = env.do(t, http.MethodPut, "/api/admin/flights/"+itoa(f.ID), "admin", update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Flight](t, w)
	require.NotNil(t, updated.Gate)
	assert.Equal(t, "C4", *updated.Gate)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/admin/flights/"+itoa(f.ID), "admin", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/admin/flights/"+itoa(f.ID), "admin", nil).Code)

	env.createFlight(t)
	w = env.do(t, http.MethodDelete, "/api/admin/flights", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":1}`, w.Body.String())
}

func TestImportFlights(t *testing.T) {
	env := setupRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("csv", "timetable.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("flightnumber,airline name,departure,destination,deptime,arrtime,aircraft,route,gate\n" +
		"FYC701,Air Arabia,OMDB,OEJN,08:00,,A320,,U1\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/flights/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer admin")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[models.ImportReport](t, w)
	assert.Equal(t, 1, report.Imported)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/admin/flights/import", "admin", nil).Code)
}

func TestSyncAirlines(t *testing.T) {
	env := setupRouter(t)
	env.createFlight(t)

	w := env.do(t, http.MethodPost, "/api/admin/airlines/sync", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[models.SyncReport](t, w)
	assert.Equal(t, 1, report.Total)
}

func TestPrivateSlotWorkflow(t *testing.T) {
	env := setupRouter(t)

	slot := models.PrivateSlotSubmitRequest{
		FlightNumber:      "N172SP",
		AircraftType:      "C172",
		OriginICAO:        "OMDW",
		DestinationICAO:   "OMAL",
		DepartureTimeZulu: "11:00",
	}
	w := env.do(t, http.MethodPost, "/api/private-slots", "alice", slot)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[models.PrivateSlotRequest](t, w)
	base := "/api/admin/private-slots/" + itoa(p.ID)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, base+"/approve", "alice", nil).Code)

	w = env.do(t, http.MethodPost, base+"/reject", "reviewer", models.ReasonRequest{Reason: "ramp full"})
	require.Equal(t, http.StatusOK, w.Code)
	rejected := decode[models.PrivateSlotRequest](t, w)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "ramp full", *rejected.RejectionReason)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/approve", "admin", nil).Code)

	w = env.do(t, http.MethodGet, "/api/admin/private-slots/stats", "reviewer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PrivateSlotStats{Approved: 1}, decode[models.PrivateSlotStats](t, w))

	w = env.do(t, http.MethodGet, "/api/admin/private-slots?status=approved", "reviewer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "N172SP")

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/admin/private-slots/999/cancel", "reviewer", nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, base, "reviewer", nil).Code)

	assert.Equal(t, []string{models.EventPrivateSlotRejected, models.EventPrivateSlotApproved}, env.pub.Subjects())
}

func TestPrivateSlotsDisabled(t *testing.T) {
	env := setupRouter(t)
	env.store.AddEvent(true, false)

	slot := models.PrivateSlotSubmitRequest{
		FlightNumber: "N1", AircraftType: "C172", OriginICAO: "OMDW", DestinationICAO: "OMAL", DepartureTimeZulu: "11:00",
	}
	assert.Equal(t, http.StatusLocked, env.do(t, http.MethodPost, "/api/private-slots", "alice", slot).Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
