package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/quorum/internal/app"
	meetingQueries "github.com/felixgeelhaar/quorum/internal/meetings/application/queries"
	"github.com/felixgeelhaar/quorum/pkg/config"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIWith(t, ServerConfig{AllowedOrigins: []string{"https://app.example"}})
}

func newTestAPIWith(t *testing.T, serverCfg ServerConfig) *testAPI {
	t.Helper()
	cfg := &config.Config{
		AppEnv:         "test",
		LocalMode:      true,
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "api.db"),
		JWTSecret:      "test-secret",
		JWTTTL:         30 * time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := app.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	handlers := Handlers{
		RegisterUser:      c.RegisterUserHandler,
		LoginUser:         c.LoginUserHandler,
		CreateMeeting:     c.CreateMeetingHandler,
		UpdateMeeting:     c.UpdateMeetingHandler,
		DeleteMeeting:     c.DeleteMeetingHandler,
		CreateTimeSlot:    c.CreateTimeSlotHandler,
		UpdateTimeSlot:    c.UpdateTimeSlotHandler,
		DeleteTimeSlot:    c.DeleteTimeSlotHandler,
		CreateVote:        c.CreateVoteHandler,
		DeleteVote:        c.DeleteVoteHandler,
		GetMeeting:        c.GetMeetingHandler,
		ListMeetings:      c.ListMeetingsHandler,
		ListOwnedMeetings: c.ListOwnedMeetingsHandler,
	}
	srv := NewServer(serverCfg, handlers, c.Tokens, c.Health, logger)
	return &testAPI{t: t, handler: srv.Handler()}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// register creates an account and returns its token and id.
func (a *testAPI) register(email string) (string, uuid.UUID) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/users", "", map[string]string{"email": email, "password": "pw1"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[authResponse](a.t, rec)
	return resp.Token, resp.User.ID
}

func (a *testAPI) createMeeting(token, title string) meetingQueries.MeetingDTO {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/meetings", token, map[string]any{"title": title})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[meetingQueries.MeetingDTO](a.t, rec)
}

func (a *testAPI) createSlot(token string, meetingID uuid.UUID, start time.Time) meetingQueries.TimeSlotDTO {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/timeslots", token, map[string]any{
		"meeting_id": meetingID,
		"start_time": start,
		"end_time":   start.Add(30 * time.Minute),
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[meetingQueries.TimeSlotDTO](a.t, rec)
}

func tomorrowAt(hour int) time.Time {
	y, m, d := time.Now().UTC().AddDate(0, 0, 1).Date()
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/users", "", map[string]string{"email": "A@x.com", "password": "pw1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	registered := decode[authResponse](t, rec)
	assert.Equal(t, "a@x.com", registered.User.Email)
	assert.NotEmpty(t, registered.Token)
	assert.Empty(t, registered.User.Meetings)

	dup := api.do(http.MethodPost, "/api/users", "", map[string]string{"email": "a@x.com", "password": "other"})
	assert.Equal(t, http.StatusConflict, dup.Code)

	api.createMeeting(registered.Token, "Standup")

	wrong := api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "a@x.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)

	unknown := api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "b@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())

	ok := api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "a@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, ok.Code)
	loggedIn := decode[authResponse](t, ok)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	require.Len(t, loggedIn.User.Meetings, 1)
	assert.Equal(t, "Standup", loggedIn.User.Meetings[0].Title)
}

func TestRegister_Validation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/users", "", map[string]string{"email": "not-an-email", "password": "pw1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/users", "", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeetings_RequireToken(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/meetings", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/meetings", "garbage", nil).Code)
}

func TestListMeetings_EmptyIsOK(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("a@x.com")

	rec := api.do(http.MethodGet, "/api/meetings", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestVoterSeesMeetingThroughVote(t *testing.T) {
	api := newTestAPI(t)
	tokenA, _ := api.register("a@x.com")
	tokenB, userB := api.register("b@x.com")

	meeting := api.createMeeting(tokenA, "Standup")
	slot := api.createSlot(tokenA, meeting.ID, tomorrowAt(9))

	rec := api.do(http.MethodPost, "/api/votes", tokenB, map[string]any{"timeslot_id": slot.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	vote := decode[meetingQueries.VoteDTO](t, rec)
	assert.Equal(t, userB, vote.UserID)

	list := api.do(http.MethodGet, "/api/meetings", tokenB, nil)
	require.Equal(t, http.StatusOK, list.Code)
	meetings := decode[[]meetingQueries.MeetingDTO](t, list)
	require.Len(t, meetings, 1)
	assert.Equal(t, "Standup", meetings[0].Title)

	got := api.do(http.MethodGet, "/api/meetings/"+meeting.ID.String(), tokenB, nil)
	require.Equal(t, http.StatusOK, got.Code)
	view := decode[meetingQueries.MeetingDTO](t, got)
	require.Len(t, view.TimeSlots, 1)
	require.Len(t, view.TimeSlots[0].Votes, 1)
	assert.Equal(t, vote.ID, view.TimeSlots[0].Votes[0].ID)
}

func TestCreateMeeting_WithSlots(t *testing.T) {
	api := newTestAPI(t)
	token, owner := api.register("a@x.com")

	rec := api.do(http.MethodPost, "/api/meetings", token, map[string]any{
		"title":       "Planning",
		"description": "Q3",
		"timeSlots": []map[string]any{
			{"startTime": tomorrowAt(9), "endTime": tomorrowAt(10)},
			{"startTime": tomorrowAt(14), "endTime": tomorrowAt(15)},
		},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	meeting := decode[meetingQueries.MeetingDTO](t, rec)
	assert.Equal(t, owner, meeting.UserID)
	require.NotNil(t, meeting.Description)
	assert.Equal(t, "Q3", *meeting.Description)
	require.Len(t, meeting.TimeSlots, 2)
	assert.Equal(t, owner, meeting.TimeSlots[0].UserID)
}

func TestCreateMeeting_WebClientPayload(t *testing.T) {
	api := newTestAPI(t)
	token, owner := api.register("a@x.com")
	start := tomorrowAt(9)
	body := `{"title":"Standup","description":"daily","timeSlots":[{"startTime":"` +
		start.Format(time.RFC3339) + `","endTime":"` + start.Add(30*time.Minute).Format(time.RFC3339) + `"}]}`

	req := httptest.NewRequest(http.MethodPost, "/api/meetings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	meeting := decode[meetingQueries.MeetingDTO](t, rec)
	require.Len(t, meeting.TimeSlots, 1)
	assert.Equal(t, owner, meeting.TimeSlots[0].UserID)
	assert.True(t, start.Equal(meeting.TimeSlots[0].StartTime))
	assert.True(t, start.Add(30*time.Minute).Equal(meeting.TimeSlots[0].EndTime))

	raw := decode[map[string]any](t, rec)
	slot := raw["timeslots"].([]any)[0].(map[string]any)
	assert.Contains(t, slot, "created_at")
}

func TestCreateMeeting_Invalid(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("a@x.com")

	blank := api.do(http.MethodPost, "/api/meetings", token, map[string]any{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, blank.Code)

	inverted := api.do(http.MethodPost, "/api/meetings", token, map[string]any{
		"title":     "Planning",
		"timeSlots": []map[string]any{{"startTime": tomorrowAt(10), "endTime": tomorrowAt(9)}},
	})
	assert.Equal(t, http.StatusBadRequest, inverted.Code)

	list := api.do(http.MethodGet, "/api/meetings", token, nil)
	assert.JSONEq(t, `[]`, list.Body.String())
}

func TestCreateTimeSlot_InThePast(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("a@x.com")
	meeting := api.createMeeting(token, "Standup")

	rec := api.do(http.MethodPost, "/api/timeslots", token, map[string]any{
		"meeting_id": meeting.ID,
		"start_time": time.Now().UTC().AddDate(0, 0, -1),
		"end_time":   tomorrowAt(9),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "start must be in the future")
}

func TestCreateTimeSlot_UnknownMeeting(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("a@x.com")

	rec := api.do(http.MethodPost, "/api/timeslots", token, map[string]any{
		"meeting_id": uuid.New(),
		"start_time": tomorrowAt(9),
		"end_time":   tomorrowAt(10),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMeeting_Ownership(t *testing.T) {
	api := newTestAPI(t)
	tokenA, _ := api.register("a@x.com")
	tokenB, _ := api.register("b@x.com")
	meeting := api.createMeeting(tokenA, "Standup")
	path := "/api/meetings/" + meeting.ID.String()

	forbidden := api.do(http.MethodDelete, path, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, path, tokenA, nil).Code)

	ok := api.do(http.MethodDelete, path, tokenA, nil)
	require.Equal(t, http.StatusOK, ok.Code)
	assert.JSONEq(t, `{"success":true}`, ok.Body.String())

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, path, tokenA, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, path, tokenA, nil).Code)
}

func TestGetMeeting_MalformedID(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("a@x.com")

	rec := api.do(http.MethodGet, "/api/meetings/not-a-uuid", token, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateMeeting_Partial(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("a@x.com")

	rec := api.do(http.MethodPost, "/api/meetings", token, map[string]any{"title": "Standup", "description": "daily"})
	require.Equal(t, http.StatusCreated, rec.Code)
	meeting := decode[meetingQueries.MeetingDTO](t, rec)
	api.createSlot(token, meeting.ID, tomorrowAt(9))

	updated := api.do(http.MethodPatch, "/api/meetings/"+meeting.ID.String(), token, map[string]any{"title": "Sync"})

	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	view := decode[meetingQueries.MeetingDTO](t, updated)
	assert.Equal(t, "Sync", view.Title)
	require.NotNil(t, view.Description)
	assert.Equal(t, "daily", *view.Description)
	assert.Len(t, view.TimeSlots, 1)

	tooLong := api.do(http.MethodPut, "/api/meetings/"+meeting.ID.String(), token, map[string]any{"title": string(bytes.Repeat([]byte("x"), 101))})
	assert.Equal(t, http.StatusBadRequest, tooLong.Code)

	missing := api.do(http.MethodPut, "/api/meetings/"+uuid.NewString(), token, map[string]any{"title": "Sync"})
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestUpdateTimeSlot(t *testing.T) {
	api := newTestAPI(t)
	tokenA, _ := api.register("a@x.com")
	tokenB, _ := api.register("b@x.com")
	meeting := api.createMeeting(tokenA, "Standup")
	other := api.createMeeting(tokenA, "Retro")
	slot := api.createSlot(tokenA, meeting.ID, tomorrowAt(9))
	path := "/api/timeslots/" + slot.ID.String()

	newEnd := tomorrowAt(11)
	moved := api.do(http.MethodPatch, path, tokenA, map[string]any{"end_time": newEnd})
	require.Equal(t, http.StatusOK, moved.Code, moved.Body.String())
	view := decode[meetingQueries.TimeSlotDTO](t, moved)
	assert.True(t, view.StartTime.Equal(tomorrowAt(9)))
	assert.True(t, view.EndTime.Equal(newEnd))

	mismatch := api.do(http.MethodPut, path, tokenA, map[string]any{"meeting_id": other.ID})
	assert.Equal(t, http.StatusBadRequest, mismatch.Code)

	forbidden := api.do(http.MethodPut, path, tokenB, map[string]any{"end_time": newEnd})
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	inverted := api.do(http.MethodPut, path, tokenA, map[string]any{"end_time": tomorrowAt(8)})
	assert.Equal(t, http.StatusBadRequest, inverted.Code)
}

func TestDeleteTimeSlot_CascadesVotes(t *testing.T) {
	api := newTestAPI(t)
	tokenA, _ := api.register("a@x.com")
	tokenB, _ := api.register("b@x.com")
	meeting := api.createMeeting(tokenA, "Standup")
	slot := api.createSlot(tokenB, meeting.ID, tomorrowAt(9))
	path := "/api/timeslots/" + slot.ID.String()

	rec := api.do(http.MethodPost, "/api/votes", tokenA, map[string]any{"timeslot_id": slot.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	vote := decode[meetingQueries.VoteDTO](t, rec)

	// the meeting owner did not propose the slot
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, path, tokenA, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, path, tokenB, nil).Code)

	view := decode[meetingQueries.MeetingDTO](t, api.do(http.MethodGet, "/api/meetings/"+meeting.ID.String(), tokenA, nil))
	assert.Empty(t, view.TimeSlots)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/votes/"+vote.ID.String(), tokenA, nil).Code)
}

func TestVotes(t *testing.T) {
	api := newTestAPI(t)
	tokenA, _ := api.register("a@x.com")
	tokenB, _ := api.register("b@x.com")
	meeting := api.createMeeting(tokenA, "Standup")
	slot := api.createSlot(tokenA, meeting.ID, tomorrowAt(9))

	missingSlot := api.do(http.MethodPost, "/api/votes", tokenB, map[string]any{"timeslot_id": uuid.New()})
	assert.Equal(t, http.StatusBadRequest, missingSlot.Code)

	rec := api.do(http.MethodPost, "/api/votes", tokenB, map[string]any{"timeslot_id": slot.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	vote := decode[meetingQueries.VoteDTO](t, rec)
	path := "/api/votes/" + vote.ID.String()

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, path, tokenA, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, path, tokenB, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, path, tokenB, nil).Code)
}

func TestMalformedBody(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("a@x.com")

	req := httptest.NewRequest(http.MethodPost, "/api/meetings", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body["checks"], "database")
}

func TestRequestID(t *testing.T) {
	api := newTestAPI(t)

	generated := api.do(http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, generated.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestCORS(t *testing.T) {
	api := newTestAPI(t)

	preflight := httptest.NewRequest(http.MethodOptions, "/api/meetings", nil)
	preflight.Header.Set("Origin", "https://app.example")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, preflight)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	foreign := httptest.NewRequest(http.MethodGet, "/health", nil)
	foreign.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, foreign)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	api := newTestAPIWith(t, ServerConfig{RateLimitRPS: 0.001, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", "", nil).Code)

	limited := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
}
