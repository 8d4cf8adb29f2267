//go:build integration
// +build integration

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/api"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/api/handler"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/application"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/event"
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo *echo.Echo
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// seedConcert はデモと同じ構成の会場とイベントを一意な名前で投入する
// 戻り値は "Row 1" の座席番号からチケットIDへの対応
func seedConcert(t *testing.T) (*event.Event, map[int]int64) {
	t.Helper()
	ctx := context.Background()

	vs, es := application.DemoSeed()
	suffix := uuid.NewString()[:8]
	vs.Name += " e2e " + suffix
	es.Name += " e2e " + suffix
	es.VenueName = vs.Name

	v, err := provisioning.SeedVenue(ctx, vs)
	require.NoError(t, err)
	t.Cleanup(func() { purgeVenue(t, v.ID) })

	ev, err := provisioning.SeedEvent(ctx, es)
	require.NoError(t, err)

	var rows []struct {
		ID         int64 `db:"id"`
		SeatNumber int   `db:"seat_number"`
	}
	err = testDB.Select(&rows, `
		SELECT t.id, s.seat_number
		FROM tickets t
		JOIN seats s ON s.id = t.seat_id
		JOIN sectors sec ON sec.id = s.sector_id
		WHERE t.event_id = $1 AND sec.ref_name = 'Row 1'
		ORDER BY s.seat_number`, ev.ID)
	require.NoError(t, err)

	row1 := make(map[int]int64, len(rows))
	for _, r := range rows {
		row1[r.SeatNumber] = r.ID
	}
	require.Len(t, row1, 6)
	return ev, row1
}

func purgeVenue(t *testing.T, venueID int64) {
	stmts := []string{
		`DELETE FROM outbox_messages WHERE (payload->>'event_id')::bigint IN (SELECT id FROM events WHERE venue_id = $1)`,
		`DELETE FROM tickets WHERE venue_id = $1`,
		`DELETE FROM reservations WHERE event_id IN (SELECT id FROM events WHERE venue_id = $1)`,
		`DELETE FROM events WHERE venue_id = $1`,
		`DELETE FROM seats WHERE sector_id IN (SELECT id FROM sectors WHERE venue_id = $1)`,
		`DELETE FROM sectors WHERE venue_id = $1`,
		`DELETE FROM venues WHERE id = $1`,
	}
	for _, q := range stmts {
		if _, err := testDB.Exec(q, venueID); err != nil {
			t.Logf("クリーンアップに失敗: %v", err)
		}
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	server := getTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := server.Request(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)

		resp := decode[handler.HealthResponse](t, rec)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Components["database"])
	}
}

// TestE2E_ReservationJourney はイベント参照から予約、再予約の拒否までを通しで確認する
func TestE2E_ReservationJourney(t *testing.T) {
	server := getTestServer(t)
	ev, row1 := seedConcert(t)

	var reservationID int64

	t.Run("イベント取得", func(t *testing.T) {
		rec := server.Request(http.MethodGet, fmt.Sprintf("/api/v1/events/%d", ev.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[handler.EventResponse](t, rec)
		assert.Equal(t, ev.Name, resp.Name)
		assert.True(t, resp.EvenCountRequired)
		assert.True(t, resp.AllTogetherRequired)
		assert.True(t, resp.AvoidIsolatedSeatRequired)
	})

	t.Run("空席数確認", func(t *testing.T) {
		rec := server.Request(http.MethodGet, fmt.Sprintf("/api/v1/events/%d/availability", ev.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[handler.AvailabilityResponse](t, rec)
		assert.Equal(t, 12, resp.Available)
	})

	t.Run("予約作成", func(t *testing.T) {
		body := map[string]interface{}{
			"event_id":   ev.ID,
			"user_email": "email@email.com",
			"user_phone": "12345678",
			"tickets":    []int64{row1[2], row1[1]},
		}
		rec := server.Request(http.MethodPost, "/api/v1/reservations", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		resp := decode[handler.ReservationResponse](t, rec)
		reservationID = resp.ID
		assert.Equal(t, "RESERVED", resp.Status)
		assert.Equal(t, 2, resp.NumOfTickets)
		assert.Equal(t, int64(200), resp.TotalCost)
		require.Len(t, resp.Tickets, 2)
		assert.Equal(t, row1[1], resp.Tickets[0].ID, "座席番号順に並ぶ")
		assert.Equal(t, row1[2], resp.Tickets[1].ID)
	})

	t.Run("予約取得", func(t *testing.T) {
		require.NotZero(t, reservationID)
		rec := server.Request(http.MethodGet, fmt.Sprintf("/api/v1/reservations/%d", reservationID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[handler.ReservationResponse](t, rec)
		assert.Equal(t, ev.ID, resp.EventID)
		assert.Len(t, resp.Tickets, 2)
	})

	t.Run("予約後の空席数", func(t *testing.T) {
		rec := server.Request(http.MethodGet, fmt.Sprintf("/api/v1/events/%d/availability", ev.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[handler.AvailabilityResponse](t, rec)
		assert.Equal(t, 10, resp.Available)
	})

	t.Run("予約済みチケットは409でIDを返す", func(t *testing.T) {
		body := map[string]interface{}{
			"event_id": ev.ID,
			"tickets":  []int64{row1[2], row1[3]},
		}
		rec := server.Request(http.MethodPost, "/api/v1/reservations", body)
		require.Equal(t, http.StatusConflict, rec.Code)

		resp := decode[api.ErrorResponse](t, rec)
		assert.Equal(t, []int64{row1[2]}, resp.TicketIDs)
	})
}

// TestE2E_ReservationErrors はエラー応答のステータスと本文を確認する
func TestE2E_ReservationErrors(t *testing.T) {
	server := getTestServer(t)
	ev, row1 := seedConcert(t)

	tests := []struct {
		name     string
		body     map[string]interface{}
		wantCode int
		wantRule string
		wantIDs  []int64
	}{
		{
			name:     "イベントが存在しない",
			body:     map[string]interface{}{"event_id": 999999999, "tickets": []int64{1, 2}},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "event_id未指定",
			body:     map[string]interface{}{"tickets": []int64{row1[1], row1[2]}},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "チケット指定なし",
			body:     map[string]interface{}{"event_id": ev.ID, "tickets": []int64{}},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "存在しないチケット",
			body:     map[string]interface{}{"event_id": ev.ID, "tickets": []int64{row1[1], 999999999}},
			wantCode: http.StatusNotFound,
			wantIDs:  []int64{999999999},
		},
		{
			name:     "奇数枚",
			body:     map[string]interface{}{"event_id": ev.ID, "tickets": []int64{row1[1]}},
			wantCode: http.StatusBadRequest,
			wantRule: "even_count",
		},
		{
			name:     "離れた席",
			body:     map[string]interface{}{"event_id": ev.ID, "tickets": []int64{row1[1], row1[4]}},
			wantCode: http.StatusBadRequest,
			wantRule: "all_together",
		},
		{
			name:     "端の1席を残す",
			body:     map[string]interface{}{"event_id": ev.ID, "tickets": []int64{row1[2], row1[3]}},
			wantCode: http.StatusBadRequest,
			wantRule: "isolated_seat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := server.Request(http.MethodPost, "/api/v1/reservations", tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			resp := decode[api.ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantRule, resp.Rule)
			assert.Equal(t, tt.wantIDs, resp.TicketIDs)
		})
	}

	t.Run("拒否後も空席数は変わらない", func(t *testing.T) {
		rec := server.Request(http.MethodGet, fmt.Sprintf("/api/v1/events/%d/availability", ev.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 12, decode[handler.AvailabilityResponse](t, rec).Available)
	})
}

// TestE2E_NotFound は存在しないリソースと不正なIDの応答を確認する
func TestE2E_NotFound(t *testing.T) {
	server := getTestServer(t)

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"イベントが存在しない", "/api/v1/events/999999999", http.StatusNotFound},
		{"空席数のイベントが存在しない", "/api/v1/events/999999999/availability", http.StatusNotFound},
		{"予約が存在しない", "/api/v1/reservations/999999999", http.StatusNotFound},
		{"数値でないID", "/api/v1/reservations/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := server.Request(http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

// TestE2E_DuplicateTicketIDs は重複したチケットIDが1枚として予約されることを確認する
func TestE2E_DuplicateTicketIDs(t *testing.T) {
	server := getTestServer(t)
	ev, row1 := seedConcert(t)

	body := map[string]interface{}{
		"event_id": ev.ID,
		"tickets":  []int64{row1[1], row1[1], row1[2], row1[2]},
	}
	rec := server.Request(http.MethodPost, "/api/v1/reservations", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[handler.ReservationResponse](t, rec)
	assert.Equal(t, 2, resp.NumOfTickets)
	assert.Equal(t, int64(200), resp.TotalCost)
	require.Len(t, resp.Tickets, 2)
	assert.Equal(t, row1[1], resp.Tickets[0].ID)
	assert.Equal(t, row1[2], resp.Tickets[1].ID)
}
