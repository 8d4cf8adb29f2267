package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/event"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type EventResponse struct {
	ID                        int64  `json:"id" example:"1"`
	VenueID                   int64  `json:"venue_id" example:"1"`
	Name                      string `json:"name" example:"Concert Event"`
	Address                   string `json:"address" example:"UK"`
	EvenCountRequired         bool   `json:"even_count_required" example:"true"`
	AllTogetherRequired       bool   `json:"all_together_required" example:"true"`
	AvoidIsolatedSeatRequired bool   `json:"avoid_isolated_seat_required" example:"true"`
	CreatedAt                 string `json:"created_at" example:"2025-12-06T10:00:00+09:00"`
}

type AvailabilityResponse struct {
	EventID   int64 `json:"event_id" example:"1"`
	Available int   `json:"available" example:"12"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
		ID:                        e.ID,
		VenueID:                   e.VenueID,
		Name:                      e.Name,
		Address:                   e.Address,
		EvenCountRequired:         e.EvenCountRequired,
		AllTogetherRequired:       e.AllTogetherRequired,
		AvoidIsolatedSeatRequired: e.AvoidIsolatedSeatRequired,
		CreatedAt:                 e.CreatedAt.Format(time.RFC3339),
	}
}

// GetByID godoc
// @Summary イベントを取得
// @Description 指定IDのイベントと座席ルールの設定を取得します
// @Tags events
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	e, err := h.eventService.GetEvent(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// List godoc
// @Summary イベント一覧を取得
// @Description イベントの一覧を取得します
// @Tags events
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	events, err := h.eventService.ListEvents(c.Request().Context(), limit, offset)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return c.JSON(http.StatusOK, responses)
}

// Availability godoc
// @Summary 空きチケット数を取得
// @Description イベントの未予約チケット数を取得します
// @Tags events
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} AvailabilityResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id}/availability [get]
func (h *EventHandler) Availability(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	count, err := h.eventService.CountAvailableTickets(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{EventID: id, Available: count})
}
