package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/application"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
)

type ReservationHandler struct {
	service ReservationServiceInterface
}

func NewReservationHandler(s ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

// CreateReservationRequest は予約作成リクエスト
// tickets が空の場合はサービス側で拒否される
type CreateReservationRequest struct {
	EventID   int64   `json:"event_id" validate:"required,gt=0" example:"1"`
	UserEmail string  `json:"user_email" validate:"max=255" example:"email@email.com"`
	UserPhone string  `json:"user_phone" validate:"max=64" example:"12345678"`
	Tickets   []int64 `json:"tickets" example:"1,2"`
}

type TicketResponse struct {
	ID         int64 `json:"id" example:"1"`
	Cost       int64 `json:"cost" example:"100"`
	SeatID     int64 `json:"seat_id" example:"1"`
	SectorID   int64 `json:"sector_id,omitempty" example:"1"`
	SeatNumber int   `json:"seat_number,omitempty" example:"1"`
}

type ReservationResponse struct {
	ID           int64            `json:"id" example:"1"`
	EventID      int64            `json:"event_id" example:"1"`
	UserEmail    string           `json:"user_email" example:"email@email.com"`
	UserPhone    string           `json:"user_phone" example:"12345678"`
	Status       string           `json:"status" example:"RESERVED"`
	NumOfTickets int              `json:"num_of_tickets" example:"2"`
	TotalCost    int64            `json:"total_cost" example:"200"`
	Tickets      []TicketResponse `json:"tickets"`
	CreatedAt    time.Time        `json:"created_at"`
}

func toTicketResponses(tickets []*ticket.Ticket) []TicketResponse {
	resp := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = TicketResponse{
			ID: t.ID, Cost: t.Cost, SeatID: t.SeatID,
			SectorID: t.SectorID, SeatNumber: t.SeatNumber,
		}
	}
	return resp
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID: r.ID, EventID: r.EventID,
		UserEmail: r.UserEmail, UserPhone: r.UserPhone,
		Status: string(r.Status), NumOfTickets: r.NumOfTickets, TotalCost: r.TotalCost,
		Tickets: toTicketResponses(r.Tickets), CreatedAt: r.CreatedAt,
	}
}

// Create godoc
// @Summary 予約を作成
// @Description 指定したチケットをまとめて予約します。イベントの座席ルールに違反する場合は予約されません
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body CreateReservationRequest true "予約情報"
// @Success 201 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse "チケット指定なし・ルール違反"
// @Failure 404 {object} api.ErrorResponse "イベント・チケットが存在しない"
// @Failure 409 {object} api.ErrorResponse "チケットが既に予約済み"
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.CreateReservation(c.Request().Context(), application.CreateReservationInput{
		EventID:   req.EventID,
		UserEmail: req.UserEmail,
		UserPhone: req.UserPhone,
		TicketIDs: req.Tickets,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toReservationResponse(r))
}

// GetByID godoc
// @Summary 予約を取得
// @Description 指定IDの予約をチケット付きで取得します
// @Tags reservations
// @Produce json
// @Param id path int true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	r, err := h.service.GetReservation(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}
