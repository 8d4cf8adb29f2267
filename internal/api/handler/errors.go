package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/event"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/policy"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/venue"
)

// toHTTPError はドメインエラーをHTTPステータスに対応付ける
// 元のエラーは Internal に保持し、エラーハンドラーが詳細を取り出せるようにする
func toHTTPError(err error) *echo.HTTPError {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, ticket.ErrTicketNotFound),
		errors.Is(err, reservation.ErrReservationNotFound),
		errors.Is(err, venue.ErrVenueNotFound):
		code = http.StatusNotFound
	case errors.Is(err, reservation.ErrNoTickets),
		errors.Is(err, policy.ErrPolicyViolation):
		code = http.StatusBadRequest
	case errors.Is(err, ticket.ErrTicketAlreadyReserved):
		code = http.StatusConflict
	}

	if code == http.StatusInternalServerError {
		return echo.NewHTTPError(code, "内部サーバーエラー").SetInternal(err)
	}
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "IDの形式が不正です")
	}
	return id, nil
}
