package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/policy"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/domain/ticket"
	"github.com/sanosuguru/go-venue-seat-reservation/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
// TicketIDs と Rule は予約の拒否理由がある場合のみ設定される
type ErrorResponse struct {
	Error     string  `json:"error"`
	Code      int     `json:"code,omitempty"`
	Details   string  `json:"details,omitempty"`
	TicketIDs []int64 `json:"ticket_ids,omitempty"`
	Rule      string  `json:"rule,omitempty"`
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "内部サーバーエラー"
	)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	resp := ErrorResponse{Error: message, Code: code}
	if code < 500 {
		withReason(&resp, err)
	}

	if err := c.JSON(code, resp); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}

// withReason はドメインエラーが持つチケットIDや違反ルールをレスポンスに載せる
func withReason(resp *ErrorResponse, err error) {
	var (
		reserved *ticket.AlreadyReservedError
		notFound *ticket.NotFoundError
		verr     *policy.ViolationError
	)
	switch {
	case errors.As(err, &reserved):
		resp.TicketIDs = reserved.TicketIDs
	case errors.As(err, &notFound):
		resp.TicketIDs = notFound.TicketIDs
	case errors.As(err, &verr):
		resp.Rule = string(verr.Kind)
	}
}
