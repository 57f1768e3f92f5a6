package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stocksim/api/internal/api/handler/v1/request"
	"github.com/stocksim/api/internal/api/handler/v1/response"
	"github.com/stocksim/api/internal/domain"
	"github.com/stocksim/api/internal/service"
)

type TradeService interface {
	Buy(ctx context.Context, userID uint, symbol string, shares int64) (domain.Transaction, error)
	Sell(ctx context.Context, userID uint, symbol string, shares int64) (domain.Transaction, error)
	GetTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error)
}

type TradeHandler struct {
	svc TradeService
}

func NewTradeHandler(svc TradeService) *TradeHandler {
	return &TradeHandler{
		svc: svc,
	}
}

// HandleBuy godoc
// @Summary      Buy shares
// @Description  Executes a market buy at the current quoted price
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        request  body      request.TradeRequest  true  "request body"
// @Success      201      {object}  domain.Transaction
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Router       /trades/buy [post]
// @Security BearerAuth
func (h *TradeHandler) HandleBuy(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.TradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	symbol := strings.ToUpper(req.Symbol)
	transaction, err := h.svc.Buy(ctx.Request.Context(), userID, symbol, req.Shares)
	if err != nil {
		h.renderTradeErr(ctx, "v1.HandleBuy", symbol, err)

		return
	}

	ctx.JSON(http.StatusCreated, transaction)
}

// HandleSell godoc
// @Summary      Sell shares
// @Description  Executes a market sell at the current quoted price
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        request  body      request.TradeRequest  true  "request body"
// @Success      201      {object}  domain.Transaction
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Router       /trades/sell [post]
// @Security BearerAuth
func (h *TradeHandler) HandleSell(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.TradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	symbol := strings.ToUpper(req.Symbol)
	transaction, err := h.svc.Sell(ctx.Request.Context(), userID, symbol, req.Shares)
	if err != nil {
		h.renderTradeErr(ctx, "v1.HandleSell", symbol, err)

		return
	}

	ctx.JSON(http.StatusCreated, transaction)
}

// HandleGetTransactions godoc
// @Summary      Get transaction history
// @Description  Returns the user's append-only trade log, oldest first
// @Tags         trades
// @Produce      json
// @Success      200  {array}   domain.Transaction
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /transactions [get]
// @Security BearerAuth
func (h *TradeHandler) HandleGetTransactions(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	transactions, err := h.svc.GetTransactions(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTransactions -> h.svc.GetTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, transactions)
}

func (h *TradeHandler) renderTradeErr(ctx *gin.Context, caller, symbol string, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownSymbol):
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid symbol")))
	case errors.Is(err, service.ErrPositionNotFound):
		response.RenderErr(ctx, response.ErrNotFound("position", "symbol", symbol))
	case errors.Is(err, service.ErrInsufficientFunds):
		response.RenderErr(ctx, response.ErrUnprocessable(service.ErrInsufficientFunds))
	case errors.Is(err, service.ErrInsufficientShares):
		response.RenderErr(ctx, response.ErrUnprocessable(service.ErrInsufficientShares))
	case errors.Is(err, service.ErrQuoteUnavailable):
		response.RenderErr(ctx, response.ErrBadGateway(fmt.Errorf("%v -> %w", caller, err)))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%v -> %w", caller, err)))
	}
}
