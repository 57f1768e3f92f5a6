package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stocksim/api/internal/api/handler/v1/response"
	"github.com/stocksim/api/internal/domain"
	"github.com/stocksim/api/internal/quote"
)

type QuoteSource interface {
	Lookup(ctx context.Context, symbol string) (domain.Quote, error)
}

type QuoteHandler struct {
	quotes QuoteSource
}

func NewQuoteHandler(quotes QuoteSource) *QuoteHandler {
	return &QuoteHandler{
		quotes: quotes,
	}
}

// HandleGetQuote godoc
// @Summary      Get a live quote
// @Description  Fetches the current quote for a symbol from the external quote source
// @Tags         quotes
// @Produce      json
// @Param        symbol  path      string  true  "Stock symbol"
// @Success      200     {object}  domain.Quote
// @Failure      400     {object}  response.Err
// @Failure      401     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      502     {object}  response.Err
// @Router       /quotes/{symbol} [get]
// @Security BearerAuth
func (h *QuoteHandler) HandleGetQuote(ctx *gin.Context) {
	symbol := ctx.Param("symbol")
	if symbol == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("missing symbol")))

		return
	}

	q, err := h.quotes.Lookup(ctx.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, quote.ErrSymbolNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("quote", "symbol", symbol))

			return
		}

		err = fmt.Errorf("v1.HandleGetQuote -> h.quotes.Lookup -> %w", err)
		response.RenderErr(ctx, response.ErrBadGateway(err))

		return
	}

	ctx.JSON(http.StatusOK, q)
}
