package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stocksim/api/internal/api/handler/v1/response"
	"github.com/stocksim/api/internal/domain"
	"github.com/stocksim/api/internal/service"
)

type PortfolioService interface {
	GetSnapshot(ctx context.Context, userID uint) (domain.Portfolio, error)
}

type PortfolioHandler struct {
	svc PortfolioService
}

func NewPortfolioHandler(svc PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		svc: svc,
	}
}

// HandleGetPortfolio godoc
// @Summary      Get the portfolio snapshot
// @Description  Values every open position at live prices and totals them with cash
// @Tags         portfolio
// @Produce      json
// @Success      200  {object}  domain.Portfolio
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Failure      502  {object}  response.Err
// @Router       /portfolio [get]
// @Security BearerAuth
func (h *PortfolioHandler) HandleGetPortfolio(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	portfolio, err := h.svc.GetSnapshot(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrQuoteUnavailable) || errors.Is(err, service.ErrUnknownSymbol) {
			err = fmt.Errorf("v1.HandleGetPortfolio -> h.svc.GetSnapshot -> %w", err)
			response.RenderErr(ctx, response.ErrBadGateway(err))

			return
		}

		err = fmt.Errorf("v1.HandleGetPortfolio -> h.svc.GetSnapshot -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, portfolio)
}
