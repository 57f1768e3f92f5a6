package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/stocksim/api/internal/api/handler/v1/response"
	"github.com/stocksim/api/internal/domain"
)

var errMissingSymbols = errors.New("missing symbols query parameter")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

type streamClient struct {
	conn    *websocket.Conn
	send    chan []byte
	userID  uint
	symbols []string
	done    chan struct{}
}

type delivery struct {
	client  *streamClient
	payload []byte
}

// StreamHandler pushes fresh quotes for each client's watched symbols at a
// fixed interval over a WebSocket connection.
//
// The clients map and every send/close on a client's channels happen inside
// the single Run goroutine. Tick loops never touch client.send directly;
// they hand payloads to Run over deliver, so a client unregistering while a
// tick is in flight can never race a close of its send channel.
type StreamHandler struct {
	quotes   QuoteSource
	interval time.Duration

	clients    map[*streamClient]struct{}
	register   chan *streamClient
	unregister chan *streamClient
	deliver    chan delivery
}

func NewStreamHandler(quotes QuoteSource, interval time.Duration) *StreamHandler {
	if interval == 0 {
		interval = 5 * time.Second
	}

	return &StreamHandler{
		quotes:     quotes,
		interval:   interval,
		clients:    make(map[*streamClient]struct{}),
		register:   make(chan *streamClient),
		unregister: make(chan *streamClient),
		deliver:    make(chan delivery),
	}
}

func (h *StreamHandler) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			h.drop(client)
		case d := <-h.deliver:
			if _, ok := h.clients[d.client]; !ok {
				continue
			}
			select {
			case d.client.send <- d.payload:
			default:
				// Full send buffer means the client can't keep up.
				h.drop(d.client)
			}
		}
	}
}

func (h *StreamHandler) drop(client *streamClient) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		close(client.done)
	}
}

// HandleStream godoc
// @Summary      Stream live quotes
// @Description  Upgrades to WebSocket and pushes quotes for the requested symbols at a fixed interval
// @Tags         quotes
// @Param        symbols  query  string  true  "Comma-separated symbols, e.g. AAPL,NFLX"
// @Success      101  {string}  string  "Switching Protocols to WebSocket"
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Router       /stream/quotes [get]
// @Security BearerAuth
func (h *StreamHandler) HandleStream(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	symbols := parseSymbols(ctx.Query("symbols"))
	if len(symbols) == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(errMissingSymbols))

		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))

		return
	}

	client := &streamClient{
		conn:    conn,
		send:    make(chan []byte, 256),
		userID:  userID,
		symbols: symbols,
		done:    make(chan struct{}),
	}
	h.register <- client

	go client.writePump()
	go client.readPump(h)
	go h.tickLoop(client)
}

// tickLoop fetches the client's symbols every interval and hands the payload
// to the hub. A failed lookup skips the tick; the hub drops clients whose
// send buffer is full rather than blocking on them.
func (h *StreamHandler) tickLoop(client *streamClient) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-client.done:
			return
		case <-ticker.C:
			quotes := make([]domain.Quote, 0, len(client.symbols))
			for _, symbol := range client.symbols {
				ctx, cancel := context.WithTimeout(context.Background(), h.interval)
				q, err := h.quotes.Lookup(ctx, symbol)
				cancel()
				if err != nil {
					zap.L().Warn("stream quote lookup failed",
						zap.String("symbol", symbol),
						zap.Error(err),
					)

					continue
				}
				quotes = append(quotes, q)
			}
			if len(quotes) == 0 {
				continue
			}

			payload, err := json.Marshal(quotes)
			if err != nil {
				zap.L().Error("stream marshal failed", zap.Error(err))

				continue
			}

			select {
			case h.deliver <- delivery{client: client, payload: payload}:
			case <-client.done:
				return
			}
		}
	}
}

func (c *streamClient) writePump() {
	defer func() {
		c.conn.Close()
	}()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (c *streamClient) readPump(h *StreamHandler) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func parseSymbols(raw string) []string {
	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			symbols = append(symbols, s)
		}
	}

	return symbols
}
