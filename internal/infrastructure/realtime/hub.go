// Package realtime difunde los eventos de stock a los clientes websocket conectados.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/Reagentes-api/internal/application/inventory"
	"github.com/jhoicas/Reagentes-api/pkg/logger"
)

var _ inventory.EventPublisher = (*Hub)(nil)

const broadcastBuffer = 64

// Client conexión que recibe mensajes; *websocket.Conn la satisface.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Message sobre enviado a cada cliente.
type Message struct {
	ID    string               `json:"id"`
	Type  string               `json:"type"`
	Event inventory.StockEvent `json:"event"`
}

// Hub registra clientes y reparte los mensajes desde una única goroutine (Run).
type Hub struct {
	clients    map[Client]bool
	register   chan Client
	unregister chan Client
	broadcast  chan []byte
	done       chan struct{}
	mutex      sync.Mutex
	log        *logger.Logger
}

// NewHub construye el hub; Run debe ejecutarse en una goroutine.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[Client]bool),
		register:   make(chan Client),
		unregister: make(chan Client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		log:        log.Component("ws_hub"),
	}
}

// Run atiende registros, bajas y difusiones hasta que ctx se cancela; al salir cierra todos los clientes.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for c := range h.clients {
				_ = c.Close()
				delete(h.clients, c)
			}
			h.mutex.Unlock()
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug().Int("clients", n).Msg("cliente ws conectado")

		case c := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				_ = c.Close()
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for c := range h.clients {
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					_ = c.Close()
					delete(h.clients, c)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register agrega un cliente. Bloquea hasta que Run lo atiende; si el hub ya terminó, cierra el cliente.
func (h *Hub) Register(c Client) {
	select {
	case h.register <- c:
	case <-h.done:
		_ = c.Close()
	}
}

// Unregister quita y cierra un cliente.
func (h *Hub) Unregister(c Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount número de clientes conectados.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish implementa inventory.EventPublisher. Nunca bloquea al llamador:
// si el buffer está lleno el evento se descarta y se registra.
func (h *Hub) Publish(_ context.Context, event inventory.StockEvent) {
	msg, err := json.Marshal(Message{ID: uuid.NewString(), Type: "stock_update", Event: event})
	if err != nil {
		h.log.Error().Err(err).Str("event", event.Type).Msg("serializar evento ws")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Str("event", event.Type).Int64("movement_id", event.MovementID).Msg("buffer ws lleno, evento descartado")
	}
}

// UpgradeMiddleware rechaza con 426 las peticiones que no piden upgrade a websocket.
func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}
}

// Handler registra la conexión y la mantiene viva leyendo hasta que el cliente se desconecta.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		h.Register(c)
		defer h.Unregister(c)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
