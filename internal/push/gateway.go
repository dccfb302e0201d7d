package push

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/OWLSolvesGlobal/AlgoTradingStrategies/internal/infrastructure"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Gateway relays completed backtest reports from the NATS stream to
// WebSocket clients. Clients subscribe by subject, e.g.
// backtest.report.GBPJPY.15m or backtest.report.*.*; the gateway holds one
// NATS subscription per subject for as long as any client wants it.
type Gateway struct {
	logger   *zap.Logger
	js       nats.JetStreamContext
	mu       sync.RWMutex
	topics   map[string]map[*client]bool
	natsSubs map[string]*nats.Subscription
}

func NewGateway(js nats.JetStreamContext, logger *zap.Logger) *Gateway {
	return &Gateway{
		logger:   logger,
		js:       js,
		topics:   make(map[string]map[*client]bool),
		natsSubs: make(map[string]*nats.Subscription),
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}
	infrastructure.WSConnections.Inc()

	go g.writeLoop(c)
	g.readLoop(c)
}

func (g *Gateway) readLoop(c *client) {
	defer func() {
		g.dropClient(c)
		infrastructure.WSConnections.Dec()
		c.conn.Close()
		close(c.send)
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var req struct {
			Action string `json:"action"` // "subscribe" or "unsubscribe"
			Topic  string `json:"topic"`
		}
		if err := json.Unmarshal(message, &req); err != nil || req.Topic == "" {
			continue
		}

		switch req.Action {
		case "subscribe":
			g.subscribe(c, req.Topic)
		case "unsubscribe":
			g.unsubscribe(c, req.Topic)
		}
	}
}

func (g *Gateway) writeLoop(c *client) {
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (g *Gateway) subscribe(c *client, topic string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.topics[topic] == nil {
		g.topics[topic] = make(map[*client]bool)
		sub, err := g.js.Subscribe(topic, func(msg *nats.Msg) {
			g.fanOut(topic, msg.Data)
			msg.Ack()
		}, nats.ManualAck())
		if err != nil {
			g.logger.Error("nats subscribe failed", zap.String("topic", topic), zap.Error(err))
			delete(g.topics, topic)
			return
		}
		g.natsSubs[topic] = sub
	}
	g.topics[topic][c] = true
	g.logger.Info("client subscribed", zap.String("topic", topic))
}

func (g *Gateway) unsubscribe(c *client, topic string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeLocked(c, topic)
}

func (g *Gateway) dropClient(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for topic := range g.topics {
		g.removeLocked(c, topic)
	}
}

// removeLocked detaches a client from a topic and tears down the NATS
// subscription once the last client is gone. Caller holds g.mu.
func (g *Gateway) removeLocked(c *client, topic string) {
	clients, ok := g.topics[topic]
	if !ok {
		return
	}
	delete(clients, c)
	if len(clients) > 0 {
		return
	}
	if sub, ok := g.natsSubs[topic]; ok {
		sub.Unsubscribe()
		delete(g.natsSubs, topic)
	}
	delete(g.topics, topic)
	g.logger.Info("topic released", zap.String("topic", topic))
}

func (g *Gateway) fanOut(topic string, data []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.topics[topic] {
		select {
		case c.send <- data:
		default:
			// Slow client; drop the message rather than block the stream.
		}
	}
}
