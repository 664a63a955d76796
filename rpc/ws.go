package rpc

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// queueDepth bounds each subscription's pending-notification queue
// (CANONICAL §4.6: "Each subscription has a bounded queue; overflow is a
// notice instructing clients to reconcile via HTTP").
const queueDepth = 256

// Topics a client may subscribe to (CANONICAL §6 "WS topics").
const (
	TopicNewHeads         = "newHeads"
	TopicPendingTxs       = "pendingTxs"
	TopicDACommitted      = "da.committed"
	TopicCapJobCompleted  = "cap.jobCompleted"
	TopicAICFJobAssigned  = "aicf.jobAssigned"
	TopicAICFJobCompleted = "aicf.jobCompleted"
	TopicRandBeaconFinal  = "rand.beaconFinalized"
)

var validTopics = map[string]struct{}{
	TopicNewHeads:         {},
	TopicPendingTxs:       {},
	TopicDACommitted:      {},
	TopicCapJobCompleted:  {},
	TopicAICFJobAssigned:  {},
	TopicAICFJobCompleted: {},
	TopicRandBeaconFinal:  {},
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// subscription is one client's bounded, per-topic FIFO outbox.
type subscription struct {
	id      string
	topic   string
	queue   chan []byte
	dropped uint64
	mu      sync.Mutex
}

func (s *subscription) push(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// The queue's last slot is kept free for the overflow notice.
	if len(s.queue) < cap(s.queue)-1 {
		s.queue <- payload
		return
	}
	s.dropped++
	overflow, _ := json.Marshal(map[string]any{
		"subscriptionId": s.id,
		"topic":          "overflow",
		"dropped":        s.dropped,
	})
	// Once that slot is taken, the notice itself is dropped rather than
	// block; the client already has one queued.
	select {
	case s.queue <- overflow:
	default:
	}
}

// client is one WS connection, owning zero or more subscriptions. Each
// subscription has its own pump goroutine; writes to the connection are
// serialized by the client's mutex. Per-topic order is preserved until
// overflow, cross-topic order is not guaranteed (CANONICAL §5).
type client struct {
	conn *websocket.Conn
	log  *logrus.Logger

	mu   sync.Mutex
	subs map[string]*subscription // subscriptionId -> subscription
}

// Hub fans out topic notifications to every subscribed client.
type Hub struct {
	log *logrus.Logger

	mu        sync.RWMutex
	byTopic   map[string]map[*subscription]*client
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{log: log, byTopic: make(map[string]map[*subscription]*client)}
}

// ServeWS upgrades the connection and processes subscribe/unsubscribe
// requests from the client for the connection's lifetime.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("rpc: ws upgrade failed")
		return
	}
	c := &client{conn: conn, log: h.log, subs: make(map[string]*subscription)}
	defer h.closeClient(c)

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		h.handleClientRequest(c, req)
	}
}

type subscribeParams struct {
	Topic string `json:"topic"`
}

func (h *Hub) handleClientRequest(c *client, req Request) {
	switch req.Method {
	case "subscribe":
		var p subscribeParams
		if err := decodeParams(req.Params, &p); err != nil || p.Topic == "" {
			h.reply(c, req, nil, newError(CodeInvalidParams, "missing topic"))
			return
		}
		if _, ok := validTopics[p.Topic]; !ok {
			h.reply(c, req, nil, newError(CodeInvalidParams, "unknown topic: "+p.Topic))
			return
		}
		sub := &subscription{id: uuid.NewString(), topic: p.Topic, queue: make(chan []byte, queueDepth)}
		c.mu.Lock()
		c.subs[sub.id] = sub
		c.mu.Unlock()

		h.mu.Lock()
		if h.byTopic[p.Topic] == nil {
			h.byTopic[p.Topic] = make(map[*subscription]*client)
		}
		h.byTopic[p.Topic][sub] = c
		h.mu.Unlock()

		go h.pump(c, sub)
		h.reply(c, req, map[string]any{"subscriptionId": sub.id, "topic": sub.topic}, nil)
	case "unsubscribe":
		var p struct {
			SubscriptionID string `json:"subscriptionId"`
		}
		_ = decodeParams(req.Params, &p)
		h.unsubscribe(c, p.SubscriptionID)
		h.reply(c, req, map[string]any{"unsubscribed": true}, nil)
	default:
		h.reply(c, req, nil, newError(CodeMethodNotFound, "unknown ws method: "+req.Method))
	}
}

func (h *Hub) pump(c *client, sub *subscription) {
	for payload := range sub.queue {
		c.mu.Lock()
		_, stillSubscribed := c.subs[sub.id]
		var err error
		if stillSubscribed {
			err = c.conn.WriteMessage(websocket.TextMessage, payload)
		}
		c.mu.Unlock()
		if !stillSubscribed || err != nil {
			return
		}
	}
}

func (h *Hub) unsubscribe(c *client, subID string) {
	c.mu.Lock()
	sub, ok := c.subs[subID]
	if ok {
		delete(c.subs, subID)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	h.mu.Lock()
	delete(h.byTopic[sub.topic], sub)
	h.mu.Unlock()
	close(sub.queue)
}

func (h *Hub) closeClient(c *client) {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	h.mu.Lock()
	for _, sub := range subs {
		delete(h.byTopic[sub.topic], sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		close(sub.queue)
	}
	_ = c.conn.Close()
}

func (h *Hub) reply(c *client, req Request, result any, rpcErr *Error) {
	resp := Response{JSONRPC: "2.0", ID: req.ID}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		encoded, _ := json.Marshal(result)
		resp.Result = encoded
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subs == nil {
		return // connection already closing
	}
	_ = c.conn.WriteJSON(resp)
}

// Publish pushes data to every client subscribed to topic, tagged with
// each subscription's id (CANONICAL §4.6: "server pushes method=<topic>
// notifications carrying subscriptionId and data").
func (h *Hub) Publish(topic string, data any) {
	h.mu.RLock()
	subs := h.byTopic[topic]
	targets := make([]*subscription, 0, len(subs))
	for sub := range subs {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		payload, err := json.Marshal(map[string]any{
			"subscriptionId": sub.id,
			"method":         topic,
			"data":           data,
		})
		if err != nil {
			continue
		}
		sub.push(payload)
	}
}
