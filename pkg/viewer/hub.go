// Package viewer streams rendered frames and effect events to browsers
// over websockets.
package viewer

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/lightd/pkg/effect"
)

const (
	writeWait  = 2 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendQueue  = 4
)

// ColorDataMagic starts every binary frame message.
const ColorDataMagic uint32 = 0x34323131

type kind int

const (
	kindFrames kind = iota
	kindEffects
)

type client struct {
	conn     *websocket.Conn
	kind     kind
	send     chan []byte
	done     chan struct{}
	once     sync.Once
	lastSeen atomic.Int64
	lastPing atomic.Int64
	writeMu  sync.Mutex
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *client) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// Hub tracks websocket clients. It is a render.FrameListener for color data
// and an effect.Listener for effect events.
type Hub struct {
	upgrader websocket.Upgrader
	now      func() time.Time

	mu      sync.RWMutex
	clients map[*client]struct{}

	frameClients atomic.Int32
	framesSent   atomic.Uint64
	framesDrop   atomic.Uint64
}

var _ effect.Listener = (*Hub)(nil)

// NewHub returns a hub without clients.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now:     time.Now,
		clients: make(map[*client]struct{}),
	}
}

// HandleFrames upgrades r to a color data stream.
func (h *Hub) HandleFrames(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, kindFrames)
}

// HandleEffects upgrades r to an effect event stream.
func (h *Hub) HandleEffects(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, kindEffects)
}

func (h *Hub) serve(w http.ResponseWriter, r *http.Request, k kind) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Failed to upgrade viewer connection")
		return
	}

	c := &client{conn: conn, kind: k, send: make(chan []byte, sendQueue), done: make(chan struct{})}
	c.lastSeen.Store(h.now().UnixNano())
	conn.SetPongHandler(func(string) error {
		c.lastSeen.Store(h.now().UnixNano())
		return nil
	})

	h.add(c)
	log.Debug().Str("remote", r.RemoteAddr).Stringer("kind", k).Msg("Viewer connected")

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	if c.kind == kindFrames {
		h.frameClients.Add(1)
	}
}

func (h *Hub) remove(c *client) {
	c.close()
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if c.kind == kindFrames {
		h.frameClients.Add(-1)
	}
}

// readLoop only drains control frames; viewers don't send data.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Debug().Err(err).Msg("Viewer closed unexpectedly")
			}
			return
		}
		c.lastSeen.Store(h.now().UnixNano())
	}
}

func (h *Hub) writeLoop(c *client) {
	messageType := websocket.TextMessage
	if c.kind == kindFrames {
		messageType = websocket.BinaryMessage
	}
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(messageType, msg); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

func (h *Hub) broadcast(k kind, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.kind != k {
			continue
		}
		select {
		case c.send <- msg:
			if k == kindFrames {
				h.framesSent.Add(1)
			}
		default:
			// slow viewer; it gets the next one
			if k == kindFrames {
				h.framesDrop.Add(1)
			}
		}
	}
}

// HaveColorDataClients reports whether anyone is watching frames.
func (h *Hub) HaveColorDataClients() bool {
	return h.frameClients.Load() > 0
}

// ClientCount returns the number of connected viewers of both kinds.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CleanupClients drops viewers that went quiet for longer than the pong
// timeout and pings the rest when they are due.
func (h *Hub) CleanupClients() {
	now := h.now()

	h.mu.RLock()
	var stale, ping []*client
	for c := range h.clients {
		switch {
		case c.closed() || now.Sub(time.Unix(0, c.lastSeen.Load())) > pongWait:
			stale = append(stale, c)
		case now.Sub(time.Unix(0, c.lastPing.Load())) >= pingPeriod:
			ping = append(ping, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		log.Debug().Str("remote", c.conn.RemoteAddr().String()).Msg("Dropping stale viewer")
		h.remove(c)
	}
	for _, c := range ping {
		c.lastPing.Store(now.UnixNano())
		c.writeMu.Lock()
		err := c.conn.WriteControl(websocket.PingMessage, nil, now.Add(writeWait))
		c.writeMu.Unlock()
		if err != nil {
			h.remove(c)
		}
	}
}

// CloseAll disconnects every viewer.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	all := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()
	for _, c := range all {
		h.remove(c)
	}
}

// OnNewFrame encodes the canvases as one color data message: the magic
// number, channel count and pixels per channel as little-endian uint32,
// then RGB triplets channel by channel.
func (h *Hub) OnNewFrame(canvases []*effect.Canvas) {
	if !h.HaveColorDataClients() || len(canvases) == 0 {
		return
	}
	h.broadcast(kindFrames, EncodeColorData(canvases))
}

// EncodeColorData builds the color data message for canvases.
func EncodeColorData(canvases []*effect.Canvas) []byte {
	width := len(canvases[0].Pixels)
	b := make([]byte, 12, 12+len(canvases)*width*3)
	binary.LittleEndian.PutUint32(b[0:4], ColorDataMagic)
	binary.LittleEndian.PutUint32(b[4:8], uint32(len(canvases)))
	binary.LittleEndian.PutUint32(b[8:12], uint32(width))
	for _, c := range canvases {
		for i := 0; i < width; i++ {
			if i >= len(c.Pixels) {
				b = append(b, 0, 0, 0)
				continue
			}
			p := c.Pixels[i]
			b = append(b, p.R, p.G, p.B)
		}
	}
	return b
}

// Event is one message on the effect stream.
type Event struct {
	Type     string `json:"type"`
	Index    *int   `json:"index,omitempty"`
	Enabled  *bool  `json:"enabled,omitempty"`
	Interval *int64 `json:"intervalMs,omitempty"`
}

func (h *Hub) sendEvent(e Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode viewer event")
		return
	}
	h.broadcast(kindEffects, msg)
}

func (h *Hub) OnCurrentEffectChanged(index int) {
	h.sendEvent(Event{Type: "currentEffectChanged", Index: &index})
}

func (h *Hub) OnEffectListDirty() {
	h.sendEvent(Event{Type: "effectListDirty"})
}

func (h *Hub) OnEffectEnabledStateChanged(index int, enabled bool) {
	h.sendEvent(Event{Type: "effectEnabledStateChanged", Index: &index, Enabled: &enabled})
}

func (h *Hub) OnIntervalChanged(interval time.Duration) {
	ms := interval.Milliseconds()
	h.sendEvent(Event{Type: "intervalChanged", Interval: &ms})
}

// Stats describes connected viewers.
type Stats struct {
	Clients       int    `json:"clients"`
	FrameClients  int    `json:"frame_clients"`
	FramesSent    uint64 `json:"frames_sent"`
	FramesDropped uint64 `json:"frames_dropped"`
}

func (h *Hub) Stats() Stats {
	return Stats{
		Clients:       h.ClientCount(),
		FrameClients:  int(h.frameClients.Load()),
		FramesSent:    h.framesSent.Load(),
		FramesDropped: h.framesDrop.Load(),
	}
}

func (k kind) String() string {
	switch k {
	case kindFrames:
		return "frames"
	case kindEffects:
		return "effects"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}
