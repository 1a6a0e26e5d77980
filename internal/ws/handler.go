package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/glasspane/preview/internal/logging"
	"github.com/glasspane/preview/internal/monitoring"
	"github.com/glasspane/preview/internal/overlay"
	"github.com/glasspane/preview/internal/preview"
	"github.com/glasspane/preview/internal/shared/id"
	"github.com/glasspane/preview/internal/vfs"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// client is one connected peer. gorilla allows a single concurrent writer,
// so every write goes through the client's own mutex.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v interface{}) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Handler manages WebSocket connections
type Handler struct {
	table    *vfs.Table
	engine   *preview.Engine
	overlay  *overlay.Sync
	selector *overlay.Selector
	metrics  *monitoring.Metrics
	log      *logging.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHandler creates a new WebSocket handler
func NewHandler(
	table *vfs.Table,
	engine *preview.Engine,
	sync *overlay.Sync,
	selector *overlay.Selector,
	metrics *monitoring.Metrics,
	log *logging.Logger,
) *Handler {
	return &Handler{
		table:    table,
		engine:   engine,
		overlay:  sync,
		selector: selector,
		metrics:  metrics,
		log:      log,
		clients:  make(map[*client]struct{}),
	}
}

// BroadcastGeneration pushes a freshly installed generation to every peer.
// Wire it to the engine's OnInstall hook.
func (h *Handler) BroadcastGeneration(gen *preview.Generation) {
	res := gen.Result
	frame := map[string]interface{}{
		"type":        "preview_updated",
		"generation":  res.Generation.String(),
		"title":       res.Title,
		"placeholder": res.Placeholder,
		"rewrites":    res.Rewrites,
		"diagnostics": res.Diagnostics,
		"timestamp":   time.Now().Unix(),
	}

	h.mu.Lock()
	peers := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		peers = append(peers, c)
	}
	h.mu.Unlock()

	for _, c := range peers {
		if err := c.send(frame); err != nil {
			h.log.Debug("generation push failed", zap.Error(err))
		}
		h.metrics.RecordWSMessage("out", "preview_updated")
	}
}

// BroadcastSelection relays selection changes to every peer. Wire it to the
// selector's listener.
func (h *Handler) BroadcastSelection(sel *overlay.Selection) {
	frame := map[string]interface{}{
		"type":      "selection_changed",
		"selected":  sel != nil,
		"timestamp": time.Now().Unix(),
	}
	if sel != nil {
		frame["selection"] = sel
	}

	h.mu.Lock()
	peers := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		peers = append(peers, c)
	}
	h.mu.Unlock()

	for _, c := range peers {
		if err := c.send(frame); err != nil {
			h.log.Debug("selection push failed", zap.Error(err))
		}
		h.metrics.RecordWSMessage("out", "selection_changed")
	}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	peer := &client{conn: conn}
	h.mu.Lock()
	h.clients[peer] = struct{}{}
	h.mu.Unlock()
	h.metrics.IncWSConnections()

	defer func() {
		h.mu.Lock()
		delete(h.clients, peer)
		h.mu.Unlock()
		h.metrics.DecWSConnections()
		conn.Close()
	}()

	peer.send(map[string]interface{}{
		"type":    "system",
		"message": "Connected to preview engine",
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := sonic.Unmarshal(raw, &msg); err != nil {
			// malformed frames are dropped, not answered
			h.log.Debug("dropping malformed frame", zap.Error(err))
			continue
		}
		h.metrics.RecordWSMessage("in", msg.Type)
		h.dispatch(peer, msg)
	}
}

func (h *Handler) dispatch(peer *client, msg Message) {
	switch msg.Type {
	case TypeWriteFile:
		h.table.Write(msg.Path, msg.Content)
		h.ack(peer, msg.Type, msg.Path)
	case TypeDeleteFile:
		h.table.Delete(msg.Path)
		h.ack(peer, msg.Type, msg.Path)
	case TypeMergeFiles:
		h.table.Merge(msg.Files)
		h.ack(peer, msg.Type, "")
	case TypeInsertFragment:
		region, err := h.overlay.Insert(h.docPath(), msg.Fragment)
		h.metrics.RecordOverlayOp("insert", err)
		if err != nil {
			h.sendError(peer, err.Error())
			return
		}
		peer.send(map[string]interface{}{
			"type":      "fragment_inserted",
			"regionId":  region.String(),
			"timestamp": time.Now().Unix(),
		})
	case TypeCommitEdit:
		err := h.overlay.CommitEdit(h.docPath(), id.RegionID(msg.RegionID), msg.Content)
		h.metrics.RecordOverlayOp("commit", err)
		if err != nil {
			h.sendError(peer, err.Error())
			return
		}
		h.ack(peer, msg.Type, msg.RegionID)
	case TypeSelect:
		h.selector.Select(id.RegionID(msg.RegionID), msg.Rect)
		h.ack(peer, msg.Type, msg.RegionID)
	case TypeClearSelection:
		h.selector.Clear()
		h.ack(peer, msg.Type, "")
	case TypeFormat:
		h.handleFormat(peer, msg)
	case TypeSetRoot:
		h.engine.SetRoot(msg.Root)
		h.ack(peer, msg.Type, h.engine.Root())
	case TypePing:
		peer.send(map[string]interface{}{"type": "pong"})
	default:
		h.sendError(peer, "unknown message type")
	}
}

func (h *Handler) handleFormat(peer *client, msg Message) {
	region := id.RegionID(msg.RegionID)

	var err error
	switch msg.Action {
	case "bold":
		err = h.overlay.ToggleBold(h.docPath(), region)
	case "italic":
		err = h.overlay.ToggleItalic(h.docPath(), region)
	case "align":
		err = h.overlay.Align(h.docPath(), region, overlay.Alignment(msg.Align))
	default:
		h.sendError(peer, "unknown format action")
		return
	}
	h.metrics.RecordOverlayOp(msg.Action, err)
	if err != nil {
		h.sendError(peer, err.Error())
		return
	}
	h.ack(peer, msg.Type, msg.RegionID)
}

// docPath is the entry document overlay mutations target.
func (h *Handler) docPath() string {
	if gen := h.engine.Current(); gen != nil {
		return gen.Result.DocumentPath
	}
	return "/index.html"
}

func (h *Handler) ack(peer *client, op, subject string) {
	frame := map[string]interface{}{
		"type":      "ok",
		"op":        op,
		"timestamp": time.Now().Unix(),
	}
	if subject != "" {
		frame["subject"] = subject
	}
	peer.send(frame)
}

func (h *Handler) sendError(peer *client, msg string) {
	peer.send(map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
