package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/chat"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsReadLimit    = 16 << 10
	wsPongWait     = 60 * time.Second
	wsPingInterval = wsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is enforced by the CORS layer and the token check.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ChatHandler struct {
	rooms        *chat.RoomService
	broadcast    *chat.BroadcastService
	registry     *chat.Registry
	writeTimeout time.Duration
	logger       *logger.Logger
}

func NewChatHandler(rooms *chat.RoomService, broadcast *chat.BroadcastService, registry *chat.Registry, writeTimeout time.Duration, log *logger.Logger) *ChatHandler {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &ChatHandler{
		rooms:        rooms,
		broadcast:    broadcast,
		registry:     registry,
		writeTimeout: writeTimeout,
		logger:       log.Named("chat_handler"),
	}
}

type openRoomRequest struct {
	ListingID string `json:"listingId" validate:"required"`
}

func (h *ChatHandler) HandleOpenRoom(w http.ResponseWriter, r *http.Request) {
	var req openRoomRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	room, err := h.rooms.OpenRoom(r.Context(), middleware.UserIDFromContext(r.Context()), req.ListingID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *ChatHandler) HandleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListRooms(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if rooms == nil {
		rooms = []*chat.ChatRoom{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	msgs, err := h.rooms.History(ctx, chi.URLParam(r, "roomId"), middleware.UserIDFromContext(ctx), middleware.IsAdmin(ctx))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// HandleWebSocket joins the caller to a room. Every accepted frame is stored
// and then fanned out to all connections in the room, the sender included.
func (h *ChatHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roomID := chi.URLParam(r, "roomId")
	userID := middleware.UserIDFromContext(ctx)

	if _, err := h.rooms.Authorize(ctx, roomID, userID, middleware.IsAdmin(ctx)); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.String("room_id", roomID), zap.Error(err))
		return
	}
	sub := newWSSubscriber(conn, h.writeTimeout)
	h.registry.Connect(roomID, sub)
	log := h.logger.With(zap.String("room_id", roomID), zap.String("user_id", userID))
	log.Info("Chat connection opened")

	done := make(chan struct{})
	defer func() {
		close(done)
		h.registry.Disconnect(roomID, sub)
		_ = conn.Close()
		log.Info("Chat connection closed")
	}()
	go sub.keepAlive(done)

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("Chat connection read error", zap.Error(err))
			}
			return
		}
		var in chat.InboundMessage
		if err := json.Unmarshal(data, &in); err != nil {
			_ = sub.sendError("invalid message frame")
			continue
		}
		if in.SenderID != "" && in.SenderID != userID {
			log.Debug("Replacing mismatched senderId", zap.String("claimed", in.SenderID))
		}
		if _, err := h.broadcast.Broadcast(ctx, roomID, userID, in.Content); err != nil {
			msg := "failed to send message"
			if errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, chat.ErrMessageTooLong) {
				msg = err.Error()
			}
			_ = sub.sendError(msg)
		}
	}
}

// wsSubscriber serializes writes to one connection; gorilla allows a single writer.
type wsSubscriber struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

func newWSSubscriber(conn *websocket.Conn, writeTimeout time.Duration) *wsSubscriber {
	return &wsSubscriber{conn: conn, writeTimeout: writeTimeout}
}

func (s *wsSubscriber) Send(ctx context.Context, msg chat.OutboundMessage) error {
	return s.write(msg)
}

func (s *wsSubscriber) sendError(msg string) error {
	return s.write(map[string]string{"error": msg})
}

func (s *wsSubscriber) write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(v)
}

func (s *wsSubscriber) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeTimeout))
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
