package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/chat"
	listingdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memChatStore struct {
	mu       sync.Mutex
	rooms    map[string]*chat.ChatRoom
	messages []*chat.Message
}

func newMemChatStore(rooms ...*chat.ChatRoom) *memChatStore {
	s := &memChatStore{rooms: map[string]*chat.ChatRoom{}}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *memChatStore) Create(ctx context.Context, msg *chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *memChatStore) ListByRoom(ctx context.Context, roomID string) ([]*chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*chat.Message
	for _, m := range s.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

type memRoomStore struct{ *memChatStore }

func (s memRoomStore) Create(ctx context.Context, room *chat.ChatRoom) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
	return nil
}

func (s memRoomStore) FindByID(ctx context.Context, id string) (*chat.ChatRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[id]; ok {
		return r, nil
	}
	return nil, chat.ErrRoomNotFound
}

func (s memRoomStore) FindByParticipants(ctx context.Context, buyerID, sellerID, listingID string) (*chat.ChatRoom, error) {
	return nil, chat.ErrRoomNotFound
}

func (s memRoomStore) ListByUser(ctx context.Context, userID string) ([]*chat.ChatRoom, error) {
	return nil, nil
}

func (s memRoomStore) TouchLastMessage(ctx context.Context, roomID, content string, at time.Time) error {
	return nil
}

type noListings struct{}

func (noListings) FindByID(context.Context, string) (*listingdomain.Listing, error) {
	return nil, listingdomain.ErrListingNotFound
}

type chatServer struct {
	srv      *httptest.Server
	tokens   *auth.TokenManager
	registry *chat.Registry
	store    *memChatStore
}

func newChatServer(t *testing.T) *chatServer {
	t.Helper()
	log := logger.NewNop()
	store := newMemChatStore(&chat.ChatRoom{ID: "r1", BuyerID: "A", SellerID: "B", ListingID: "l1"})
	rooms := memRoomStore{store}
	registry := chat.NewRegistry(nil)
	h := NewChatHandler(
		chat.NewRoomService(rooms, store, noListings{}, log),
		chat.NewBroadcastService(registry, store, rooms, log),
		registry,
		time.Second,
		log,
	)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	mux := chi.NewRouter()
	mux.With(middleware.JWTAuth(tokens, log)).Get("/ws/chat/{roomId}", h.HandleWebSocket)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &chatServer{srv: srv, tokens: tokens, registry: registry, store: store}
}

func (c *chatServer) dial(t *testing.T, roomID, userID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	token, err := c.tokens.Issue(userID, "buyer")
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(c.srv.URL, "http") + "/ws/chat/" + roomID + "?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]string
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestChatWebSocket_BroadcastReachesEveryone(t *testing.T) {
	cs := newChatServer(t)

	a, _, err := cs.dial(t, "r1", "A")
	require.NoError(t, err)
	defer a.Close()
	b, _, err := cs.dial(t, "r1", "B")
	require.NoError(t, err)
	defer b.Close()

	require.Eventually(t, func() bool { return cs.registry.Count("r1") == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.WriteJSON(chat.InboundMessage{SenderID: "A", Content: "hi"}))

	want := map[string]string{"roomId": "r1", "senderId": "A", "content": "hi"}
	assert.Equal(t, want, readFrame(t, a))
	assert.Equal(t, want, readFrame(t, b))

	history, err := cs.store.ListByRoom(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "A", history[0].SenderID)
}

func TestChatWebSocket_SenderIsAuthenticatedUser(t *testing.T) {
	cs := newChatServer(t)
	b, _, err := cs.dial(t, "r1", "B")
	require.NoError(t, err)
	defer b.Close()
	require.Eventually(t, func() bool { return cs.registry.Count("r1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, b.WriteJSON(chat.InboundMessage{SenderID: "A", Content: "spoofed"}))
	assert.Equal(t, "B", readFrame(t, b)["senderId"])
}

func TestChatWebSocket_Errors(t *testing.T) {
	cs := newChatServer(t)

	t.Run("outsider is refused before upgrade", func(t *testing.T) {
		_, resp, err := cs.dial(t, "r1", "C")
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unknown room", func(t *testing.T) {
		_, resp, err := cs.dial(t, "nope", "A")
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("empty message goes back to sender only", func(t *testing.T) {
		a, _, err := cs.dial(t, "r1", "A")
		require.NoError(t, err)
		defer a.Close()
		require.Eventually(t, func() bool { return cs.registry.Count("r1") == 1 }, 2*time.Second, 10*time.Millisecond)

		require.NoError(t, a.WriteJSON(chat.InboundMessage{Content: "   "}))
		assert.Equal(t, chat.ErrEmptyMessage.Error(), readFrame(t, a)["error"])

		require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("not json")))
		assert.Equal(t, "invalid message frame", readFrame(t, a)["error"])
	})

	t.Run("disconnect removes subscriber", func(t *testing.T) {
		require.Eventually(t, func() bool { return cs.registry.Count("r1") == 0 }, 2*time.Second, 10*time.Millisecond)
	})
}
