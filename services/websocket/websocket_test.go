package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Wordspy/models/messages"
	"Wordspy/services/game/core"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoDispatcher struct {
	connected    chan string
	disconnected chan string
}

func newEchoDispatcher() *echoDispatcher {
	return &echoDispatcher{
		connected:    make(chan string, 4),
		disconnected: make(chan string, 4),
	}
}

func (d *echoDispatcher) Connect(conn core.Conn, identity string) {
	d.connected <- identity
}

func (d *echoDispatcher) Handle(conn core.Conn, msg messages.Inbound) {
	core.Deliver(conn, "echo", gin.H{"got": msg.Type, "roomId": msg.RoomID})
}

func (d *echoDispatcher) Disconnect(conn core.Conn) {
	d.disconnected <- conn.ID()
}

func serve(t *testing.T, d Dispatcher) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", Handler(d, []string{"*"}))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func readFrame(t *testing.T, client *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestEnvelopeRoundTrip(t *testing.T) {
	d := newEchoDispatcher()
	client, _, err := websocket.DefaultDialer.Dial(serve(t, d)+"?userId=ana", nil)
	require.NoError(t, err)
	defer client.Close()

	select {
	case identity := <-d.connected:
		assert.Equal(t, "ana", identity)
	case <-time.After(2 * time.Second):
		t.Fatal("connect not dispatched")
	}

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"type":"join_room","roomId":"r1"}`)))
	frame := readFrame(t, client)
	assert.Equal(t, "echo", frame["type"])
	assert.Equal(t, "join_room", frame["got"])
	assert.Equal(t, "r1", frame["roomId"])
}

func TestInvalidEnvelopeIsRejected(t *testing.T) {
	d := newEchoDispatcher()
	client, _, err := websocket.DefaultDialer.Dial(serve(t, d), nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"roomId":"r1"}`)))
	frame := readFrame(t, client)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "invalid_envelope", frame["code"])

	// the connection stays usable
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"type":"ready"}`)))
	assert.Equal(t, "ready", readFrame(t, client)["got"])
}

func TestClientCloseDispatchesDisconnect(t *testing.T) {
	d := newEchoDispatcher()
	client, _, err := websocket.DefaultDialer.Dial(serve(t, d), nil)
	require.NoError(t, err)
	<-d.connected

	client.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	client.Close()

	select {
	case id := <-d.disconnected:
		assert.NotEmpty(t, id)
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect not dispatched")
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	conn := &Conn{id: "c1", outbox: make(chan []byte, 1), done: make(chan struct{})}

	require.NoError(t, conn.Send("a", gin.H{"x": 1}))
	assert.ErrorIs(t, conn.Send("b", nil), ErrOutboxFull)

	conn.Close()
	conn.Close()
	assert.False(t, conn.Alive())
	assert.ErrorIs(t, conn.Send("c", nil), ErrClosed)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://wordspy.example"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://wordspy.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}
