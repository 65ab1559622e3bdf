package socket_io

import (
	"Wordspy/models/messages"
	"Wordspy/services/game/core"
	"Wordspy/utils/logger"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

// Dispatcher receives the traffic of every socket.
type Dispatcher interface {
	Connect(conn core.Conn, identity string)
	Handle(conn core.Conn, msg messages.Inbound)
	Disconnect(conn core.Conn)
}

// SocketServer wraps the socket.io server and the sockets it currently holds.
type SocketServer struct {
	Sio_server *socket.Server
	dispatcher Dispatcher

	mutex       sync.RWMutex
	connections map[string]*socketConn
}

func NewSocketServer(dispatcher Dispatcher) *SocketServer {
	return &SocketServer{
		dispatcher:  dispatcher,
		connections: make(map[string]*socketConn),
	}
}

func (sio *SocketServer) Start(router *gin.Engine, origins []string, verbose bool) {
	log.DEBUG = verbose
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      corsOrigin(origins),
		Credentials: true,
	})

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		conn := sio.addConnection(client)

		identity := handshakeIdentity(client)
		logger.Infof("[SOCKET] %s connected (identity %q)", conn.ID(), identity)
		sio.dispatcher.Connect(conn, identity)

		// event name = message type, first argument = payload object
		for _, messageType := range messages.AllTypes() {
			client.On(messageType, sio.handleEvent(conn, messageType))
		}

		client.On("disconnecting", func(...any) {
			sio.removeConnection(conn)
			logger.Infof("[SOCKET] %s disconnecting", conn.ID())
			sio.dispatcher.Disconnect(conn)
		})
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	logger.Infof("[SOCKET] Socket server started")
}

// Close disconnects every client and stops the server.
func (sio *SocketServer) Close() {
	if sio.Sio_server != nil {
		sio.Sio_server.Close(nil)
	}
}

// Connections reports how many sockets are attached.
func (sio *SocketServer) Connections() int {
	sio.mutex.RLock()
	defer sio.mutex.RUnlock()
	return len(sio.connections)
}

func (sio *SocketServer) handleEvent(conn *socketConn, messageType string) func(...any) {
	return func(args ...any) {
		var payload any
		if len(args) > 0 {
			payload = args[0]
		}
		msg, err := messages.FromEvent(messageType, payload)
		if err != nil {
			logger.Warningf("[SOCKET] Bad %s payload from %s: %v", messageType, conn.ID(), err)
			core.Reject(conn, "invalid_payload", fmt.Sprintf("Invalid %s payload", messageType))
			return
		}
		msg.EventFrom = namespaceOf(messageType)
		sio.dispatcher.Handle(conn, msg)
	}
}

func (sio *SocketServer) addConnection(client *socket.Socket) *socketConn {
	conn := &socketConn{client: client}
	sio.mutex.Lock()
	defer sio.mutex.Unlock()
	sio.connections[conn.ID()] = conn
	return conn
}

func (sio *SocketServer) removeConnection(conn *socketConn) {
	sio.mutex.Lock()
	defer sio.mutex.Unlock()
	delete(sio.connections, conn.ID())
}

// socketConn adapts a socket.io client to core.Conn. Emit only queues the
// packet, so Send never blocks a room.
type socketConn struct {
	client *socket.Socket
}

func (c *socketConn) ID() string { return string(c.client.Id()) }

func (c *socketConn) Send(event string, payload gin.H) error {
	return c.client.Emit(event, payload)
}

func (c *socketConn) Alive() bool { return c.client.Connected() }

func (c *socketConn) Close() { c.client.Disconnect(true) }

func handshakeIdentity(client *socket.Socket) string {
	if authData, ok := client.Handshake().Auth.(map[string]any); ok {
		if userID, ok := authData["userId"].(string); ok {
			return userID
		}
	}
	return ""
}

func corsOrigin(origins []string) any {
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		return "*"
	}
	return origins
}

func namespaceOf(messageType string) string {
	for _, t := range messages.SkribbleTypes() {
		if t == messageType {
			return messages.NamespaceSkribble
		}
	}
	if messageType == messages.CreateSkribbleRoom {
		return messages.NamespaceSkribble
	}
	for _, t := range messages.RelayTypes() {
		if t == messageType {
			return messages.NamespaceRelay
		}
	}
	return messages.NamespaceSpy
}
