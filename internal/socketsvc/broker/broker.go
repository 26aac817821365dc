package broker

import (
	"encoding/json"

	"github.com/sattegames/satta-services/internal/comm"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Broker bridges NATS and the websocket connections: responses go to the
// one socket named in the envelope, room broadcasts fan out to every
// socket seen acting in that room.
type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	GetRoomSockets func(string) ([]string, bool)
	StoreRoom      func(socketId, roomCode string)
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool),
	fncGetRoomSockets func(string) ([]string, bool), fncStoreRoom func(string, string)) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		GetRoomSockets: fncGetRoomSockets,
		StoreRoom:      fncStoreRoom,
	}
}

// consume message from game service
func (b *Broker) QueueSubscribe(topic, queueGroup string) (*nats.Subscription, error) {
	sub, err := b.Conn.QueueSubscribe(topic, queueGroup, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// consume message from game service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to game service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receive message from game service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case "init-response", "balance-resp", "action-error":
		b.sendMessage(message)
	case "room-state-response":
		// The creator learns the room code here; remember the
		// membership so later broadcasts reach them.
		if code := roomCodeOf(message.Data); code != "" && b.StoreRoom != nil {
			b.StoreRoom(message.SocketId, code)
		}
		b.sendMessage(message)
	case "room-state-broadcast", "game-result-broadcast":
		b.broadcastToRoom(message)
	default:
		log.Error("Unknown message")
		return
	}
}

func roomCodeOf(data []byte) string {
	var payload struct {
		Room struct {
			Code string `json:"code"`
		} `json:"room"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Errorf("Error reading room code from payload: %s", err)
		return ""
	}
	return payload.Room.Code
}

// send socket message to the web client
func (b *Broker) sendMessage(m *comm.WSMessage) {
	socketId := m.SocketId
	if conn, ok := b.GetConnection(socketId); ok {
		if err := conn.WriteJSON(m); err != nil {
			log.Errorf("Error writing to socket %s: %s", socketId, err)
		}
	}
}

// broadcastToRoom delivers a room snapshot to every member socket.
// Fire-and-forget: a socket that fails to take the write just misses this
// update.
func (b *Broker) broadcastToRoom(m *comm.WSMessage) {
	code := roomCodeOf(m.Data)
	if code == "" {
		log.Error("room broadcast without a room code, discarding")
		return
	}

	sockets, ok := b.GetRoomSockets(code)
	if !ok {
		return
	}

	for _, socketId := range sockets {
		conn, ok := b.GetConnection(socketId)
		if !ok {
			continue
		}
		if err := conn.WriteJSON(m); err != nil {
			log.Errorf("Error broadcasting to socket %s in room %s: %s", socketId, code, err)
		}
	}
}
