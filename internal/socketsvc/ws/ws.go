package ws

import (
	"encoding/json"
	"sync"

	"github.com/sattegames/satta-services/internal/comm"
	"github.com/sattegames/satta-services/internal/socketsvc/broker"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	roomMap sync.Map // to keep track of room code with socketId
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "init", "get-balance", "create-room", "get-room":
		s.forward(socketId, message)
	case "join-room", "start-game", "deal-cards", "play-card":
		// remember which room this socket acts in so broadcasts reach it
		var payload struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			log.Errorf("Error: malformed %s payload %s", message.Type, err)
			return
		}
		if payload.Code != "" {
			s.StoreRoom(socketId, payload.Code)
		}
		s.forward(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// forward stamps the socket id on the envelope and hands it to the game
// service over NATS.
func (s *Ws) forward(socketId string, msg *comm.WSMessage) {
	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	topic := "socket.service"
	if err := s.Broker.Publish(topic, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", topic, err)
		return
	}

	log.Debugf("Published %s message for socket %s to topic %s", msg.Type, socketId, topic)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) StoreRoom(socketId string, roomCode string) {
	s.roomMap.Store(socketId, roomCode)
}

func (s *Ws) GetRoom(socketId string) (string, bool) {
	room, ok := s.roomMap.Load(socketId)
	if !ok {
		return "", false
	}
	return room.(string), true
}

func (s *Ws) GetRoomSockets(roomCode string) ([]string, bool) {
	var sockets []string
	found := false

	s.roomMap.Range(func(key, value interface{}) bool {
		if value.(string) == roomCode {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

// HandleDisconnect releases everything tracked for a closed socket. The
// game service keeps its own room state; a member who drops simply misses
// broadcasts until they reconnect and re-fetch the room.
func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.roomMap.Delete(socketId)
}
