package broker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/sattegames/satta-services/internal/comm"
	"github.com/sattegames/satta-services/internal/gamesvc/engine"
	"github.com/sattegames/satta-services/internal/gamesvc/models"
	"github.com/sattegames/satta-services/internal/gamesvc/service"
	"github.com/sattegames/satta-services/internal/gamesvc/timer"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const defaultTurnSeconds = 30

// Broker is the broadcast adapter: it translates inbound envelopes into
// registry calls and registry state changes into outbound full-room
// snapshots. Delivery is fire-and-forget over NATS; there is no ack,
// ordering or retransmission, and a malformed inbound payload is logged
// and dropped, never fatal.
type Broker struct {
	Conn        *nats.Conn
	UserService *service.UserService
	Wallet      service.Wallet
	Rooms       *service.RoomService
	Timers      *timer.Manager
	Notifier    *TelegramNotifier

	turnDuration time.Duration
}

func NewBroker(nc *nats.Conn, userService *service.UserService,
	wallet service.Wallet, rooms *service.RoomService,
	timers *timer.Manager, notifier *TelegramNotifier) *Broker {
	turnSeconds := defaultTurnSeconds
	if v := os.Getenv("TURN_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			turnSeconds = n
		}
	}

	return &Broker{
		Conn:         nc,
		UserService:  userService,
		Wallet:       wallet,
		Rooms:        rooms,
		Timers:       timers,
		Notifier:     notifier,
		turnDuration: time.Duration(turnSeconds) * time.Second,
	}
}

// handles message coming from socket
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	switch msg.Type {
	case "init":
		userInfo := models.User{}
		err := json.Unmarshal(msg.Data, &userInfo)
		if err != nil {
			log.Errorf("Error %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := b.UserService.GetOrCreateUser(ctx, userInfo)
		if err != nil {
			log.Errorf("Error [UserService.GetOrCreateUser] %s", err)
			return
		}

		balance, err := b.Wallet.GetBalance(ctx, user.UserId)
		if err != nil {
			log.Errorf("Error [Wallet.GetBalance] %s", err)
			return
		}

		playerData := comm.PlayerData{
			Name:    user.Name,
			Balance: balance.StringFixed(2),
			UserId:  user.UserId,
		}

		b.PublishInitResponse(playerData, msg.SocketId)
	case "get-balance":
		var request struct {
			UserID int64 `json:"user_id"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		balance, err := b.Wallet.GetBalance(ctx, request.UserID)
		if err != nil {
			log.Errorf("Error getBalance %s", err)
			return
		}

		playerData := comm.PlayerData{
			Balance: balance.StringFixed(2),
		}

		b.PublishBalance(playerData, msg.SocketId)
	case "create-room":
		var request struct {
			UserID   int64  `json:"user_id"`
			Username string `json:"username"`
			EntryFee int64  `json:"entry_fee"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding create-room: %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		snap, err := b.Rooms.CreateRoom(ctx, request.UserID, request.Username, request.EntryFee)
		if err != nil {
			b.PublishActionError("create-room", "", err, msg.SocketId)
			return
		}

		b.PublishRoomState(snap, msg.SocketId)
	case "join-room":
		var request struct {
			UserID   int64  `json:"user_id"`
			Username string `json:"username"`
			Code     string `json:"code"`
			Stake    int64  `json:"stake"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding join-room: %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		snap, err := b.Rooms.JoinRoom(ctx, request.Code, request.UserID, request.Username, request.Stake)
		if err != nil {
			b.PublishActionError("join-room", request.Code, err, msg.SocketId)
			return
		}

		b.PublishRoomBroadcast(snap)
	case "start-game":
		var request struct {
			UserID int64  `json:"user_id"`
			Code   string `json:"code"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding start-game: %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		snap, err := b.Rooms.StartGame(ctx, request.Code, request.UserID)
		if err != nil {
			b.PublishActionError("start-game", request.Code, err, msg.SocketId)
			return
		}

		b.PublishRoomBroadcast(snap)
	case "deal-cards":
		var request struct {
			UserID int64  `json:"user_id"`
			Code   string `json:"code"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding deal-cards: %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		snap, err := b.Rooms.DealCards(ctx, request.Code, request.UserID)
		if err != nil {
			b.PublishActionError("deal-cards", request.Code, err, msg.SocketId)
			return
		}

		b.Timers.Start(request.Code, b.turnDuration, b.turnTimeoutFunc(request.Code))
		b.PublishRoomBroadcast(snap)
	case "play-card":
		var request struct {
			UserID    int64  `json:"user_id"`
			Code      string `json:"code"`
			CardIndex int    `json:"card_index"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding play-card: %s", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		snap, scores, err := b.Rooms.PlayCard(ctx, request.Code, request.UserID, request.CardIndex)
		if err != nil {
			b.PublishActionError("play-card", request.Code, err, msg.SocketId)
			return
		}

		if scores != nil {
			b.Timers.Cancel(request.Code)
			b.PublishGameResult(snap, scores)
			b.notifyGameFinished(snap, scores)
			return
		}

		b.Timers.Start(request.Code, b.turnDuration, b.turnTimeoutFunc(request.Code))
		b.PublishRoomBroadcast(snap)
	case "get-room":
		var request struct {
			Code string `json:"code"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding get-room: %s", err)
			return
		}

		snap, err := b.Rooms.Snapshot(request.Code)
		if err != nil {
			b.PublishActionError("get-room", request.Code, err, msg.SocketId)
			return
		}

		b.PublishRoomState(snap, msg.SocketId)
	case "room-snapshot":
		// A full room snapshot from a peer coordinator. Applied by
		// wholesale replacement, last writer wins; anything malformed
		// is dropped here.
		snap := engine.Snapshot{}
		if err := json.Unmarshal(msg.Data, &snap); err != nil {
			log.Errorf("Error decoding room-snapshot, discarding: %s", err)
			return
		}

		if err := b.Rooms.ApplySnapshot(snap); err != nil {
			log.Errorf("Error applying room-snapshot for %q, discarding: %s", snap.Code, err)
			return
		}
	default:
		log.Error("Unknown message")
		return
	}
}

// turnTimeoutFunc delivers a turn-clock expiry to the registry as an
// ordinary event and rearms the clock for the next seat.
func (b *Broker) turnTimeoutFunc(code string) func() {
	return func() {
		snap, err := b.Rooms.TurnTimeout(code)
		if err != nil {
			if !errors.Is(err, engine.ErrWrongState) && !errors.Is(err, service.ErrRoomNotFound) {
				log.Errorf("Error [Rooms.TurnTimeout] for room %s: %s", code, err)
			}
			return
		}

		b.Timers.Start(code, b.turnDuration, b.turnTimeoutFunc(code))
		b.PublishRoomBroadcast(snap)
	}
}

func (b *Broker) notifyGameFinished(snap engine.Snapshot, scores map[int64]int64) {
	if b.Notifier == nil {
		return
	}
	b.Notifier.NotifyGameFinished(snap, scores)
}

func (b *Broker) PublishBalance(p comm.PlayerData, socketId string) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Errorf("publishBalance unable to marshal playerData")
		return
	}

	msg := &comm.WSMessage{
		Type:     "balance-resp",
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	topic := "game.service"
	b.Publish(topic, payload)
}

func (b *Broker) PublishInitResponse(p comm.PlayerData, socketId string) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Errorf("unable to marshal playerData %d %s", p.UserId, socketId)
		return
	}

	msg := &comm.WSMessage{
		Type:     "init-response",
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	topic := "game.service"
	b.Publish(topic, payload)
}

// PublishRoomState sends the full room snapshot to a single socket.
func (b *Broker) PublishRoomState(snap engine.Snapshot, socketId string) {
	data, err := json.Marshal(comm.RoomData{Room: snap, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		log.Errorf("error [PublishRoomState] unable to marshal room %s", snap.Code)
		return
	}

	msg := &comm.WSMessage{
		Type:     "room-state-response",
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	topic := "game.service"
	b.Publish(topic, payload)
}

// PublishRoomBroadcast fans the full room snapshot out to every member of
// the room. Applied by receivers as wholesale replacement.
func (b *Broker) PublishRoomBroadcast(snap engine.Snapshot) {
	data, err := json.Marshal(comm.RoomData{Room: snap, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		log.Errorf("error [PublishRoomBroadcast] unable to marshal room %s", snap.Code)
		return
	}

	msg := &comm.WSMessage{
		Type: "room-state-broadcast",
		Data: data,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	topic := "game.service"
	b.Publish(topic, payload)
}

// PublishGameResult broadcasts the terminal snapshot with settled scores.
func (b *Broker) PublishGameResult(snap engine.Snapshot, scores map[int64]int64) {
	result := comm.GameResult{
		Room:    snap,
		Scores:  scores,
		Payouts: make(map[int64]string, len(scores)),
	}
	for userID, score := range scores {
		result.Payouts[userID] = strconv.FormatInt(score, 10)
	}

	data, err := json.Marshal(result)
	if err != nil {
		log.Errorf("error [PublishGameResult] unable to marshal room %s", snap.Code)
		return
	}

	msg := &comm.WSMessage{
		Type: "game-result-broadcast",
		Data: data,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	topic := "game.service"
	b.Publish(topic, payload)
}

// PublishActionError reports a rejected action back to the caller's socket.
func (b *Broker) PublishActionError(action, code string, actionErr error, socketId string) {
	log.Infof("action %s rejected for room %q: %s", action, code, actionErr)

	data, err := json.Marshal(comm.ActionError{
		Action:    action,
		Room:      code,
		Message:   actionErr.Error(),
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		log.Errorf("error [PublishActionError] unable to marshal action error")
		return
	}

	msg := &comm.WSMessage{
		Type:     "action-error",
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	topic := "game.service"
	b.Publish(topic, payload)
}

// consume message from signal (Queue)
func (b *Broker) QueueSubscribSignal(topic, queueGroup string) (*nats.Subscription, error) {
	sub, err := b.Conn.QueueSubscribe(topic, queueGroup, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// consume message from socket service
func (b *Broker) SubscribSocketService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// fire-and-forget publish toward the socket service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
