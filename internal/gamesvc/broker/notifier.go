package broker

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/sattegames/satta-services/internal/gamesvc/engine"
)

// TelegramNotifier announces settled games to the operator chats.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(botToken string, chatIDs []int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %v", err)
	}

	return &TelegramNotifier{
		bot:     bot,
		chatIDs: chatIDs,
	}, nil
}

// SendNotification sends a message to all configured chat IDs
func (tn *TelegramNotifier) SendNotification(message string) {
	if tn == nil || tn.bot == nil {
		return
	}

	for _, chatID := range tn.chatIDs {
		msg := tgbotapi.NewMessage(chatID, message)
		msg.ParseMode = "Markdown"
		if _, err := tn.bot.Send(msg); err != nil {
			log.Errorf("failed to send telegram notification to chat %d: %v", chatID, err)
		}
	}
}

// NotifyGameFinished posts the room code, pot and payouts of a settled game.
func (tn *TelegramNotifier) NotifyGameFinished(snap engine.Snapshot, scores map[int64]int64) {
	if tn == nil || tn.bot == nil {
		return
	}

	var pot int64
	for _, s := range snap.Seats {
		pot += s.Stake
	}

	message := fmt.Sprintf(
		"🎴 *GAME FINISHED*\n\n"+
			"🏠 *Room:* %s\n"+
			"💰 *Pot:* %d coins\n"+
			"👥 *Players:* %d\n"+
			"⏰ *Time:* %s\n",
		snap.Code,
		pot,
		len(snap.Seats),
		time.Now().Format("15:04:05"),
	)
	for _, s := range snap.Seats {
		message += fmt.Sprintf("\n• %s — %d coins", s.Name, scores[s.UserID])
	}

	tn.SendNotification(message)
}
