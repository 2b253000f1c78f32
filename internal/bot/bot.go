// Package bot hosts review sessions in a Telegram chat.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/example/wordloop/internal/review"
	"github.com/example/wordloop/internal/session"
	"github.com/example/wordloop/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data of the review keyboard
const (
	callbackRemembered = "answer_remembered"
	callbackForgot     = "answer_forgot"
	callbackFavorite   = "toggle_favorite"
	callbackStop       = "stop_session"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// ReviewButtons returns the keyboard shown under a word
func ReviewButtons(favorite bool) [][]MenuButton {
	favText := "☆ Favorite"
	if favorite {
		favText = "★ Unfavorite"
	}
	return [][]MenuButton{
		{
			{Text: "✅ Remembered", CallbackData: callbackRemembered},
			{Text: "❌ Forgot", CallbackData: callbackForgot},
		},
		{
			{Text: favText, CallbackData: callbackFavorite},
			{Text: "⏹ Stop", CallbackData: callbackStop},
		},
	}
}

// answer is a button press or command together with the message it belongs to.
// A zero messageID applies to whatever word is on screen.
type answer struct {
	data      string
	messageID int
}

// sender is the part of the Telegram API the bot talks through
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot is a Reviewer and reminder Notifier bound to one chat
type Bot struct {
	api       *tgbotapi.BotAPI
	sender    sender
	chatID    int64
	favorites *session.Favorites
	answers   chan answer
}

// New connects to Telegram with token and serves chatID
func New(token string, chatID int64, favorites *session.Favorites) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID environment variable is not set")
	}
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %v", err)
	}
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	b := newBot(botAPI, chatID, favorites)
	b.api = botAPI
	return b, nil
}

func newBot(s sender, chatID int64, favorites *session.Favorites) *Bot {
	if favorites == nil {
		favorites = session.NewFavorites()
	}
	return &Bot{
		sender:    s,
		chatID:    chatID,
		favorites: favorites,
		answers:   make(chan answer, 1),
	}
}

// Start receives updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return fmt.Errorf("bot is not connected")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		callback := update.CallbackQuery
		if callback.Message == nil || callback.Message.Chat == nil || callback.Message.Chat.ID != b.chatID {
			return
		}
		if _, err := b.sender.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
			log.Printf("Error answering callback: %v", err)
		}
		b.deliver(answer{data: callback.Data, messageID: callback.Message.MessageID})
	case update.Message != nil && update.Message.Chat != nil && update.Message.Chat.ID == b.chatID:
		if update.Message.IsCommand() && update.Message.Command() == "stop" {
			b.deliver(answer{data: callbackStop})
		}
	}
}

// deliver hands an answer to the pending review, dropping it when none waits
func (b *Bot) deliver(a answer) {
	select {
	case b.answers <- a:
	default:
		log.Printf("Dropping answer %q: no word is waiting", a.data)
	}
}

// Review sends the word with its keyboard and waits for an answer
func (b *Bot) Review(ctx context.Context, itemID string, stats models.DisplayStats) (session.Outcome, error) {
	// stale answers from a finished review must not leak into this one
	select {
	case <-b.answers:
	default:
	}

	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("%s\n\n%s", review.Title(stats), itemID))
	msg.ReplyMarkup = createKeyboard(ReviewButtons(b.favorites.Contains(itemID)))
	sent, err := b.sender.Send(msg)
	if err != nil {
		return session.Cancelled, fmt.Errorf("failed to send word: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return session.Cancelled, nil
		case a := <-b.answers:
			if a.messageID != 0 && a.messageID != sent.MessageID {
				log.Printf("Ignoring %q from message %d, waiting on message %d", a.data, a.messageID, sent.MessageID)
				continue
			}
			switch a.data {
			case callbackRemembered:
				b.closeReview(sent, itemID, "✅ Remembered")
				return session.Correct, nil
			case callbackForgot:
				b.closeReview(sent, itemID, "❌ Forgot")
				return session.Incorrect, nil
			case callbackStop:
				b.closeReview(sent, itemID, "⏹ Session stopped, state saved")
				return session.Cancelled, nil
			case callbackFavorite:
				fav := b.favorites.Toggle(itemID)
				edit := tgbotapi.NewEditMessageReplyMarkup(b.chatID, sent.MessageID, createKeyboard(ReviewButtons(fav)))
				if _, err := b.sender.Request(edit); err != nil {
					log.Printf("Error updating keyboard: %v", err)
				}
			default:
				log.Printf("Unknown callback %q", a.data)
			}
		}
	}
}

func (b *Bot) closeReview(sent tgbotapi.Message, itemID, verdict string) {
	edit := tgbotapi.NewEditMessageText(b.chatID, sent.MessageID, strings.Join([]string{itemID, verdict}, "\n"))
	if _, err := b.sender.Request(edit); err != nil {
		log.Printf("Error closing review of %s: %v", itemID, err)
	}
}

// SendReminders implements the reminder.Notifier interface
func (b *Bot) SendReminders(count int) error {
	wordForm := "words"
	if count == 1 {
		wordForm = "word"
	}
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("You have %d %s to review!", count, wordForm))
	if _, err := b.sender.Send(msg); err != nil {
		log.Printf("Error sending reminder to chat %d: %v", b.chatID, err)
		return err
	}
	log.Printf("Successfully sent reminder to chat %d for %d words", b.chatID, count)
	return nil
}
