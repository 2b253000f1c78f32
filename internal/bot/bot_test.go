package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/wordloop/internal/session"
	"github.com/example/wordloop/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const testChat = 42

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// callback builds a button press on the keyboard of message messageID
func callback(chatID int64, messageID int, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

// reviewAsync starts a review of word and waits until its message is sent.
// Messages are numbered from 1 in send order.
func reviewAsync(ctx context.Context, t *testing.T, b *Bot, s *fakeSender, word string) <-chan session.Outcome {
	t.Helper()
	before := s.sentCount()
	out := make(chan session.Outcome, 1)
	go func() {
		o, err := b.Review(ctx, word, models.DisplayStats{Level: 2, Count: 4, Ratio: 0.75})
		if err != nil {
			t.Errorf("Review: %v", err)
		}
		out <- o
	}()
	deadline := time.Now().Add(2 * time.Second)
	for s.sentCount() == before {
		if time.Now().After(deadline) {
			t.Fatal("word was never sent")
		}
		time.Sleep(time.Millisecond)
	}
	return out
}

func TestReviewAnswers(t *testing.T) {
	tests := []struct {
		data string
		want session.Outcome
	}{
		{callbackRemembered, session.Correct},
		{callbackForgot, session.Incorrect},
		{callbackStop, session.Cancelled},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			s := &fakeSender{}
			b := newBot(s, testChat, nil)
			out := reviewAsync(context.Background(), t, b, s, "cat")
			b.handleUpdate(callback(testChat, 1, tt.data))

			if got := <-out; got != tt.want {
				t.Errorf("outcome = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReviewMessageShowsStats(t *testing.T) {
	s := &fakeSender{}
	b := newBot(s, testChat, nil)
	out := reviewAsync(context.Background(), t, b, s, "cat")
	b.handleUpdate(callback(testChat, 1, callbackRemembered))
	<-out

	msg, ok := s.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want MessageConfig", s.sent[0])
	}
	if !strings.Contains(msg.Text, "Level: 2  Reviews: 4  Correct: 75%") || !strings.HasSuffix(msg.Text, "cat") {
		t.Errorf("text = %q", msg.Text)
	}
}

func TestFavoriteToggleKeepsWaiting(t *testing.T) {
	s := &fakeSender{}
	favs := session.NewFavorites()
	b := newBot(s, testChat, favs)
	out := reviewAsync(context.Background(), t, b, s, "cat")

	b.handleUpdate(callback(testChat, 1, callbackFavorite))
	deadline := time.Now().Add(2 * time.Second)
	for !favs.Contains("cat") {
		if time.Now().After(deadline) {
			t.Fatal("favorite was never toggled")
		}
		time.Sleep(time.Millisecond)
	}
	select {
	case o := <-out:
		t.Fatalf("review ended with %v after a favorite toggle", o)
	default:
	}

	b.handleUpdate(callback(testChat, 1, callbackForgot))
	if got := <-out; got != session.Incorrect {
		t.Errorf("outcome = %v, want forgot", got)
	}
}

func TestCallbacksFromOtherChatsIgnored(t *testing.T) {
	s := &fakeSender{}
	b := newBot(s, testChat, nil)
	ctx, cancel := context.WithCancel(context.Background())
	out := reviewAsync(ctx, t, b, s, "cat")

	b.handleUpdate(callback(7, 1, callbackRemembered))
	cancel()
	if got := <-out; got != session.Cancelled {
		t.Errorf("outcome = %v, want cancelled", got)
	}
}

func TestLateTapOnEarlierWordIgnored(t *testing.T) {
	s := &fakeSender{}
	b := newBot(s, testChat, nil)

	first := reviewAsync(context.Background(), t, b, s, "cat")
	b.handleUpdate(callback(testChat, 1, callbackRemembered))
	if got := <-first; got != session.Correct {
		t.Fatalf("first outcome = %v, want remembered", got)
	}

	second := reviewAsync(context.Background(), t, b, s, "dog")
	b.handleUpdate(callback(testChat, 1, callbackForgot))
	deadline := time.Now().Add(2 * time.Second)
	for len(b.answers) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("stale answer was never consumed")
		}
		time.Sleep(time.Millisecond)
	}
	select {
	case o := <-second:
		t.Fatalf("dog answered %v by a tap on the cat message", o)
	default:
	}

	b.handleUpdate(callback(testChat, 2, callbackRemembered))
	if got := <-second; got != session.Correct {
		t.Errorf("second outcome = %v, want remembered", got)
	}
}

func TestStopCommandEndsCurrentReview(t *testing.T) {
	s := &fakeSender{}
	b := newBot(s, testChat, nil)
	out := reviewAsync(context.Background(), t, b, s, "cat")

	b.handleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     "/stop",
		Chat:     &tgbotapi.Chat{ID: testChat},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 5}},
	}})
	if got := <-out; got != session.Cancelled {
		t.Errorf("outcome = %v, want cancelled", got)
	}
}

func TestReviewButtons(t *testing.T) {
	if got := ReviewButtons(false)[1][0].Text; got != "☆ Favorite" {
		t.Errorf("favorite label = %q", got)
	}
	if got := ReviewButtons(true)[1][0].Text; got != "★ Unfavorite" {
		t.Errorf("unfavorite label = %q", got)
	}
	kb := createKeyboard(ReviewButtons(false))
	if len(kb.InlineKeyboard) != 2 || len(kb.InlineKeyboard[0]) != 2 {
		t.Errorf("keyboard shape = %v", kb.InlineKeyboard)
	}
}

func TestSendReminders(t *testing.T) {
	s := &fakeSender{}
	b := newBot(s, testChat, nil)
	if err := b.SendReminders(1); err != nil {
		t.Fatalf("SendReminders: %v", err)
	}
	msg := s.sent[0].(tgbotapi.MessageConfig)
	if msg.Text != "You have 1 word to review!" || msg.ChatID != testChat {
		t.Errorf("message = %+v", msg)
	}
}
