package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/wordloop/internal/bot"
	"github.com/example/wordloop/internal/config"
	"github.com/example/wordloop/internal/database"
	"github.com/example/wordloop/internal/dictionary"
	"github.com/example/wordloop/internal/reminder"
	"github.com/example/wordloop/internal/review"
	"github.com/example/wordloop/internal/session"
	"github.com/example/wordloop/internal/spaced_repetition"
	"github.com/example/wordloop/internal/stats"
	"github.com/example/wordloop/internal/storage"
)

const usage = `usage: wordloop <command> [args]

commands:
  sources            list selectable word sources
  review <source>    run a review session (a word list, "history" or "favorite")
  stats              print saved queues and word records
  favorite <word>    add or remove a favorite
  remind             send reminders for due words until interrupted`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	intervals, err := config.LoadIntervals(cfg.IntervalsPath())
	if err != nil {
		// a broken interval table is never fatal
		log.Printf("Warning: %v, using default intervals", err)
	}

	store, err := openStore(cfg, intervals.FullLevel())
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	// Создаем контекст, отменяемый по сигналу
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cmd := os.Args[1]; cmd {
	case "sources":
		err = listSources(ctx, cfg, store)
	case "review":
		if len(os.Args) < 3 {
			err = fmt.Errorf("review needs a source")
			break
		}
		err = runReview(ctx, cfg, store, intervals, os.Args[2])
	case "stats":
		err = printStats(ctx, store)
	case "favorite":
		if len(os.Args) < 3 {
			err = fmt.Errorf("favorite needs a word")
			break
		}
		err = toggleFavorite(ctx, store, os.Args[2])
	case "remind":
		err = runReminder(ctx, cfg, store)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Printf("Error: %v", err)
		store.Close()
		os.Exit(1)
	}
}

func openStore(cfg *config.Config, fullLevel int) (storage.Store, error) {
	switch cfg.StoreBackend {
	case "json":
		return storage.NewFileStore(cfg.DataDir, fullLevel)
	case "postgres":
		db, err := database.Connect(database.Options{Driver: "postgres", URL: cfg.DatabaseURL})
		if err != nil {
			return nil, err
		}
		return database.NewStateRepository(db, fullLevel), nil
	default:
		db, err := database.Connect(database.Options{Driver: "sqlite3", DataDir: cfg.DataDir})
		if err != nil {
			return nil, err
		}
		return database.NewStateRepository(db, fullLevel), nil
	}
}

func listSources(ctx context.Context, cfg *config.Config, store storage.Store) error {
	state, err := store.Load(ctx)
	if err != nil {
		return err
	}
	queued := 0
	for _, q := range state.Queues {
		queued += len(q)
	}
	sources, err := dictionary.NewLoader(cfg.DictsDir).Sources(queued > 0, len(state.Favorites) > 0)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Printf("No word lists found, put them in %s\n", cfg.DictsDir)
		return nil
	}
	for _, s := range sources {
		fmt.Println(s)
	}
	return nil
}

func runReview(ctx context.Context, cfg *config.Config, store storage.Store, intervals spaced_repetition.IntervalTable, source string) error {
	favorites := session.NewFavorites()

	var reviewer session.Reviewer
	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken, cfg.TelegramChatID, favorites)
		if err != nil {
			return err
		}
		go func() {
			if err := b.Start(ctx); err != nil && err != context.Canceled {
				log.Printf("Bot error: %v", err)
			}
		}()
		reviewer = b
	} else {
		term := review.NewTerminal(os.Stdin, os.Stdout, favorites)
		defer term.Close()
		reviewer = term
	}

	runner := session.NewRunner(session.Options{
		Store:         store,
		Reviewer:      reviewer,
		WordLists:     dictionary.NewLoader(cfg.DictsDir),
		Intervals:     intervals,
		Favorites:     favorites,
		AutosaveEvery: cfg.AutosaveEvery,
		Tick:          cfg.PollTick,
	})

	res, err := runner.Run(ctx, source, session.NewState())
	if err != nil {
		var notFound *dictionary.SourceNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("%v, put word lists in %s and retry", err, cfg.DictsDir)
		}
		return err
	}
	fmt.Println(res.Message())
	return nil
}

func printStats(ctx context.Context, store storage.Store) error {
	state, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if err := stats.WriteQueues(os.Stdout, state); err != nil {
		return err
	}
	fmt.Println()
	return stats.WriteRecords(os.Stdout, state)
}

func toggleFavorite(ctx context.Context, store storage.Store, word string) error {
	state, err := store.Load(ctx)
	if err != nil {
		return err
	}
	favorites := session.NewFavorites(state.Favorites...)
	if favorites.Toggle(word) {
		log.Printf("Collect %s", word)
	} else {
		log.Printf("Uncollect %s", word)
	}
	state.Favorites = favorites.List()
	return store.Save(ctx, state)
}

type logNotifier struct{}

func (logNotifier) SendReminders(count int) error {
	log.Printf("%d words are due for review", count)
	return nil
}

func runReminder(ctx context.Context, cfg *config.Config, store storage.Store) error {
	var notifier reminder.Notifier = logNotifier{}
	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken, cfg.TelegramChatID, nil)
		if err != nil {
			return err
		}
		notifier = b
	}

	r := reminder.New(store, notifier, reminder.Config{
		EveryMinutes: cfg.RemindEvery,
		StartHour:    cfg.NotificationStartHour,
		EndHour:      cfg.NotificationEndHour,
	})
	if err := r.Start(); err != nil {
		return err
	}
	log.Println("Reminder started. Press Ctrl+C to stop.")
	<-ctx.Done()
	r.Stop()
	log.Println("Reminder stopped")
	return nil
}
