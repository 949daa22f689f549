package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"menu-service/config"
	"menu-service/models"
	"menu-service/services"
)

// MenuStore is what the bot needs from the catalog store.
type MenuStore interface {
	Load(ctx context.Context) (models.Catalog, error)
	Replace(ctx context.Context, items models.Catalog) (bool, error)
}

// Bot answers menu questions in Telegram chats. Logged-in admins can also
// add, delete and toggle dishes, or reset the catalog to the seed menu.
type Bot struct {
	api      *tgbotapi.BotAPI
	store    MenuStore
	admins   *adminSessions
	adders   *adderFlows
	editMu   sync.Mutex
	newID    func() string
	throttle *services.LoginThrottle
	log      zerolog.Logger
}

func New(cfg *config.Config, store MenuStore, log zerolog.Logger) (*Bot, error) {
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("TOKEN not set")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:      api,
		store:    store,
		admins:   newAdminSessions(cfg.Telegram.AdminPasswordHash),
		adders:   newAdderFlows(),
		newID:    newItemID,
		throttle: services.NewLoginThrottle(),
		log:      log,
	}, nil
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.SetMyCommandsConfig{
		Commands: []tgbotapi.BotCommand{
			{Command: "menu", Description: "Full menu"},
			{Command: "popular", Description: "Popular dishes"},
			{Command: "item", Description: "Details of one dish: /item <id>"},
		},
	}
	_, err := b.api.Request(cfg)
	return err
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	if err := b.setBotCommands(); err != nil {
		b.log.Warn().Err(err).Msg("set bot commands")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		msg := update.Message
		reply := b.handle(ctx, msg.From.ID, msg.Text)
		if reply == "" {
			continue
		}
		b.send(msg.Chat.ID, reply)
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send")
	}
}

// handle returns the reply for one incoming message, or "" for none.
func (b *Bot) handle(ctx context.Context, userID int64, text string) string {
	cmd, arg := parseCommand(text)
	switch cmd {
	case "":
		return b.handleAddFlow(ctx, userID, text)
	case "start":
		return "Welcome! Send /menu to see what we serve today, /popular for our favourites."
	case "menu":
		items, err := b.store.Load(ctx)
		if err != nil {
			return b.failed("load menu", err)
		}
		return formatMenu("📋 Menu", items)
	case "popular":
		items, err := b.store.Load(ctx)
		if err != nil {
			return b.failed("load menu", err)
		}
		pop := items.Popular()
		if len(pop) == 0 {
			return "No popular dishes yet."
		}
		return formatMenu("⭐ Popular", pop)
	case "item":
		if arg == "" {
			return "Usage: /item <id>"
		}
		items, err := b.store.Load(ctx)
		if err != nil {
			return b.failed("load menu", err)
		}
		it, ok := items.FindByID(arg)
		if !ok {
			return fmt.Sprintf("No dish with id %q.", arg)
		}
		return formatItem(it)
	case "login":
		if wait := b.throttle.WaitSeconds(userID); wait > 0 {
			return fmt.Sprintf("⏳ Too many attempts. Try again in %d s.", wait)
		}
		switch err := b.admins.login(userID, arg); {
		case errors.Is(err, ErrAdminDisabled):
			return "Admin commands are not enabled."
		case err != nil:
			b.throttle.RecordFailed(userID)
			b.log.Warn().Int64("user_id", userID).Msg("admin login failed")
			return "🔒 Wrong password."
		}
		b.throttle.RecordSuccess(userID)
		b.log.Info().Int64("user_id", userID).Msg("admin logged in")
		return "✅ Logged in.\n" +
			"/add adds a dish step by step\n" +
			"/delete <id> removes a dish\n" +
			"/availability <id> Available|Unavailable toggles a dish\n" +
			"/reset restores the default menu\n" +
			"/logout ends the session."
	case "logout":
		b.admins.logout(userID)
		b.adders.clear(userID)
		return "Logged out."
	case "add":
		return b.startAdd(userID)
	case "cancel":
		return b.cancelAdd(userID)
	case "delete":
		return b.deleteItem(ctx, userID, arg)
	case "availability":
		return b.setAvailability(ctx, userID, arg)
	case "reset":
		if msg := b.requireAdmin(userID); msg != "" {
			return msg
		}
		seed := models.SeedCatalog()
		if _, err := b.editCatalog(ctx, func(models.Catalog) (models.Catalog, error) { return seed, nil }); err != nil {
			return b.failed("reset menu", err)
		}
		b.log.Info().Int64("user_id", userID).Int("items", len(seed)).Msg("menu reset to seed")
		return fmt.Sprintf("✅ Menu reset (%d items).", len(seed))
	}
	return "Unknown command. Try /menu."
}

func (b *Bot) failed(op string, err error) string {
	b.log.Error().Err(err).Str("op", op).Msg("bot store call")
	return "Sorry, the menu is unavailable right now. Please try again."
}
