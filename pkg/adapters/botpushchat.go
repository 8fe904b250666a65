package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lionscraft/docpythia/pkg/config"
)

// BotPushChatConfig is config_json for a bot_push_chat stream.
type BotPushChatConfig struct {
	Token       string          `json:"token"`
	ChatID      int64           `json:"chat_id"`
	Mode        config.ChatAPIMode `json:"mode"`
	WebhookURL  string          `json:"webhook_url,omitempty"`
	WebhookPath string          `json:"webhook_path,omitempty"`
}

// BotPushChat adapter supports both webhook receive and long-poll pull
// modes for a bot-push chat provider. Long-poll is required for local and
// development environments that can't expose a public webhook endpoint.
type BotPushChat struct {
	tenantID string
	streamID string
	cfg      BotPushChatConfig
	bot      *tgbotapi.BotAPI
	sink     *Sink
	logger   *slog.Logger

	mu             sync.Mutex
	lastImportedID int64

	cancelPoll context.CancelFunc
	pollDone   chan struct{}
}

// NewBotPushChat constructs a BotPushChat adapter bound to one stream.
func NewBotPushChat(tenantID, streamID string, sink *Sink) *BotPushChat {
	return &BotPushChat{
		tenantID: tenantID,
		streamID: streamID,
		sink:     sink,
		logger:   slog.With("component", "adapter.bot_push_chat", "stream_id", streamID),
	}
}

// ValidateConfig reports whether config_json is well-formed.
func (a *BotPushChat) ValidateConfig(rawConfig map[string]interface{}) bool {
	cfg, err := parseBotPushChatConfig(rawConfig)
	if err != nil {
		return false
	}
	return cfg.Token != "" && cfg.ChatID != 0
}

// Initialize validates config_json, constructs the bot client, and — in
// long-poll mode — starts the background update loop. Webhook mode leaves
// delivery to the Review API's webhook route, which calls HandleUpdate.
// A stream with no mode set defaults to long-poll, since that's the only
// mode that works without a publicly reachable webhook URL.
func (a *BotPushChat) Initialize(ctx context.Context, rawConfig map[string]interface{}) error {
	cfg, err := parseBotPushChatConfig(rawConfig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if cfg.Token == "" || cfg.ChatID == 0 {
		return fmt.Errorf("%w: token and chat_id are required", ErrConfig)
	}
	if cfg.Mode == "" {
		cfg.Mode = config.ChatAPIModeLongPoll
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return fmt.Errorf("adapters: failed to construct bot client: %w", err)
	}

	a.cfg = cfg
	a.bot = bot

	if cfg.Mode == config.ChatAPIModeLongPoll {
		a.startLongPoll(ctx)
	}
	return nil
}

func (a *BotPushChat) startLongPoll(ctx context.Context) {
	pollCtx, cancel := context.WithCancel(ctx)
	a.cancelPoll = cancel
	a.pollDone = make(chan struct{})

	u := tgbotapi.NewUpdate(int(a.lastImportedID))
	u.Timeout = 30
	updates := a.bot.GetUpdatesChan(u)

	go func() {
		defer close(a.pollDone)
		for {
			select {
			case <-pollCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				a.handle(update)
			}
		}
	}()
}

// HandleUpdate is the entry point for webhook-mode delivery: the Review
// API decodes the incoming payload into a tgbotapi.Update and hands it
// here, so webhook and long-poll share the same normalization path.
func (a *BotPushChat) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	return a.ingest(ctx, update)
}

func (a *BotPushChat) handle(update tgbotapi.Update) {
	if err := a.ingest(context.Background(), update); err != nil {
		a.logger.Error("failed to ingest update", "update_id", update.UpdateID, "error", err)
	}
}

func (a *BotPushChat) ingest(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil {
		return nil
	}

	msg := NormalizedMessage{
		MessageID: strconv.Itoa(update.UpdateID),
		Timestamp: int64(update.Message.Date),
		Author:    authorName(update.Message.From),
		Content:   update.Message.Text,
		Channel:   strconv.FormatInt(update.Message.Chat.ID, 10),
		RawData:   rawJSON(update),
		MetadataJSON: map[string]interface{}{
			"message_id": update.Message.MessageID,
		},
	}

	a.mu.Lock()
	a.lastImportedID = int64(update.UpdateID)
	a.mu.Unlock()

	_, err := a.sink.IngestBatch(ctx, a.tenantID, a.streamID, []NormalizedMessage{msg},
		strconv.FormatInt(a.cfg.ChatID, 10), time.Now(), msg.MessageID, true)
	return err
}

// Run is a no-op for BotPushChat: delivery happens via the long-poll
// goroutine started in Initialize or via HandleUpdate from the webhook
// route, not via a pull cycle.
func (a *BotPushChat) Run(ctx context.Context) (int, error) {
	return 0, nil
}

// Shutdown stops the long-poll loop, if running, and waits for it to drain.
func (a *BotPushChat) Shutdown(ctx context.Context) error {
	if a.cancelPoll == nil {
		return nil
	}
	a.cancelPoll()
	if a.bot != nil {
		a.bot.StopReceivingUpdates()
	}

	select {
	case <-a.pollDone:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func authorName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return user.UserName
	}
	return user.FirstName
}

func parseBotPushChatConfig(cfg map[string]interface{}) (BotPushChatConfig, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return BotPushChatConfig{}, err
	}
	var parsed BotPushChatConfig
	if err := json.Unmarshal(data, &parsed); err != nil {
		return BotPushChatConfig{}, err
	}
	return parsed, nil
}
