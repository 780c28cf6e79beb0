package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ultimate-gen/internal/gemini"
	"ultimate-gen/internal/mediagroup"
	"ultimate-gen/internal/session"
	"ultimate-gen/internal/strategy"
	"ultimate-gen/internal/studio"
	"ultimate-gen/internal/telegram"
)

// Messenger is the subset of *telegram.Client the handlers use.
type Messenger interface {
	SendTyping(chatID int64)
	SendText(chatID int64, text string) error
	SendPhotoURLs(chatID int64, urls []string, caption string) error
	SendTextWithKeyboard(chatID int64, text string, kb telegram.Keyboard) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb telegram.Keyboard) error
	EditText(chatID int64, messageID int, text string) error
	AnswerCallback(callbackID string, text string, alert bool) error
	DownloadFileBase64(ctx context.Context, fileID string) (string, string, error)
}

// Generator is the subset of *studio.Studio the handlers use.
type Generator interface {
	Generate(ctx context.Context, req studio.Request) (studio.Result, error)
	Catalog() strategy.Catalog
	MaxVariations() int
}

type Options struct {
	Telegram Messenger
	Studio   Generator
	Sessions *session.Store
	Logger   *slog.Logger
}

type Handler struct {
	tg         Messenger
	studio     Generator
	sessions   *session.Store
	logger     *slog.Logger
	aggregator *mediagroup.Aggregator
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore(session.Options{})
	}

	return &Handler{
		tg:       opts.Telegram,
		studio:   opts.Studio,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID
	username := msg.From.UserName

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, username, msg)
	}

	if len(msg.Photo) > 0 {
		return h.handlePhoto(ctx, chatID, userID, username, msg)
	}

	if msg.Text != "" {
		return h.generate(ctx, chatID, userID, username, msg.Text, "")
	}

	return nil
}

// HandleMediaGroup uses the first photo of the album as the reference image.
func (h *Handler) HandleMediaGroup(ctx context.Context, group mediagroup.Group) {
	if len(group.FileIDs) == 0 {
		return
	}
	if len(group.FileIDs) > 1 {
		h.logger.InfoContext(ctx, "album received, using first photo as reference",
			"chat_id", group.ChatID, "photos", len(group.FileIDs))
	}
	if err := h.generate(ctx, group.ChatID, group.UserID, group.Username, group.Caption, group.FileIDs[0]); err != nil {
		h.logger.Error("media group processing failed", "err", err)
	}
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, userID int64, username string, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return h.tg.SendText(chatID,
			"🌌 Ultimate Gen\n\n"+
				"Describe a wallpaper in any language and I will create it.\n"+
				"Send a photo with a caption to rework it.\n\n"+
				"Commands:\n"+
				"/wallpaper <description> - create a wallpaper\n"+
				"/styles - list the style pack\n"+
				"/settings - aspect ratio, mode and variations\n"+
				"/help - usage",
		)
	case "help":
		return h.tg.SendText(chatID, h.helpText())
	case "styles":
		labels := h.studio.Catalog().Labels()
		return h.tg.SendText(chatID, fmt.Sprintf("🖼 Style pack (%d images per request):\n• %s\n\nUse \"styles <description>\" or pick Styles in /settings.",
			len(labels), strings.Join(labels, "\n• ")))
	case "settings":
		return h.openSettings(chatID, userID, username)
	case "wallpaper":
		return h.generate(ctx, chatID, userID, username, msg.CommandArguments(), "")
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Try /help.")
	}
}

func (h *Handler) helpText() string {
	return "ℹ️ Help\n\n" +
		"Send any description, e.g. \"a lighthouse in a storm\".\n" +
		"Start the message with options to override your settings once:\n" +
		"  16:9 9:16 1:1 4:3 3:4 - aspect ratio\n" +
		"  creative | styles - mode\n" +
		fmt.Sprintf("  x2 ... x%d - number of creative variations\n", h.studio.MaxVariations()) +
		"Example: 16:9 x3 a red fox in the snow\n\n" +
		"Photos: send one with a caption to rework it. In an album the first photo is used."
}

func (h *Handler) handlePhoto(ctx context.Context, chatID int64, userID int64, username string, msg *tgbotapi.Message) error {
	photo := msg.Photo[len(msg.Photo)-1]
	fileID := photo.FileID

	if msg.MediaGroupID != "" && h.aggregator != nil {
		h.aggregator.Add(mediagroup.Item{
			ChatID:       chatID,
			UserID:       userID,
			Username:     username,
			MediaGroupID: msg.MediaGroupID,
			MessageID:    msg.MessageID,
			Caption:      msg.Caption,
			FileID:       fileID,
		})
		return nil
	}

	return h.generate(ctx, chatID, userID, username, msg.Caption, fileID)
}

func (h *Handler) generate(ctx context.Context, chatID int64, userID int64, username string, text string, fileID string) error {
	d, subject := parseDirectives(text)
	st := d.apply(h.sessions.Get(userID, username))

	if subject == "" && fileID == "" {
		return h.tg.SendText(chatID, "✏️ Describe the wallpaper you want, e.g. /wallpaper a lighthouse in a storm")
	}

	h.tg.SendTyping(chatID)

	var ref *gemini.ImageInput
	if fileID != "" {
		data, mimeType, err := h.tg.DownloadFileBase64(ctx, fileID)
		if err != nil {
			h.logger.Error("photo download failed", "err", err)
			return h.tg.SendText(chatID, "❌ Could not download your photo. Please send it again.")
		}
		ref = &gemini.ImageInput{DataBase64: data, MimeType: mimeType}
	}

	_ = h.tg.SendText(chatID, h.progressText(st))

	res, err := h.studio.Generate(ctx, studio.Request{
		Subject:     subject,
		Reference:   ref,
		AspectRatio: st.AspectRatio,
		Mode:        st.Mode,
		Count:       st.Count,
	})
	if err != nil {
		h.logger.Error("wallpaper generation failed", "chat_id", chatID, "mode", st.Mode, "err", err)
		return h.tg.SendText(chatID, h.failureText(err))
	}

	return h.tg.SendPhotoURLs(chatID, res.Images, res.Text)
}

func (h *Handler) progressText(st session.Settings) string {
	if st.Mode == studio.ModeStyles {
		return fmt.Sprintf("🎨 Creating %d styled wallpapers (%s)...", h.studio.Catalog().Len(), st.AspectRatio)
	}
	if st.Count > 1 {
		return fmt.Sprintf("🎨 Creating %d variations (%s)...", st.Count, st.AspectRatio)
	}
	return fmt.Sprintf("🎨 Creating your wallpaper (%s)...", st.AspectRatio)
}

func (h *Handler) failureText(err error) string {
	switch {
	case errors.Is(err, studio.ErrInvalidRequest):
		return fmt.Sprintf("❌ Variations must be between 1 and %d. See /help.", h.studio.MaxVariations())
	case errors.Is(err, studio.ErrMissingCredential):
		return "❌ Generation is not configured right now."
	default:
		return "❌ Something went wrong while generating. Please try again."
	}
}
