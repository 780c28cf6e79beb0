package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ultimate-gen/internal/session"
	"ultimate-gen/internal/studio"
	"ultimate-gen/internal/telegram"
)

const settingsCallbackPrefix = "st"

var countChoices = []int{1, 2, 3, 4, 6, 8}

func (h *Handler) openSettings(chatID int64, userID int64, username string) error {
	st := h.sessions.Get(userID, username)
	msgID, err := h.tg.SendTextWithKeyboard(chatID, h.settingsText(st), h.settingsKeyboard(userID, st))
	if err != nil {
		return err
	}
	h.sessions.Update(userID, username, func(st *session.Settings) { st.MenuMessageID = msgID })
	return nil
}

// handleCallback serves "st:<owner>:<action>[:<arg>]" buttons. The arg may itself contain ':'.
func (h *Handler) handleCallback(_ context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.From == nil {
		return nil
	}
	parts := strings.SplitN(strings.TrimSpace(q.Data), ":", 4)
	if len(parts) < 3 || parts[0] != settingsCallbackPrefix {
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}
	if ownerID != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This menu belongs to someone else.", true)
		return nil
	}

	action := parts[2]
	arg := ""
	if len(parts) == 4 {
		arg = parts[3]
	}
	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID

	if action == "close" {
		_ = h.tg.AnswerCallback(q.ID, "Saved", false)
		st := h.sessions.Update(ownerID, q.From.UserName, func(st *session.Settings) { st.MenuMessageID = 0 })
		return h.tg.EditText(chatID, msgID, "✅ Settings saved.\n\n"+h.settingsSummary(st))
	}

	notice := "OK"
	st := h.sessions.Update(ownerID, q.From.UserName, func(st *session.Settings) {
		st.MenuMessageID = msgID
		switch action {
		case "ratio":
			if r, err := studio.ParseAspectRatio(arg); err == nil {
				st.AspectRatio = r
			}
		case "mode":
			if m, err := studio.ParseMode(arg); err == nil {
				st.Mode = m
			}
		case "count":
			if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= h.studio.MaxVariations() {
				st.Count = n
				st.Mode = studio.ModeCreative
			}
		default:
			notice = ""
		}
	})
	if action == "reset" {
		st = h.sessions.Reset(ownerID)
		notice = "Defaults restored"
	}
	if notice == "" {
		_ = h.tg.AnswerCallback(q.ID, "", false)
		return nil
	}
	_ = h.tg.AnswerCallback(q.ID, notice, false)

	text := h.settingsText(st)
	kb := h.settingsKeyboard(ownerID, st)
	if err := h.tg.EditTextWithKeyboard(chatID, msgID, text, kb); err == nil {
		return nil
	}
	newID, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	if err != nil {
		return err
	}
	h.sessions.Update(ownerID, q.From.UserName, func(st *session.Settings) { st.MenuMessageID = newID })
	return nil
}

func (h *Handler) settingsSummary(st session.Settings) string {
	if st.Mode == studio.ModeStyles {
		return fmt.Sprintf("Aspect ratio: %s\nMode: styles (%d images, one per style)", st.AspectRatio, h.studio.Catalog().Len())
	}
	return fmt.Sprintf("Aspect ratio: %s\nMode: creative\nVariations: %d", st.AspectRatio, st.Count)
}

func (h *Handler) settingsText(st session.Settings) string {
	return "⚙️ Wallpaper settings\n\n" + h.settingsSummary(st) + "\n\nThese apply to every message you send until you change them."
}

func (h *Handler) settingsKeyboard(userID int64, st session.Settings) telegram.Keyboard {
	data := func(action, arg string) string {
		return fmt.Sprintf("%s:%d:%s:%s", settingsCallbackPrefix, userID, action, arg)
	}
	mark := func(selected bool, label string) string {
		if selected {
			return "• " + label
		}
		return label
	}

	var ratios []tgbotapi.InlineKeyboardButton
	for _, r := range studio.AspectRatios() {
		ratios = append(ratios, tgbotapi.NewInlineKeyboardButtonData(mark(st.AspectRatio == r, string(r)), data("ratio", string(r))))
	}

	modes := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(mark(st.Mode == studio.ModeCreative, "🎨 Creative"), data("mode", string(studio.ModeCreative))),
		tgbotapi.NewInlineKeyboardButtonData(mark(st.Mode == studio.ModeStyles, "🖼 Styles"), data("mode", string(studio.ModeStyles))),
	)

	var counts []tgbotapi.InlineKeyboardButton
	for _, n := range countChoices {
		if n > h.studio.MaxVariations() {
			break
		}
		label := "x" + strconv.Itoa(n)
		counts = append(counts, tgbotapi.NewInlineKeyboardButtonData(mark(st.Mode == studio.ModeCreative && st.Count == n, label), data("count", strconv.Itoa(n))))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{ratios, modes}
	if len(counts) > 0 {
		rows = append(rows, counts)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("↩️ Reset", data("reset", "")),
		tgbotapi.NewInlineKeyboardButtonData("✅ Done", data("close", "")),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
