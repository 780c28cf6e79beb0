package telegram

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Options struct {
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Debug      bool
}

type Client struct {
	bot        *tgbotapi.BotAPI
	httpClient *http.Client
	logger     *slog.Logger
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if opts.HTTPClient == nil {
		return nil, errors.New("http client is nil")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(opts.Token, tgbotapi.APIEndpoint, opts.HTTPClient)
	if err != nil {
		return nil, err
	}
	bot.Debug = opts.Debug

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		bot:        bot,
		httpClient: opts.HTTPClient,
		logger:     logger,
	}, nil
}

func (c *Client) Username() string {
	return c.bot.Self.UserName
}

type Update = tgbotapi.Update

type UpdatesOptions struct {
	Timeout time.Duration
}

func (c *Client) Updates(opts UpdatesOptions) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	if opts.Timeout > 0 {
		u.Timeout = int(opts.Timeout.Seconds())
	} else {
		u.Timeout = 30
	}
	return c.bot.GetUpdatesChan(u)
}

func (c *Client) StopUpdates() {
	c.bot.StopReceivingUpdates()
}

func (c *Client) SendTyping(chatID int64) {
	_, _ = c.bot.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}

func (c *Client) SendText(chatID int64, text string) error {
	parts := splitByBytes(text, 4096)
	for _, p := range parts {
		msg := tgbotapi.NewMessage(chatID, p)
		if _, err := c.bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// MaxAlbumSize is the Telegram limit for one media group.
const MaxAlbumSize = 10

type Keyboard = tgbotapi.InlineKeyboardMarkup

func (c *Client) SendTextWithKeyboard(chatID int64, text string, kb Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, truncateByBytes(text, 4096))
	msg.ReplyMarkup = kb
	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *Client) EditTextWithKeyboard(chatID int64, messageID int, text string, kb Keyboard) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, truncateByBytes(text, 4096), kb)
	_, err := c.bot.Send(edit)
	return err
}

func (c *Client) EditText(chatID int64, messageID int, text string) error {
	_, err := c.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, truncateByBytes(text, 4096)))
	return err
}

func (c *Client) AnswerCallback(callbackID string, text string, alert bool) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	_, err := c.bot.Request(cb)
	return err
}

// SendPhotoURLs lets Telegram fetch each URL itself. The caption goes on the first photo.
func (c *Client) SendPhotoURLs(chatID int64, urls []string, caption string) error {
	caption = truncateByBytes(caption, 1024)
	for i, chunk := range chunkURLs(urls, MaxAlbumSize) {
		chunkCaption := ""
		if i == 0 {
			chunkCaption = caption
		}

		if len(chunk) == 1 {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(chunk[0]))
			photo.Caption = chunkCaption
			if _, err := c.bot.Send(photo); err != nil {
				return fmt.Errorf("send photo: %w", err)
			}
			continue
		}

		media := make([]interface{}, 0, len(chunk))
		for j, u := range chunk {
			item := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(u))
			if j == 0 {
				item.Caption = chunkCaption
			}
			media = append(media, item)
		}
		if _, err := c.bot.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
			return fmt.Errorf("send album: %w", err)
		}
	}
	return nil
}

// chunkURLs splits urls into groups of at most size, never leaving a trailing group of one
// when it can borrow from the previous group.
func chunkURLs(urls []string, size int) [][]string {
	if len(urls) == 0 || size < 2 {
		out := make([][]string, 0, len(urls))
		for _, u := range urls {
			out = append(out, []string{u})
		}
		return out
	}

	var out [][]string
	for start := 0; start < len(urls); start += size {
		end := start + size
		if end > len(urls) {
			end = len(urls)
		}
		out = append(out, urls[start:end])
	}
	if n := len(out); n > 1 && len(out[n-1]) == 1 {
		prev := out[n-2]
		out[n-2] = prev[:len(prev)-1]
		out[n-1] = []string{prev[len(prev)-1], out[n-1][0]}
	}
	return out
}

func (c *Client) DownloadFileBase64(ctx context.Context, fileID string) (string, string, error) {
	fileURL, err := c.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("telegram file download %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	bytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	mimeType := strings.TrimSpace(resp.Header.Get("content-type"))
	if strings.Contains(mimeType, ";") {
		mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(bytes)
	}
	if strings.Contains(mimeType, ";") {
		mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "image/jpeg"
	}

	return base64.StdEncoding.EncodeToString(bytes), mimeType, nil
}

func splitByBytes(text string, maxBytes int) []string {
	if len([]byte(text)) <= maxBytes || maxBytes <= 0 {
		return []string{text}
	}

	var out []string
	var buf strings.Builder
	buf.Grow(maxBytes)

	for _, r := range text {
		runeBytes := utf8.RuneLen(r)
		if runeBytes < 0 {
			runeBytes = len([]byte(string(r)))
		}

		if buf.Len() > 0 && buf.Len()+runeBytes > maxBytes {
			out = append(out, buf.String())
			buf.Reset()
		}
		buf.WriteRune(r)
	}

	if buf.Len() > 0 {
		out = append(out, buf.String())
	}

	return out
}

func truncateByBytes(text string, maxBytes int) string {
	if len([]byte(text)) <= maxBytes || maxBytes <= 0 {
		return text
	}

	var buf strings.Builder
	buf.Grow(maxBytes)
	for _, r := range text {
		runeBytes := utf8.RuneLen(r)
		if runeBytes < 0 {
			runeBytes = len([]byte(string(r)))
		}

		if buf.Len()+runeBytes > maxBytes {
			break
		}
		buf.WriteRune(r)
	}
	return buf.String()
}
