// Package mediagroup collects the photos of one Telegram album into a single group.
package mediagroup

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type Item struct {
	ChatID       int64
	UserID       int64
	Username     string
	MediaGroupID string
	MessageID    int
	Caption      string
	FileID       string
}

// Group lists FileIDs in message order, so FileIDs[0] is the first photo of the album.
type Group struct {
	ChatID   int64
	UserID   int64
	Username string
	Caption  string
	FileIDs  []string
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Group)
}

type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Group)
	groups   map[string]*pendingGroup
	stopped  bool
}

type pendingGroup struct {
	group Group
	items []photo
	timer *time.Timer
}

type photo struct {
	messageID int
	fileID    string
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}

	return &Aggregator{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		groups:   make(map[string]*pendingGroup),
	}
}

// Add reports false when the item was ignored.
func (a *Aggregator) Add(item Item) bool {
	if item.MediaGroupID == "" || item.FileID == "" {
		return false
	}

	key := makeKey(item.ChatID, item.MediaGroupID)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return false
	}

	pg, ok := a.groups[key]
	if !ok {
		pg = &pendingGroup{
			group: Group{
				ChatID:   item.ChatID,
				UserID:   item.UserID,
				Username: item.Username,
				Caption:  item.Caption,
			},
		}
		a.groups[key] = pg
	} else if item.Caption != "" {
		pg.group.Caption = item.Caption
	}
	pg.items = append(pg.items, photo{messageID: item.MessageID, fileID: item.FileID})

	if pg.timer != nil {
		pg.timer.Stop()
	}
	pg.timer = time.AfterFunc(a.debounce, func() {
		a.flush(key)
	})
	return true
}

// Stop flushes every pending group synchronously and rejects later items.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	a.stopped = true
	keys := make([]string, 0, len(a.groups))
	for key, pg := range a.groups {
		if pg.timer != nil {
			pg.timer.Stop()
		}
		keys = append(keys, key)
	}
	a.mu.Unlock()

	sort.Strings(keys)
	for _, key := range keys {
		a.flush(key)
	}
}

func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.groups)
}

func (a *Aggregator) flush(key string) {
	a.mu.Lock()
	pg, ok := a.groups[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.groups, key)
	group := pg.group
	items := pg.items
	onFlush := a.onFlush
	a.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool { return items[i].messageID < items[j].messageID })
	group.FileIDs = make([]string, len(items))
	for i, it := range items {
		group.FileIDs[i] = it.fileID
	}

	if onFlush != nil {
		onFlush(group)
	}
}

func makeKey(chatID int64, mediaGroupID string) string {
	return fmt.Sprintf("%d:%s", chatID, mediaGroupID)
}
