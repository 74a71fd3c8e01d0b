package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dszqbsm/notifier/config"
	"github.com/dszqbsm/notifier/extract"
	"github.com/dszqbsm/notifier/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 按URL返回预置响应的抓取器
type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Get(url string) ([]byte, error) {
	body, ok := f.pages[url]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return []byte(body), nil
}

// 内存版存储，多个工作协程并发访问
type fakeStorage struct {
	mu       sync.Mutex
	channels []*config.Channel
	seen     map[string]bool
	loadErr  error
}

func newFakeStorage(channels ...*config.Channel) *fakeStorage {
	return &fakeStorage{channels: channels, seen: map[string]bool{}}
}

func (f *fakeStorage) AllChannels() ([]*config.Channel, error) {
	return f.channels, f.loadErr
}

func (f *fakeStorage) IsNew(fingerprint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.seen[fingerprint], nil
}

func (f *fakeStorage) Commit(channelID int64, title, link, date string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fp := storage.Fingerprint(title, link)
	if f.seen[fp] {
		return false, nil
	}
	f.seen[fp] = true
	return true, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	byChann map[string][]extract.Record
}

func (f *fakeNotifier) Notify(ch *config.Channel, records []extract.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byChann == nil {
		f.byChann = map[string][]extract.Record{}
	}
	f.byChann[ch.ChannelName] = append(f.byChann[ch.ChannelName], records...)
	return nil
}

func htmlChannel(id int64, name string, urls []string, maxCount int) *config.Channel {
	return &config.Channel{
		ID:          id,
		SiteName:    "教务处",
		ChannelName: name,
		Mode:        config.ModeHTML,
		URLs:        urls,
		BaseLinkURL: "http://x",
		MaxCount:    maxCount,
		HTML: &config.HTMLConfig{
			BaseLinkURL: "http://x",
			Selectors:   &config.Selectors{ListSelector: "li", TitleSelector: "a"},
		},
	}
}

// 测试一次完整运行：抓取、去重、失败隔离和按栏目推送
func TestEngineRun(t *testing.T) {
	pages := map[string]string{
		"http://x/tzgg": `<ul>
			<li><a href="/1">旧通知</a></li>
			<li><a href="/2">新通知</a></li>
		</ul>`,
	}
	good := htmlChannel(1, "通知公告", []string{"http://x/tzgg"}, 5)
	fetchFail := htmlChannel(2, "抓取失败的栏目", []string{"http://x/down"}, 5)
	badMode := &config.Channel{
		ID: 3, SiteName: "教务处", ChannelName: "未知模式",
		Mode: "rss", URLs: []string{"http://x/rss"}, MaxCount: 5,
	}

	store := newFakeStorage(good, fetchFail, badMode)
	// 旧通知在之前的运行中已经入库
	store.seen[storage.Fingerprint("旧通知", "http://x/1")] = true

	notifier := &fakeNotifier{}
	e := NewEngine(
		WithFetcher(&fakeFetcher{pages: pages}),
		WithStorage(store),
		WithNotifier(notifier),
		WithWorkCount(2),
	)

	stats, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Channels)
	// 未知模式是栏目级失败；抓取失败只产生零结果，不算任务失败
	assert.Equal(t, 1, stats.FailTasks)
	assert.Equal(t, 1, stats.NewItems)

	// 只有真正新增的记录被推送
	require.Len(t, notifier.byChann, 1)
	records := notifier.byChann["通知公告"]
	require.Len(t, records, 1)
	assert.Equal(t, "新通知", records[0].Title)
	assert.Equal(t, "http://x/2", records[0].Link)
}

// 测试结果上限在同一栏目的多个URL间共享
func TestEngineRunMaxCountAcrossURLs(t *testing.T) {
	pages := map[string]string{
		"http://x/p1": `<ul><li><a href="/1">一</a></li><li><a href="/2">二</a></li></ul>`,
		"http://x/p2": `<ul><li><a href="/3">三</a></li><li><a href="/4">四</a></li></ul>`,
	}
	ch := htmlChannel(1, "通知公告", []string{"http://x/p1", "http://x/p2"}, 3)

	store := newFakeStorage(ch)
	notifier := &fakeNotifier{}
	e := NewEngine(
		WithFetcher(&fakeFetcher{pages: pages}),
		WithStorage(store),
		WithNotifier(notifier),
	)

	stats, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.NewItems)

	records := notifier.byChann["通知公告"]
	require.Len(t, records, 3)
	// URL按配置顺序处理，第二页只补足剩余额度
	assert.Equal(t, "一", records[0].Title)
	assert.Equal(t, "三", records[2].Title)
}

// 测试重复运行没有新内容时不触发推送
func TestEngineRunIdempotent(t *testing.T) {
	pages := map[string]string{
		"http://x/tzgg": `<ul><li><a href="/1">通知</a></li></ul>`,
	}
	ch := htmlChannel(1, "通知公告", []string{"http://x/tzgg"}, 5)
	store := newFakeStorage(ch)
	notifier := &fakeNotifier{}
	e := NewEngine(
		WithFetcher(&fakeFetcher{pages: pages}),
		WithStorage(store),
		WithNotifier(notifier),
	)

	stats, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NewItems)

	stats, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.NewItems)
	require.Len(t, notifier.byChann["通知公告"], 1)
}

// 测试任务集加载失败是致命错误
func TestEngineRunLoadFailure(t *testing.T) {
	store := newFakeStorage()
	store.loadErr = errors.New("disk gone")
	e := NewEngine(WithFetcher(&fakeFetcher{}), WithStorage(store))

	_, err := e.Run(context.Background())
	assert.Error(t, err)
}
