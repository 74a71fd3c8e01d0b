package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/dszqbsm/notifier/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithPath(filepath.Join(t.TempDir(), "test.db"))}, opts...)
	s, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testChannel(site, channel, url string) *config.Channel {
	return &config.Channel{
		SiteName:    site,
		ChannelName: channel,
		Mode:        config.ModeHTML,
		URLs:        []string{url},
		BaseLinkURL: "http://x",
		MaxCount:    5,
		HTML: &config.HTMLConfig{
			Selectors: &config.Selectors{ListSelector: "li", TitleSelector: "a"},
		},
	}
}

// 测试指纹的归一化规则：标题trim加小写，链接只trim
func TestFingerprint(t *testing.T) {
	base := Fingerprint("期末考试安排 Notice", "http://x/1")

	assert.Equal(t, base, Fingerprint("  期末考试安排 Notice  ", "http://x/1"))
	assert.Equal(t, base, Fingerprint("期末考试安排 NOTICE", "  http://x/1  "))
	// 链接不做大小写归一化
	assert.NotEqual(t, base, Fingerprint("期末考试安排 Notice", "http://x/1A"))
	assert.NotEqual(t, base, Fingerprint("期末考试安排 Notice", "HTTP://x/1"))
	assert.NotEqual(t, base, Fingerprint("别的标题", "http://x/1"))
	assert.Len(t, base, 64)
}

// 测试重复导入同一份配置是幂等的，配置被编辑后id保持不变
func TestUpsertChannel(t *testing.T) {
	s := newTestStore(t)

	ch := testChannel("教务处", "通知公告", "http://jwc.example.edu/tzgg")
	require.NoError(t, s.UpsertChannel(ch))
	require.NoError(t, s.UpsertChannel(ch))

	channels, err := s.AllChannels()
	require.NoError(t, err)
	require.Len(t, channels, 1)
	originalID := channels[0].ID
	assert.Greater(t, originalID, int64(0))

	// 编辑描述性字段后重新导入，按主URL更新，id不变
	edited := testChannel("教务处", "通知公告（新）", "http://jwc.example.edu/tzgg")
	edited.MaxCount = 20
	require.NoError(t, s.UpsertChannel(edited))

	channels, err = s.AllChannels()
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, originalID, channels[0].ID)
	assert.Equal(t, "通知公告（新）", channels[0].ChannelName)
	assert.Equal(t, 20, channels[0].MaxCount)

	// 没有url的任务报错
	assert.Error(t, s.UpsertChannel(&config.Channel{ChannelName: "没有URL"}))
}

// 测试AllChannels还原出完整任务配置
func TestAllChannels(t *testing.T) {
	s := newTestStore(t)
	s.UpsertChannels([]*config.Channel{
		testChannel("教务处", "通知公告", "http://jwc.example.edu/tzgg"),
		testChannel("图书馆", "公告", "http://lib.example.edu/gg"),
	})

	channels, err := s.AllChannels()
	require.NoError(t, err)
	require.Len(t, channels, 2)
	for _, ch := range channels {
		assert.NotZero(t, ch.ID)
		assert.Equal(t, config.ModeHTML, ch.Mode)
		require.NotNil(t, ch.HTML)
		assert.Equal(t, "li", ch.HTML.Selectors.ListSelector)
	}
}

// 测试指纹查重和通知写入
func TestIsNewAndCommit(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertChannel(testChannel("教务处", "通知公告", "http://jwc.example.edu/tzgg")))
	channels, err := s.AllChannels()
	require.NoError(t, err)
	channelID := channels[0].ID

	fp := Fingerprint("期末考试安排", "http://x/1")
	isNew, err := s.IsNew(fp)
	require.NoError(t, err)
	assert.True(t, isNew)

	inserted, err := s.Commit(channelID, "期末考试安排", "http://x/1", "2024-03-05")
	require.NoError(t, err)
	assert.True(t, inserted)

	isNew, err = s.IsNew(fp)
	require.NoError(t, err)
	assert.False(t, isNew)

	// 重复提交同一条记录不产生新行
	inserted, err = s.Commit(channelID, "期末考试安排", "http://x/1", "2024-03-05")
	require.NoError(t, err)
	assert.False(t, inserted)

	// 同标题不同链接是两条通知
	inserted, err = s.Commit(channelID, "期末考试安排", "http://x/2", "2024-03-05")
	require.NoError(t, err)
	assert.True(t, inserted)
}

// 测试记录和索引条目在同一个事务里：索引写入失败时主表行也被回滚
func TestCommitAtomicity(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertChannel(testChannel("教务处", "通知公告", "http://jwc.example.edu/tzgg")))
	channels, err := s.AllChannels()
	require.NoError(t, err)
	channelID := channels[0].ID

	_, err = s.db.Exec("DROP TABLE Notification_fts")
	require.NoError(t, err)

	inserted, err := s.Commit(channelID, "期末考试安排", "http://x/1", "2024-03-05")
	assert.Error(t, err)
	assert.False(t, inserted)

	// 主表行被回滚，下次运行会重试这条记录
	isNew, err := s.IsNew(Fingerprint("期末考试安排", "http://x/1"))
	require.NoError(t, err)
	assert.True(t, isNew)
}

// 按单字切分的分词器，让索引内容和查询词都可以精确构造
func runeTokenizer(text string) string {
	var toks []string
	for _, r := range text {
		toks = append(toks, string(r))
	}
	return strings.Join(toks, " ")
}

// 测试全文检索端到端：写入、检索、出处和limit
func TestSearchNotifications(t *testing.T) {
	s := newTestStore(t, WithTokenizer(runeTokenizer))
	s.UpsertChannels([]*config.Channel{
		testChannel("教务处", "通知公告", "http://jwc.example.edu/tzgg"),
		testChannel("图书馆", "公告", "http://lib.example.edu/gg"),
	})
	channels, err := s.AllChannels()
	require.NoError(t, err)
	require.Len(t, channels, 2)

	// 两个栏目发布了同标题不同链接的通知，检索应带出各自的出处
	_, err = s.Commit(channels[0].ID, "放假通知", "http://jwc.example.edu/1", "2024-03-05")
	require.NoError(t, err)
	_, err = s.Commit(channels[1].ID, "放假通知", "http://lib.example.edu/1", "2024-03-06")
	require.NoError(t, err)
	_, err = s.Commit(channels[0].ID, "期末考试安排", "http://jwc.example.edu/2", "2024-03-07")
	require.NoError(t, err)

	results, err := s.SearchNotifications("放* AND 假*", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	sites := []string{results[0].SiteName, results[1].SiteName}
	assert.ElementsMatch(t, []string{"教务处", "图书馆"}, sites)
	for _, r := range results {
		assert.Equal(t, "放假通知", r.Title)
	}

	results, err = s.SearchNotifications("期* AND 末*", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "期末考试安排", results[0].Title)
	assert.Equal(t, "http://jwc.example.edu/2", results[0].Link)
	assert.Equal(t, "2024-03-07", results[0].Date)

	// 无匹配返回空结果
	results, err = s.SearchNotifications("没* AND 有*", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	// limit截断
	results, err = s.SearchNotifications("通*", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
