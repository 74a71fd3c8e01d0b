package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func htmlSite() *Site {
	return &Site{
		Name:     "教务处",
		Mode:     ModeHTML,
		MaxCount: 5,
		HTMLConfig: &HTMLConfig{
			BaseLinkURL: "http://jwc.example.edu",
			Selectors: &Selectors{
				ListSelector:  "ul.list li",
				TitleSelector: "a",
				DateSelector:  "span.date",
			},
		},
		Channels: []ChannelConfig{
			{ChannelName: "通知公告", URL: URLList{"http://jwc.example.edu/tzgg"}},
			{
				ChannelName: "新闻动态",
				URL:         URLList{"http://jwc.example.edu/xwdt"},
				HTMLConfig: &HTMLConfig{
					BaseLinkURL: "http://news.example.edu",
				},
			},
		},
	}
}

// 测试Site级配置继承和Channel级覆盖
func TestResolveInheritance(t *testing.T) {
	tasks := Resolve([]*Site{htmlSite()}, nil)
	require.Len(t, tasks, 2)

	first, second := tasks[0], tasks[1]
	assert.Equal(t, "教务处", first.SiteName)
	assert.Equal(t, "通知公告", first.ChannelName)
	assert.Equal(t, []string{"http://jwc.example.edu/tzgg"}, first.URLs)
	// 未覆盖的栏目完整继承Site级提取配置
	assert.Equal(t, "http://jwc.example.edu", first.BaseLinkURL)
	assert.Equal(t, "ul.list li", first.HTML.Selectors.ListSelector)

	// html_config按键合并：只覆盖base_link_url，selectors继承自Site
	assert.Equal(t, "http://news.example.edu", second.BaseLinkURL)
	require.NotNil(t, second.HTML.Selectors)
	assert.Equal(t, "ul.list li", second.HTML.Selectors.ListSelector)
	assert.Equal(t, "span.date", second.HTML.Selectors.DateSelector)
}

// 测试继承是非共享的：修改一个任务的嵌套配置不影响其他任务和原始站点配置
func TestResolveDeepCopyIsolation(t *testing.T) {
	site := htmlSite()
	tasks := Resolve([]*Site{site}, nil)
	require.Len(t, tasks, 2)

	tasks[0].HTML.Selectors.ListSelector = "div.changed"
	tasks[0].HTML.BaseLinkURL = "http://changed"

	assert.Equal(t, "ul.list li", tasks[1].HTML.Selectors.ListSelector)
	assert.Equal(t, "ul.list li", site.HTMLConfig.Selectors.ListSelector)
	assert.Equal(t, "http://jwc.example.edu", site.HTMLConfig.BaseLinkURL)
}

// 测试没有channels的站点本身作为一个隐式栏目，URL取自模式配置
func TestResolveImplicitChannel(t *testing.T) {
	site := &Site{
		Name: "校园网",
		Mode: ModeAPI,
		APIConfig: &APIConfig{
			URL:         URLList{"http://api.example.edu/news"},
			BaseLinkURL: "http://www.example.edu/detail?id=",
			DataPath:    []PathStep{{Key: "data"}},
		},
	}
	tasks := Resolve([]*Site{site}, nil)
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, "校园网", task.SiteName)
	assert.Equal(t, "校园网", task.ChannelName)
	assert.Equal(t, ModeAPI, task.Mode)
	assert.Equal(t, []string{"http://api.example.edu/news"}, task.URLs)
	assert.Equal(t, "http://www.example.edu/detail?id=", task.BaseLinkURL)
	assert.Equal(t, DefaultMaxCount, task.MaxCount)
}

// 测试残缺的站点或栏目被跳过且不影响其他条目
func TestResolveSkipsMalformed(t *testing.T) {
	sites := []*Site{
		nil,
		{Name: ""},                  // 缺少站点名
		{Name: "没有URL的站点"},          // 隐式栏目但没有url
		htmlSite(),                  // 正常站点
		{Name: "残缺栏目的站点", Mode: ModeHTML, Channels: []ChannelConfig{
			{ChannelName: "", URL: URLList{"http://x"}},  // 缺少栏目名
			{ChannelName: "没有URL"},                       // 缺少url
			{ChannelName: "正常栏目", URL: URLList{"http://ok"}},
		}},
	}
	tasks := Resolve(sites, nil)
	require.Len(t, tasks, 3)
	assert.Equal(t, "通知公告", tasks[0].ChannelName)
	assert.Equal(t, "新闻动态", tasks[1].ChannelName)
	assert.Equal(t, "正常栏目", tasks[2].ChannelName)
}

// 测试栏目级mode和max_count覆盖Site级默认值
func TestResolveChannelOverrides(t *testing.T) {
	site := &Site{
		Name:     "混合站点",
		Mode:     ModeHTML,
		MaxCount: 5,
		HTMLConfig: &HTMLConfig{
			Selectors: &Selectors{ListSelector: "li", TitleSelector: "a"},
		},
		APIConfig: &APIConfig{
			BaseLinkURL: "http://x/detail?id=",
		},
		Channels: []ChannelConfig{
			{ChannelName: "接口栏目", URL: URLList{"http://x/api"}, Mode: ModeAPI, MaxCount: 20},
		},
	}
	tasks := Resolve([]*Site{site}, nil)
	require.Len(t, tasks, 1)
	assert.Equal(t, ModeAPI, tasks[0].Mode)
	assert.Equal(t, 20, tasks[0].MaxCount)
	assert.Equal(t, "http://x/detail?id=", tasks[0].BaseLinkURL)
}
