package config

// config包定义站点与栏目的配置结构，站点配置来自外部的JSON文件，
// 其中url字段兼容字符串和字符串数组两种写法，data_path字段兼容对象键和数组下标两种元素，
// html_config/api_config中未知的键会被保留在Extra中，避免配置升级时丢失字段

import (
	"encoding/json"
	"fmt"
)

// 抓取模式常量，闭合集合，未知模式在解析时被拒绝
const (
	ModeHTML = "html"
	ModeAPI  = "api"
)

// 单个栏目默认的最大抓取条数
const DefaultMaxCount = 5

// URLList兼容url字段的两种JSON写法："http://x"和["http://x", "http://y"]
type URLList []string

func (u *URLList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*u = URLList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("url must be a string or a list of strings: %w", err)
	}
	*u = URLList(many)
	return nil
}

func (u URLList) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(u))
}

// PathStep表示data_path中的一步，要么是对象键，要么是数组下标
type PathStep struct {
	Key     string
	Index   int
	IsIndex bool
}

func (p *PathStep) UnmarshalJSON(data []byte) error {
	var idx int
	if err := json.Unmarshal(data, &idx); err == nil {
		p.Index = idx
		p.IsIndex = true
		return nil
	}
	var key string
	if err := json.Unmarshal(data, &key); err != nil {
		return fmt.Errorf("data_path element must be a string key or an integer index: %w", err)
	}
	p.Key = key
	return nil
}

func (p PathStep) MarshalJSON() ([]byte, error) {
	if p.IsIndex {
		return json.Marshal(p.Index)
	}
	return json.Marshal(p.Key)
}

// DateRegex用于从列表项HTML中提取日期，pattern为正则表达式，
// format为替换模板，$1、$2等会被替换为对应的捕获组，留空等价于"$1"
type DateRegex struct {
	Pattern string `json:"pattern"`
	Format  string `json:"format,omitempty"`
}

func (d *DateRegex) Clone() *DateRegex {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

// Selectors是HTML模式的选择器配置，语义与CSS选择器一致
type Selectors struct {
	ListSelector  string     `json:"list_selector"`
	TitleSelector string     `json:"title_selector"`
	DateSelector  string     `json:"date_selector,omitempty"`
	DateRegex     *DateRegex `json:"date_regex,omitempty"`
}

func (s *Selectors) Clone() *Selectors {
	if s == nil {
		return nil
	}
	c := *s
	c.DateRegex = s.DateRegex.Clone()
	return &c
}

// HTMLConfig是HTML模式的提取配置
type HTMLConfig struct {
	URL         URLList    `json:"url,omitempty"`
	BaseLinkURL string     `json:"base_link_url,omitempty"`
	Selectors   *Selectors `json:"selectors,omitempty"`

	// 未知键的旁路存储，序列化时原样写回
	Extra map[string]json.RawMessage `json:"-"`
}

// htmlConfigAlias避免UnmarshalJSON递归调用自身
type htmlConfigAlias HTMLConfig

func (h *HTMLConfig) UnmarshalJSON(data []byte) error {
	var a htmlConfigAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "url")
	delete(raw, "base_link_url")
	delete(raw, "selectors")
	if len(raw) > 0 {
		a.Extra = raw
	}
	*h = HTMLConfig(a)
	return nil
}

func (h HTMLConfig) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(htmlConfigAlias(h), h.Extra)
}

func (h *HTMLConfig) Clone() *HTMLConfig {
	if h == nil {
		return nil
	}
	c := &HTMLConfig{
		URL:         append(URLList(nil), h.URL...),
		BaseLinkURL: h.BaseLinkURL,
		Selectors:   h.Selectors.Clone(),
		Extra:       cloneExtra(h.Extra),
	}
	return c
}

// Merge返回h与override的浅层合并结果，override中已设置的键覆盖h中的对应键，
// 两者都不会被修改
func (h *HTMLConfig) Merge(override *HTMLConfig) *HTMLConfig {
	if h == nil {
		return override.Clone()
	}
	merged := h.Clone()
	if override == nil {
		return merged
	}
	if len(override.URL) > 0 {
		merged.URL = append(URLList(nil), override.URL...)
	}
	if override.BaseLinkURL != "" {
		merged.BaseLinkURL = override.BaseLinkURL
	}
	if override.Selectors != nil {
		merged.Selectors = override.Selectors.Clone()
	}
	merged.Extra = mergeExtra(merged.Extra, override.Extra)
	return merged
}

// FieldsMap指定API返回记录中各字段的键名，留空时使用默认键
type FieldsMap struct {
	Title   string `json:"title,omitempty"`
	Date    string `json:"date,omitempty"`
	LinkKey string `json:"link_key,omitempty"`
}

// API字段的默认键名
const (
	DefaultTitleKey = "title"
	DefaultDateKey  = "publishTime"
	DefaultLinkKey  = "newsId"
)

// TitleKey返回标题字段的键名，未配置时使用默认值
func (f FieldsMap) TitleKey() string {
	if f.Title != "" {
		return f.Title
	}
	return DefaultTitleKey
}

func (f FieldsMap) DateKey() string {
	if f.Date != "" {
		return f.Date
	}
	return DefaultDateKey
}

func (f FieldsMap) LinkKeyName() string {
	if f.LinkKey != "" {
		return f.LinkKey
	}
	return DefaultLinkKey
}

// APIConfig是API模式的提取配置
type APIConfig struct {
	URL         URLList    `json:"url,omitempty"`
	BaseLinkURL string     `json:"base_link_url,omitempty"`
	DataPath    []PathStep `json:"data_path,omitempty"`
	FieldsMap   FieldsMap  `json:"fields_map,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type apiConfigAlias APIConfig

func (a *APIConfig) UnmarshalJSON(data []byte) error {
	var v apiConfigAlias
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "url")
	delete(raw, "base_link_url")
	delete(raw, "data_path")
	delete(raw, "fields_map")
	if len(raw) > 0 {
		v.Extra = raw
	}
	*a = APIConfig(v)
	return nil
}

func (a APIConfig) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(apiConfigAlias(a), a.Extra)
}

func (a *APIConfig) Clone() *APIConfig {
	if a == nil {
		return nil
	}
	c := &APIConfig{
		URL:         append(URLList(nil), a.URL...),
		BaseLinkURL: a.BaseLinkURL,
		DataPath:    append([]PathStep(nil), a.DataPath...),
		FieldsMap:   a.FieldsMap,
		Extra:       cloneExtra(a.Extra),
	}
	return c
}

func (a *APIConfig) Merge(override *APIConfig) *APIConfig {
	if a == nil {
		return override.Clone()
	}
	merged := a.Clone()
	if override == nil {
		return merged
	}
	if len(override.URL) > 0 {
		merged.URL = append(URLList(nil), override.URL...)
	}
	if override.BaseLinkURL != "" {
		merged.BaseLinkURL = override.BaseLinkURL
	}
	if len(override.DataPath) > 0 {
		merged.DataPath = append([]PathStep(nil), override.DataPath...)
	}
	if override.FieldsMap != (FieldsMap{}) {
		merged.FieldsMap = override.FieldsMap
	}
	merged.Extra = mergeExtra(merged.Extra, override.Extra)
	return merged
}

// ChannelConfig是站点下单个栏目的原始配置
type ChannelConfig struct {
	ChannelName string      `json:"channel_name"`
	URL         URLList     `json:"url"`
	Mode        string      `json:"mode,omitempty"`
	MaxCount    int         `json:"max_count,omitempty"`
	HTMLConfig  *HTMLConfig `json:"html_config,omitempty"`
	APIConfig   *APIConfig  `json:"api_config,omitempty"`
}

// Site是顶层的站点配置，没有channels时站点本身就是一个隐式栏目
type Site struct {
	Name       string          `json:"name"`
	Mode       string          `json:"mode,omitempty"`
	MaxCount   int             `json:"max_count,omitempty"`
	HTMLConfig *HTMLConfig     `json:"html_config,omitempty"`
	APIConfig  *APIConfig      `json:"api_config,omitempty"`
	Channels   []ChannelConfig `json:"channels,omitempty"`
}

// Channel是配置展开后的最终爬取任务单元，一次运行中不可变
type Channel struct {
	ID          int64
	SiteName    string
	ChannelName string
	Mode        string
	URLs        []string
	BaseLinkURL string
	MaxCount    int
	HTML        *HTMLConfig
	API         *APIConfig
}

// PrimaryURL返回任务的主URL，作为数据库中非破坏性更新的键
func (c *Channel) PrimaryURL() string {
	if len(c.URLs) == 0 {
		return ""
	}
	return c.URLs[0]
}

func marshalWithExtra(known interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

func cloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	c := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		c[k] = append(json.RawMessage(nil), v...)
	}
	return c
}

func mergeExtra(base, override map[string]json.RawMessage) map[string]json.RawMessage {
	if len(override) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]json.RawMessage, len(override))
	}
	for k, v := range override {
		base[k] = append(json.RawMessage(nil), v...)
	}
	return base
}
