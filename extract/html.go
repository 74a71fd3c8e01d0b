package extract

// HTML提取策略：通过CSS选择器定位列表项，从列表项中提取标题、链接和日期

import (
	"bytes"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dszqbsm/notifier/config"
)

type HTMLExtractor struct{}

/*
输入HTML响应内容和任务配置，输出归一化的记录列表

用list_selector选中所有列表项，逐项提取标题、链接和日期，
标题为N/A的列表项会被丢弃，达到limit后停止
*/
func (e *HTMLExtractor) Extract(body []byte, task *config.Channel, limit int) ([]Record, error) {
	if task.HTML == nil || task.HTML.Selectors == nil || task.HTML.Selectors.ListSelector == "" {
		return nil, errors.New("html task missing list_selector")
	}
	if limit <= 0 {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var items []Record
	doc.Find(task.HTML.Selectors.ListSelector).EachWithBreak(func(_ int, li *goquery.Selection) bool {
		rec := extractItem(li, task.HTML)
		if rec.Title != NA {
			items = append(items, rec)
		}
		return len(items) < limit
	})
	return items, nil
}

// 从单个列表项中提取标题、链接和日期
func extractItem(li *goquery.Selection, conf *config.HTMLConfig) Record {
	sel := conf.Selectors

	var content *goquery.Selection
	if sel.TitleSelector != "" {
		content = li.Find(sel.TitleSelector).First()
	}

	return Record{
		Title: extractTitle(content),
		Link:  extractLink(li, content, conf.BaseLinkURL),
		Date:  NormalizeDate(extractRawDate(li, sel)),
	}
}

func extractTitle(content *goquery.Selection) string {
	if content == nil || content.Length() == 0 {
		return NA
	}
	title := strings.TrimSpace(content.Text())
	if title == "" {
		return NA
	}
	return title
}

/*
从列表项中提取并构造完整链接

先从标题节点向上回溯最近的a标签（标题节点本身是a标签也算），
找不到再在列表项内部兜底查找第一个a标签；
href是javascript:伪链接时回退到base URL，完全找不到a标签时链接就是base URL
*/
func extractLink(li, content *goquery.Selection, baseURL string) string {
	link := NA

	var anchor *goquery.Selection
	if content != nil && content.Length() > 0 {
		// Closest包含节点自身，同时覆盖“标题在a内”和“标题就是a”两种情况
		anchor = content.Closest("a")
	}
	if anchor == nil || anchor.Length() == 0 {
		anchor = li.Find("a").First()
	}

	if anchor.Length() > 0 {
		if href, ok := anchor.Attr("href"); ok && href != "" {
			if !strings.HasPrefix(strings.ToLower(href), "javascript:") {
				return resolveLink(baseURL, href)
			}
			if baseURL != "" {
				return baseURL
			}
			return link
		}
	}
	if baseURL != "" {
		return baseURL
	}
	return link
}

// 相对链接按base URL解析为绝对链接，解析失败时退回base URL
func resolveLink(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return baseURL
	}
	return base.ResolveReference(ref).String()
}

/*
从列表项中提取原始日期字符串

配置了date_regex.pattern时，对日期节点（未配置date_selector时为整个列表项）的
序列化HTML做忽略大小写、跨行的正则匹配，把捕获组代入format模板（默认"$1"）；
未配置正则时直接取日期节点的文本
*/
func extractRawDate(li *goquery.Selection, sel *config.Selectors) string {
	source := li
	if sel.DateSelector != "" {
		source = li.Find(sel.DateSelector).First()
	}

	if sel.DateRegex != nil && sel.DateRegex.Pattern != "" {
		re, err := regexp.Compile("(?is)" + sel.DateRegex.Pattern)
		if err != nil {
			return NA
		}
		html, err := goquery.OuterHtml(source)
		if err != nil {
			return NA
		}
		m := re.FindStringSubmatch(html)
		if m == nil {
			return NA
		}
		format := sel.DateRegex.Format
		if format == "" {
			format = "$1"
		}
		date := format
		for i := 1; i < len(m); i++ {
			date = strings.ReplaceAll(date, "$"+strconv.Itoa(i), m[i])
		}
		return strings.TrimSpace(date)
	}

	return strings.TrimSpace(source.Text())
}
