package fetch

// fetch包负责发起HTTP请求并把响应体统一转换为utf-8，
// 提取逻辑只消费Fetcher接口，不关心请求是如何发出的

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dszqbsm/notifier/limiter"
	"github.com/dszqbsm/notifier/proxy"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// 超时未配置时使用10秒
const DefaultTimeout = 10 * time.Second

// Fetcher接口，输入URL，输出响应体的字节数组和错误
type Fetcher interface {
	Get(url string) ([]byte, error)
}

// 最简单的抓取器，直接发起GET请求
type BaseFetch struct{}

// 发送GET请求并获取响应，状态码不为200时返回错误，响应体转换为utf-8编码
func (*BaseFetch) Get(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error status code:%d", resp.StatusCode)
	}
	return decodeBody(resp.Body)
}

// 模拟浏览器行为的抓取器，支持超时、代理、Cookie、限速和自定义User-Agent
type BrowserFetch struct {
	Timeout   time.Duration
	Proxy     proxy.ProxyFunc
	Limit     limiter.RateLimiter
	Cookie    string
	UserAgent string
	Logger    *zap.Logger
}

/*
输入URL，输出响应体的字节数组和错误

发起请求前先通过限速器获取令牌，设置User-Agent和Cookie请求头，
通过可选的代理发出请求，响应做编码检测后统一转换为utf-8
*/
func (b *BrowserFetch) Get(url string) ([]byte, error) {
	if b.Limit != nil {
		if err := b.Limit.Wait(context.Background()); err != nil {
			return nil, err
		}
	}

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{
		Timeout: timeout,
	}
	if b.Proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = b.Proxy
		client.Transport = transport
	}

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("get url failed:%w", err)
	}
	if len(b.Cookie) > 0 {
		req.Header.Set("Cookie", b.Cookie)
	}
	ua := b.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	req.Header.Set("User-Agent", ua)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error status code:%d", resp.StatusCode)
	}
	return decodeBody(resp.Body)
}

// 检测响应体编码并转换为utf-8后读出全部内容
func decodeBody(body io.Reader) ([]byte, error) {
	bodyReader := bufio.NewReader(body)
	e := DeterminEncoding(bodyReader)
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())
	return io.ReadAll(utf8Reader)
}

// 预读响应体的前1024字节来检测编码，读不到内容时默认utf-8
func DeterminEncoding(r *bufio.Reader) encoding.Encoding {
	bytes, err := r.Peek(1024)
	if err != nil && len(bytes) == 0 {
		return unicode.UTF8
	}
	e, _, _ := charset.DetermineEncoding(bytes, "")
	return e
}
