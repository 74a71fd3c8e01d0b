package extract

// 日期归一化：各站点的日期写法五花八门，这里统一为YYYY-MM-DD，
// 只有年月时补为YYYY-MM-00，无法解析时使用占位值N/A

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// 年月日之间允许任意单个非数字分隔符
	dayPattern   = regexp.MustCompile(`(\d{4})[^\d](\d{1,2})[^\d](\d{1,2})`)
	monthPattern = regexp.MustCompile(`(\d{4})[^\d](\d{1,2})`)
	// API日期经过T/空格分割后必须是完整的YYYY-MM-DD或YYYY/MM/DD
	apiDatePattern = regexp.MustCompile(`^\d{4}[-/]\d{2}[-/]\d{2}$`)
)

/*
输入从HTML中提取的原始日期字符串，输出归一化后的日期

优先匹配年月日，其次匹配年月，都不匹配时返回N/A
*/
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == NA {
		return NA
	}
	if m := dayPattern.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[1], zeroPad(m[2]), zeroPad(m[3]))
	}
	if m := monthPattern.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf("%s-%s-00", m[1], zeroPad(m[2]))
	}
	return NA
}

/*
输入API返回的原始日期值，输出归一化后的日期

兼容ISO 8601的T分割和传统的空格分割，提取日期部分后做最终校验，
校验不通过返回N/A
*/
func NormalizeAPIDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == NA {
		return NA
	}
	var datePart string
	switch {
	case strings.Contains(raw, "T"):
		datePart = strings.SplitN(raw, "T", 2)[0]
	case strings.Contains(raw, " "):
		datePart = strings.SplitN(raw, " ", 2)[0]
	default:
		datePart = raw
	}
	if apiDatePattern.MatchString(datePart) {
		return datePart
	}
	return NA
}

// 个位数的月份和日期补零
func zeroPad(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d", n)
}
