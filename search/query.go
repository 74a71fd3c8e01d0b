package search

// 查询编译器：把用户输入的自由文本（可能含中文、可能带布尔结构）编译为FTS5的MATCH表达式
//
// 先按结构记号（AND/OR/NOT、括号、双引号短语）切开整个输入，结构记号原样保留，
// 引号短语不做分词以支持精确短语搜索，其余自由文本片段分词后逐词加前缀通配符、
// 用AND连接并套上括号，使片段相对于外层的OR/NOT作为一个整体生效

import (
	"fmt"
	"regexp"
	"strings"
)

// 结构记号：布尔运算符（不区分大小写的完整单词）、括号、双引号短语；
// 引号短语作为单个记号被整体吃掉，短语内部的括号不参与结构解析
var structuralPattern = regexp.MustCompile(`(?i)\bAND\b|\bOR\b|\bNOT\b|[()]|"[^"]*"`)

// 查询编译器，持有分词器
type Compiler struct {
	tokenizer Tokenizer
}

func NewCompiler(tokenizer Tokenizer) *Compiler {
	return &Compiler{tokenizer: tokenizer}
}

/*
输入用户的原始搜索串，输出FTS5 MATCH表达式

空白输入返回空表达式（调用方应返回空结果而不是报错）；
括号不配对时返回错误，由调用方转换为“零结果加提示”
*/
func (c *Compiler) Compile(keyword string) (string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", nil
	}

	var parts []string
	depth := 0
	last := 0
	for _, loc := range structuralPattern.FindAllStringIndex(keyword, -1) {
		// 结构记号之间的片段是自由文本
		if text := keyword[last:loc[0]]; strings.TrimSpace(text) != "" {
			if term := c.processTerm(text); term != "" {
				parts = append(parts, term)
			}
		}
		token := keyword[loc[0]:loc[1]]
		switch token {
		case "(":
			depth++
		case ")":
			depth--
			if depth < 0 {
				return "", fmt.Errorf("unbalanced parentheses in query %q", keyword)
			}
		}
		parts = append(parts, token)
		last = loc[1]
	}
	if text := keyword[last:]; strings.TrimSpace(text) != "" {
		if term := c.processTerm(text); term != "" {
			parts = append(parts, term)
		}
	}
	if depth != 0 {
		return "", fmt.Errorf("unbalanced parentheses in query %q", keyword)
	}

	return strings.Join(parts, " "), nil
}

// 对纯文本片段分词、逐词加前缀通配符，用AND连接后套上括号
func (c *Compiler) processTerm(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	var fts []string
	for _, tok := range c.tokenizer.CutAll(term) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		fts = append(fts, tok+"*")
	}
	if len(fts) == 0 {
		return ""
	}
	return "(" + strings.Join(fts, " AND ") + ")"
}
