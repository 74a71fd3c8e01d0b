package search

// 中文分词：标题写索引和查询词编译共用同一个分词器，
// 使用全模式（重叠切分）提高召回率

import (
	"strings"

	"github.com/go-ego/gse"
)

// Tokenizer把一段自由文本切分为词列表
type Tokenizer interface {
	CutAll(text string) []string
}

// 基于词典的分词器
type Segmenter struct {
	seg gse.Segmenter
}

// 创建分词器并加载内置的中文词典
func NewSegmenter() (*Segmenter, error) {
	s := &Segmenter{}
	if err := s.seg.LoadDict(); err != nil {
		return nil, err
	}
	return s, nil
}

// 全模式切分，同一段文本里重叠的候选词都会被切出来
func (s *Segmenter) CutAll(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.seg.CutAll(text)
}

// ForIndex把标题切分后用空格连接，作为FTS5索引的内容
func (s *Segmenter) ForIndex(text string) string {
	return strings.Join(s.CutAll(text), " ")
}
