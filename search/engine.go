package search

// 搜索引擎：编译查询、执行全文检索、带出处返回结果

import (
	"fmt"

	"github.com/dszqbsm/notifier/storage"
	"go.uber.org/zap"
)

// 默认返回的结果条数上限
const DefaultLimit = 10

// 检索的执行端，由storage.Store实现
type Searcher interface {
	SearchNotifications(match string, limit int) ([]storage.SearchResult, error)
}

type Engine struct {
	searcher Searcher
	compiler *Compiler
	logger   *zap.Logger
}

func NewEngine(searcher Searcher, tokenizer Tokenizer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		searcher: searcher,
		compiler: NewCompiler(tokenizer),
		logger:   logger,
	}
}

/*
输入用户的搜索串和结果上限，输出按相关度排序的结果

空白输入直接返回空结果；编译失败或执行失败返回空结果和错误描述，
调用方据此向用户展示提示信息，错误不会向上扩散成崩溃
*/
func (e *Engine) Search(keyword string, limit int) ([]storage.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	match, err := e.compiler.Compile(keyword)
	if err != nil {
		e.logger.Warn("query compile failed", zap.String("keyword", keyword), zap.Error(err))
		return nil, fmt.Errorf("compile query: %w", err)
	}
	if match == "" {
		return nil, nil
	}

	results, err := e.searcher.SearchNotifications(match, limit)
	if err != nil {
		e.logger.Error("search failed", zap.String("match", match), zap.Error(err))
		return nil, fmt.Errorf("execute search: %w", err)
	}
	e.logger.Debug("search done",
		zap.String("match", match),
		zap.Int("results", len(results)))
	return results, nil
}
