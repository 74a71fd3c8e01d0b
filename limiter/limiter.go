package limiter

// 请求限速器，防止批量抓取把目标站点打挂

import (
	"context"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// 限速器接口，统一了不同限速器的行为
type RateLimiter interface {
	Wait(context.Context) error // 阻塞调用者直到可以继续执行，或上下文被取消
	Limit() rate.Limit
}

// 将多个限速器按速率限制从小到大排序，返回一个多限速器实例
func Multi(limiters ...RateLimiter) *multiLimiter {
	byLimit := func(i, j int) bool {
		return limiters[i].Limit() < limiters[j].Limit()
	}
	sort.Slice(limiters, byLimit)
	return &multiLimiter{limiters: limiters}
}

// 多限速器，组合多个限速器，全部满足才放行
type multiLimiter struct {
	limiters []RateLimiter
}

// 遍历所有限速器等待令牌，任何一个返回错误则返回错误
func (l *multiLimiter) Wait(ctx context.Context) error {
	for _, l := range l.limiters {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// 返回最严格（排序后第一个）限速器的速率限制
func (l *multiLimiter) Limit() rate.Limit {
	return l.limiters[0].Limit()
}

// Per指定在duration时间内允许eventCount个事件的速率
func Per(eventCount int, duration time.Duration) rate.Limit {
	return rate.Every(duration / time.Duration(eventCount))
}
