package question

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// cacheWriteTimeout bounds the background write of a fresh set.
	cacheWriteTimeout = 3 * time.Second
	// cacheReadTimeout bounds the fallback read, which outlives the caller's deadline.
	cacheReadTimeout = 2 * time.Second
)

// Cache 题组缓存
type Cache interface {
	SaveQuestionSet(ctx context.Context, questions []Question) error
	// LoadQuestionSet 返回任意一组缓存题目，没有缓存时返回 nil, nil
	LoadQuestionSet(ctx context.Context) ([]Question, error)
}

// CachingProvider 成功时写入缓存，上游失败时回退到缓存中的题组
type CachingProvider struct {
	upstream Provider
	cache    Cache
}

// NewCachingProvider 包装上游题目来源
func NewCachingProvider(upstream Provider, cache Cache) *CachingProvider {
	return &CachingProvider{upstream: upstream, cache: cache}
}

// FetchQuestions 实现 Provider
func (p *CachingProvider) FetchQuestions(ctx context.Context) ([]Question, error) {
	questions, err := p.upstream.FetchQuestions(ctx)
	if err == nil && len(questions) > 0 {
		saved := cloneAll(questions)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
			defer cancel()
			if err := p.cache.SaveQuestionSet(ctx, saved); err != nil {
				log.Warn().Err(err).Msg("⚠️ 缓存题组失败")
			}
		}()
		return questions, nil
	}
	if err == nil {
		err = ErrEmptyQuestionSet
	}

	// 上游超时后 ctx 已结束，回退读取使用独立的截止时间
	readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheReadTimeout)
	defer cancel()
	cached, cacheErr := p.cache.LoadQuestionSet(readCtx)
	if cacheErr != nil || len(cached) == 0 {
		if cacheErr != nil {
			log.Warn().Err(cacheErr).Msg("⚠️ 读取题组缓存失败")
		}
		return nil, err
	}

	log.Warn().Err(err).Int("questions", len(cached)).Msg("⚠️ 上游题目获取失败，使用缓存题组")
	return cached, nil
}

func cloneAll(questions []Question) []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		out[i] = q.Clone()
	}
	return out
}
