package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"mmaker/internal/application/port"
	"mmaker/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// Repo 把每次交易决策发到 Redis，供下游消费
// Stream 留历史，PubSub 给实时订阅者，Hash 存各 ticker 最新持仓
type Repo struct {
	rdb            *redis.Client
	prefix         string
	ttl            time.Duration
	decisionStream string
	decisionChan   string
	keyPositions   string // prefix + ":positions"
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, decisionStream, decisionChan string) *Repo {
	if strings.TrimSpace(prefix) == "" {
		prefix = "mmaker"
	}
	if strings.TrimSpace(decisionStream) == "" {
		decisionStream = prefix + ":decisions"
	}
	if strings.TrimSpace(decisionChan) == "" {
		decisionChan = prefix + ":decisions:pub"
	}
	return &Repo{
		rdb:            rdb,
		prefix:         prefix,
		ttl:            ttl,
		decisionStream: decisionStream,
		decisionChan:   decisionChan,
		keyPositions:   prefix + ":positions",
	}
}

func (r *Repo) PublishDecision(ctx context.Context, d model.TradeDecision) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}

	// 1) Stream: XADD <stream> * ticker status action payload
	if _, err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.decisionStream,
		Values: map[string]any{
			"ticker":  d.Ticker,
			"status":  string(d.Status),
			"action":  string(d.Action),
			"payload": string(payload),
		},
	}).Result(); err != nil {
		return err
	}

	// 2) PubSub: PUBLISH <channel> json
	if err := r.rdb.Publish(ctx, r.decisionChan, string(payload)).Err(); err != nil {
		return err
	}

	// 3) Hash: field = ticker -> latest position json (删单对应 HDel)
	pipe := r.rdb.Pipeline()
	if d.Position != nil {
		b, _ := json.Marshal(d.Position)
		pipe.HSet(ctx, r.keyPositions, d.Ticker, string(b))
	} else if d.Action == model.ActionSell {
		pipe.HDel(ctx, r.keyPositions, d.Ticker)
	}
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyPositions, r.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

var _ port.DecisionPublisher = (*Repo)(nil)
