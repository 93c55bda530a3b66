package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/quiz-party/internal/game/question"
)

const (
	// Redis key 前缀
	roomKeyPrefix   = "room:"
	questionSetsKey = "questions:sets"

	// 房间快照过期时间，进程异常退出后自动清理
	roomExpiration = 2 * time.Hour

	defaultQuestionSetLimit = 20
)

// RoomData 房间快照（用于 Redis 序列化，仅作观测与排障，不用于恢复）
type RoomData struct {
	RoomID       string         `json:"room_id"`
	Status       string         `json:"status"`
	CurrentRound int            `json:"current_round"`
	TotalRounds  int            `json:"total_rounds"`
	Starting     bool           `json:"starting"`
	Players      []PlayerData   `json:"players"`
	AnswerCount  int            `json:"answer_count"`
	Scores       map[string]int `json:"scores"`
	UpdatedAt    int64          `json:"updated_at"`
}

// PlayerData 玩家数据
type PlayerData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RedisStore Redis 存储，client 为 nil 时所有操作均为空操作
type RedisStore struct {
	client           *redis.Client
	questionSetLimit int
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, questionSetLimit: defaultQuestionSetLimit}
}

// SetQuestionSetLimit 设置保留的题组数量
func (rs *RedisStore) SetQuestionSetLimit(limit int) {
	if limit > 0 {
		rs.questionSetLimit = limit
	}
}

// Enabled 是否连接了 Redis
func (rs *RedisStore) Enabled() bool {
	return rs != nil && rs.client != nil
}

// --- 房间快照 ---

// SaveRoom 保存房间快照
func (rs *RedisStore) SaveRoom(ctx context.Context, roomID string, data *RoomData) error {
	if !rs.Enabled() || data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+roomID, jsonData, roomExpiration).Err()
}

// LoadRoom 读取房间快照，不存在时返回 nil, nil
func (rs *RedisStore) LoadRoom(ctx context.Context, roomID string) (*RoomData, error) {
	if !rs.Enabled() {
		return nil, nil
	}

	data, err := rs.client.Get(ctx, roomKeyPrefix+roomID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}
	return &roomData, nil
}

// DeleteRoom 删除房间快照
func (rs *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	if !rs.Enabled() {
		return nil
	}
	return rs.client.Del(ctx, roomKeyPrefix+roomID).Err()
}

// GetAllRoomIDs 获取所有房间 ID
func (rs *RedisStore) GetAllRoomIDs(ctx context.Context) ([]string, error) {
	if !rs.Enabled() {
		return nil, nil
	}

	var ids []string
	iter := rs.client.Scan(ctx, 0, roomKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(roomKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// --- 题组缓存 ---

// SaveQuestionSet 缓存一组题目，只保留最近的若干组
func (rs *RedisStore) SaveQuestionSet(ctx context.Context, questions []question.Question) error {
	if !rs.Enabled() || len(questions) == 0 {
		return nil
	}

	jsonData, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("序列化题组失败: %w", err)
	}

	pipe := rs.client.TxPipeline()
	pipe.LPush(ctx, questionSetsKey, jsonData)
	pipe.LTrim(ctx, questionSetsKey, 0, int64(rs.questionSetLimit-1))
	_, err = pipe.Exec(ctx)
	return err
}

// LoadQuestionSet 随机取出一组缓存题目，没有缓存时返回 nil, nil
func (rs *RedisStore) LoadQuestionSet(ctx context.Context) ([]question.Question, error) {
	if !rs.Enabled() {
		return nil, nil
	}

	n, err := rs.client.LLen(ctx, questionSetsKey).Result()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	data, err := rs.client.LIndex(ctx, questionSetsKey, rand.Int64N(n)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var questions []question.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("反序列化题组失败: %w", err)
	}
	return questions, nil
}

// QuestionSetCount 缓存的题组数量
func (rs *RedisStore) QuestionSetCount(ctx context.Context) (int64, error) {
	if !rs.Enabled() {
		return 0, nil
	}
	return rs.client.LLen(ctx, questionSetsKey).Result()
}
