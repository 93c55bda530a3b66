package session

import (
	"math/rand/v2"
)

// 默认昵称词库，玩家发送 join-game 后会被替换
var (
	adjectives = []string{
		"博学的", "机智的", "好奇的", "敏捷的", "淡定的",
		"沉思的", "睿智的", "飞快的", "专注的", "大胆的",
		"认真的", "灵光的", "谨慎的", "热情的", "幸运的",
	}

	nouns = []string{
		"猫头鹰", "书虫", "学者", "侦探", "百科",
		"海豚", "狐狸", "乌鸦", "章鱼", "渡渡鸟",
		"考拉", "松鼠", "水獭", "浣熊", "鹦鹉",
	}
)

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	return adjectives[rand.IntN(len(adjectives))] + nouns[rand.IntN(len(nouns))]
}
