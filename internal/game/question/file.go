package question

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type bankEntry struct {
	Text       string   `yaml:"text"`
	Correct    string   `yaml:"correct"`
	Incorrect  []string `yaml:"incorrect"`
	Category   string   `yaml:"category"`
	Difficulty string   `yaml:"difficulty"`
}

type bankFile struct {
	Questions []bankEntry `yaml:"questions"`
}

// FileProvider 从本地 YAML 题库随机抽题，离线或 OpenTDB 限流时使用
type FileProvider struct {
	entries []bankEntry
	amount  int
}

// LoadFileProvider 读取题库文件
func LoadFileProvider(path string, amount int) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var bank bankFile
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("解析题库失败: %w", err)
	}

	entries := make([]bankEntry, 0, len(bank.Questions))
	for i, e := range bank.Questions {
		if e.Text == "" || e.Correct == "" || len(e.Incorrect) == 0 {
			return nil, fmt.Errorf("题库第 %d 题缺少题干、正确答案或干扰项", i+1)
		}
		entries = append(entries, e)
	}

	return &FileProvider{entries: entries, amount: amount}, nil
}

// FetchQuestions 实现 Provider
func (p *FileProvider) FetchQuestions(ctx context.Context) ([]Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(p.entries) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	n := p.amount
	if n <= 0 || n > len(p.entries) {
		n = len(p.entries)
	}

	questions := make([]Question, 0, n)
	for _, idx := range rand.Perm(len(p.entries))[:n] {
		e := p.entries[idx]
		answers, correctID := buildAnswers(e.Correct, e.Incorrect, rand.Shuffle)
		questions = append(questions, Question{
			ID:              uuid.NewString(),
			Text:            e.Text,
			Category:        e.Category,
			Difficulty:      e.Difficulty,
			Answers:         answers,
			CorrectAnswerID: correctID,
		})
	}
	return questions, nil
}
