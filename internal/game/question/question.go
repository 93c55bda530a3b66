// Package question defines trivia questions and the providers that supply a
// question set when a room starts a game.
package question

import (
	"context"
	"errors"
)

// ErrEmptyQuestionSet is returned when a provider has nothing to serve.
var ErrEmptyQuestionSet = errors.New("题目集合为空")

// answerLabels 选项编号，按展示顺序分配
var answerLabels = []string{"A", "B", "C", "D", "E", "F"}

// Answer 选项
type Answer struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question 题目
type Question struct {
	ID              string   `json:"id"`
	Text            string   `json:"text"`
	Category        string   `json:"category,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
	Answers         []Answer `json:"answers"`
	CorrectAnswerID string   `json:"correctAnswerId"`
}

// Clone 深拷贝
func (q Question) Clone() Question {
	q.Answers = append([]Answer(nil), q.Answers...)
	return q
}

// Provider 题目来源，成功时必须返回非空集合
type Provider interface {
	FetchQuestions(ctx context.Context) ([]Question, error)
}

// ProviderFunc 函数适配器
type ProviderFunc func(ctx context.Context) ([]Question, error)

// FetchQuestions 实现 Provider
func (f ProviderFunc) FetchQuestions(ctx context.Context) ([]Question, error) {
	return f(ctx)
}

// buildAnswers 打乱正确答案与干扰项并编号，返回选项和正确选项 ID
func buildAnswers(correct string, incorrect []string, shuffle func(n int, swap func(i, j int))) ([]Answer, string) {
	texts := make([]string, 0, len(incorrect)+1)
	texts = append(texts, correct)
	texts = append(texts, incorrect...)
	if len(texts) > len(answerLabels) {
		texts = texts[:len(answerLabels)]
	}

	shuffle(len(texts), func(i, j int) { texts[i], texts[j] = texts[j], texts[i] })

	answers := make([]Answer, len(texts))
	correctID := ""
	for i, text := range texts {
		answers[i] = Answer{ID: answerLabels[i], Text: text}
		if text == correct && correctID == "" {
			correctID = answerLabels[i]
		}
	}
	return answers, correctID
}
