package question

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// OpenTDB response codes, see https://opentdb.com/api_config.php
var openTDBResponseCodes = map[int]string{
	1: "no results",
	2: "invalid parameter",
	3: "token not found",
	4: "token empty",
	5: "rate limit",
}

type openTDBResponse struct {
	ResponseCode int             `json:"response_code"`
	Results      []openTDBResult `json:"results"`
}

type openTDBResult struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// OpenTDBProvider 从 Open Trivia DB 拉取选择题
type OpenTDBProvider struct {
	baseURL    string
	amount     int
	difficulty string
	client     *http.Client
}

// NewOpenTDBProvider 创建 OpenTDB 题目来源
func NewOpenTDBProvider(baseURL string, amount int, difficulty string) *OpenTDBProvider {
	return &OpenTDBProvider{
		baseURL:    baseURL,
		amount:     amount,
		difficulty: difficulty,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchQuestions 实现 Provider
func (p *OpenTDBProvider) FetchQuestions(ctx context.Context) ([]Question, error) {
	query := url.Values{}
	query.Set("amount", strconv.Itoa(p.amount))
	query.Set("type", "multiple")
	if p.difficulty != "" {
		query.Set("difficulty", p.difficulty)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("opentdb returned status code: %d, response: %s", resp.StatusCode, string(body))
	}

	var payload openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode opentdb response: %w", err)
	}

	if payload.ResponseCode != 0 {
		reason, ok := openTDBResponseCodes[payload.ResponseCode]
		if !ok {
			reason = "unknown"
		}
		return nil, fmt.Errorf("opentdb response code %d (%s)", payload.ResponseCode, reason)
	}
	if len(payload.Results) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	questions := make([]Question, 0, len(payload.Results))
	for _, r := range payload.Results {
		incorrect := make([]string, len(r.IncorrectAnswers))
		for i, a := range r.IncorrectAnswers {
			incorrect[i] = html.UnescapeString(a)
		}
		answers, correctID := buildAnswers(html.UnescapeString(r.CorrectAnswer), incorrect, rand.Shuffle)

		questions = append(questions, Question{
			ID:              uuid.NewString(),
			Text:            html.UnescapeString(r.Question),
			Category:        html.UnescapeString(r.Category),
			Difficulty:      r.Difficulty,
			Answers:         answers,
			CorrectAnswerID: correctID,
		})
	}

	return questions, nil
}
