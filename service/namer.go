package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	openai "github.com/sashabaranov/go-openai"

	"cognify/domain"
)

const (
	nameCacheSize = 64
	nameCacheTTL  = time.Hour
)

type courseNamer struct {
	llm    ChatCompleter
	model  string
	cache  *expirable.LRU[string, map[int]FriendlyName]
	logger *slog.Logger
}

// NewCourseNamer returns a CourseNamer backed by an OpenAI-compatible
// chat model. Friendly names are cached per course-ID set so repeated
// dashboard loads do not re-ask the model.
func NewCourseNamer(llm ChatCompleter, model string, logger *slog.Logger) CourseNamer {
	return &courseNamer{
		llm:    llm,
		model:  model,
		cache:  expirable.NewLRU[string, map[int]FriendlyName](nameCacheSize, nil, nameCacheTTL),
		logger: logger,
	}
}

const friendlyNamesSystemPrompt = `You clean up college course names. For each course, return two things:
1. "short" - a short friendly code like "Comp Sci 2500", "Math 1320", "English 101"
   - Turn abbreviations into readable words (e.g. "CMP_SCI" -> "Comp Sci", "MATH" -> "Math")
   - Keep the course number
   - Remove section numbers, semester codes, and junk
2. "full" - the clean descriptive name like "Introduction to Computer Science", "Calculus II"
   - Use the course name field to derive this
   - Clean up any junk, formatting, or codes
   - If the name is already clean, keep it as-is

Return JSON: { "courses": { "123": { "short": "Comp Sci 2500", "full": "Intro to Computer Science" } } }
Keys are course IDs as strings.`

func (n *courseNamer) FriendlyNames(ctx context.Context, courses []domain.Course) (map[int]FriendlyName, error) {
	if len(courses) == 0 {
		return map[int]FriendlyName{}, nil
	}

	key := nameCacheKey(courses)
	if cached, ok := n.cache.Get(key); ok {
		return cached, nil
	}

	var sb strings.Builder
	for _, c := range courses {
		fmt.Fprintf(&sb, "%d: code=%q name=%q\n", c.ID, c.CourseCode, c.Name)
	}

	content, err := n.complete(ctx, friendlyNamesSystemPrompt, sb.String())
	if err != nil {
		return nil, fmt.Errorf("friendly course names: %w", err)
	}

	var parsed struct {
		Courses map[string]struct {
			Short string `json:"short"`
			Full  string `json:"full"`
		} `json:"courses"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		n.logger.ErrorContext(ctx, "model returned malformed course names JSON", "error", err)
		return nil, fmt.Errorf("parse course names response: %w", err)
	}

	byID := make(map[int]domain.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	result := make(map[int]FriendlyName, len(parsed.Courses))
	for rawID, val := range parsed.Courses {
		id, err := strconv.Atoi(rawID)
		if err != nil {
			continue
		}
		orig, known := byID[id]
		if !known {
			continue
		}
		name := FriendlyName{Short: val.Short, Full: val.Full}
		if name.Short == "" {
			name.Short = orig.CourseCode
		}
		if name.Full == "" {
			name.Full = orig.Name
		}
		result[id] = name
	}

	n.cache.Add(key, result)
	return result, nil
}

const semanticSearchSystemPrompt = `You are a search engine. Given a user query and a list of college courses, return the IDs of all courses that semantically match the query. Consider subject matter, topics, abbreviations, and related concepts.

For example, if the query is "math", return courses about calculus, algebra, statistics, etc. If the query is "writing", return courses about composition, English, literature, etc.

Return JSON: { "ids": [1, 2, 3] }
If no courses match, return: { "ids": [] }
Only return IDs from the provided list.`

// SemanticSearch asks the model which courses match a free-text query.
// A blank query, a model failure, or an unusable response all fall back
// to every course, so search can never hide the course list.
func (n *courseNamer) SemanticSearch(ctx context.Context, query string, courses []domain.Course) ([]int, error) {
	allIDs := make([]int, 0, len(courses))
	for _, c := range courses {
		allIDs = append(allIDs, c.ID)
	}
	if strings.TrimSpace(query) == "" {
		return allIDs, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %q\n\nCourses:\n", query)
	for _, c := range courses {
		fmt.Fprintf(&sb, "%d: %s - %s\n", c.ID, c.CourseCode, c.Name)
	}

	content, err := n.complete(ctx, semanticSearchSystemPrompt, sb.String())
	if err != nil {
		n.logger.WarnContext(ctx, "semantic search unavailable", "error", err)
		return allIDs, nil
	}

	var parsed struct {
		IDs []int `json:"ids"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil || parsed.IDs == nil {
		n.logger.WarnContext(ctx, "semantic search returned unusable JSON")
		return allIDs, nil
	}

	known := make(map[int]bool, len(courses))
	for _, c := range courses {
		known[c.ID] = true
	}
	matched := make([]int, 0, len(parsed.IDs))
	for _, id := range parsed.IDs {
		if known[id] {
			matched = append(matched, id)
		}
	}
	return matched, nil
}

// complete runs one deterministic JSON-mode completion.
func (n *courseNamer) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := n.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       n.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func nameCacheKey(courses []domain.Course) string {
	ids := make([]int, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
