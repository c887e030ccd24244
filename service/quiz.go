package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// The corpus can be far larger than the model's useful context, so
	// generation works on a prefix of it.
	quizContentBudget = 12000
	examContentBudget = 20000

	defaultQuizCount = 10
)

// ChatCompleter is the slice of the OpenAI-compatible client the LLM
// services depend on.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewGroqClient builds an OpenAI-compatible chat client pointed at the
// Groq API.
func NewGroqClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return openai.NewClientWithConfig(cfg)
}

type quizService struct {
	llm    ChatCompleter
	model  string
	logger *slog.Logger
}

// NewQuizService returns a QuizService backed by an OpenAI-compatible
// chat model.
func NewQuizService(llm ChatCompleter, model string, logger *slog.Logger) QuizService {
	return &quizService{llm: llm, model: model, logger: logger}
}

const quizSystemPromptFmt = `You are a study assistant for a college course called %q.
Generate exactly %d multiple-choice study questions based on the provided course material.

Return valid JSON in this exact format:
{
  "questions": [
    {
      "question": "What is...?",
      "options": ["A) ...", "B) ...", "C) ...", "D) ..."],
      "correctIndex": 0,
      "explanation": "The answer is A because..."
    }
  ]
}

Rules:
- Questions should test understanding, not just memorization
- All 4 options should be plausible
- Explanations should be educational and concise
- Cover different topics from the material
- IMPORTANT: Only use English text and standard ASCII characters. For math, use plain notation like x^2, sqrt(x), a*b, det(A), R^n, etc. Never use Chinese, Japanese, or other non-Latin characters.`

func (s *quizService) GenerateQuiz(ctx context.Context, courseName, corpus string, count int) ([]StudyQuestion, error) {
	if count <= 0 {
		count = defaultQuizCount
	}

	content, err := s.complete(ctx, 0.7,
		fmt.Sprintf(quizSystemPromptFmt, courseName, count),
		"Course material:\n\n"+truncateText(corpus, quizContentBudget),
	)
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	var parsed struct {
		Questions []StudyQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		s.logger.ErrorContext(ctx, "model returned malformed quiz JSON", "error", err)
		return nil, fmt.Errorf("parse quiz response: %w", err)
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}

	s.logger.InfoContext(ctx, "generated study questions",
		"course", courseName,
		"count", len(parsed.Questions))
	return parsed.Questions, nil
}

const examSystemPrompt = `You are a college professor creating a comprehensive mock final exam.
Based on ALL the provided course material, create a realistic final exam with mixed question types organized into sections.

Return valid JSON in this exact format:
{
  "title": "Introduction to Psychology - Final Exam",
  "instructions": "Read each question carefully. Show all work where applicable. You have 2 hours to complete this exam.",
  "totalPoints": 100,
  "sections": [
    {
      "name": "Section I: Multiple Choice",
      "questions": [
        {
          "type": "multiple-choice",
          "question": "Which of the following best describes...?",
          "options": ["A) ...", "B) ...", "C) ...", "D) ..."],
          "answer": "B) ...",
          "points": 2
        }
      ]
    },
    {
      "name": "Section II: True or False",
      "questions": [
        {
          "type": "true-false",
          "question": "Statement here.",
          "answer": "False. Explanation...",
          "points": 2
        }
      ]
    },
    {
      "name": "Section III: Short Answer",
      "questions": [
        {
          "type": "short-answer",
          "question": "Explain the concept of...",
          "answer": "The expected answer is...",
          "points": 5
        }
      ]
    },
    {
      "name": "Section IV: Essay",
      "questions": [
        {
          "type": "essay",
          "question": "Discuss in detail...",
          "answer": "A strong response would include...",
          "points": 15
        }
      ]
    }
  ]
}

Rules:
- Create a realistic exam worth exactly 100 points total
- Include 4 sections: Multiple Choice (10 questions, 2 pts each = 20 pts), True/False (5 questions, 2 pts each = 10 pts), Short Answer (6 questions, 5 pts each = 30 pts), Essay (2 questions, 20 pts each = 40 pts)
- Cover ALL major topics proportionally across the sections
- Multiple choice and true/false should test recall and comprehension
- Short answer should require explanation and application
- Essay questions should require deep analysis and synthesis across topics
- The "answer" field is for the answer key, make it thorough
- IMPORTANT: Only use English text and standard ASCII characters. For math, use plain notation like x^2, sqrt(x), a*b, etc.
- IMPORTANT: The "title" must be specific to the subject matter. Identify the course or topic from the material and use it (e.g. "Organic Chemistry - Final Exam", "HIST 101: World History - Final Exam"). Never use a generic title like just "Final Exam".`

func (s *quizService) GenerateMockExam(ctx context.Context, corpus string) (*MockExam, error) {
	content, err := s.complete(ctx, 0.5,
		examSystemPrompt,
		"Course material for the final exam:\n\n"+truncateText(corpus, examContentBudget),
	)
	if err != nil {
		return nil, fmt.Errorf("generate mock exam: %w", err)
	}

	var exam MockExam
	if err := json.Unmarshal([]byte(content), &exam); err != nil {
		s.logger.ErrorContext(ctx, "model returned malformed exam JSON", "error", err)
		return nil, fmt.Errorf("parse exam response: %w", err)
	}
	if len(exam.Sections) == 0 {
		return nil, fmt.Errorf("model returned an exam with no sections")
	}

	s.logger.InfoContext(ctx, "generated mock exam",
		"title", exam.Title,
		"sections", len(exam.Sections))
	return &exam, nil
}

// complete runs one JSON-mode chat completion and returns the raw
// message content.
func (s *quizService) complete(ctx context.Context, temperature float32, system, user string) (string, error) {
	resp, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: temperature,
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

// truncateText caps s at limit bytes without splitting a UTF-8 sequence.
func truncateText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return strings.ToValidUTF8(s[:limit], "")
}
