package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rankpilot/rankpilot-api/internal/dto"
	"github.com/rankpilot/rankpilot-api/pkg/ai"
)

const assistantSystemPrompt = "You are RankPilot, an SEO assistant. Answer questions about keyword strategy, " +
	"on-page optimization, SERP features, and link building. Keep answers practical and concise."

// AssistantConnectionOptions wraps metadata extracted during the HTTP upgrade.
type AssistantConnectionOptions struct {
	UserID        string
	CorrelationID string
	Context       context.Context
}

// AssistantService answers conversational SEO questions over a websocket and
// keeps a bounded per-user history in redis.
type AssistantService interface {
	ServeConnection(conn *websocket.Conn, opts AssistantConnectionOptions)
	History(ctx context.Context, userID string) (dto.AssistantHistoryResponse, error)
}

type assistantService struct {
	engine      ai.Engine
	redis       *redis.Client
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	historySize int
	sessionTTL  time.Duration
	logger      zerolog.Logger
}

// NewAssistantService constructs the conversational assistant.
func NewAssistantService(engine ai.Engine, redisClient *redis.Client, validate *validator.Validate, historySize int, sessionTTL time.Duration, logger zerolog.Logger) AssistantService {
	if historySize <= 0 {
		historySize = 50
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &assistantService{
		engine:      engine,
		redis:       redisClient,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		historySize: historySize,
		sessionTTL:  sessionTTL,
		logger:      logger.With().Str("component", "assistant_service").Logger(),
	}
}

// ServeConnection pumps messages for one websocket client until it disconnects.
func (s *assistantService) ServeConnection(conn *websocket.Conn, opts AssistantConnectionOptions) {
	defer conn.Close()

	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	logger := s.logger.With().Str("user_id", opts.UserID).Str("correlation_id", opts.CorrelationID).Logger()

	for {
		var inbound dto.AssistantInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("assistant connection closed unexpectedly")
			}
			return
		}

		reply, err := s.answer(baseCtx, opts.UserID, inbound)
		if err != nil {
			if writeErr := conn.WriteJSON(map[string]string{"error": err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (s *assistantService) answer(ctx context.Context, userID string, inbound dto.AssistantInbound) (dto.AssistantMessage, error) {
	if err := s.validator.Struct(inbound); err != nil {
		return dto.AssistantMessage{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(inbound.Message))
	if clean == "" {
		return dto.AssistantMessage{}, fmt.Errorf("message empty after sanitization")
	}

	question := dto.AssistantMessage{Role: "user", Content: clean, CreatedAt: time.Now().UTC()}
	s.append(ctx, userID, question)

	content, err := s.engine.Complete(ctx, ai.CompletionRequest{
		System: assistantSystemPrompt,
		User:   clean,
	})
	if err != nil {
		return dto.AssistantMessage{}, err
	}

	reply := dto.AssistantMessage{Role: "assistant", Content: content, CreatedAt: time.Now().UTC()}
	s.append(ctx, userID, reply)

	return reply, nil
}

// History returns the stored conversation, oldest first.
func (s *assistantService) History(ctx context.Context, userID string) (dto.AssistantHistoryResponse, error) {
	if s.redis == nil {
		return dto.AssistantHistoryResponse{Messages: []dto.AssistantMessage{}}, nil
	}

	entries, err := s.redis.LRange(ctx, s.historyKey(userID), 0, -1).Result()
	if err != nil {
		return dto.AssistantHistoryResponse{}, err
	}

	messages := make([]dto.AssistantMessage, 0, len(entries))
	for _, entry := range entries {
		var message dto.AssistantMessage
		if err := json.Unmarshal([]byte(entry), &message); err != nil {
			continue
		}
		messages = append(messages, message)
	}

	return dto.AssistantHistoryResponse{Messages: messages}, nil
}

// append stores one turn in the bounded session history, best effort.
func (s *assistantService) append(ctx context.Context, userID string, message dto.AssistantMessage) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return
	}

	key := s.historyKey(userID)
	pipe := s.redis.Pipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-s.historySize), -1)
	pipe.Expire(ctx, key, s.sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store assistant history")
	}
}

func (s *assistantService) historyKey(userID string) string {
	return "assistant:history:" + userID
}
