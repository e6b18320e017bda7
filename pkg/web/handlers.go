package web

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/chatoptimize/chatgraph/pkg/backend/chatsvc"
)

// ChatPath is the route the canvas dispatcher posts to.
const ChatPath = "/chat_optimize/chat"

type APIHandlers struct {
	chatService *chatsvc.Service
	validator   *validator.Validate
	logger      *slog.Logger
}

func NewAPIHandlers(chatService *chatsvc.Service, validator *validator.Validate, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		chatService: chatService,
		validator:   validator,
		logger:      logger.With("module", "web"),
	}
}

// PostChat runs one chat action. Provider errors are reported inside the
// transcript, so a well-formed request only fails on storage problems.
func (h *APIHandlers) PostChat(c fiber.Ctx) error {
	var req ChatRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	req.ApplyDefaults()

	result, err := h.chatService.Chat(c.Context(), chatsvc.Request{
		SessionID:    req.SessionID,
		Action:       req.Action,
		UserMessage:  req.UserMessage,
		SystemPrompt: req.SystemPrompt,
		Refresh:      req.RefreshSession,
		ModelName:    req.ModelName,
		BaseURL:      req.BaseURL,
		Config:       req.LLMConfig,
	})
	if err != nil {
		h.logger.Error("chat action failed", "session_id", req.SessionID, "action", req.Action, "error", err)

		return internalError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"message":   "Chatgraph API is healthy",
		"timestamp": time.Now().UTC(),
	})
}
