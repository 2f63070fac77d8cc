package v1

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/homematch/assistant-api/internal/domain/pipeline"
	"github.com/homematch/assistant-api/internal/interfaces/httpserver/handlers"
)

type ingestMessageRequest struct {
	SenderID string `json:"sender_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

type messageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderRole     string    `json:"sender_role"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	MessageType    string    `json:"message_type"`
	CreatedAt      time.Time `json:"created_at"`
	Status         string    `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func registerConversationRoutes(router gin.IRoutes, provider *handlers.Provider) {
	router.POST("/conversations/:id/messages", ingestMessage(provider.Message))
	router.GET("/conversations/:id/handoff", getHandoff(provider.Handoff))
}

// ingestMessage accepts a user message, persists it, and queues response
// generation. Responds 202: the assistant reply is delivered asynchronously.
func ingestMessage(handler *handlers.MessageHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ingestMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		msg, err := handler.Ingest(c.Request.Context(), c.Param("id"), req.SenderID, req.Content)
		if err != nil {
			switch {
			case errors.Is(err, handlers.ErrBlankContent):
				c.JSON(http.StatusBadRequest, errorResponse{Error: "content must not be blank"})
			case errors.Is(err, pipeline.ErrQueueFull):
				c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "assistant is busy, try again shortly"})
			case strings.Contains(err.Error(), "not found"):
				c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
			}
			return
		}

		c.JSON(http.StatusAccepted, messageResponse{
			ID:             msg.PublicID,
			ConversationID: msg.ConversationID,
			SenderRole:     string(msg.SenderRole),
			SenderID:       msg.SenderID,
			Content:        msg.Content,
			MessageType:    msg.MessageType,
			CreatedAt:      msg.CreatedAt,
			Status:         "queued",
		})
	}
}

// getHandoff recomputes the handoff recommendation for a conversation.
func getHandoff(handler *handlers.HandoffHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		signal, err := handler.Evaluate(c.Request.Context(), c.Param("id"))
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, signal)
	}
}
