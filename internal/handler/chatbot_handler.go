package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/riskdash-backend/internal/models"
	"github.com/jengzang/riskdash-backend/internal/service"
	"github.com/jengzang/riskdash-backend/pkg/response"
)

// ChatbotHandler handles the community assistant endpoints
type ChatbotHandler struct {
	chatService *service.ChatService
}

// NewChatbotHandler creates a new chatbot handler
func NewChatbotHandler(chatService *service.ChatService) *ChatbotHandler {
	return &ChatbotHandler{
		chatService: chatService,
	}
}

// Ask handles POST /chatbot/ask
func (h *ChatbotHandler) Ask(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	answer, err := h.chatService.Ask(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, models.ChatResponse{Answer: answer})
}

// Quick handles GET /chatbot/quick/:type
func (h *ChatbotHandler) Quick(c *gin.Context) {
	var filter models.QuickFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	answer, err := h.chatService.Quick(c.Request.Context(), c.Param("type"), filter.SubRegion)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, models.ChatResponse{Answer: answer})
}

// RegisterRoutes mounts the chatbot endpoints on rg
func (h *ChatbotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ask", h.Ask)
	rg.GET("/quick/:type", h.Quick)
}
