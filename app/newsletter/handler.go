package newsletter

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mytheresa/go-storefront/newsletter"
)

type SubscribeRequest struct {
	Email string `json:"email"`
}

type Response struct {
	State   string `json:"state"`
	Email   string `json:"email"`
	Message string `json:"message,omitempty"`
}

type NewsletterHandler struct {
	subscriber newsletter.Subscriber
	logger     *zap.Logger
}

func NewNewsletterHandler(s newsletter.Subscriber, logger *zap.Logger) *NewsletterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsletterHandler{subscriber: s, logger: logger}
}

// HandleSubscribe runs one subscribe form submission and reports where the
// form ended up.
func (h *NewsletterHandler) HandleSubscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	flow := newsletter.NewFlow(h.subscriber, newsletter.WithLogger(h.logger))
	flow.SetEmail(req.Email)
	err := flow.Subscribe(c.Request.Context())
	snap := flow.Snapshot()
	resp := Response{
		State:   snap.State.String(),
		Email:   snap.Email,
		Message: snap.Message,
	}

	var invalid *newsletter.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, resp)
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, newsletter.ErrSubscribeFailed):
		c.JSON(http.StatusBadGateway, resp)
	default:
		h.logger.Error("newsletter subscription", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp)
	}
}
