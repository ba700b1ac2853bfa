package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/healthdesk/internal/apperr"
	"github.com/Skufu/healthdesk/internal/chat"
	"github.com/Skufu/healthdesk/internal/metrics"
	"github.com/Skufu/healthdesk/internal/risk"
)

const (
	msgPredictFailed = "Analiz sırasında bir hata oluştu. Lütfen form bilgilerinizi kontrol edin."
	msgChatFailed    = "Chatbot geçici olarak kullanılamıyor. Lütfen daha sonra tekrar deneyin."
)

type handlers struct {
	deps Deps
}

type chatRequest struct {
	Message *string `json:"message"`
}

func (h *handlers) predict(c *gin.Context) {
	// The model check comes before any parsing of the form.
	if !h.deps.Assessor.Available() {
		h.fail(c, apperr.Unavailable("Model yüklenemedi. Lütfen daha sonra tekrar deneyin."), msgPredictFailed)
		return
	}

	var req risk.Request
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, apperr.Validation("form", "Geçersiz veri: sayısal alanlar hatalı"), msgPredictFailed)
		return
	}

	res, err := h.deps.Assessor.Assess(req)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindValidation {
			err = apperr.Validation(appErr.Field, "Geçersiz veri: %s", appErr.Message)
		}
		h.fail(c, err, msgPredictFailed)
		return
	}

	metrics.RecordRiskTier(res.Tier.String())
	c.JSON(http.StatusOK, gin.H{
		"risk_percentage": res.RiskPercentage,
		"risk_level":      res.Level,
		"risk_class":      res.Class,
		"recommendation":  res.Recommendation,
		"actions":         res.Actions,
		"bmi":             math.Round(res.BMI*10) / 10,
		"status":          "success",
	})
}

func (h *handlers) chatbot(c *gin.Context) {
	if c.ContentType() != gin.MIMEJSON {
		h.fail(c, apperr.Validation("content-type", "Content-Type application/json olmalıdır"), msgChatFailed)
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == nil {
		h.fail(c, apperr.Validation("message", "Mesaj bulunamadı"), msgChatFailed)
		return
	}

	message := strings.TrimSpace(*req.Message)
	if message == "" {
		h.fail(c, apperr.Validation("message", "Boş mesaj gönderilemez"), msgChatFailed)
		return
	}
	if utf8.RuneCountInString(message) > h.deps.MaxMessageLength {
		h.fail(c, apperr.Validation("message", "Mesaj çok uzun. (max %d karakter)", h.deps.MaxMessageLength), msgChatFailed)
		return
	}

	reply := h.deps.Matcher.Reply(message)
	metrics.RecordChatReply(string(reply.Outcome))
	if h.deps.IndexReady && (reply.Outcome == chat.OutcomeAnswered || reply.Outcome == chat.OutcomeFallback) {
		metrics.ChatMatchScore.Observe(reply.Score)
	}

	h.deps.Logger.Info("chatbot reply",
		zap.String("question", preview(message, 50)),
		zap.Int("response_length", utf8.RuneCountInString(reply.Text)),
		zap.String("outcome", string(reply.Outcome)),
		zap.Float64("score", reply.Score),
		zap.String("request_id", c.GetString(requestIDHeader)),
	)

	c.JSON(http.StatusOK, gin.H{
		"response":  reply.Text,
		"status":    "success",
		"faq_count": h.deps.FAQCount,
		"timestamp": h.deps.Now().Format(time.RFC3339),
	})
}

func (h *handlers) ready(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	body := gin.H{
		"faq_index": "ok",
		"model":     "ok",
		"db":        "disabled",
	}

	if !h.deps.IndexReady {
		body["faq_index"] = "unavailable"
		status = "degraded"
	}
	if !h.deps.Assessor.Available() {
		body["model"] = "unavailable"
		status = "degraded"
	}

	if h.deps.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body["db"] = "ok"
		if err := h.deps.DB.Ping(ctx); err != nil {
			body["db"] = "unhealthy: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	body["status"] = status
	c.JSON(code, body)
}

// fail writes err as the single structured error of the response. Internal
// details are logged, never returned.
func (h *handlers) fail(c *gin.Context, err error, internalMessage string) {
	kind := apperr.KindOf(err)
	metrics.RecordError(kind.String())

	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.String("kind", kind.String()),
		zap.String("request_id", c.GetString(requestIDHeader)),
		zap.Error(err),
	}
	if apperr.IsValidation(err) {
		h.deps.Logger.Info("request rejected", fields...)
	} else {
		h.deps.Logger.Error("request failed", fields...)
	}

	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error":  apperr.PublicMessage(err, internalMessage),
		"status": "error",
	})
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
