package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gowheels/internal/assistant"
	"gowheels/internal/notify"
	"gowheels/internal/payment"
	"gowheels/internal/realtime"
	"gowheels/internal/store"
)

// Handler carries the dependencies shared by every HTTP handler.
type Handler struct {
	Store     *store.Store
	Reports   *store.Reports
	Assistant *assistant.Assistant
	Gateway   *payment.Gateway
	Notifiers []notify.Notifier
	Hub       *realtime.Hub

	// background work (AI replies, notifications) outlives the request
	background sync.WaitGroup
	baseCtx    context.Context
}

func NewHandler(s *store.Store, reports *store.Reports, a *assistant.Assistant, g *payment.Gateway, hub *realtime.Hub, notifiers ...notify.Notifier) *Handler {
	return &Handler{
		Store:     s,
		Reports:   reports,
		Assistant: a,
		Gateway:   g,
		Notifiers: notifiers,
		Hub:       hub,
		baseCtx:   context.Background(),
	}
}

// WithContext sets the parent context of background work. Cancelling it
// aborts tasks still running.
func (h *Handler) WithContext(ctx context.Context) *Handler {
	h.baseCtx = ctx
	return h
}

// Wait blocks until background work started by handlers has finished.
func (h *Handler) Wait() {
	h.background.Wait()
}

// Drain waits for background work like Wait but gives up when ctx is done.
func (h *Handler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) goBackground(name string, timeout time.Duration, fn func(ctx context.Context) error) {
	h.background.Add(1)
	go func() {
		defer h.background.Done()
		ctx, cancel := context.WithTimeout(h.baseCtx, timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logrus.WithError(err).WithField("task", name).Error("background task failed")
		}
	}()
}

func respondError(c *gin.Context, status int, message, code string) {
	body := gin.H{"error": message}
	if code != "" {
		body["code"] = code
	}
	c.JSON(status, body)
}

// respondInternal logs err and answers 500 with the raw error text.
func respondInternal(c *gin.Context, handler string, err error) {
	logrus.WithError(err).WithFields(logrus.Fields{
		"handler":    handler,
		"request_id": c.GetString("request_id"),
	}).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error: " + err.Error()})
}

// parseID reads a positive integer id.
func parseID(raw string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// idParam reads the id from the path, falling back to ?id= for the
// collection-level PUT/DELETE routes.
func idParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	if raw == "" {
		raw = c.Query("id")
	}
	return parseID(raw)
}

// optionalID parses an optional id query parameter. ok is false only when
// the parameter is present but malformed.
func optionalID(c *gin.Context, key string) (id *uint, ok bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return nil, true
	}
	n, valid := parseID(raw)
	if !valid {
		return nil, false
	}
	return &n, true
}

// optionalBool parses true/false query values.
func optionalBool(c *gin.Context, key string) (*bool, bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, false
	}
	return &b, true
}

func page(c *gin.Context) store.Page {
	return store.ParsePage(c.Query("limit"), c.Query("offset"))
}

// bindBody decodes the JSON body into a generic map so handlers can tell
// absent keys from explicit nulls and check value types.
func bindBody(c *gin.Context) (map[string]interface{}, bool) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil || body == nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON payload", "INVALID_JSON")
		return nil, false
	}
	return body, true
}

// apiError is a client error produced while validating a request.
type apiError struct {
	Status  int
	Message string
	Code    string
}

func badRequest(message, code string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: message, Code: code}
}

func (e *apiError) write(c *gin.Context) {
	respondError(c, e.Status, e.Message, e.Code)
}
