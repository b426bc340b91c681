package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPlaceholderSide = 4000

// Placeholder renders a grey SVG of the requested size.
func (h *Handler) Placeholder(c *gin.Context) {
	width, errW := strconv.Atoi(c.Param("width"))
	height, errH := strconv.Atoi(c.Param("height"))
	if errW != nil || errH != nil || width <= 0 || height <= 0 ||
		width > maxPlaceholderSide || height > maxPlaceholderSide {
		respondError(c, http.StatusBadRequest, "Invalid dimensions", "")
		return
	}

	svg := fmt.Sprintf("<svg width='%d' height='%d' xmlns='http://www.w3.org/2000/svg'>"+
		"<rect width='100%%' height='100%%' fill='#eee'/>"+
		"<text x='50%%' y='50%%' dominant-baseline='middle' text-anchor='middle' fill='#aaa' font-size='20'>%dx%d</text>"+
		"</svg>", width, height, width, height)

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
