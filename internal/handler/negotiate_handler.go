package handler

import (
	"net/http"

	"taskboard/internal/auth"
	"taskboard/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NegotiateHandler struct {
	secret string
	hubURL string
	hub    *hub.Hub
}

// NewNegotiateHandler wires the connection-info endpoint and the websocket
// endpoint it points at. hubURL overrides the advertised address; when empty
// the address is derived from the request host.
func NewNegotiateHandler(secret, hubURL string, h *hub.Hub) *NegotiateHandler {
	return &NegotiateHandler{secret: secret, hubURL: hubURL, hub: h}
}

// Negotiate hands out the websocket address and a short-lived access token.
// The endpoint is public; an identity header, when present, binds the token
// to that user.
func (h *NegotiateHandler) Negotiate(c *gin.Context) {
	// Anonymous viewers still get a token; each connection gets its own
	// identity so individual sockets stay distinguishable in the logs.
	userID := "anonymous-" + uuid.NewString()
	if header := c.GetHeader(auth.PrincipalHeader); header != "" {
		if principal, err := auth.ParsePrincipal(header); err == nil && principal.UserID != "" {
			userID = principal.UserID
		}
	}

	token, err := auth.GenerateHubToken(h.secret, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	url := h.hubURL
	if url == "" {
		scheme := "ws"
		if c.Request.TLS != nil {
			scheme = "wss"
		}
		url = scheme + "://" + c.Request.Host + "/api/hub/tasks"
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "accessToken": token})
}

// ServeHub upgrades to a websocket after validating the negotiate token.
func (h *NegotiateHandler) ServeHub(c *gin.Context) {
	token := c.Query("access_token")
	if _, err := auth.ParseHubToken(h.secret, token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
		return
	}

	h.hub.ServeWS(c.Writer, c.Request)
}
