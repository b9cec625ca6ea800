package server

import (
	"net/http"

	"keepsake/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// A two-person space serves one known frontend; origin policy is
		// enforced by the CORS middleware on the HTTP side.
		return true
	},
}

// WebSocketHandler upgrades an authenticated request and registers the
// client with the hub. Tokens arrive as a query parameter because the
// browser WebSocket API cannot set headers.
func WebSocketHandler(hub *Hub, authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		claims, err := authService.ParseAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := NewClient(hub, conn, userID, uuid.NewString())
		hub.register <- client
	}
}
