package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"whatstoeat/internal/analytics"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// analyticsInterval is how often the live feed pushes a fresh report.
const analyticsInterval = 5 * time.Second

// handleWebSocket streams analytics reports to connected clients until
// the client goes away.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	go s.writeAnalytics(conn)
	go readUntilClosed(conn)
}

// writeAnalytics pushes a report immediately and then on every tick.
func (s *Server) writeAnalytics(conn *websocket.Conn) {
	ticker := time.NewTicker(analyticsInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		report, err := analytics.Generate(s.catalog, s.topK)
		if err != nil {
			log.Printf("analytics feed: %v", err)
			return
		}
		payload, err := json.Marshal(report)
		if err != nil {
			log.Printf("analytics feed: %v", err)
			return
		}
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
		<-ticker.C
	}
}

// readUntilClosed drains client messages so pings and close frames are
// processed, then closes the connection.
func readUntilClosed(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(512 * 1024) // 512KB
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}
