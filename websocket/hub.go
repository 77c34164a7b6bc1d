package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// The hub feeds admin dashboards a live stream of finalized attempts.

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

type SubmissionEvent struct {
	AttemptID  uuid.UUID `json:"attempt_id"`
	ExamID     uuid.UUID `json:"exam_id"`
	ExamTitle  string    `json:"exam_title"`
	UserID     uuid.UUID `json:"user_id"`
	FullName   string    `json:"full_name"`
	Score      int       `json:"score"`
	Percentage int       `json:"percentage"`
	Passed     bool      `json:"passed"`
	Status     string    `json:"status"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var submissions = make(chan SubmissionEvent, 64)

// PublishSubmission never blocks the request path; if the hub is not
// draining, the event is dropped.
func PublishSubmission(event SubmissionEvent) {
	select {
	case submissions <- event:
	default:
		log.Printf("Submission feed full, dropping event for attempt %s", event.AttemptID)
	}
}

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Feed client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Feed client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case event := <-submissions:
			clientsMu.RLock()
			var stale []uuid.UUID
			for userID, conn := range clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error sending event to feed client %s: %v", userID, err)
					conn.Close()
					stale = append(stale, userID)
				}
			}
			clientsMu.RUnlock()
			if len(stale) > 0 {
				clientsMu.Lock()
				for _, userID := range stale {
					delete(clients, userID)
				}
				clientsMu.Unlock()
			}
		}
	}
}
