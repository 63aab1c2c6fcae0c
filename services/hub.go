package services

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans freshly aggregated results out to creators watching a survey's
// results page. Clients are keyed by survey id; every accepted submission
// triggers a broadcast of the recomputed aggregates.
type Hub struct {
	clients        map[*Client]bool
	register       chan *Client
	unregister     chan *Client
	mutex          sync.RWMutex
	resultsService *ResultsService
}

type Client struct {
	hub      *Hub
	id       string
	socket   *websocket.Conn
	send     chan []byte
	surveyID uint
	userID   uint
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub(resultsService *ResultsService) *Hub {
	return &Hub{
		clients:        make(map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		resultsService: resultsService,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %s registered for survey %d results (user %d) - Total clients: %d",
				client.id, client.surveyID, client.userID, h.clientCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Client %s unregistered from survey %d results - Total clients: %d",
					client.id, client.surveyID, len(h.clients))
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) clientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastResults recomputes a survey's aggregates and pushes them to
// every client watching that survey. Called after each accepted submission.
func (h *Hub) BroadcastResults(surveyID uint) {
	h.mutex.RLock()
	watched := false
	for client := range h.clients {
		if client.surveyID == surveyID {
			watched = true
			break
		}
	}
	h.mutex.RUnlock()

	if !watched {
		return
	}

	results, err := h.resultsService.ComputeSurveyResults(surveyID)
	if err != nil {
		log.Printf("Error computing results for survey %d broadcast: %v", surveyID, err)
		return
	}

	message := Message{
		Type:    "results_update",
		Payload: results,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling results message: %v", err)
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		if client.surveyID != surveyID {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.mutex.Unlock()
}

func (h *Hub) RegisterClient(conn *websocket.Conn, surveyID, userID uint) *Client {
	client := &Client{
		hub:      h,
		id:       generateClientID(),
		socket:   conn,
		send:     make(chan []byte, 256),
		surveyID: surveyID,
		userID:   userID,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer func() {
		c.socket.Close()
	}()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}

		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		response := Message{
			Type:    "pong",
			Payload: "pong",
		}
		data, _ := json.Marshal(response)
		c.send <- data

	case "request_results":
		// Watcher asked for an immediate refresh.
		c.hub.BroadcastResults(c.surveyID)

	default:
		log.Printf("Unknown message type: %s from user %d watching survey %d", msg.Type, c.userID, c.surveyID)
	}
}

func generateClientID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "client_" + hex.EncodeToString(b)
}
