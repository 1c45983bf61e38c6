package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Maximum message size allowed from the peer. Clients only send control
	// frames and close messages.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StreamMessage is one websocket frame of a generation stream. Every
// character arrives in its own "char" message; a final "done" message carries
// the number of generated characters.
type StreamMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Generated int    `json:"generated,omitempty"`
}

// handleStream upgrades the request and streams the seed followed by the
// generated characters. Closing the connection stops generation.
func (a *ModelAPI) handleStream(w http.ResponseWriter, r *http.Request, h *hostedModel) {
	query := r.URL.Query()
	seed := query.Get("seed")

	requested := 0
	if raw := query.Get("length"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid length parameter")
			return
		}
		requested = n
	}
	length, err := a.generationLength(requested)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		a.logger.Warn("Websocket upgrade failed", "model", h.name, "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The read loop only exists to notice the peer going away.
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.mu.Lock()
	defer h.mu.Unlock()

	seedLen := len([]rune(seed))
	sent := 0
	stream := h.model.GenerateStream(ctx, seed, length)
	for ch := range stream {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err = conn.WriteJSON(StreamMessage{Type: "char", Text: string(ch)}); err != nil {
			a.logger.Debug("Stopping stream after write failure", "model", h.name, "error", err)
			cancel()
			// Drain so the generator can observe the cancellation and exit.
			for range stream {
			}
			return
		}
		sent++
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteJSON(StreamMessage{Type: "done", Generated: max(sent-seedLen, 0)})
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	a.logger.Debug("Stream finished", "model", h.name, "generated", max(sent-seedLen, 0))
}
