package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// SubscribeEvents handles the GET /journeys/{id}/events request (SSE). Every applied
// mutation is sent as a JourneyDiff; the stream ends with a "closed" event when the
// session goes away.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	diffs, cancel := sess.Watch()
	defer cancel()

	var watchList []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, field := range strings.Split(raw, ",") {
			watchList = append(watchList, strings.TrimSpace(field))
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to journey updates", "journey_id", id, "watch", watchList)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "journey_id", id)
			return
		case diff, ok := <-diffs:
			if !ok {
				fmt.Fprintf(w, "event: closed\ndata: %s\n\n", id)
				flusher.Flush()
				return
			}
			if !watches(watchList, diff) {
				continue
			}
			data, err := json.Marshal(diff)
			if err != nil {
				s.logger.Error("SSE: Failed to encode diff", "journey_id", id, "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// watches reports whether diff touches any of the watched sections. An empty list
// watches everything.
func watches(watchList []string, diff *domain.JourneyDiff) bool {
	if len(watchList) == 0 {
		return true
	}
	for _, field := range watchList {
		switch field {
		case "properties":
			if diff.Properties != nil {
				return true
			}
		case "nodes":
			if diff.Nodes != nil {
				return true
			}
		case "functions":
			if diff.Functions != nil {
				return true
			}
		case "mappings":
			if diff.Mappings != nil {
				return true
			}
		case "edges":
			if diff.Edges != nil {
				return true
			}
		case "details":
			if diff.Name != nil || diff.Description != nil || diff.IsActive != nil {
				return true
			}
		}
	}
	return false
}
