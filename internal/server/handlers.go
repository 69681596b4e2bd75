package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tavlaapp/tavla/internal/llm"
)

// Wire shapes mirror the completion-provider envelope the chat frontend
// already renders, so a degraded reply and a real one look the same to it.

type chatRequest struct {
	Messages []llm.Message `json:"messages"`
	// Functions is advisory context from the caller. The bridge advertises
	// the registry's own tools regardless, so it is accepted and ignored.
	Functions []llm.Tool `json:"functions,omitempty"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message llm.Message `json:"message"`
}

type invokeRequest struct {
	Name          string         `json:"name"`
	FuncArguments map[string]any `json:"funcArguments"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "messages is required"})
		return
	}

	reply, _, err := s.bridge.Run(r.Context(), req.Messages)
	if err != nil {
		// Only the caller's own context ends a turn with an error; there is
		// nobody left to answer.
		s.logger.Warn("chat turn aborted", "id", requestID(r.Context()), "err", err)
		return
	}

	// Always 200: "the assistant couldn't help" is a conversation outcome,
	// not a transport failure.
	writeJSON(w, http.StatusOK, chatResponse{
		Choices: []chatChoice{{Message: llm.Message{Role: "assistant", Content: reply}}},
	})
}

// handleTools serves the tool surface: GET lists the advertised tools,
// POST invokes one directly without going through the model.
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTools(w, r)
	case http.MethodPost:
		s.invokeTool(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	toolList, err := s.registry.List(r.Context())
	if err != nil {
		s.logger.Error("listing tools", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch tools"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": map[string]any{"functions": toolList},
	})
}

func (s *Server) invokeTool(w http.ResponseWriter, r *http.Request) {
	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if _, ok := s.registry.Resolve(req.Name); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Tool %s not found.", req.Name)})
		return
	}

	res := s.executor.Execute(r.Context(), "", req.Name, req.FuncArguments)
	if res.IsError {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": res.Content})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": res.Content})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
