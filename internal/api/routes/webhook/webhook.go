// Package webhook contains the handler the chat platform delivers updates
// to. It adapts a raw update into an engine input, runs the conversation
// engine, and writes back the messages to deliver.
package webhook

import (
	stdjson "encoding/json"
	"log/slog"
	"net/http"

	"github.com/KobaLuck/recipe-bot/internal/engine"
	"github.com/KobaLuck/recipe-bot/internal/json"
)

// Update is one incoming chat update. Exactly one of Text, Photo or
// CallbackData is expected to be meaningful.
type Update struct {
	ChatID       int64  `json:"chat_id"`
	UserID       int64  `json:"user_id"`
	Text         string `json:"text"`
	Photo        string `json:"photo"`
	CallbackData string `json:"callback_data"`
}

type Handler struct {
	Engine *engine.Engine
	Logger *slog.Logger
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var update Update
	if err := json.Decode(&update, r.Body); err != nil {
		h.Logger.ErrorContext(r.Context(), "decoding update", slog.Any("error", err))
		http.Error(w, "malformed update", http.StatusBadRequest)
		return
	}
	if update.ChatID == 0 || update.UserID == 0 {
		http.Error(w, "missing chat_id or user_id", http.StatusBadRequest)
		return
	}

	in := engine.Input{
		Chat:        update.ChatID,
		User:        update.UserID,
		Text:        update.Text,
		PhotoHandle: update.Photo,
	}

	// Callback data is decoded exactly once, here. Updates carrying
	// unknown or malformed data are dropped, not answered.
	if update.CallbackData != "" {
		action, err := engine.ParseAction(update.CallbackData)
		if err != nil {
			h.Logger.WarnContext(r.Context(), "dropping update with bad callback data",
				slog.String("data", update.CallbackData), slog.Any("error", err))
			w.WriteHeader(http.StatusNoContent)
			return
		}
		in.Action = &action
	}

	reply := h.Engine.Handle(r.Context(), in)

	w.Header().Set("Content-Type", "application/json")
	if err := stdjson.NewEncoder(w).Encode(reply); err != nil {
		h.Logger.ErrorContext(r.Context(), "encoding reply", slog.Any("error", err))
	}
}
