package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/diabetree-app/diabetree/internal/domain"
)

// ─── Progression endpoints ──────────────────────────────────────────────────

// handleProgress runs a full evaluation and returns the committed state
// plus any transitions it produced.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.Evaluate(s.owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked, err := s.db.ListUnlockedAchievements(s.owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	unlockedAt := make(map[string]domain.UnlockedAchievement, len(unlocked))
	for _, u := range unlocked {
		unlockedAt[u.ID] = u
	}

	type achievementView struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		RewardCoins int64  `json:"reward_coins"`
		Unlocked    bool   `json:"unlocked"`
		UnlockedAt  string `json:"unlocked_at,omitempty"`
	}

	catalog := s.achievements.Catalog()
	out := make([]achievementView, len(catalog))
	for i, def := range catalog {
		v := achievementView{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			RewardCoins: def.RewardCoins,
		}
		if u, ok := unlockedAt[def.ID]; ok {
			v.Unlocked = true
			v.UnlockedAt = u.UnlockedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		out[i] = v
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": out,
		"unlocked":     len(unlocked),
		"total":        len(catalog),
	})
}

func (s *Server) handleMission(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.Evaluate(s.owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	state := result.Progress.DailyMission
	body := map[string]interface{}{
		"mission_id": state.CurrentMissionID,
		"completed":  state.IsCompleted,
		"date":       state.LastCheckedDate,
		"reward":     s.missions.RewardCoins(),
	}
	if def := s.missions.ByID(state.CurrentMissionID); def != nil {
		body["name"] = def.Name
		body["description"] = def.Description
	}
	writeJSON(w, http.StatusOK, body)
}

// ─── Shop and collection endpoints ──────────────────────────────────────────

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	progress, err := s.db.LoadProgress(s.owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	owned, err := s.db.OwnedCollectibles(s.owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ownedSet := make(map[string]bool, len(owned))
	for _, id := range owned {
		ownedSet[id] = true
	}

	type itemView struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Price int64  `json:"price"`
		Owned bool   `json:"owned"`
	}
	catalog := domain.Collectibles()
	items := make([]itemView, len(catalog))
	for i, c := range catalog {
		items[i] = itemView{ID: c.ID, Name: c.Name, Price: c.Price, Owned: ownedSet[c.ID]}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":    items,
		"balance":  progress.CoinBalance,
		"equipped": progress.EquippedCollectibleID,
	})
}

type itemRequest struct {
	ID string `json:"id"`
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := domain.CollectibleByID(req.ID)
	if item == nil {
		writeError(w, http.StatusNotFound, domain.ErrUnknownCollectible.Error())
		return
	}

	balance, err := s.engine.Purchase(s.owner, item.ID, item.Price)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientFunds):
			writeJSON(w, http.StatusPaymentRequired, map[string]interface{}{
				"error":   err.Error(),
				"balance": balance,
				"price":   item.Price,
			})
		case errors.Is(err, domain.ErrCollectibleOwned):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"purchased": item.ID,
		"balance":   balance,
	})
}

func (s *Server) handleEquip(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.engine.Equip(s.owner, req.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownCollectible):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrCollectibleNotOwned):
			writeError(w, http.StatusForbidden, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"equipped": req.ID})
}

// ─── Notification endpoints ─────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	pending, err := s.notifications.Pending(s.owner, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": pending,
		"count":         len(pending),
	})
}

func (s *Server) handleNotificationShown(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := s.notifications.MarkShown(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"shown": true})
}

// handleReset clears progression state. Readings survive, so the next
// evaluation rebuilds stage and achievements from the same history.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Reset(s.owner); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
