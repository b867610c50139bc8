package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradequest/config"
	"tradequest/engine"
	"tradequest/models"
)

// APIHandler handles HTTP API requests
type APIHandler struct {
	app *App
	cfg *config.Config
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(app *App, cfg *config.Config) *APIHandler {
	return &APIHandler{app: app, cfg: cfg}
}

type contextKey string

const usernameKey contextKey = "username"

// requireAuth resolves the bearer token and stores the username in the context.
func (h *APIHandler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			h.jsonError(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		username, err := h.app.ValidateToken(token)
		if err != nil {
			h.jsonError(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFromRequest returns the engine for the authenticated user.
func (h *APIHandler) sessionFromRequest(r *http.Request) (*engine.Engine, bool) {
	username, _ := r.Context().Value(usernameKey).(string)
	if username == "" {
		return nil, false
	}
	eng, err := h.app.Session(username)
	if err != nil {
		return nil, false
	}
	return eng, true
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister creates a new account with a fresh ledger
func (h *APIHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.app.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.jsonResponse(w, map[string]string{"token": token})
}

// handleLogin verifies credentials and hydrates the session
func (h *APIHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.app.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	h.jsonResponse(w, map[string]string{"token": token})
}

// handleHealth returns the health status of the application
func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"database": "connected",
		},
	}

	if err := h.app.Health(r.Context()); err != nil {
		status["status"] = "degraded"
		status["services"].(map[string]string)["database"] = "disconnected"
	}

	h.jsonResponse(w, status)
}

// handleGetPortfolio returns the ledger plus a valuation at latest prices
func (h *APIHandler) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.sessionFromRequest(r)
	if !ok {
		h.jsonError(w, "no active session, log in first", http.StatusUnauthorized)
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"state":     eng.State(),
		"valuation": eng.Valuate(h.app.LatestPrices()),
	})
}

type buyRequest struct {
	AssetID  string          `json:"asset_id"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
	Leverage decimal.Decimal `json:"leverage"`
}

// handleBuy executes a buy, covering open shorts first
func (h *APIHandler) handleBuy(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.sessionFromRequest(r)
	if !ok {
		h.jsonError(w, "no active session, log in first", http.StatusUnauthorized)
		return
	}

	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Price.IsZero() {
		req.Price = h.app.LatestPrices()[req.AssetID]
	}
	if req.Leverage.IsZero() {
		req.Leverage = decimal.NewFromInt(1)
	}

	executed := eng.Buy(req.AssetID, req.Price, req.Amount, req.Leverage)
	h.jsonResponse(w, map[string]interface{}{"executed": executed})
}

type sellRequest struct {
	AssetID    string          `json:"asset_id"`
	Price      decimal.Decimal `json:"price"`
	Amount     decimal.Decimal `json:"amount"`
	Short      bool            `json:"short"`
	Leverage   decimal.Decimal `json:"leverage"`
	PositionID string          `json:"position_id"`
}

// handleSell executes a sell, short open, or leveraged close
func (h *APIHandler) handleSell(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.sessionFromRequest(r)
	if !ok {
		h.jsonError(w, "no active session, log in first", http.StatusUnauthorized)
		return
	}

	var req sellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Price.IsZero() {
		req.Price = h.app.LatestPrices()[req.AssetID]
	}

	opts := engine.SellOptions{Short: req.Short, Leverage: req.Leverage}
	if req.PositionID != "" {
		id, err := uuid.Parse(req.PositionID)
		if err != nil {
			h.jsonError(w, "invalid position_id", http.StatusBadRequest)
			return
		}
		opts.PositionID = &id
	}

	executed := eng.Sell(req.AssetID, req.Price, req.Amount, opts)
	h.jsonResponse(w, map[string]interface{}{"executed": executed})
}

// handleGetOrders lists open conditional orders
func (h *APIHandler) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.sessionFromRequest(r)
	if !ok {
		h.jsonError(w, "no active session, log in first", http.StatusUnauthorized)
		return
	}

	h.jsonResponse(w, eng.State().Orders)
}

type orderRequest struct {
	AssetID      string          `json:"asset_id"`
	Type         string          `json:"type"`
	TriggerPrice decimal.Decimal `json:"trigger_price"`
	Amount       decimal.Decimal `json:"amount"`
}

// handleCreateOrder places a stop-loss or take-profit order
func (h *APIHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.sessionFromRequest(r)
	if !ok {
		h.jsonError(w, "no active session, log in first", http.StatusUnauthorized)
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, created := eng.CreateOrder(req.AssetID, models.OrderType(req.Type), req.TriggerPrice, req.Amount)
	if !created {
		h.jsonError(w, "order rejected", http.StatusUnprocessableEntity)
		return
	}

	h.jsonResponse(w, order)
}

// handleCancelOrder removes an order by ID
func (h *APIHandler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.sessionFromRequest(r)
	if !ok {
		h.jsonError(w, "no active session, log in first", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	if !eng.CancelOrder(id) {
		h.jsonError(w, "order not found", http.StatusNotFound)
		return
	}

	h.jsonResponse(w, map[string]string{"status": "cancelled"})
}

// handleGetSkills returns the catalog with the player's unlock state
func (h *APIHandler) handleGetSkills(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.sessionFromRequest(r)
	if !ok {
		h.jsonError(w, "no active session, log in first", http.StatusUnauthorized)
		return
	}

	state := eng.State()
	type skillView struct {
		models.SkillInfo
		Unlocked   bool `json:"unlocked"`
		Affordable bool `json:"affordable"`
	}

	views := make([]skillView, 0, len(models.SkillCatalog))
	for _, info := range models.SkillCatalog {
		views = append(views, skillView{
			SkillInfo:  info,
			Unlocked:   state.Skills.Has(info.ID),
			Affordable: eng.CanUnlockSkill(info.ID),
		})
	}

	h.jsonResponse(w, map[string]interface{}{
		"skills":       views,
		"skill_points": state.SkillPoints,
	})
}

// handleUnlockSkill spends points to unlock a skill
func (h *APIHandler) handleUnlockSkill(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.sessionFromRequest(r)
	if !ok {
		h.jsonError(w, "no active session, log in first", http.StatusUnauthorized)
		return
	}

	id := models.SkillID(chi.URLParam(r, "id"))
	if !eng.UnlockSkill(id) {
		h.jsonError(w, "skill cannot be unlocked", http.StatusUnprocessableEntity)
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"unlocked":     id,
		"skill_points": eng.State().SkillPoints,
	})
}

// handleGetPrices returns quotes for the tracked assets
func (h *APIHandler) handleGetPrices(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.app.Quotes(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.jsonResponse(w, quotes)
}

// handleLeaderboard returns the top players by net worth
func (h *APIHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.app.Leaderboard(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	h.jsonResponse(w, entries)
}

func (h *APIHandler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *APIHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
