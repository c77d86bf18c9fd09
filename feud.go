// Financial Feud scoreboard
//
// One host runs the show from a laptop; the big screen and any team phones
// follow along. All scoring lives in games/feud; this file only moves
// actions in and snapshots out.
//
// Features:
// - WebSockets per game ID: /feud/:gameid and /feud/:gameid/ws
// - First connection to a game becomes the host and sees the answer key
// - Team devices join a side and may only answer for that side
// - Every action is applied through feud.Game.Apply under the hub lock
// - Rejected actions are reported only to the client that sent them
// - Free-text survey suggestions for the host, never auto-scored
// - Plain JSON state feed at /feud/:gameid/state
// - Games auto-reaped after the session timeout
// - QR codes for the scoreboard and for each team's join link

package main

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/feudbox/games/feud"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// ClientMessage is anything a browser can send. Type is either a
// feud.ActionType or one of "join" and "suggest".
type ClientMessage struct {
	Type   string `json:"type"`
	Team   int    `json:"team,omitempty"`   // join / team actions
	Index  int    `json:"index"`            // reveal_answer / select_choice
	Value  string `json:"value,omitempty"`  // submit_guess
	Points int    `json:"points,omitempty"` // award_open / award_lightning
	Order  []int  `json:"order,omitempty"`  // submit_ranking
	Team1  string `json:"team1,omitempty"`  // set_team_names
	Team2  string `json:"team2,omitempty"`  // set_team_names
	Text   string `json:"text,omitempty"`   // suggest
}

func (m ClientMessage) action() feud.Action {
	return feud.Action{
		Type:   feud.ActionType(m.Type),
		Team:   feud.Team(m.Team),
		Index:  m.Index,
		Value:  m.Value,
		Points: m.Points,
		Order:  m.Order,
		Names:  [2]string{m.Team1, m.Team2},
	}
}

// SessionInfoMessage tells a client which role its cookie holds.
type SessionInfoMessage struct {
	Type   string `json:"type"` // "session_info"
	GameID string `json:"game_id"`
	IsHost bool   `json:"is_host"`
	Team   int    `json:"team,omitempty"`
}

// StateMessage carries the scoreboard, filtered for the receiving role.
type StateMessage struct {
	Type  string        `json:"type"` // "state"
	State feud.Snapshot `json:"state"`
}

// SuggestionMessage answers a host "suggest" request.
type SuggestionMessage struct {
	Type  string      `json:"type"` // "suggestion"
	Text  string      `json:"text"`
	Match *feud.Match `json:"match,omitempty"`
}

// SimpleMessage is for notices sent to one client ("error", "not_allowed").
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type actionRequest struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id      string
	game    *feud.Game
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	actions  chan actionRequest
	done     chan struct{}

	mu sync.RWMutex

	createdAt    time.Time
	lastActive   time.Time
	hostPlayerID string
	teams        map[string]feud.Team // playerID -> team for team devices

	state feud.State
}

func newHub(cfg *Config, gameID string, game *feud.Game) *Hub {
	now := time.Now()
	return &Hub{
		id:         gameID,
		game:       game,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		actions:    make(chan actionRequest),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
		teams:      make(map[string]feud.Team),
		state:      game.NewState(cfg.team1, cfg.team2),
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case <-h.done:
			return

		case c := <-h.register:
			h.mu.Lock()
			h.lastActive = time.Now()

			// First connection becomes host
			if h.hostPlayerID == "" {
				h.hostPlayerID = c.playerID
				logf(cfg, "GAMES: Host connected to %s", h.id)
			}

			h.clients[c] = true
			h.sendLocked(c, h.sessionInfoLocked(c))
			h.sendLocked(c, h.stateForLocked(c))

			h.mu.Unlock()

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			_, onTeam := h.teams[c.playerID]
			h.mu.Unlock()

			if onTeam {
				go h.scheduleRemoval(c.playerID, cfg.playerTimeout)
			}

		case req := <-h.actions:
			h.handleMessage(cfg, req)
		}
	}
}

func (h *Hub) isHostLocked(c *Client) bool {
	return h.hostPlayerID != "" && c.playerID == h.hostPlayerID
}

func (h *Hub) sessionInfoLocked(c *Client) SessionInfoMessage {
	return SessionInfoMessage{
		Type:   "session_info",
		GameID: h.id,
		IsHost: h.isHostLocked(c),
		Team:   int(h.teams[c.playerID]),
	}
}

func (h *Hub) stateForLocked(c *Client) StateMessage {
	if h.isHostLocked(c) {
		return StateMessage{Type: "state", State: h.game.Snapshot(h.state, true)}
	}
	return StateMessage{Type: "state", State: h.game.TeamSnapshot(h.state, h.teams[c.playerID])}
}

// sendLocked queues msg for one client, dropping the client if its buffer
// is full.
func (h *Hub) sendLocked(c *Client, msg any) {
	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcastStateLocked sends every client the snapshot for its role. Team
// devices see their own pending answers but not the other team's.
func (h *Hub) broadcastStateLocked() {
	var views [4]*StateMessage // audience, team 1, team 2, host

	for client := range h.clients {
		role := int(h.teams[client.playerID])
		if h.isHostLocked(client) {
			role = len(views) - 1
		}

		if views[role] == nil {
			msg := h.stateForLocked(client)
			views[role] = &msg
		}
		h.sendLocked(client, *views[role])
	}
}

// scheduleRemoval waits for d and, if the device has not reconnected,
// forgets which team it was on.
func (h *Hub) scheduleRemoval(playerID string, d time.Duration) {
	select {
	case <-time.After(d):
	case <-h.done:
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.playerID == playerID {
			return
		}
	}

	delete(h.teams, playerID)
}

// teamActions are the only actions a team device may send, and only for
// its own team.
var teamActions = map[feud.ActionType]bool{
	feud.ActionSelectChoice:  true,
	feud.ActionSubmitGuess:   true,
	feud.ActionSubmitRanking: true,
}

func (h *Hub) handleMessage(cfg *Config, req actionRequest) {
	c := req.client
	msg := req.msg

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	isHost := h.isHostLocked(c)

	switch msg.Type {
	case "join":
		h.handleJoinLocked(cfg, c, msg)
		return

	case "suggest":
		if !isHost {
			h.sendLocked(c, SimpleMessage{Type: "not_allowed", Message: "Only the host can look up answers."})
			return
		}

		reply := SuggestionMessage{Type: "suggestion", Text: msg.Text}
		if m, ok := h.game.Suggest(h.state, msg.Text); ok {
			reply.Match = &m
		}
		h.sendLocked(c, reply)
		return
	}

	action := msg.action()

	if !isHost {
		team, onTeam := h.teams[c.playerID]
		if !onTeam || !teamActions[action.Type] {
			h.sendLocked(c, SimpleMessage{Type: "not_allowed", Message: "Only the host can do that."})
			return
		}
		action.Team = team
	}

	next, err := h.game.Apply(h.state, action)
	if err != nil {
		logf(cfg, "GAMES: Rejected %s in %s: %v", action.Type, h.id, err)
		h.sendLocked(c, SimpleMessage{Type: "error", Message: describe(err)})
		return
	}

	before := h.state.Scores
	h.state = next

	if before != next.Scores {
		logf(cfg, "GAMES: %s in %s, scores now %d-%d", action.Type, h.id, next.Scores[0], next.Scores[1])
	}

	h.broadcastStateLocked()
}

func (h *Hub) handleJoinLocked(cfg *Config, c *Client, msg ClientMessage) {
	if h.isHostLocked(c) {
		return
	}

	team := feud.Team(msg.Team)
	switch {
	case team == 0:
		delete(h.teams, c.playerID)
	case team.Valid():
		h.teams[c.playerID] = team
		logf(cfg, "GAMES: Device joined %s on team %d", h.id, team)
	default:
		h.sendLocked(c, SimpleMessage{Type: "error", Message: describe(feud.ErrInvalidTeam)})
		return
	}

	h.sendLocked(c, h.sessionInfoLocked(c))
	h.sendLocked(c, h.stateForLocked(c))
}

// describe turns an engine error into text for the scoreboard.
func describe(err error) string {
	switch {
	case errors.Is(err, feud.ErrInvalidGuess):
		return "Please enter a number."
	case errors.Is(err, feud.ErrAlreadyScored), errors.Is(err, feud.ErrAlreadyRevealed):
		return "That has already been scored."
	case errors.Is(err, feud.ErrAwaitingTeams):
		return "Both teams need to answer first."
	}

	msg := err.Error()
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

// snapshot returns the viewer state, safe to call from HTTP handlers.
func (h *Hub) snapshot() feud.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.game.Snapshot(h.state, false)
}

// closeAll disconnects all clients of this hub (used by reaper).
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
	default:
		close(h.done)
	}

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	playerCookieName = "feudbox_id"
	maxMessageSize   = 4096
)

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// GameManager holds a set of hubs keyed by game ID, so each /feud/:gameid
// is its own isolated scoreboard.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	game        *feud.Game
	idleTimeout time.Duration
}

func newGameManager(game *feud.Game, idleTimeout time.Duration) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		game:        game,
		idleTimeout: idleTimeout,
	}
	if idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(cfg, gameID, gm.game)
	gm.hubs[gameID] = hub
	go hub.run(cfg)
	return hub
}

func (gm *GameManager) lookup(gameID string) (*Hub, bool) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	hub, ok := gm.hubs[gameID]
	return hub, ok
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	for {
		buf := make([]byte, 6)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, len(buf))
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	for range ticker.C {
		gm.reap(time.Now().Add(-gm.idleTimeout))
	}
}

func (gm *GameManager) reap(cutoff time.Time) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		hub.mu.RLock()
		last := hub.lastActive
		hub.mu.RUnlock()

		if last.Before(cutoff) {
			delete(gm.hubs, id)
			go hub.closeAll()
		}
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)

		hub := gm.getHub(cfg, gameID)

		// Upgrade writes its own response, so carry the cookie across.
		conn, err := upgrader.Upgrade(w, r, w.Header())
		if err != nil {
			logf(cfg, "ERROR: websocket upgrade for %s from %s: %v", gameID, realIP(r), err)
			return
		}
		conn.SetReadLimit(maxMessageSize)

		client := &Client{
			conn:     conn,
			send:     make(chan any, 16),
			playerID: playerID,
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "" {
			continue
		}

		select {
		case h.actions <- actionRequest{client: c, msg: msg}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// gameURL rebuilds the public URL of the game page from the request.
func gameURL(cfg *Config, r *http.Request, trim string) string {
	scheme := cfg.scheme()
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	u := url.URL{
		Scheme: scheme,
		Host:   r.Host,
		Path:   strings.TrimSuffix(r.URL.Path, trim),
	}
	return u.String()
}

// qrHandler renders a PNG QR code for the game. ?team=1 or ?team=2 encodes
// that team's join link instead of the plain scoreboard.
func qrHandler(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("gameid") == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		target := gameURL(cfg, r, "/qr")
		if team := r.URL.Query().Get("team"); team != "" {
			n, err := strconv.Atoi(team)
			if err != nil || !feud.Team(n).Valid() {
				http.Error(w, "team must be 1 or 2", http.StatusBadRequest)
				return
			}
			target += "?team=" + team
		}

		const qrSize = 320
		png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

// serveState exposes the viewer snapshot as JSON for anything that cannot
// hold a websocket open.
func serveState(cfg *Config, gm *GameManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		hub, ok := gm.lookup(ps.ByName("gameid"))
		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		if err := json.NewEncoder(w).Encode(hub.snapshot()); err != nil {
			errs <- err
		}
	}
}

func getIndexHandler(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile("assets/feud/index.html")
		if err != nil {
			http.Error(w, "missing client", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		if _, err := w.Write(data); err != nil {
			errs <- err
		}
	}
}

// redirectNewGame handles GET /feud by generating a new random game ID
// (with server-side collision detection) and redirecting to /feud/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerFeudGame sets up routes so that:
//   - $path                  → redirects to new random game
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/state    → JSON scoreboard
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerFeudGame(cfg *Config, path string, game *feud.Game, mux *httprouter.Router, errs chan<- error) *GameManager {
	gm := newGameManager(game, cfg.sessionTimeout)

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))
	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg, errs))
	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))
	mux.GET(cfg.prefix+path+"/:gameid/state", serveState(cfg, gm, errs))
	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler(cfg, errs))

	return gm
}
