// Package api is the HTTP surface: CRUD for the narrative hierarchy
// and its supporting records, plus the turn submission routes. Error
// codes map to HTTP statuses here and nowhere else.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/greymere/keeper-api/internal/clients/narrator"
	"github.com/greymere/keeper-api/internal/errors"
	turnorch "github.com/greymere/keeper-api/internal/orchestrators/turn"
	"github.com/greymere/keeper-api/internal/pkg/clock"
	"github.com/greymere/keeper-api/internal/pkg/idgen"
	"github.com/greymere/keeper-api/internal/repositories/actiondraft"
	"github.com/greymere/keeper-api/internal/repositories/campaign"
	"github.com/greymere/keeper-api/internal/repositories/chapter"
	"github.com/greymere/keeper-api/internal/repositories/character"
	"github.com/greymere/keeper-api/internal/repositories/npc"
	"github.com/greymere/keeper-api/internal/repositories/player"
	"github.com/greymere/keeper-api/internal/repositories/realm"
	"github.com/greymere/keeper-api/internal/repositories/scene"
	"github.com/greymere/keeper-api/internal/repositories/session"
	turnrepo "github.com/greymere/keeper-api/internal/repositories/turn"
	"github.com/greymere/keeper-api/internal/repositories/world"
)

// Config holds the dependencies for the HTTP handler.
type Config struct {
	WorldRepo     world.Repository
	RealmRepo     realm.Repository
	CampaignRepo  campaign.Repository
	ChapterRepo   chapter.Repository
	SceneRepo     scene.Repository
	TurnRepo      turnrepo.Repository
	CharacterRepo character.Repository
	NPCRepo       npc.Repository
	PlayerRepo    player.Repository
	SessionRepo   session.Repository
	DraftRepo     actiondraft.Repository

	Turns  turnorch.Service
	Oracle narrator.Client
	Clock  clock.Clock
	Logger *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()

	if c.WorldRepo == nil {
		vb.RequiredField("WorldRepo")
	}
	if c.RealmRepo == nil {
		vb.RequiredField("RealmRepo")
	}
	if c.CampaignRepo == nil {
		vb.RequiredField("CampaignRepo")
	}
	if c.ChapterRepo == nil {
		vb.RequiredField("ChapterRepo")
	}
	if c.SceneRepo == nil {
		vb.RequiredField("SceneRepo")
	}
	if c.TurnRepo == nil {
		vb.RequiredField("TurnRepo")
	}
	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.NPCRepo == nil {
		vb.RequiredField("NPCRepo")
	}
	if c.PlayerRepo == nil {
		vb.RequiredField("PlayerRepo")
	}
	if c.SessionRepo == nil {
		vb.RequiredField("SessionRepo")
	}
	if c.DraftRepo == nil {
		vb.RequiredField("DraftRepo")
	}
	if c.Turns == nil {
		vb.RequiredField("Turns")
	}
	if c.Oracle == nil {
		vb.RequiredField("Oracle")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

// Handler serves the /api/v1 routes.
type Handler struct {
	worldRepo     world.Repository
	realmRepo     realm.Repository
	campaignRepo  campaign.Repository
	chapterRepo   chapter.Repository
	sceneRepo     scene.Repository
	turnRepo      turnrepo.Repository
	characterRepo character.Repository
	npcRepo       npc.Repository
	playerRepo    player.Repository
	sessionRepo   session.Repository
	draftRepo     actiondraft.Repository

	turns  turnorch.Service
	oracle narrator.Client
	clock  clock.Clock
	logger *slog.Logger

	worldIDs     idgen.Generator
	realmIDs     idgen.Generator
	campaignIDs  idgen.Generator
	chapterIDs   idgen.Generator
	sceneIDs     idgen.Generator
	turnIDs      idgen.Generator
	characterIDs idgen.Generator
	npcIDs       idgen.Generator
	playerIDs    idgen.Generator
	sessionIDs   idgen.Generator
}

// NewHandler creates a new HTTP handler
func NewHandler(cfg *Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		worldRepo:     cfg.WorldRepo,
		realmRepo:     cfg.RealmRepo,
		campaignRepo:  cfg.CampaignRepo,
		chapterRepo:   cfg.ChapterRepo,
		sceneRepo:     cfg.SceneRepo,
		turnRepo:      cfg.TurnRepo,
		characterRepo: cfg.CharacterRepo,
		npcRepo:       cfg.NPCRepo,
		playerRepo:    cfg.PlayerRepo,
		sessionRepo:   cfg.SessionRepo,
		draftRepo:     cfg.DraftRepo,
		turns:         cfg.Turns,
		oracle:        cfg.Oracle,
		clock:         cfg.Clock,
		logger:        logger,
		worldIDs:      idgen.NewPrefixed("world"),
		realmIDs:      idgen.NewPrefixed("realm"),
		campaignIDs:   idgen.NewPrefixed("campaign"),
		chapterIDs:    idgen.NewPrefixed("chapter"),
		sceneIDs:      idgen.NewPrefixed("scene"),
		turnIDs:       idgen.NewPrefixed("turn"),
		characterIDs:  idgen.NewPrefixed("char"),
		npcIDs:        idgen.NewPrefixed("npc"),
		playerIDs:     idgen.NewPrefixed("player"),
		sessionIDs:    idgen.NewPrefixed("session"),
	}, nil
}

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/worlds", h.listWorlds).Methods(http.MethodGet)
	v1.HandleFunc("/worlds", h.createWorld).Methods(http.MethodPost)
	v1.HandleFunc("/worlds/{id}", h.getWorld).Methods(http.MethodGet)
	v1.HandleFunc("/worlds/{id}", h.updateWorld).Methods(http.MethodPut)
	v1.HandleFunc("/worlds/{id}", h.deleteWorld).Methods(http.MethodDelete)

	v1.HandleFunc("/realms", h.listRealms).Methods(http.MethodGet)
	v1.HandleFunc("/realms", h.createRealm).Methods(http.MethodPost)
	v1.HandleFunc("/realms/{id}", h.getRealm).Methods(http.MethodGet)
	v1.HandleFunc("/realms/{id}", h.updateRealm).Methods(http.MethodPut)
	v1.HandleFunc("/realms/{id}", h.deleteRealm).Methods(http.MethodDelete)

	v1.HandleFunc("/campaigns", h.listCampaigns).Methods(http.MethodGet)
	v1.HandleFunc("/campaigns", h.createCampaign).Methods(http.MethodPost)
	v1.HandleFunc("/campaigns/{id}", h.getCampaign).Methods(http.MethodGet)
	v1.HandleFunc("/campaigns/{id}", h.updateCampaign).Methods(http.MethodPut)
	v1.HandleFunc("/campaigns/{id}", h.deleteCampaign).Methods(http.MethodDelete)

	v1.HandleFunc("/chapters", h.listChapters).Methods(http.MethodGet)
	v1.HandleFunc("/chapters", h.createChapter).Methods(http.MethodPost)
	v1.HandleFunc("/chapters/{id}", h.getChapter).Methods(http.MethodGet)
	v1.HandleFunc("/chapters/{id}", h.updateChapter).Methods(http.MethodPut)
	v1.HandleFunc("/chapters/{id}", h.deleteChapter).Methods(http.MethodDelete)

	v1.HandleFunc("/scenes", h.listScenes).Methods(http.MethodGet)
	v1.HandleFunc("/scenes", h.createScene).Methods(http.MethodPost)
	v1.HandleFunc("/scenes/{id}", h.getScene).Methods(http.MethodGet)
	v1.HandleFunc("/scenes/{id}", h.updateScene).Methods(http.MethodPut)
	v1.HandleFunc("/scenes/{id}", h.deleteScene).Methods(http.MethodDelete)

	v1.HandleFunc("/characters", h.listCharacters).Methods(http.MethodGet)
	v1.HandleFunc("/characters", h.createCharacter).Methods(http.MethodPost)
	v1.HandleFunc("/characters/{id}", h.getCharacter).Methods(http.MethodGet)
	v1.HandleFunc("/characters/{id}", h.updateCharacter).Methods(http.MethodPut)
	v1.HandleFunc("/characters/{id}", h.deleteCharacter).Methods(http.MethodDelete)

	v1.HandleFunc("/npcs", h.listNPCs).Methods(http.MethodGet)
	v1.HandleFunc("/npcs", h.createNPC).Methods(http.MethodPost)
	v1.HandleFunc("/npcs/{id}", h.getNPC).Methods(http.MethodGet)
	v1.HandleFunc("/npcs/{id}", h.updateNPC).Methods(http.MethodPut)
	v1.HandleFunc("/npcs/{id}", h.deleteNPC).Methods(http.MethodDelete)

	v1.HandleFunc("/players", h.listPlayers).Methods(http.MethodGet)
	v1.HandleFunc("/players", h.createPlayer).Methods(http.MethodPost)
	v1.HandleFunc("/players/{id}", h.getPlayer).Methods(http.MethodGet)
	v1.HandleFunc("/players/{id}", h.updatePlayer).Methods(http.MethodPut)
	v1.HandleFunc("/players/{id}", h.deletePlayer).Methods(http.MethodDelete)

	v1.HandleFunc("/sessions", h.listSessions).Methods(http.MethodGet)
	v1.HandleFunc("/sessions", h.createSession).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}", h.getSession).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}", h.updateSession).Methods(http.MethodPut)
	v1.HandleFunc("/sessions/{id}", h.deleteSession).Methods(http.MethodDelete)

	v1.HandleFunc("/action-drafts", h.listActionDrafts).Methods(http.MethodGet)
	v1.HandleFunc("/action-drafts/session/{session_id}", h.clearActionDrafts).Methods(http.MethodDelete)
	v1.HandleFunc("/action-drafts/{session_id}/{player_id}", h.getActionDraft).Methods(http.MethodGet)
	v1.HandleFunc("/action-drafts/{session_id}/{player_id}", h.upsertActionDraft).Methods(http.MethodPut)
	v1.HandleFunc("/action-drafts/{session_id}/{player_id}", h.deleteActionDraft).Methods(http.MethodDelete)

	// Turn flow. The internal completion route is the narrator's
	// callback target and is registered before the {id} routes.
	v1.HandleFunc("/turns/internal/{id}/complete", h.completeTurn).Methods(http.MethodPost)
	v1.HandleFunc("/turns", h.listTurns).Methods(http.MethodGet)
	v1.HandleFunc("/turns", h.createTurn).Methods(http.MethodPost)
	v1.HandleFunc("/turns/{id}", h.getTurn).Methods(http.MethodGet)
	v1.HandleFunc("/turns/{id}", h.updateTurn).Methods(http.MethodPut)
	v1.HandleFunc("/turns/{id}", h.deleteTurn).Methods(http.MethodDelete)
	v1.HandleFunc("/turns/{id}/submit", h.submitTurn).Methods(http.MethodPost)
	v1.HandleFunc("/turns/{id}/ready", h.markTurnReady).Methods(http.MethodPost)
	v1.HandleFunc("/turns/{id}/status", h.turnStatus).Methods(http.MethodGet)

	v1.HandleFunc("/oracle/ask", h.askOracle).Methods(http.MethodPost)

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	h.respond(w, code.HTTPStatus(), errorBody{
		Code:    code.String(),
		Message: errors.GetMessage(err),
	})
}

func (h *Handler) decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.InvalidArgumentf("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

func requiredQuery(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", errors.InvalidArgumentf("%s query parameter is required", name)
	}
	return v, nil
}
