package strategist

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"stratego_oracle/internal/domain/analysis"
	errs "stratego_oracle/internal/errors"
	"stratego_oracle/internal/httpresponse"
	strategistUC "stratego_oracle/internal/usecase/strategist"
	"stratego_oracle/internal/utils"
)

type StrategistHandler struct {
	log          *zap.SugaredLogger
	strategistUC *strategistUC.Strategist
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewStrategistHandler(log *zap.SugaredLogger, uc *strategistUC.Strategist) *StrategistHandler {
	return &StrategistHandler{
		log:          log,
		strategistUC: uc,
	}
}

func (h *StrategistHandler) Routes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Post("/analyze", h.HandleAnalyze)
	r.Post("/games", h.HandleNewGame)
	r.Delete("/games/{gameID}", h.HandleEndGame)
	r.Post("/games/{gameID}/analyze", h.HandleAnalyze)
	r.Get("/games/{gameID}/analyses", h.HandleListAnalyses)
	r.Get("/games/{gameID}/ws", h.HandleStream)
}

func (h *StrategistHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteJSON(h.log, w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleNewGame godoc
// @Summary Start a game session
// @Description Creates an oracle conversation that later analyses of the same game reuse
// @Tags games
// @Produce json
// @Success 201 {object} analysis.SessionCreateResponse
// @Failure 500 {object} httpresponse.ErrorResponse
// @Router /games [post]
func (h *StrategistHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	session, err := h.strategistUC.StartGame(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpresponse.WriteJSON(h.log, w, http.StatusCreated, analysis.SessionCreateResponse{
		GameID: session.ID,
		Model:  session.Model,
	})
}

func (h *StrategistHandler) HandleEndGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if err := h.strategistUC.EndGame(r.Context(), gameID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAnalyze godoc
// @Summary Suggest a move
// @Description Serves both /analyze (game id optional, in the body) and /games/{gameID}/analyze.
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body analysis.Request true "Game snapshot from the AI player's point of view"
// @Success 200 {object} analysis.Response
// @Failure 400 {object} httpresponse.ErrorResponse
// @Failure 404 {object} httpresponse.ErrorResponse
// @Failure 500 {object} httpresponse.ErrorResponse
// @Router /analyze [post]
func (h *StrategistHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		h.log.Errorf("analyze: %v", err)
		h.writeError(w, fmt.Errorf("%w: %v", errs.ErrInvalidRequest, err))
		return
	}
	if gameID := chi.URLParam(r, "gameID"); gameID != "" {
		req.GameID = gameID
	}

	resp, status := h.analyze(r, &req)
	httpresponse.WriteJSON(h.log, w, status, resp)
}

// HandleListAnalyses godoc
// @Summary Archived analyses of a game, newest first
// @Tags analysis
// @Produce json
// @Param gameID path string true "Game id"
// @Success 200 {array} analysis.Record
// @Failure 404 {object} httpresponse.ErrorResponse
// @Router /games/{gameID}/analyses [get]
func (h *StrategistHandler) HandleListAnalyses(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	records, err := h.strategistUC.Analyses(r.Context(), gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpresponse.WriteJSON(h.log, w, http.StatusOK, records)
}

// HandleStream keeps one websocket per game. Every text frame is an analysis
// request; every reply has the same shape as the HTTP response body.
func (h *StrategistHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if _, err := h.strategistUC.Session(r.Context(), gameID); err != nil {
		h.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req analysis.Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Errorf("read error for game %s: %v", gameID, err)
			}
			return
		}
		req.GameID = gameID

		resp, _ := h.analyze(r, &req)
		if err := conn.WriteJSON(resp); err != nil {
			h.log.Errorf("write error for game %s: %v", gameID, err)
			return
		}
	}
}

func (h *StrategistHandler) analyze(r *http.Request, req *analysis.Request) (analysis.Response, int) {
	move, session, err := h.strategistUC.Analyze(r.Context(), req)
	if err != nil {
		status, code, msg := errorStatus(err)
		return analysis.Response{GameID: session.ID, Error: msg, Code: code}, status
	}
	return analysis.Response{Move: &move, GameID: session.ID}, http.StatusOK
}

func (h *StrategistHandler) writeError(w http.ResponseWriter, err error) {
	status, code, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(err)
	}
	httpresponse.WriteJSONError(h.log, w, status, code, msg)
}

func errorStatus(err error) (status int, code string, msg string) {
	switch {
	case errors.Is(err, errs.ErrMissingField), errors.Is(err, errs.ErrInvalidRequest):
		return http.StatusBadRequest, httpresponse.CodeInvalidRequest, err.Error()
	case errors.Is(err, errs.ErrSessionNotFound):
		return http.StatusNotFound, httpresponse.CodeSessionNotFound, err.Error()
	case errors.Is(err, errs.ErrMoveNotFound):
		return http.StatusBadRequest, httpresponse.CodeMoveNotFound, "Could not parse move from response"
	case errors.Is(err, errs.ErrOracleFailed):
		return http.StatusInternalServerError, httpresponse.CodeOracleFailed, err.Error()
	default:
		return http.StatusInternalServerError, httpresponse.CodeInternal, err.Error()
	}
}
