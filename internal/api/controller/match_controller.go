package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/api/models"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/api/response"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/api/service"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/events"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/game"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/match"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/player"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/repository"

	"github.com/gin-gonic/gin"
)

// MatchController handles match-related HTTP requests.
type MatchController struct {
	matchService service.MatchService
	tokens       service.TokenIssuer
}

// NewMatchController creates a new MatchController.
func NewMatchController(matchService service.MatchService, tokens service.TokenIssuer) *MatchController {
	return &MatchController{
		matchService: matchService,
		tokens:       tokens,
	}
}

// RequireSessionToken rejects requests whose token was not issued for the :id session.
// The token comes from the Authorization header or, for websockets, the token query parameter.
func (mc *MatchController) RequireSessionToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		if err := mc.tokens.Verify(token, c.Param("id")); err != nil {
			response.ErrorResponse(c, http.StatusUnauthorized, service.ErrInvalidToken.Error())
			return
		}
		c.Next()
	}
}

// Start handles the start match endpoint.
func (mc *MatchController) Start(c *gin.Context) {
	var req models.StartMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	started, err := mc.matchService.Start(c.Request.Context(), req.PlayerOne, req.PlayerTwo)
	if err != nil {
		errorResponse(c, err)
		return
	}

	response.CreatedResponse(c, models.StartMatchResponse{
		SessionID: started.SessionID,
		Token:     started.Token,
		State:     events.StateOf(started.Match),
	})
}

// Get handles the match state endpoint.
func (mc *MatchController) Get(c *gin.Context) {
	snap, err := mc.matchService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	response.SuccessResponse(c, events.StateOf(snap))
}

// Move handles a cell click.
func (mc *MatchController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := mc.matchService.Move(c.Request.Context(), c.Param("id"), *req.Index)
	if err != nil {
		errorResponse(c, err)
		return
	}

	resp := models.MoveResponse{
		Outcome: string(out.Result.Outcome),
		Message: out.Result.Message(),
		State:   events.StateOf(out.Match),
		Token:   out.Token,
	}
	if out.Result.Outcome == match.OutcomeWin {
		resp.Line = out.Result.Line[:]
	}
	response.SuccessResponse(c, resp)
}

// Rounds lists the archived rounds of the session.
func (mc *MatchController) Rounds(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.ErrorResponse(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	rounds, err := mc.matchService.Rounds(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		errorResponse(c, err)
		return
	}
	response.SuccessResponseList(c, rounds)
}

// End drops the session.
func (mc *MatchController) End(c *gin.Context) {
	if err := mc.matchService.End(c.Request.Context(), c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}
	response.SuccessResponseMessage(c, "Match ended")
}

func errorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, player.ErrBlankName), errors.Is(err, player.ErrInvalidMark):
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrSessionNotFound):
		response.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrIndexOutOfRange):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
	default:
		_ = c.Error(err)
		response.ErrorResponse(c, http.StatusInternalServerError, "internal error")
	}
}
