package httpapi

import (
	"net/http"
	"strconv"

	playerCommands "github.com/andrescamacho/empire-go/internal/application/player/commands"
	playerQueries "github.com/andrescamacho/empire-go/internal/application/player/queries"
	"github.com/andrescamacho/empire-go/internal/application/village/commands"
	"github.com/andrescamacho/empire-go/internal/application/village/queries"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]interface{}{"status": "ok"}
	if s.bus != nil {
		body["event_subscribers"] = s.bus.TotalSubscriberCount()
	}
	writeJSON(w, http.StatusOK, body)
}

// ============================================================================
// Players
// ============================================================================

type registerPlayerRequest struct {
	Username string                 `json:"username" validate:"required,max=64"`
	Metadata map[string]interface{} `json:"metadata"`
}

func (s *Server) handleRegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req registerPlayerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.mediator.Send(r.Context(), &playerCommands.RegisterPlayerCommand{
		Username: req.Username,
		Metadata: req.Metadata,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlayerJSON(resp.(*playerCommands.RegisterPlayerResponse).Player))
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &playerQueries.ListPlayersQuery{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	players := resp.(*playerQueries.ListPlayersResponse).Players
	out := make([]playerJSON, 0, len(players))
	for _, p := range players {
		out = append(out, toPlayerJSON(p))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"players": out})
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "playerID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.mediator.Send(r.Context(), &playerQueries.GetPlayerQuery{PlayerID: &id})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerJSON(resp.(*playerQueries.GetPlayerResponse).Player))
}

// ============================================================================
// Villages
// ============================================================================

type foundVillageRequest struct {
	PlayerID int    `json:"player_id" validate:"gt=0"`
	Name     string `json:"name" validate:"required,max=64"`
}

func (s *Server) handleFoundVillage(w http.ResponseWriter, r *http.Request) {
	var req foundVillageRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.mediator.Send(r.Context(), &commands.FoundVillageCommand{
		PlayerID: req.PlayerID,
		Name:     req.Name,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, villageEnvelope{Village: resp.(*commands.FoundVillageResponse).Village})
}

func (s *Server) handleListVillages(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("player_id")
	playerID, err := strconv.Atoi(raw)
	if err != nil {
		s.writeError(w, r, shared.NewValidationError("player_id", "query parameter player_id must be an integer"))
		return
	}

	resp, err := s.mediator.Send(r.Context(), &queries.ListVillagesQuery{PlayerID: playerID})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"villages": resp.(*queries.ListVillagesResponse).Villages})
}

func (s *Server) handleGetVillage(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &queries.GetVillageQuery{VillageID: r.PathValue("villageID")})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, villageEnvelope{Village: resp.(*queries.GetVillageResponse).Village})
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &commands.CollectResourcesCommand{VillageID: r.PathValue("villageID")})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, villageEnvelope{Village: resp.(*commands.CollectResourcesResponse).Village})
}

// ============================================================================
// Construction and research
// ============================================================================

func (s *Server) handleStartUpgrade(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &commands.StartUpgradeCommand{
		VillageID:  r.PathValue("villageID"),
		BuildingID: r.PathValue("entityRef"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result := resp.(*commands.StartUpgradeResponse)
	writeJSON(w, http.StatusAccepted, upgradeEnvelope{Village: result.Village, Building: result.Building})
}

func (s *Server) handleStartResearch(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &commands.StartResearchCommand{
		VillageID:  r.PathValue("villageID"),
		ResearchID: r.PathValue("entityRef"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result := resp.(*commands.StartResearchResponse)
	writeJSON(w, http.StatusAccepted, researchEnvelope{Village: result.Village, Research: result.Research})
}

func (s *Server) handleAffordability(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &queries.CheckAffordabilityQuery{
		VillageID: r.PathValue("villageID"),
		EntityID:  r.PathValue("entityRef"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result := resp.(*queries.CheckAffordabilityResponse)
	writeJSON(w, http.StatusOK, affordabilityEnvelope{
		EntityID:    result.EntityID,
		TargetLevel: result.TargetLevel,
		Affordable:  result.Affordable,
		Cost:        result.Cost,
		Deficiency:  result.Deficiency,
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &commands.CancelTransitionCommand{
		VillageID: r.PathValue("villageID"),
		EntityID:  r.PathValue("entityRef"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result := resp.(*commands.CancelTransitionResponse)
	writeJSON(w, http.StatusOK, cancelEnvelope{
		Village:   result.Village,
		EntityID:  result.EntityID,
		Refund:    result.Refund,
		Discarded: result.Discarded,
	})
}

func (s *Server) handleCompleteIfDue(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &commands.CompleteIfDueCommand{
		VillageID: r.PathValue("villageID"),
		EntityID:  r.PathValue("entityRef"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result := resp.(*commands.CompletionResponse)
	writeJSON(w, http.StatusOK, completionEnvelope{Village: result.Village, Completion: result.Completion})
}

// ============================================================================
// Admin
// ============================================================================

type grantRequest struct {
	Amounts map[string]float64 `json:"amounts" validate:"required,min=1,dive,gte=0"`
}

func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.mediator.Send(r.Context(), &commands.GrantResourcesCommand{
		VillageID: r.PathValue("villageID"),
		Amounts:   req.Amounts,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result := resp.(*commands.GrantResourcesResponse)
	writeJSON(w, http.StatusOK, grantEnvelope{Village: result.Village, Discarded: result.Discarded})
}

func (s *Server) handleForceComplete(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediator.Send(r.Context(), &commands.ForceCompleteCommand{
		VillageID: r.PathValue("villageID"),
		EntityID:  r.PathValue("entityRef"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result := resp.(*commands.CompletionResponse)
	writeJSON(w, http.StatusOK, completionEnvelope{Village: result.Village, Completion: result.Completion})
}

func pathInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, shared.NewValidationError(name, "must be an integer")
	}
	return value, nil
}
