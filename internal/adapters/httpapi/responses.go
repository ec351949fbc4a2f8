package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andrescamacho/empire-go/internal/application/common"
	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

const maxBodyBytes = 1 << 20

type errorDetail struct {
	Category  string `json:"category"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type playerJSON struct {
	ID        int                    `json:"id"`
	Username  string                 `json:"username"`
	CreatedAt time.Time              `json:"created_at"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func toPlayerJSON(p *player.Player) playerJSON {
	return playerJSON{
		ID:        p.ID.Value(),
		Username:  p.Username,
		CreatedAt: p.CreatedAt,
		Metadata:  p.Metadata,
	}
}

type villageEnvelope struct {
	Village *dtos.VillageDTO `json:"village"`
}

type upgradeEnvelope struct {
	Village  *dtos.VillageDTO   `json:"village"`
	Building dtos.UpgradableDTO `json:"building"`
}

type researchEnvelope struct {
	Village  *dtos.VillageDTO   `json:"village"`
	Research dtos.UpgradableDTO `json:"research"`
}

type cancelEnvelope struct {
	Village   *dtos.VillageDTO   `json:"village"`
	EntityID  string             `json:"entity_id"`
	Refund    map[string]float64 `json:"refund"`
	Discarded map[string]float64 `json:"discarded,omitempty"`
}

type completionEnvelope struct {
	Village    *dtos.VillageDTO   `json:"village"`
	Completion dtos.CompletionDTO `json:"completion"`
}

type grantEnvelope struct {
	Village   *dtos.VillageDTO   `json:"village"`
	Discarded map[string]float64 `json:"discarded,omitempty"`
}

type affordabilityEnvelope struct {
	EntityID    string             `json:"entity_id"`
	TargetLevel int                `json:"target_level"`
	Affordable  bool               `json:"affordable"`
	Cost        map[string]float64 `json:"cost"`
	Deficiency  map[string]float64 `json:"deficiency,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err onto its category's status code
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	desc := common.DescribeError(err)
	if desc.Category == common.CategoryInternal {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		desc.Message = "internal server error"
	}
	writeJSON(w, desc.HTTPStatus, errorBody{Error: errorDetail{
		Category:  string(desc.Category),
		Message:   desc.Message,
		Retryable: desc.Retryable,
	}})
}

// decodeBody decodes a JSON request body into dst and checks its validate
// tags. An empty body is validated as the zero request.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return shared.NewValidationError("body", fmt.Sprintf("malformed JSON: %v", err))
	}
	return validateRequest(dst)
}
