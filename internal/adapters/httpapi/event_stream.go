package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
	"github.com/andrescamacho/empire-go/internal/application/village/queries"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
)

const eventWriteTimeout = 5 * time.Second

// streamMessage is one frame on the event stream: a snapshot first, then events
type streamMessage struct {
	Kind    string           `json:"kind"`
	Village *dtos.VillageDTO `json:"village,omitempty"`
	Event   *dtos.EventDTO   `json:"event,omitempty"`
}

// handleEventStream upgrades to a websocket, sends the current village
// snapshot and then relays committed events until either side closes.
// The subscription is taken before the snapshot is read, so an event
// committed in between is delivered (possibly also reflected in the snapshot)
// rather than lost.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	villageID, err := village.ParseVillageID(r.PathValue("villageID"))
	if err != nil {
		s.writeError(w, r, shared.NewValidationError("village_id", err.Error()))
		return
	}

	events := s.bus.Subscribe(villageID)
	defer s.bus.Unsubscribe(villageID, events)

	resp, err := s.mediator.Send(r.Context(), &queries.GetVillageQuery{VillageID: villageID.String()})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snapshot := resp.(*queries.GetVillageResponse).Village

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("Failed to accept event stream", "village_id", snapshot.ID, "error", err)
		return
	}
	defer conn.CloseNow()

	// Clients only listen; CloseRead handles control frames and cancels ctx on close
	ctx := conn.CloseRead(r.Context())

	if err := writeFrame(ctx, conn, streamMessage{Kind: "snapshot", Village: snapshot}); err != nil {
		return
	}
	s.logger.Debug("Event stream opened", "village_id", snapshot.ID)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "event bus closed")
				return
			}
			dto := dtos.EventToDTO(event)
			if err := writeFrame(ctx, conn, streamMessage{Kind: "event", Event: &dto}); err != nil {
				if !errors.Is(err, context.Canceled) {
					s.logger.Debug("Event stream write failed", "village_id", snapshot.ID, "error", err)
				}
				return
			}
		}
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, msg streamMessage) error {
	ctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
