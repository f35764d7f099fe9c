package services

import (
	"strconv"

	"github.com/Dosada05/swiss-pairing/hub"
)

// Broadcaster pushes live events to watchers of a tournament.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

func TournamentRoom(tournamentID int) string {
	return "tournament_" + strconv.Itoa(tournamentID)
}

func broadcast(b Broadcaster, tournamentID int, eventType string, payload interface{}) {
	if b == nil {
		return
	}
	room := TournamentRoom(tournamentID)
	b.BroadcastToRoom(room, hub.Message{Type: eventType, Payload: payload, RoomID: room})
}
