package state

import (
	"time"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
)

// EventType identifies the kind of notification raised by the engine.
type EventType string

const (
	EventGameStarted       EventType = "GAME_STARTED"
	EventPhaseChanged      EventType = "PHASE_CHANGED"
	EventDestinyDrawn      EventType = "DESTINY_DRAWN"
	EventShipsCommitted    EventType = "SHIPS_COMMITTED"
	EventAllianceFormed    EventType = "ALLIANCE_FORMED"
	EventCardRevealed      EventType = "CARD_REVEALED"
	EventReinforcement     EventType = "REINFORCEMENT_PLAYED"
	EventShipsToWarp       EventType = "SHIPS_TO_WARP"
	EventShipsRetrieved    EventType = "SHIPS_RETRIEVED"
	EventColonyEstablished EventType = "COLONY_ESTABLISHED"
	EventColonyLost        EventType = "COLONY_LOST"
	EventPowerUsed         EventType = "ALIEN_POWER_USED"
	EventPowerZapped       EventType = "ALIEN_POWER_ZAPPED"
	EventArtifactPlayed    EventType = "ARTIFACT_PLAYED"
	EventFlarePlayed       EventType = "FLARE_PLAYED"
	EventDealProposed      EventType = "DEAL_PROPOSED"
	EventDealResult        EventType = "DEAL_RESULT"
	EventCompensationPaid  EventType = "COMPENSATION_PAID"
	EventEncounterCanceled EventType = "ENCOUNTER_CANCELED"
	EventSecondEncounter   EventType = "SECOND_ENCOUNTER"
	EventTurnEnded         EventType = "TURN_ENDED"
	EventGameOver          EventType = "GAME_OVER"
	EventError             EventType = "ERROR"
)

// Event is one notification accompanying a processed action.
type Event struct {
	Type        EventType
	PlayerID    string
	TargetID    string
	CardID      string
	Power       cards.PowerID
	Color       cards.Color
	Amount      int
	Description string
	Timestamp   time.Time
}

// NewEvent builds an event with the timestamp filled in.
func NewEvent(t EventType, playerID, description string) Event {
	return Event{
		Type:        t,
		PlayerID:    playerID,
		Description: description,
		Timestamp:   time.Now(),
	}
}

// EventHandler consumes published events.
type EventHandler func(Event)

// Bus is a synchronous publish/subscribe fan-out for engine events.
// Subscribers run inline on the publishing goroutine, in registration order.
type Bus struct {
	byType map[EventType][]EventHandler
	all    []EventHandler
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{byType: make(map[EventType][]EventHandler)}
}

// Subscribe registers a handler for every event.
func (b *Bus) Subscribe(h EventHandler) {
	b.all = append(b.all, h)
}

// SubscribeType registers a handler for one event type.
func (b *Bus) SubscribeType(t EventType, h EventHandler) {
	b.byType[t] = append(b.byType[t], h)
}

// Publish delivers the event to all matching handlers.
func (b *Bus) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	for _, h := range b.all {
		h(ev)
	}
	for _, h := range b.byType[ev.Type] {
		h(ev)
	}
}
