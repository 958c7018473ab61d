// Package protocol defines the JSON message shapes exchanged with
// observers over the WebSocket, plus the REST error envelope. It has no
// dependency on the simulation packages; transports build these from
// plain values.
package protocol

import "encoding/json"

// Server -> client message types.
const (
	TypeInit       = "init"
	TypeTick       = "tick"
	TypeArea       = "area"
	TypeAgentSpawn = "agent_spawn"
	TypeLevelUp    = "level_up"
)

// Narrative event types. Every payload is an object carrying at least
// {type}; the rest of the fields differ per event.
const (
	TypeChat                = "chat"
	TypeGift                = "gift"
	TypeCraft               = "craft"
	TypeExperiment          = "experiment"
	TypeDiscovery           = "discovery"
	TypeFight               = "fight"
	TypeBuild               = "build"
	TypeKnowledgeShared     = "knowledgeShared"
	TypeKnowledgeForgotten  = "knowledgeForgotten"
	TypeScrollRead          = "scrollRead"
	TypeScrollInscribed     = "scrollInscribed"
	TypeScrollDestroyed     = "scrollDestroyed"
	TypeAchievementUnlocked = "achievementUnlocked"
	TypeWorldEvent          = "worldEvent"
	TypeNarrative           = "narrative"
	TypeZoneDanger          = "zoneDanger"
	TypePrecursor           = "precursor"
	TypeConsequence         = "consequence"
	TypeConsequenceEnd      = "consequenceEnd"
)

// Client -> server message types.
const (
	TypeGetArea = "get_area"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type string `json:"type"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
