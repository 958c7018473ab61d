package protocol

// GameTime is the in-world clock carried on status and tick messages.
type GameTime struct {
	Day    int    `json:"day"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Period string `json:"period"`
}

// WorldInfo describes the static grid.
type WorldInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	SpawnX int `json:"spawnX"`
	SpawnY int `json:"spawnY"`
}

// NewsItem is one entry of the news ring, newest first.
type NewsItem struct {
	Tick    uint64 `json:"tick"`
	Type    string `json:"type"`
	AgentID string `json:"agentId,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
	Zone    string `json:"zone,omitempty"`
}

// init (server -> client), sent once on connect.
type InitMsg struct {
	Type   string     `json:"type"`
	Tick   uint64     `json:"tick"`
	World  WorldInfo  `json:"world"`
	Agents any        `json:"agents"`
	News   []NewsItem `json:"news"`
}

// tick (server -> client), full form every fifth tick. Agents carry the
// complete serialized agent.
type TickFullMsg struct {
	Type     string   `json:"type"`
	Tick     uint64   `json:"tick"`
	GameTime GameTime `json:"gameTime"`
	Weather  string   `json:"weather"`
	Agents   any      `json:"agents"`
	Full     bool     `json:"full"`
}

// tick (server -> client), position-only delta on the other ticks.
type TickDeltaMsg struct {
	Type   string       `json:"type"`
	Tick   uint64       `json:"tick"`
	Agents []DeltaAgent `json:"agents"`
}

type DeltaAgent struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	TileX  int       `json:"tileX"`
	TileY  int       `json:"tileY"`
	HP     float64   `json:"hp"`
	Energy float64   `json:"energy"`
	Alive  bool      `json:"alive"`
	Mind   DeltaMind `json:"mind"`
	Path   any       `json:"path,omitempty"`
}

type DeltaMind struct {
	Action string `json:"action"`
	Mood   string `json:"mood"`
	Intent any    `json:"intent,omitempty"`
}

// get_area (client -> server).
type GetAreaMsg struct {
	Type   string `json:"type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Radius int    `json:"radius,omitempty"`
}

// area (server -> client), reply to get_area.
type AreaMsg struct {
	Type  string     `json:"type"`
	X     int        `json:"x"`
	Y     int        `json:"y"`
	Tiles []AreaTile `json:"tiles"`
}

type AreaTile struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Zone     string  `json:"zone"`
	Biome    string  `json:"biome"`
	Walkable bool    `json:"walkable"`
	MoveCost float64 `json:"moveCost,omitempty"`
}

// ErrorBody is the REST error envelope; 4xx responses carry a
// user-readable reason and nothing else.
type ErrorBody struct {
	Error string `json:"error"`
}
