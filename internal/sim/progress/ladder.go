package progress

// Staircase XP thresholds; level N requires xp >= thresholds[N-1].
var thresholds = []int{0, 100, 300, 600, 1000, 1500, 2100, 2800, 3600, 4500, 5500}

type titleStep struct {
	Level int
	Title string
}

// Ordered ascending; the title for a level is the highest step at or
// below it.
var titleLadder = []titleStep{
	{1, "Hatchling"},
	{5, "Wanderer"},
	{10, "Crafter"},
	{15, "Explorer"},
	{20, "Builder"},
	{30, "Master"},
	{50, "Legend"},
	{100, "Mythic"},
}

// LevelForXP is a pure function of accumulated XP.
func LevelForXP(xp int) int {
	level := 1
	for i, th := range thresholds {
		if xp >= th {
			level = i + 1
		}
	}
	return level
}

// TitleForLevel returns the best earned title for a level.
func TitleForLevel(level int) string {
	title := titleLadder[0].Title
	for _, s := range titleLadder {
		if level >= s.Level {
			title = s.Title
		}
	}
	return title
}

// Stats is the XP/level/title block carried on every agent.
type Stats struct {
	XP    int    `json:"xp"`
	Level int    `json:"level"`
	Title string `json:"title"`
}

// AwardResult reports what changed after an XP grant.
type AwardResult struct {
	XP        int
	Level     int
	Title     string
	LeveledUp bool
}

// Award adds XP and recomputes level and title. XP never decreases.
func (s *Stats) Award(xp int) AwardResult {
	if xp < 0 {
		xp = 0
	}
	s.XP += xp
	before := s.Level
	s.Level = LevelForXP(s.XP)
	s.Title = TitleForLevel(s.Level)
	return AwardResult{XP: s.XP, Level: s.Level, Title: s.Title, LeveledUp: s.Level > before}
}

// Proficiencies tracks per-skill XP using the same staircase.
type Proficiencies map[string]*Proficiency

type Proficiency struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// Practice adds XP to a named proficiency and returns its new level.
func (p Proficiencies) Practice(skill string, xp int) int {
	pr := p[skill]
	if pr == nil {
		pr = &Proficiency{}
		p[skill] = pr
	}
	pr.XP += xp
	pr.Level = LevelForXP(pr.XP)
	return pr.Level
}

// Best returns the highest level among the named skills.
func (p Proficiencies) Best(skills ...string) int {
	best := 0
	for _, s := range skills {
		if pr := p[s]; pr != nil && pr.Level > best {
			best = pr.Level
		}
	}
	return best
}
