package knowledge

import "driftworld/internal/sim/grid"

// ZoneSecret is a published discovery: performing the named action in a
// zone for exactly the threshold-th time reveals it.
type ZoneSecret struct {
	Action    string
	Threshold int
	Text      string
}

var zoneSecrets = map[grid.Zone][]ZoneSecret{
	grid.ZoneGrass: {
		{Action: "gather", Threshold: 5, Text: "The sweetest berries grow where the morning shadow falls."},
		{Action: "visit", Threshold: 10, Text: "Grass bends eastward before a storm."},
	},
	grid.ZoneForest: {
		{Action: "gather", Threshold: 5, Text: "Sap flows strongest from the north side of old trees."},
		{Action: "visit", Threshold: 12, Text: "Hollow trunks stay dry in any rain."},
		{Action: "craft", Threshold: 3, Text: "Green wood bends; seasoned wood sings."},
	},
	grid.ZoneRocky: {
		{Action: "gather", Threshold: 6, Text: "Iron hides beneath the rust-colored scree."},
		{Action: "visit", Threshold: 8, Text: "Echoes point the way to hidden caves."},
	},
	grid.ZoneSand: {
		{Action: "gather", Threshold: 5, Text: "Dew collects under flat stones before dawn."},
		{Action: "visit", Threshold: 10, Text: "Walk the dune ridges; the hollows drift deep."},
	},
	grid.ZoneCoast: {
		{Action: "gather", Threshold: 5, Text: "The tide leaves its best gifts at the third pool."},
		{Action: "visit", Threshold: 8, Text: "Gulls circle where the fish school."},
	},
	grid.ZoneRiver: {
		{Action: "gather", Threshold: 5, Text: "Fish rest in the slack water behind boulders."},
		{Action: "visit", Threshold: 8, Text: "A river's bend is always deepest on the outside."},
	},
	grid.ZoneSwamp: {
		{Action: "gather", Threshold: 4, Text: "Glowcaps mark ground that will hold your weight."},
		{Action: "visit", Threshold: 6, Text: "Still water hides the deepest mud."},
	},
	grid.ZoneCave: {
		{Action: "gather", Threshold: 4, Text: "Crystals hum faintly near water veins."},
		{Action: "visit", Threshold: 5, Text: "Cold drafts lead to open sky."},
	},
}

// loreFragments is the pool granted by exploration and chat teaching.
var loreFragments = []string{
	"Before the agents, the rivers ran backwards.",
	"The first fire was traded for a song.",
	"Mountains remember every footstep.",
	"There is a ninth biome no map has shown.",
	"Scrolls written in rain-ink never truly dry.",
	"The spawn stone hums on the longest day.",
	"Sand from the deep desert never cools.",
	"An oak planted on a grave grows silver leaves.",
	"The tide once failed for a whole season.",
	"Every cave connects, if you go deep enough.",
	"Wolves will not cross a line of ash.",
	"The oldest title was never awarded twice.",
}

// LoreCount is the size of the lore pool.
func LoreCount() int { return len(loreFragments) }

// LoreAt returns the i-th fragment.
func LoreAt(i int) string { return loreFragments[i%len(loreFragments)] }

// SecretsFor exposes the published secrets table for a zone.
func SecretsFor(z grid.Zone) []ZoneSecret { return zoneSecrets[z] }
