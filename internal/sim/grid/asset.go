package grid

import (
	"encoding/json"
	"fmt"
	"os"
)

// WorldAsset is the packed map document consumed at load time. Terrain
// values index into TileDefs; the biome string on a tile definition is
// one of the eight biome constants.
type WorldAsset struct {
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Terrain     []int     `json:"terrain"`
	Decorations []int     `json:"decorations,omitempty"`
	TileDefs    []TileDef `json:"tileDefs"`
	Seed        string    `json:"seed"`
}

type TileDef struct {
	ID    int    `json:"id"`
	Biome string `json:"biome"`
	Name  string `json:"name"`
}

func LoadAsset(path string) (WorldAsset, error) {
	var a WorldAsset
	raw, err := os.ReadFile(path)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return a, fmt.Errorf("world asset: %w", err)
	}
	if err := a.validate(); err != nil {
		return a, err
	}
	return a, nil
}

func (a WorldAsset) validate() error {
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("world asset: bad dimensions %dx%d", a.Width, a.Height)
	}
	if len(a.Terrain) != a.Width*a.Height {
		return fmt.Errorf("world asset: terrain length %d != %d", len(a.Terrain), a.Width*a.Height)
	}
	if len(a.TileDefs) == 0 {
		return fmt.Errorf("world asset: no tile definitions")
	}
	defs := map[int]bool{}
	for _, d := range a.TileDefs {
		defs[d.ID] = true
	}
	for i, t := range a.Terrain {
		if !defs[t] {
			return fmt.Errorf("world asset: terrain[%d] references unknown tile def %d", i, t)
		}
	}
	return nil
}
