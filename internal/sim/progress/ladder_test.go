package progress

import "testing"

func TestLevelForXP_Thresholds(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1}, {99, 1}, {100, 2}, {299, 2}, {300, 3},
		{999, 4}, {1000, 5}, {5499, 10}, {5500, 11}, {100000, 11},
	}
	for _, c := range cases {
		if got := LevelForXP(c.xp); got != c.level {
			t.Fatalf("LevelForXP(%d) = %d, want %d", c.xp, got, c.level)
		}
	}
}

func TestLevelForXP_Monotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 6000; xp++ {
		l := LevelForXP(xp)
		if l < prev {
			t.Fatalf("level dropped from %d to %d at xp=%d", prev, l, xp)
		}
		prev = l
	}
}

func TestTitleForLevel(t *testing.T) {
	cases := []struct {
		level int
		title string
	}{
		{1, "Hatchling"}, {4, "Hatchling"}, {5, "Wanderer"},
		{10, "Crafter"}, {29, "Builder"}, {30, "Master"}, {100, "Mythic"},
	}
	for _, c := range cases {
		if got := TitleForLevel(c.level); got != c.title {
			t.Fatalf("TitleForLevel(%d) = %q, want %q", c.level, got, c.title)
		}
	}
}

func TestAward_LevelUpFiresExactlyOnce(t *testing.T) {
	s := Stats{XP: 99, Level: 1, Title: "Hatchling"}
	res := s.Award(2)
	if !res.LeveledUp || res.Level != 2 {
		t.Fatalf("award(2) at 99 xp: %+v, want level 2 with LeveledUp", res)
	}
	res = s.Award(1)
	if res.LeveledUp {
		t.Fatalf("award(1) at 101 xp must not level up again: %+v", res)
	}
	if s.XP != 102 || s.Level != 2 {
		t.Fatalf("stats after awards: %+v", s)
	}
}

func TestAward_NegativeXPIgnored(t *testing.T) {
	s := Stats{XP: 150, Level: 2, Title: "Hatchling"}
	s.Award(-50)
	if s.XP != 150 {
		t.Fatalf("negative award changed xp: %d", s.XP)
	}
}

func TestProficiencies_PracticeAndBest(t *testing.T) {
	p := Proficiencies{}
	if lvl := p.Practice("cooking", 120); lvl != 2 {
		t.Fatalf("cooking level after 120 xp = %d, want 2", lvl)
	}
	p.Practice("alchemy", 10)
	if best := p.Best("cooking", "alchemy"); best != 2 {
		t.Fatalf("best = %d, want 2", best)
	}
	if best := p.Best("smithing"); best != 0 {
		t.Fatalf("unknown skill best = %d, want 0", best)
	}
}
