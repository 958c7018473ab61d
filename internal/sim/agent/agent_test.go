package agent

import "testing"

func TestAddItem_StacksAndHonorsCap(t *testing.T) {
	a := &Agent{Inventory: []*Item{}}
	if !a.AddItem("berries", 1, 3) || !a.AddItem("berries", 2, 3) {
		t.Fatalf("stacking add failed")
	}
	if len(a.Inventory) != 1 || a.Inventory[0].Quantity != 3 {
		t.Fatalf("berries should stack into one entry: %+v", a.Inventory)
	}

	a.AddItem("flint", 1, 3)
	a.AddItem("herbs", 1, 3)
	if a.AddItem("wood", 1, 3) {
		t.Fatalf("add past cap must fail")
	}
	if len(a.Inventory) != 3 {
		t.Fatalf("inventory len = %d, want 3", len(a.Inventory))
	}
	// Stacking onto an existing entry still works at capacity.
	if !a.AddItem("flint", 1, 3) {
		t.Fatalf("stacking at cap must succeed")
	}
}

func TestAddItemEntry_NeverStacks(t *testing.T) {
	a := &Agent{Inventory: []*Item{}}
	a.AddItemEntry(&Item{Name: "Inscribed Scroll"}, 28)
	a.AddItemEntry(&Item{Name: "Inscribed Scroll"}, 28)
	if len(a.Inventory) != 2 {
		t.Fatalf("scrolls must not stack: %d entries", len(a.Inventory))
	}
}

func TestConsumeItem(t *testing.T) {
	a := &Agent{Inventory: []*Item{}}
	a.AddItem("berries", 2, 28)
	if !a.ConsumeItem("berries") {
		t.Fatalf("consume failed")
	}
	if a.Inventory[0].Quantity != 1 {
		t.Fatalf("quantity after consume = %d", a.Inventory[0].Quantity)
	}
	a.ConsumeItem("berries")
	if len(a.Inventory) != 0 {
		t.Fatalf("empty stack must be removed: %+v", a.Inventory)
	}
	if a.ConsumeItem("berries") {
		t.Fatalf("consuming absent item must fail")
	}
}

func TestBumpRelationship_Clamps(t *testing.T) {
	a := &Agent{Relationships: map[string]*Relationship{}}
	r := a.BumpRelationship("b", 150, 1)
	if r.Score != 100 {
		t.Fatalf("score = %d, want clamp at 100", r.Score)
	}
	a.BumpRelationship("b", -400, 1)
	if a.RelationshipScore("b") != -100 {
		t.Fatalf("score = %d, want clamp at -100", a.RelationshipScore("b"))
	}
	if a.Relationships["b"].Interactions != 2 {
		t.Fatalf("interactions = %d", a.Relationships["b"].Interactions)
	}
	if a.RelationshipScore("stranger") != 0 {
		t.Fatalf("strangers must score 0")
	}
}

func TestVitals_ClampToRange(t *testing.T) {
	a := &Agent{HP: 50, Energy: 50, Hunger: 50}
	a.ApplyEnergy(200)
	a.ApplyHunger(-200)
	a.ApplyHP(-200)
	if a.Energy != 100 || a.Hunger != 0 || a.HP != 0 {
		t.Fatalf("vitals after clamp: hp=%.0f energy=%.0f hunger=%.0f", a.HP, a.Energy, a.Hunger)
	}
}

func TestGrantTitle_Deduplicates(t *testing.T) {
	a := &Agent{}
	a.GrantTitle("Wanderer")
	a.GrantTitle("Wanderer")
	if len(a.Titles) != 1 {
		t.Fatalf("titles = %v", a.Titles)
	}
}
