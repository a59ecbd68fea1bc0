package domain

import "testing"

func TestToolCycle_NextPrevious(t *testing.T) {
	c := DefaultToolCycle

	if c.First() != Fire {
		t.Fatalf("First() = %s, want FIRE", c.First())
	}

	nexts := map[CellState]CellState{Fire: Exit, Exit: FirstResponder, FirstResponder: Survivor, Survivor: Fire}
	for from, want := range nexts {
		if got := c.Next(from); got != want {
			t.Errorf("Next(%s) = %s, want %s", from, got, want)
		}
		if got := c.Previous(want); got != from {
			t.Errorf("Previous(%s) = %s, want %s", want, got, from)
		}
	}
}

func TestToolCycle_Closure(t *testing.T) {
	c := DefaultToolCycle
	for _, start := range c {
		tool := start
		for i := 0; i < len(c); i++ {
			tool = c.Next(tool)
		}
		if tool != start {
			t.Errorf("%d x Next from %s = %s", len(c), start, tool)
		}
		if c.Previous(c.Next(start)) != start {
			t.Errorf("Previous(Next(%s)) != %s", start, start)
		}
	}
}

func TestToolCycle_NonMember(t *testing.T) {
	c := DefaultToolCycle
	if c.Contains(SurvivorInNeed) || c.Contains(Empty) {
		t.Error("non-cycle states reported as members")
	}
	if got := c.Next(Empty); got != Fire {
		t.Errorf("Next(EMPTY) = %s, want FIRE", got)
	}
	if got := c.Previous(Empty); got != Survivor {
		t.Errorf("Previous(EMPTY) = %s, want SURVIVOR", got)
	}
}
