package game

import (
	"math/rand/v2"
	"testing"
)

func TestSpawnIds(t *testing.T) {
	for _, d := range Difficulties {
		r := rand.New(rand.NewPCG(7, uint64(d)))
		s := NewState(d)
		var expected uint64
		seen := map[uint64]bool{}

		for i := 0; i < 200; i++ {
			before := len(s.Notes)
			s = Spawn(s, r)
			added := s.Notes[before:]
			expected += uint64(len(added))

			for _, n := range added {
				if n.Position != SpawnPosition {
					t.Errorf("%v: spawned note %v at %v", d, n.ID, n.Position)
				}
				if n.Lane >= NLanes {
					t.Errorf("%v: lane %v out of range", d, n.Lane)
				}
			}
		}

		if s.NextID != expected {
			t.Errorf("%v: id counter %v, expected %v", d, s.NextID, expected)
		}
		for _, n := range s.Notes {
			if seen[n.ID] {
				t.Errorf("%v: duplicate id %v", d, n.ID)
			}
			seen[n.ID] = true
		}
	}
}

func TestSpawnConsecutiveIds(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	s := NewState(Hard)
	s.NextID = 40
	s = Spawn(s, r)
	for i, n := range s.Notes {
		if n.ID != 40+uint64(i) {
			t.Errorf("note %v has id %v", i, n.ID)
		}
	}
	if s.NextID != 40+uint64(len(s.Notes)) {
		t.Errorf("id counter %v after %v notes", s.NextID, len(s.Notes))
	}
}

func TestSpawnDoesNotShareNotes(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 3))
	s := NewState(Easy)
	s.Notes = make([]Note, 1, 8)
	next := Spawn(s, r)
	next.Notes[0].Position = 50
	if s.Notes[0].Position != 0 {
		t.Error("spawn mutated the previous state")
	}
}

func TestAdvanceBounds(t *testing.T) {
	for _, d := range Difficulties {
		r := rand.New(rand.NewPCG(11, uint64(d)))
		s := NewState(d)
		last := map[uint64]float64{}

		for tick := 0; tick < 2000; tick++ {
			if tick%25 == 0 {
				s = Spawn(s, r)
			}
			s, _ = Advance(s)
			for _, n := range s.Notes {
				if n.Position < 0 || n.Position > EndPosition {
					t.Fatalf("%v: note %v at %v", d, n.ID, n.Position)
				}
				if p, ok := last[n.ID]; ok && n.Position < p {
					t.Fatalf("%v: note %v moved back from %v to %v", d, n.ID, p, n.Position)
				}
				last[n.ID] = n.Position
			}
		}
	}
}

func TestAdvanceMiss(t *testing.T) {
	s := NewState(Normal)
	s.Combo = 12
	s.Notes = []Note{
		{ID: 0, Lane: 0, Position: 99},
		{ID: 1, Lane: 1, Position: 98},
		{ID: 2, Lane: 2, Position: 50},
	}

	next, missed := Advance(s)
	if missed != 1 {
		t.Errorf("missed %v, expected 1", missed)
	}
	if next.Combo != 0 {
		t.Errorf("combo %v after a miss", next.Combo)
	}
	if len(next.Notes) != 2 || next.Notes[0].ID != 1 || next.Notes[0].Position != 100 {
		t.Errorf("unexpected notes %v", next.Notes)
	}
	if s.Notes[2].Position != 50 {
		t.Error("advance mutated the previous state")
	}
}

func TestAdvanceKeepsCombo(t *testing.T) {
	s := NewState(Easy)
	s.Combo = 3
	s.Notes = []Note{{Position: 10}}
	next, missed := Advance(s)
	if missed != 0 || next.Combo != 3 {
		t.Errorf("missed %v combo %v", missed, next.Combo)
	}
	if next.Notes[0].Position != 11.5 {
		t.Errorf("position %v", next.Notes[0].Position)
	}
}

func TestRemove(t *testing.T) {
	s := State{Notes: []Note{{ID: 1}, {ID: 2}, {ID: 3}}}
	next := Remove(s, 2)
	if len(next.Notes) != 2 || next.Notes[0].ID != 1 || next.Notes[1].ID != 3 {
		t.Errorf("unexpected notes %v", next.Notes)
	}
	if len(s.Notes) != 3 {
		t.Error("remove mutated the previous state")
	}
}
