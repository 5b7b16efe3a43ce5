package gate

import (
	"testing"

	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/geom"
)

// fakeWorld is a category map that records applied effects.
type fakeWorld struct {
	cats    map[geom.Vec3i]catalogs.Category
	updates []Effect
	sounds  []Effect
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{cats: map[geom.Vec3i]catalogs.Category{}}
}

func (w *fakeWorld) CategoryAt(pos geom.Vec3i) catalogs.Category {
	if c, ok := w.cats[pos]; ok {
		return c
	}
	return catalogs.CategoryAir
}

func (w *fakeWorld) apply(effs []Effect) {
	for _, e := range effs {
		switch e.Kind {
		case EffectUpdateBlock:
			w.updates = append(w.updates, e)
		case EffectPlaySound:
			w.sounds = append(w.sounds, e)
		}
	}
}

func TestCollisionBox(t *testing.T) {
	for _, s := range AllStates() {
		box, ok := CollisionBox(s)
		if s.Open {
			if ok {
				t.Fatalf("%s: open gate must have no collision box", s)
			}
			continue
		}
		if !ok {
			t.Fatalf("%s: closed gate must have a collision box", s)
		}
		thin := s.Facing.Axis().Perpendicular()
		if got := box.Extent(thin); got != 6.0/16 {
			t.Fatalf("%s: thickness on %s: got %v", s, thin, got)
		}
		if got := box.Extent(s.Facing.Axis()); got != 1 {
			t.Fatalf("%s: span on %s: got %v", s, s.Facing.Axis(), got)
		}
		if box.Min[1] != 0 || box.Max[1] != 1.5 {
			t.Fatalf("%s: unexpected height %s", s, box)
		}
	}
}

func TestCollisionBox_FollowsFacing(t *testing.T) {
	ns, _ := CollisionBox(State{Facing: geom.North})
	ew, _ := CollisionBox(State{Facing: geom.East})
	if ns.ApproxEqual(ew) {
		t.Fatalf("north/south and east/west boxes should differ")
	}
	want := geom.Box(5.0/16, 0, 0, 11.0/16, 1.5, 1)
	if !ns.ApproxEqual(want) {
		t.Fatalf("north box: got %s want %s", ns, want)
	}
}

func TestOnNeighborChanged_Idempotent(t *testing.T) {
	w := newFakeWorld()
	pos := geom.V(0, 1, 0)
	s := State{Facing: geom.North}

	for i := 0; i < 2; i++ {
		var effs []Effect
		s, effs = OnNeighborChanged(w, pos, s)
		w.apply(effs)
		if s.InWall {
			t.Fatalf("call %d: expected in_wall=false", i)
		}
	}
	if len(w.updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(w.updates))
	}

	s.InWall = true // stale cache
	s, effs := OnNeighborChanged(w, pos, s)
	w.apply(effs)
	s, effs = OnNeighborChanged(w, pos, s)
	w.apply(effs)
	if s.InWall || len(w.updates) != 1 {
		t.Fatalf("expected exactly one correcting update, got in_wall=%t updates=%d", s.InWall, len(w.updates))
	}
	if w.updates[0].Meta != EncodeMeta(s) {
		t.Fatalf("update meta %#x does not match state %s", w.updates[0].Meta, s)
	}
}

func TestOnNeighborChanged_EitherSideCounts(t *testing.T) {
	pos := geom.V(4, 0, 4)
	for _, f := range geom.Facings() {
		for _, side := range []geom.Facing{f.RotateLeft(), f.RotateRight()} {
			w := newFakeWorld()
			w.cats[pos.Side(side)] = catalogs.CategoryWall
			s, effs := OnNeighborChanged(w, pos, State{Facing: f})
			if !s.InWall || len(effs) != 1 || effs[0].Kind != EffectUpdateBlock {
				t.Fatalf("facing %s wall on %s: got %s effs=%v", f, side, s, effs)
			}
		}
		// Walls in front, behind and diagonal do not count.
		w := newFakeWorld()
		w.cats[pos.Side(f)] = catalogs.CategoryWall
		w.cats[pos.Side(f.Opposite())] = catalogs.CategoryWall
		w.cats[pos.Side(f).Side(f.RotateLeft())] = catalogs.CategoryWall
		w.cats[pos.Side(f.RotateRight()).Add(geom.V(0, 1, 0))] = catalogs.CategoryWall
		if s, effs := OnNeighborChanged(w, pos, State{Facing: f}); s.InWall || effs != nil {
			t.Fatalf("facing %s: non-side walls counted: %s", f, s)
		}
		// Solid non-wall blocks do not count.
		w = newFakeWorld()
		w.cats[pos.Side(f.RotateLeft())] = catalogs.CategorySolid
		if InWall(w, pos, f) {
			t.Fatalf("facing %s: solid block treated as wall", f)
		}
	}
}

func TestInteract_ReorientsOnlyWhenOpeningFromBehind(t *testing.T) {
	w := newFakeWorld()
	pos := geom.V(0, 0, 0)
	s := State{Facing: geom.North}

	s, effs := Interact(pos, s, &Actor{ID: "A1", Facing: geom.South})
	w.apply(effs)
	if !s.Open || s.Facing != geom.South {
		t.Fatalf("open from behind: got %s", s)
	}

	s, effs = Interact(pos, s, &Actor{ID: "A1", Facing: geom.North})
	w.apply(effs)
	if s.Open || s.Facing != geom.South {
		t.Fatalf("close: got %s", s)
	}

	if len(w.updates) != 2 || len(w.sounds) != 2 {
		t.Fatalf("expected 2 updates and 2 sounds, got %d/%d", len(w.updates), len(w.sounds))
	}
	for _, e := range w.sounds {
		if e.Sound != SoundDoor || e.Pos != pos || e.Actor != "A1" {
			t.Fatalf("unexpected sound effect %+v", e)
		}
	}
	if w.updates[1].Meta != EncodeMeta(State{Facing: geom.South}) {
		t.Fatalf("unexpected final meta %#x", w.updates[1].Meta)
	}
}

func TestInteract_NoReorientation(t *testing.T) {
	cases := []struct {
		name  string
		start State
		actor *Actor
		want  State
	}{
		{"same direction", State{Facing: geom.North}, &Actor{Facing: geom.North}, State{Facing: geom.North, Open: true}},
		{"sideways", State{Facing: geom.North}, &Actor{Facing: geom.East}, State{Facing: geom.North, Open: true}},
		{"no actor", State{Facing: geom.West}, nil, State{Facing: geom.West, Open: true}},
		{"closing from behind", State{Facing: geom.West, Open: true}, &Actor{Facing: geom.East}, State{Facing: geom.West}},
		{"keeps wall flag", State{Facing: geom.East, InWall: true}, nil, State{Facing: geom.East, Open: true, InWall: true}},
	}
	for _, tc := range cases {
		got, effs := Interact(geom.V(1, 2, 3), tc.start, tc.actor)
		if got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
		if len(effs) != 2 || effs[0].Kind != EffectUpdateBlock || effs[1].Kind != EffectPlaySound {
			t.Fatalf("%s: unexpected effects %v", tc.name, effs)
		}
	}
}

func TestPlace_ActorFacingAndWalls(t *testing.T) {
	w := newFakeWorld()
	pos := geom.V(8, 1, 8)
	// East-facing gate: the flanking cells are north and south.
	w.cats[pos.Side(geom.North)] = catalogs.CategoryWall
	w.cats[pos.Side(geom.South)] = catalogs.CategoryWall

	s, effs := Place(w, pos, &Actor{ID: "A1", Facing: geom.East}, geom.North)
	want := State{Facing: geom.East, InWall: true}
	if s != want {
		t.Fatalf("got %s want %s", s, want)
	}
	if len(effs) != 1 || effs[0].Kind != EffectUpdateBlock {
		t.Fatalf("unexpected effects %v", effs)
	}
	if effs[0].Meta != 0x3|FlagInWall {
		t.Fatalf("meta: got %#x want %#x", effs[0].Meta, 0x3|FlagInWall)
	}
}

func TestPlace_NoActorUsesFallback(t *testing.T) {
	w := newFakeWorld()
	pos := geom.V(0, 0, 0)
	w.cats[pos.Side(geom.North)] = catalogs.CategoryWall

	s, _ := Place(w, pos, nil, geom.West)
	if s.Facing != geom.West || s.Open {
		t.Fatalf("got %s", s)
	}
	if !s.InWall {
		t.Fatalf("north is beside a west-facing gate; expected in_wall")
	}

	s, _ = Place(w, pos, nil, geom.North)
	if s.InWall {
		t.Fatalf("north is in front of a north-facing gate; expected no in_wall")
	}
}

func TestPlace_InvalidActorFacingUsesFallback(t *testing.T) {
	w := newFakeWorld()
	pos := geom.V(0, 0, 0)

	s, effs := Place(w, pos, &Actor{ID: "A1", Facing: geom.Facing(7)}, geom.South)
	if s.Facing != geom.South || !s.Valid() {
		t.Fatalf("got %s", s)
	}
	if len(effs) != 1 || effs[0].Actor != "A1" || effs[0].Meta != EncodeMeta(s) {
		t.Fatalf("unexpected effects %v", effs)
	}
	if (State{Facing: geom.Facing(4)}).Valid() {
		t.Fatalf("facing 4 must not be valid")
	}
}
