package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"gatecraft.ai/internal/sim/geom"
)

func TestLoad_RepoConfig(t *testing.T) {
	tu, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f, err := tu.DefaultGateFacing()
	if err != nil || f != geom.North {
		t.Fatalf("default facing: got %s err=%v", f, err)
	}
	if tu.Gate.Sound != "DOOR" {
		t.Fatalf("sound: got %q", tu.Gate.Sound)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("height: 16\ngate:\n  default_facing: east\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tu, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tu.Height != 16 || tu.TickRateHz != 20 {
		t.Fatalf("unexpected values: height=%d tick_rate=%d", tu.Height, tu.TickRateHz)
	}
	if f, _ := tu.DefaultGateFacing(); f != geom.East {
		t.Fatalf("default facing: got %s", f)
	}
	if tu.Gate.Sound != "DOOR" {
		t.Fatalf("sound default lost: %q", tu.Gate.Sound)
	}
}

func TestLoad_RejectsVerticalDefaultFacing(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("gate:\n  default_facing: UP\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error")
	}
}
