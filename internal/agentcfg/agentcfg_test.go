package agentcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jayllyz/labyrinth/internal/agent"
)

func writeRoster(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write roster fixture: %v", err)
	}
	return path
}

func TestLoadParsesDefaultAndOverrides(t *testing.T) {
	path := writeRoster(t, "default: Tremeaux\nagents:\n  scout: Alian\n  runner: RightHand\n")
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := r.AlgorithmFor("scout"); got != agent.Alian {
		t.Fatalf("scout algorithm = %v, want Alian", got)
	}
	if got := r.AlgorithmFor("runner"); got != agent.RightHand {
		t.Fatalf("runner algorithm = %v, want RightHand", got)
	}
	if got := r.AlgorithmFor("unlisted"); got != agent.Tremeaux {
		t.Fatalf("unlisted algorithm = %v, want roster default Tremeaux", got)
	}
}

func TestAlgorithmForNilRosterFallsBackToRightHand(t *testing.T) {
	var r *Roster
	if got := r.AlgorithmFor("anyone"); got != agent.RightHand {
		t.Fatalf("nil roster algorithm = %v, want RightHand", got)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error loading missing roster file")
	}
}
