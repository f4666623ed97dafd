package epoch

import "testing"

func TestFloor(t *testing.T) {
	cases := []struct {
		t, epochSize uint64
		want         uint64
	}{
		{100, 10, 100},
		{109, 10, 100},
		{110, 10, 110},
		{0, 86400, 0},
		{10000 + 86400 + 3600, 86400, 86400},
	}

	for _, c := range cases {
		got := Floor(uint32(c.t), c.epochSize)
		if got != c.want {
			t.Errorf("Floor(%d, %d) = %d, want %d", c.t, c.epochSize, got, c.want)
		}
	}
}

func TestGate_MarkAndCheck(t *testing.T) {
	g := NewGate()

	if g.Synced(100) {
		t.Fatal("fresh gate must report unsynced")
	}

	g.MarkSynced(100)
	if !g.Synced(100) {
		t.Fatal("epoch should be synced after MarkSynced")
	}

	// a distinct epoch is unaffected
	if g.Synced(200) {
		t.Fatal("unrelated epoch must remain unsynced")
	}

	// idempotent
	g.MarkSynced(100)
	if !g.Synced(100) {
		t.Fatal("re-marking must stay synced")
	}
}
