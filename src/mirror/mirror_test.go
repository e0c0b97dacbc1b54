package mirror

import (
	"testing"
	"time"
)

func snapshotAt(entries map[string]int64) Snapshot {
	s := Snapshot{}
	for path, sec := range entries {
		s[path] = time.Unix(sec, 0)
	}
	return s
}

func TestDiff_DecisionTable(t *testing.T) {
	cases := []struct {
		name   string
		source Snapshot
		dest   Snapshot
		want   map[string]ActionKind
	}{
		{
			name:   "only in source is copied",
			source: snapshotAt(map[string]int64{"a.txt": 100}),
			dest:   Snapshot{},
			want:   map[string]ActionKind{"a.txt": ActionCopy},
		},
		{
			name:   "only in dest is deleted",
			source: Snapshot{},
			dest:   snapshotAt(map[string]int64{"stale.txt": 100}),
			want:   map[string]ActionKind{"stale.txt": ActionDelete},
		},
		{
			name:   "source newer overwrites",
			source: snapshotAt(map[string]int64{"b.txt": 200}),
			dest:   snapshotAt(map[string]int64{"b.txt": 150}),
			want:   map[string]ActionKind{"b.txt": ActionCopy},
		},
		{
			name:   "equal mtime is skipped",
			source: snapshotAt(map[string]int64{"b.txt": 200}),
			dest:   snapshotAt(map[string]int64{"b.txt": 200}),
			want:   map[string]ActionKind{"b.txt": ActionSkip},
		},
		{
			name:   "source older never overwrites",
			source: snapshotAt(map[string]int64{"b.txt": 100}),
			dest:   snapshotAt(map[string]int64{"b.txt": 200}),
			want:   map[string]ActionKind{"b.txt": ActionSkip},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actions := Diff(tc.source, tc.dest)
			if len(actions) != len(tc.want) {
				t.Fatalf("expected %d actions, got %d: %v", len(tc.want), len(actions), actions)
			}
			for _, action := range actions {
				want, ok := tc.want[action.Path]
				if !ok {
					t.Errorf("unexpected action for %s", action.Path)
					continue
				}
				if action.Kind != want {
					t.Errorf("path %s: expected %s, got %s", action.Path, want, action.Kind)
				}
			}
		})
	}
}

func TestDiff_OneActionPerPath(t *testing.T) {
	source := snapshotAt(map[string]int64{"a.txt": 100, "b.txt": 200, "sub/c.txt": 300})
	dest := snapshotAt(map[string]int64{"b.txt": 150, "sub/c.txt": 300, "d.txt": 50})

	actions := Diff(source, dest)

	seen := map[string]int{}
	for _, action := range actions {
		seen[action.Path]++
	}
	for path, count := range seen {
		if count != 1 {
			t.Errorf("path %s got %d actions, expected exactly one", path, count)
		}
	}
	// Every path from either snapshot must be decided.
	for path := range source {
		if seen[path] == 0 {
			t.Errorf("source path %s has no action", path)
		}
	}
	for path := range dest {
		if seen[path] == 0 {
			t.Errorf("dest path %s has no action", path)
		}
	}
}

func TestDiff_Scenario(t *testing.T) {
	// source = {a.txt t=100, b.txt t=200}, dest = {b.txt t=150, c.txt t=50}
	source := snapshotAt(map[string]int64{"a.txt": 100, "b.txt": 200})
	dest := snapshotAt(map[string]int64{"b.txt": 150, "c.txt": 50})

	actions := Diff(source, dest)

	want := []Action{
		{Kind: ActionCopy, Path: "a.txt"},
		{Kind: ActionCopy, Path: "b.txt"},
		{Kind: ActionDelete, Path: "c.txt"},
	}
	if len(actions) != len(want) {
		t.Fatalf("expected %d actions, got %v", len(want), actions)
	}
	for i, action := range actions {
		if action != want[i] {
			t.Errorf("action %d: expected %v, got %v", i, want[i], action)
		}
	}
}

func TestDiff_IdenticalSnapshotsAllSkip(t *testing.T) {
	source := snapshotAt(map[string]int64{"a.txt": 1, "sub/b.txt": 2, "sub/deep/c.txt": 3})
	dest := snapshotAt(map[string]int64{"a.txt": 1, "sub/b.txt": 2, "sub/deep/c.txt": 3})

	for _, action := range Diff(source, dest) {
		if action.Kind != ActionSkip {
			t.Errorf("path %s: expected skip, got %s", action.Path, action.Kind)
		}
	}
}

func TestDiff_Deterministic(t *testing.T) {
	source := snapshotAt(map[string]int64{"z.txt": 1, "a.txt": 2, "m/n.txt": 3})
	dest := snapshotAt(map[string]int64{"q.txt": 4, "a.txt": 2})

	first := Diff(source, dest)
	second := Diff(source, dest)
	if len(first) != len(second) {
		t.Fatalf("diff lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("diff order not deterministic at %d: %v vs %v", i, first[i], second[i])
		}
	}
}
