// SPDX-License-Identifier: Unlicense OR MIT

package handle

import "testing"

func TestInsertGet(t *testing.T) {
	var tab Table[string]
	a := tab.Insert("a")
	b := tab.Insert("b")
	if a == 0 || b == 0 {
		t.Fatalf("zero ID issued: %d %d", a, b)
	}
	if a == b {
		t.Fatalf("duplicate ID %d", a)
	}
	for _, tc := range []struct {
		id   ID
		want string
	}{{a, "a"}, {b, "b"}} {
		got, ok := tab.Get(tc.id)
		if !ok || got != tc.want {
			t.Errorf("Get(%d) = %q, %v; want %q, true", tc.id, got, ok, tc.want)
		}
	}
	if got := tab.Len(); got != 2 {
		t.Errorf("Len = %d; want 2", got)
	}
}

func TestStaleID(t *testing.T) {
	var tab Table[int]
	old := tab.Insert(1)
	if !tab.Remove(old) {
		t.Fatal("Remove of live ID failed")
	}
	if tab.Remove(old) {
		t.Error("second Remove succeeded")
	}
	reused := tab.Insert(2)
	if reused == old {
		t.Fatalf("reused slot returned the stale ID %d", old)
	}
	if _, ok := tab.Get(old); ok {
		t.Error("stale ID resolved after slot reuse")
	}
	if v, ok := tab.Get(reused); !ok || v != 2 {
		t.Errorf("Get(reused) = %d, %v; want 2, true", v, ok)
	}
}

func TestInvalidIDs(t *testing.T) {
	var tab Table[int]
	tab.Insert(1)
	for _, id := range []ID{0, 1 << 32, pack(5, 1)} {
		if _, ok := tab.Get(id); ok {
			t.Errorf("Get(%#x) succeeded", uint64(id))
		}
	}
}

func TestRange(t *testing.T) {
	var tab Table[int]
	ids := map[ID]int{}
	for i := 0; i < 5; i++ {
		ids[tab.Insert(i)] = i
	}
	var first ID
	for id := range ids {
		first = id
		break
	}
	tab.Remove(first)
	delete(ids, first)
	seen := 0
	tab.Range(func(id ID, v int) bool {
		if want, ok := ids[id]; !ok || want != v {
			t.Errorf("Range yielded %d=%d", id, v)
		}
		seen++
		return true
	})
	if seen != len(ids) {
		t.Errorf("Range visited %d values; want %d", seen, len(ids))
	}
}
