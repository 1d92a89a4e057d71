// SPDX-License-Identifier: Unlicense OR MIT

package key

import (
	"testing"
)

func TestTranslate(t *testing.T) {
	km := NewKeymap()
	tests := []struct {
		name     string
		code     int32
		mods     Modifiers
		val      Keyval
		consumed Modifiers
		level    int
	}{
		{"a", 29, 0, 'a', ModShift | ModCapsLock, 0},
		{"shift-a", 29, ModShift, 'A', ModShift | ModCapsLock, 1},
		{"caps-a", 29, ModCapsLock, 'A', ModShift | ModCapsLock, 1},
		{"caps-shift-z", 54, ModCapsLock | ModShift, 'z', ModShift | ModCapsLock, 0},
		{"1", 8, 0, '1', ModShift, 0},
		{"shift-1", 8, ModShift, '!', ModShift, 1},
		{"caps-1", 8, ModCapsLock, '1', ModShift, 0},
		{"shift-0", 7, ModShift, ')', ModShift, 1},
		{"ctrl-c", 31, ModCtrl, 'c', ModShift | ModCapsLock, 0},
		{"enter", 66, ModShift, KeyReturn, 0, 0},
		{"backspace", 67, 0, KeyBackSpace, 0, 0},
		{"f12", 142, 0, KeyF1 + 11, 0, 0},
		{"numpad-5", 149, 0, 0xffb5, 0, 0},
		{"slash", 76, ModShift, '?', ModShift, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			val, consumed, level, ok := km.Translate(tc.code, tc.mods)
			if !ok {
				t.Fatalf("Translate(%d) failed", tc.code)
			}
			if val != tc.val || consumed != tc.consumed || level != tc.level {
				t.Errorf("Translate(%d, %v) = %#x, %v, %d; want %#x, %v, %d",
					tc.code, tc.mods, val, consumed, level, tc.val, tc.consumed, tc.level)
			}
		})
	}
}

func TestTranslateUnknown(t *testing.T) {
	km := NewKeymap()
	for _, code := range []int32{0, 96, 188, 1000} {
		if _, _, _, ok := km.Translate(code, 0); ok {
			t.Errorf("Translate(%d) succeeded", code)
		}
	}
}

func TestModifiersFromMeta(t *testing.T) {
	tests := []struct {
		meta int32
		want Modifiers
	}{
		{0, 0},
		{MetaShiftOn | 0x40, ModShift},
		{MetaCtrlOn | 0x2000, ModCtrl},
		{MetaAltOn | MetaMetaOn, ModAlt | ModSuper},
		{MetaCapsLockOn | MetaShiftOn, ModCapsLock | ModShift},
	}
	for _, tc := range tests {
		if got := ModifiersFromMeta(tc.meta); got != tc.want {
			t.Errorf("ModifiersFromMeta(%#x) = %v; want %v", tc.meta, got, tc.want)
		}
	}
}

func TestModifiersString(t *testing.T) {
	if got, want := (ModCtrl | ModShift | ModCapsLock).String(), "Ctrl-Shift-CapsLock"; got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}
