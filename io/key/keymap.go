// SPDX-License-Identifier: Unlicense OR MIT

package key

// Android meta state bits.
const (
	MetaShiftOn    = 0x1
	MetaAltOn      = 0x2
	MetaCtrlOn     = 0x1000
	MetaMetaOn     = 0x10000
	MetaCapsLockOn = 0x100000
)

// Key symbols of non-printing keys.
const (
	KeyBackSpace Keyval = 0xff08
	KeyTab       Keyval = 0xff09
	KeyReturn    Keyval = 0xff0d
	KeyEscape    Keyval = 0xff1b
	KeyHome      Keyval = 0xff50
	KeyLeft      Keyval = 0xff51
	KeyUp        Keyval = 0xff52
	KeyRight     Keyval = 0xff53
	KeyDown      Keyval = 0xff54
	KeyPageUp    Keyval = 0xff55
	KeyPageDown  Keyval = 0xff56
	KeyEnd       Keyval = 0xff57
	KeyInsert    Keyval = 0xff63
	KeyMenu      Keyval = 0xff67
	KeyKPEnter   Keyval = 0xff8d
	KeyF1        Keyval = 0xffbe
	KeyShiftL    Keyval = 0xffe1
	KeyShiftR    Keyval = 0xffe2
	KeyControlL  Keyval = 0xffe3
	KeyControlR  Keyval = 0xffe4
	KeyCapsLock  Keyval = 0xffe5
	KeyAltL      Keyval = 0xffe9
	KeyAltR      Keyval = 0xffea
	KeySuperL    Keyval = 0xffeb
	KeySuperR    Keyval = 0xffec
	KeyDelete    Keyval = 0xffff
	KeyBack      Keyval = 0x1008ff26
)

// entry holds the unshifted and shifted key symbols of a key code. Zero
// shifted means the key has a single level.
type entry struct {
	plain, shifted Keyval
	letter         bool
}

// Keymap translates Android key codes with the US layout.
type Keymap struct {
	codes map[int32]entry
}

// NewKeymap returns the keymap.
func NewKeymap() *Keymap {
	m := &Keymap{codes: make(map[int32]entry)}
	// AKEYCODE_A..AKEYCODE_Z.
	for i := int32(0); i < 26; i++ {
		m.codes[29+i] = entry{plain: Keyval('a' + i), shifted: Keyval('A' + i), letter: true}
	}
	// AKEYCODE_0..AKEYCODE_9.
	shiftedDigits := ")!@#$%^&*("
	for i := int32(0); i < 10; i++ {
		m.codes[7+i] = entry{plain: Keyval('0' + i), shifted: Keyval(shiftedDigits[i])}
	}
	// AKEYCODE_NUMPAD_0..AKEYCODE_NUMPAD_9.
	for i := int32(0); i < 10; i++ {
		m.codes[144+i] = entry{plain: 0xffb0 + Keyval(i)}
	}
	// AKEYCODE_F1..AKEYCODE_F12.
	for i := int32(0); i < 12; i++ {
		m.codes[131+i] = entry{plain: KeyF1 + Keyval(i)}
	}
	for code, e := range map[int32]entry{
		4:   {plain: KeyBack},
		17:  {plain: '*'},
		18:  {plain: '#'},
		19:  {plain: KeyUp},
		20:  {plain: KeyDown},
		21:  {plain: KeyLeft},
		22:  {plain: KeyRight},
		23:  {plain: KeyReturn},
		55:  {plain: ',', shifted: '<'},
		56:  {plain: '.', shifted: '>'},
		57:  {plain: KeyAltL},
		58:  {plain: KeyAltR},
		59:  {plain: KeyShiftL},
		60:  {plain: KeyShiftR},
		61:  {plain: KeyTab},
		62:  {plain: ' '},
		66:  {plain: KeyReturn},
		67:  {plain: KeyBackSpace},
		68:  {plain: '`', shifted: '~'},
		69:  {plain: '-', shifted: '_'},
		70:  {plain: '=', shifted: '+'},
		71:  {plain: '[', shifted: '{'},
		72:  {plain: ']', shifted: '}'},
		73:  {plain: '\\', shifted: '|'},
		74:  {plain: ';', shifted: ':'},
		75:  {plain: '\'', shifted: '"'},
		76:  {plain: '/', shifted: '?'},
		77:  {plain: '@'},
		81:  {plain: '+'},
		82:  {plain: KeyMenu},
		92:  {plain: KeyPageUp},
		93:  {plain: KeyPageDown},
		111: {plain: KeyEscape},
		112: {plain: KeyDelete},
		113: {plain: KeyControlL},
		114: {plain: KeyControlR},
		115: {plain: KeyCapsLock},
		117: {plain: KeySuperL},
		118: {plain: KeySuperR},
		122: {plain: KeyHome},
		123: {plain: KeyEnd},
		124: {plain: KeyInsert},
		154: {plain: 0xffaf},
		155: {plain: 0xffaa},
		156: {plain: 0xffad},
		157: {plain: 0xffab},
		158: {plain: 0xffae},
		159: {plain: 0xffac},
		160: {plain: KeyKPEnter},
		161: {plain: 0xffbd},
	} {
		m.codes[code] = e
	}
	return m
}

// Translate maps a key code and modifier state to a key symbol, the
// modifiers consumed by the translation and its shift level. It reports
// false for key codes without a symbol.
func (m *Keymap) Translate(code int32, mods Modifiers) (val Keyval, consumed Modifiers, level int, ok bool) {
	e, ok := m.codes[code]
	if !ok {
		return 0, 0, 0, false
	}
	if e.shifted == 0 {
		return e.plain, 0, 0, true
	}
	shift := mods.Contain(ModShift)
	consumed = ModShift
	if e.letter {
		consumed |= ModCapsLock
		if mods.Contain(ModCapsLock) {
			shift = !shift
		}
	}
	if shift {
		return e.shifted, consumed, 1, true
	}
	return e.plain, consumed, 0, true
}

// ModifiersFromMeta converts an Android meta state.
func ModifiersFromMeta(meta int32) Modifiers {
	var m Modifiers
	if meta&MetaShiftOn != 0 {
		m |= ModShift
	}
	if meta&MetaAltOn != 0 {
		m |= ModAlt
	}
	if meta&MetaCtrlOn != 0 {
		m |= ModCtrl
	}
	if meta&MetaMetaOn != 0 {
		m |= ModSuper
	}
	if meta&MetaCapsLockOn != 0 {
		m |= ModCapsLock
	}
	return m
}
