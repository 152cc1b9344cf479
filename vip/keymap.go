package vip

import "unicode"

// The COSMAC VIP hex keypad is laid over the left of a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var keypad = map[rune]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// KeyForRune returns the hex key for the keyboard character r.
func KeyForRune(r rune) (byte, bool) {
	k, ok := keypad[unicode.ToLower(r)]
	return k, ok
}
