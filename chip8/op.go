package chip8

import (
	"fmt"
	"strings"
)

// Op identifies a CHIP-8 operation. The zero value, Unknown, is produced by
// Decode for any instruction word that is not a defined operation.
type Op byte

const (
	Unknown Op = iota
	CLS        // 00E0
	RET        // 00EE
	JP         // 1nnn
	CALL       // 2nnn
	SEB        // 3xkk
	SNEB       // 4xkk
	SE         // 5xy0
	LDB        // 6xkk
	ADDB       // 7xkk
	LD         // 8xy0
	OR         // 8xy1
	AND        // 8xy2
	XOR        // 8xy3
	ADD        // 8xy4
	SUB        // 8xy5
	SHR        // 8xy6
	SUBN       // 8xy7
	SHL        // 8xyE
	SNE        // 9xy0
	LDI        // Annn
	JPV0       // Bnnn
	RND        // Cxkk
	DRW        // Dxyn
	SKP        // Ex9E
	SKNP       // ExA1
	LDDT       // Fx07
	LDK        // Fx0A
	SETDT      // Fx15
	SETST      // Fx18
	ADDI       // Fx1E
	LDF        // Fx29
	BCD        // Fx33
	STM        // Fx55
	LDM        // Fx65

	numOps
)

func (o Op) String() string {
	if int(o) < len(opStrings) {
		return opStrings[o]
	}
	return fmt.Sprintf("Op(%d)", byte(o))
}

var opStrings = strings.Fields(`
	???
	CLS RET JP CALL SEB SNEB SE LDB ADDB
	LD OR AND XOR ADD SUB SHR SUBN SHL
	SNE LDI JPV0 RND DRW SKP SKNP
	LDDT LDK SETDT SETST ADDI LDF BCD STM LDM
`)

// Instruction is a decoded instruction word together with its operand
// fields. Not every field is meaningful for every Op.
type Instruction struct {
	Word uint16
	Op   Op

	X   byte   // bits 8-11
	Y   byte   // bits 4-7
	N   byte   // bits 0-3
	KK  byte   // bits 0-7
	NNN uint16 // bits 0-11
}

// Decode extracts the operand fields of word and selects its operation.
func Decode(word uint16) Instruction {
	in := Instruction{
		Word: word,
		X:    byte(word>>8) & 0xf,
		Y:    byte(word>>4) & 0xf,
		N:    byte(word) & 0xf,
		KK:   byte(word),
		NNN:  word & 0xfff,
	}
	in.Op = decodeOp(word, in.N, in.KK)
	return in
}

func decodeOp(word uint16, n, kk byte) Op {
	switch word >> 12 {
	case 0x0:
		switch word {
		case 0x00e0:
			return CLS
		case 0x00ee:
			return RET
		}
	case 0x1:
		return JP
	case 0x2:
		return CALL
	case 0x3:
		return SEB
	case 0x4:
		return SNEB
	case 0x5:
		if n == 0 {
			return SE
		}
	case 0x6:
		return LDB
	case 0x7:
		return ADDB
	case 0x8:
		switch n {
		case 0x0:
			return LD
		case 0x1:
			return OR
		case 0x2:
			return AND
		case 0x3:
			return XOR
		case 0x4:
			return ADD
		case 0x5:
			return SUB
		case 0x6:
			return SHR
		case 0x7:
			return SUBN
		case 0xe:
			return SHL
		}
	case 0x9:
		if n == 0 {
			return SNE
		}
	case 0xa:
		return LDI
	case 0xb:
		return JPV0
	case 0xc:
		return RND
	case 0xd:
		return DRW
	case 0xe:
		switch kk {
		case 0x9e:
			return SKP
		case 0xa1:
			return SKNP
		}
	case 0xf:
		switch kk {
		case 0x07:
			return LDDT
		case 0x0a:
			return LDK
		case 0x15:
			return SETDT
		case 0x18:
			return SETST
		case 0x1e:
			return ADDI
		case 0x29:
			return LDF
		case 0x33:
			return BCD
		case 0x55:
			return STM
		case 0x65:
			return LDM
		}
	}
	return Unknown
}

// String formats the instruction in a conventional assembly syntax.
func (in Instruction) String() string {
	switch in.Op {
	case CLS, RET:
		return in.Op.String()
	case JP, CALL, LDI, JPV0:
		return fmt.Sprintf("%s %.3x", in.Op, in.NNN)
	case SEB, SNEB, LDB, ADDB, RND:
		return fmt.Sprintf("%s v%x %.2x", in.Op, in.X, in.KK)
	case SE, SNE, LD, OR, AND, XOR, ADD, SUB, SHR, SUBN, SHL:
		return fmt.Sprintf("%s v%x v%x", in.Op, in.X, in.Y)
	case DRW:
		return fmt.Sprintf("%s v%x v%x %x", in.Op, in.X, in.Y, in.N)
	case Unknown:
		return fmt.Sprintf("%s %.4x", in.Op, in.Word)
	default:
		return fmt.Sprintf("%s v%x", in.Op, in.X)
	}
}
