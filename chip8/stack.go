package chip8

import (
	"fmt"
	"strings"
)

// Stack holds the return addresses of active subroutine calls.
type Stack struct {
	Addrs [StackDepth]uint16
	Ptr   byte
}

func (s *Stack) push(addr uint16) {
	if int(s.Ptr) >= len(s.Addrs) {
		panic(StackOverflow)
	}
	s.Addrs[s.Ptr] = addr
	s.Ptr++
}

func (s *Stack) pop() uint16 {
	if s.Ptr == 0 {
		panic(StackUnderflow)
	}
	s.Ptr--
	addr := s.Addrs[s.Ptr]
	s.Addrs[s.Ptr] = 0
	return addr
}

func (s Stack) String() string {
	var b strings.Builder
	n := int(s.Ptr)
	if n > len(s.Addrs) {
		n = len(s.Addrs)
	}
	b.WriteByte('(')
	for _, v := range s.Addrs[:n] {
		fmt.Fprintf(&b, " %.3x", v)
	}
	b.WriteString(" )")
	return b.String()
}
