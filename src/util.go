package firefly

import (
	"strings"
	"time"
	"unicode"
)

// Because sometimes it's really convenient to have C's ternary ?:
func IfThenElse[T any](x bool, a T, b T) T { //nolint:ireturn
	if x {
		return a
	} else {
		return b
	}
}

func SLEEP_MS(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// Payloads are opaque bytes but mostly text in practice.  Anything
// unprintable shows up as a dot, same as a hex dump's right column.
func printable_payload(payload []byte) string {
	var sb strings.Builder
	for _, b := range payload {
		if b < 0x80 && unicode.IsPrint(rune(b)) {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
