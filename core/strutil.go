package core

// itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func itoa(n int) string {
	if n < 0 {
		return "-" + utoa(uint32(-n))
	}
	return utoa(uint32(n))
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

const hexDigits = "0123456789abcdef"

// hexN formats the low n nibbles of v as 0x-prefixed hex
func hexN(v uint32, n int) string {
	buf := make([]byte, n+2)
	buf[0], buf[1] = '0', 'x'
	for i := n + 1; i >= 2; i-- {
		buf[i] = hexDigits[v&0xF]
		v >>= 4
	}
	return string(buf)
}

func hex8(v uint8) string {
	return hexN(uint32(v), 2)
}

func hex32(v uint32) string {
	return hexN(v, 8)
}
