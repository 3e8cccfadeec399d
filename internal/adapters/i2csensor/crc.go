package i2csensor

import "fmt"

// crc8 is the Sensirion CRC-8 (poly 0x31, init 0xFF) covering each 16-bit
// word on the wire.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// word extracts the n-th word+CRC group from a sensor response.
func word(buf []byte, n int) (uint16, error) {
	g := buf[n*3 : n*3+3]
	if crc8(g[:2]) != g[2] {
		return 0, fmt.Errorf("word %d: crc mismatch", n)
	}
	return uint16(g[0])<<8 | uint16(g[1]), nil
}
