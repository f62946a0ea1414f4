package capture

// FourCC is a four character pixel encoding code packed little-endian
// into 32 bits: the first character occupies the lowest byte.
type FourCC uint32

// MakeFourCC packs a four character string into a FourCC. Strings
// shorter than four characters are zero padded.
func MakeFourCC(s string) FourCC {
	var v uint32
	for i := 0; i < 4 && i < len(s); i++ {
		v |= uint32(s[i]) << (8 * uint(i))
	}
	return FourCC(v)
}

// String renders the code as four ASCII characters, lowest byte first.
func (f FourCC) String() string {
	b := make([]byte, 4)
	v := uint32(f)
	for i := 0; i < 4; i++ {
		b[i] = byte(v & 0xFF)
		v >>= 8
	}
	return string(b)
}
