package aescrypt

// portableEngine is the table-driven, non-accelerated AES engine (FIPS 197),
// used when no hardware AES support is detected. It implements the same
// blockEngine contract as hwEngine and must produce bit-identical results.
type portableEngine struct {
	nr int        // number of rounds: 10/12/14 for 128/192/256-bit keys
	w  [60]uint32 // encryption round-key schedule, zero-filled before use
	dw [60]uint32 // decryption round-key schedule (InvMixColumns-adjusted)
}

func newPortableEngine() blockEngine {
	return &portableEngine{}
}

func (e *portableEngine) clear() {
	for i := range e.w {
		e.w[i] = 0
	}
	for i := range e.dw {
		e.dw[i] = 0
	}
	e.nr = 0
}

func (e *portableEngine) setKey(key []byte) error {
	e.clear()

	nk := len(key) / 4
	e.nr = nk + 6

	var temp uint32
	for i := 0; i < nk; i++ {
		e.w[i] = uint32(key[4*i])<<24 | uint32(key[4*i+1])<<16 | uint32(key[4*i+2])<<8 | uint32(key[4*i+3])
	}
	for i := nk; i < 4*(e.nr+1); i++ {
		temp = e.w[i-1]
		if i%nk == 0 {
			temp = subWord(rotWord(temp)) ^ rcon[i/nk]
		} else if nk > 6 && i%nk == 4 {
			temp = subWord(temp)
		}
		e.w[i] = e.w[i-nk] ^ temp
	}

	// Decryption schedule: reversed round-key order, with InvMixColumns
	// applied to every round key except the first and last (FIPS 197
	// equivalent inverse-cipher form).
	nr := e.nr
	for round := 0; round <= nr; round++ {
		for c := 0; c < 4; c++ {
			e.dw[4*round+c] = e.w[4*(nr-round)+c]
		}
	}
	for round := 1; round < nr; round++ {
		for c := 0; c < 4; c++ {
			e.dw[4*round+c] = invMixColumnWord(e.dw[4*round+c])
		}
	}

	return nil
}

func (e *portableEngine) encryptBlock(dst, src []byte) {
	var state [4][4]byte
	bytesToState(&state, src)
	addRoundKey(&state, e.w[0:4])

	for round := 1; round < e.nr; round++ {
		subBytes(&state)
		shiftRows(&state)
		mixColumns(&state)
		addRoundKey(&state, e.w[4*round:4*round+4])
	}

	subBytes(&state)
	shiftRows(&state)
	addRoundKey(&state, e.w[4*e.nr:4*e.nr+4])

	stateToBytes(dst, &state)
}

func (e *portableEngine) decryptBlock(dst, src []byte) {
	var state [4][4]byte
	bytesToState(&state, src)
	addRoundKey(&state, e.dw[0:4])

	for round := 1; round < e.nr; round++ {
		invShiftRows(&state)
		invSubBytes(&state)
		invMixColumns(&state)
		addRoundKey(&state, e.dw[4*round:4*round+4])
	}

	invShiftRows(&state)
	invSubBytes(&state)
	addRoundKey(&state, e.dw[4*e.nr:4*e.nr+4])

	stateToBytes(dst, &state)
}

// --- FIPS-197 primitives ---

func bytesToState(state *[4][4]byte, in []byte) {
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			state[r][c] = in[4*c+r]
		}
	}
}

func stateToBytes(out []byte, state *[4][4]byte) {
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[4*c+r] = state[r][c]
		}
	}
}

func addRoundKey(state *[4][4]byte, w []uint32) {
	for c := 0; c < 4; c++ {
		word := w[c]
		state[0][c] ^= byte(word >> 24)
		state[1][c] ^= byte(word >> 16)
		state[2][c] ^= byte(word >> 8)
		state[3][c] ^= byte(word)
	}
}

func subBytes(state *[4][4]byte) {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			state[r][c] = sbox[state[r][c]]
		}
	}
}

func invSubBytes(state *[4][4]byte) {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			state[r][c] = invSbox[state[r][c]]
		}
	}
}

func shiftRows(state *[4][4]byte) {
	state[1] = [4]byte{state[1][1], state[1][2], state[1][3], state[1][0]}
	state[2] = [4]byte{state[2][2], state[2][3], state[2][0], state[2][1]}
	state[3] = [4]byte{state[3][3], state[3][0], state[3][1], state[3][2]}
}

func invShiftRows(state *[4][4]byte) {
	state[1] = [4]byte{state[1][3], state[1][0], state[1][1], state[1][2]}
	state[2] = [4]byte{state[2][2], state[2][3], state[2][0], state[2][1]}
	state[3] = [4]byte{state[3][1], state[3][2], state[3][3], state[3][0]}
}

func mixColumns(state *[4][4]byte) {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := state[0][c], state[1][c], state[2][c], state[3][c]
		state[0][c] = gmul(a0, 2) ^ gmul(a1, 3) ^ a2 ^ a3
		state[1][c] = a0 ^ gmul(a1, 2) ^ gmul(a2, 3) ^ a3
		state[2][c] = a0 ^ a1 ^ gmul(a2, 2) ^ gmul(a3, 3)
		state[3][c] = gmul(a0, 3) ^ a1 ^ a2 ^ gmul(a3, 2)
	}
}

func invMixColumns(state *[4][4]byte) {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := state[0][c], state[1][c], state[2][c], state[3][c]
		state[0][c] = gmul(a0, 0x0e) ^ gmul(a1, 0x0b) ^ gmul(a2, 0x0d) ^ gmul(a3, 0x09)
		state[1][c] = gmul(a0, 0x09) ^ gmul(a1, 0x0e) ^ gmul(a2, 0x0b) ^ gmul(a3, 0x0d)
		state[2][c] = gmul(a0, 0x0d) ^ gmul(a1, 0x09) ^ gmul(a2, 0x0e) ^ gmul(a3, 0x0b)
		state[3][c] = gmul(a0, 0x0b) ^ gmul(a1, 0x0d) ^ gmul(a2, 0x09) ^ gmul(a3, 0x0e)
	}
}

// invMixColumnWord applies InvMixColumns to a single round-key word,
// treating it as a one-column state: this is the transform spec §4.1
// requires on decryption-schedule round keys 1..Nr-1.
func invMixColumnWord(word uint32) uint32 {
	col := [4]byte{byte(word >> 24), byte(word >> 16), byte(word >> 8), byte(word)}
	a0, a1, a2, a3 := col[0], col[1], col[2], col[3]
	col[0] = gmul(a0, 0x0e) ^ gmul(a1, 0x0b) ^ gmul(a2, 0x0d) ^ gmul(a3, 0x09)
	col[1] = gmul(a0, 0x09) ^ gmul(a1, 0x0e) ^ gmul(a2, 0x0b) ^ gmul(a3, 0x0d)
	col[2] = gmul(a0, 0x0d) ^ gmul(a1, 0x09) ^ gmul(a2, 0x0e) ^ gmul(a3, 0x0b)
	col[3] = gmul(a0, 0x0b) ^ gmul(a1, 0x0d) ^ gmul(a2, 0x09) ^ gmul(a3, 0x0e)
	return uint32(col[0])<<24 | uint32(col[1])<<16 | uint32(col[2])<<8 | uint32(col[3])
}

func gmul(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hiBitSet := a&0x80 != 0
		a <<= 1
		if hiBitSet {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

func subWord(w uint32) uint32 {
	return uint32(sbox[byte(w>>24)])<<24 | uint32(sbox[byte(w>>16)])<<16 |
		uint32(sbox[byte(w>>8)])<<8 | uint32(sbox[byte(w)])
}

func rotWord(w uint32) uint32 {
	return w<<8 | w>>24
}

var rcon = [11]uint32{
	0x00000000,
	0x01000000, 0x02000000, 0x04000000, 0x08000000,
	0x10000000, 0x20000000, 0x40000000, 0x80000000,
	0x1b000000, 0x36000000,
}

var sbox = [256]byte{
	0x63, 0x7c, 0x77, 0x7b, 0xf2, 0x6b, 0x6f, 0xc5, 0x30, 0x01, 0x67, 0x2b, 0xfe, 0xd7, 0xab, 0x76,
	0xca, 0x82, 0xc9, 0x7d, 0xfa, 0x59, 0x47, 0xf0, 0xad, 0xd4, 0xa2, 0xaf, 0x9c, 0xa4, 0x72, 0xc0,
	0xb7, 0xfd, 0x93, 0x26, 0x36, 0x3f, 0xf7, 0xcc, 0x34, 0xa5, 0xe5, 0xf1, 0x71, 0xd8, 0x31, 0x15,
	0x04, 0xc7, 0x23, 0xc3, 0x18, 0x96, 0x05, 0x9a, 0x07, 0x12, 0x80, 0xe2, 0xeb, 0x27, 0xb2, 0x75,
	0x09, 0x83, 0x2c, 0x1a, 0x1b, 0x6e, 0x5a, 0xa0, 0x52, 0x3b, 0xd6, 0xb3, 0x29, 0xe3, 0x2f, 0x84,
	0x53, 0xd1, 0x00, 0xed, 0x20, 0xfc, 0xb1, 0x5b, 0x6a, 0xcb, 0xbe, 0x39, 0x4a, 0x4c, 0x58, 0xcf,
	0xd0, 0xef, 0xaa, 0xfb, 0x43, 0x4d, 0x33, 0x85, 0x45, 0xf9, 0x02, 0x7f, 0x50, 0x3c, 0x9f, 0xa8,
	0x51, 0xa3, 0x40, 0x8f, 0x92, 0x9d, 0x38, 0xf5, 0xbc, 0xb6, 0xda, 0x21, 0x10, 0xff, 0xf3, 0xd2,
	0xcd, 0x0c, 0x13, 0xec, 0x5f, 0x97, 0x44, 0x17, 0xc4, 0xa7, 0x7e, 0x3d, 0x64, 0x5d, 0x19, 0x73,
	0x60, 0x81, 0x4f, 0xdc, 0x22, 0x2a, 0x90, 0x88, 0x46, 0xee, 0xb8, 0x14, 0xde, 0x5e, 0x0b, 0xdb,
	0xe0, 0x32, 0x3a, 0x0a, 0x49, 0x06, 0x24, 0x5c, 0xc2, 0xd3, 0xac, 0x62, 0x91, 0x95, 0xe4, 0x79,
	0xe7, 0xc8, 0x37, 0x6d, 0x8d, 0xd5, 0x4e, 0xa9, 0x6c, 0x56, 0xf4, 0xea, 0x65, 0x7a, 0xae, 0x08,
	0xba, 0x78, 0x25, 0x2e, 0x1c, 0xa6, 0xb4, 0xc6, 0xe8, 0xdd, 0x74, 0x1f, 0x4b, 0xbd, 0x8b, 0x8a,
	0x70, 0x3e, 0xb5, 0x66, 0x48, 0x03, 0xf6, 0x0e, 0x61, 0x35, 0x57, 0xb9, 0x86, 0xc1, 0x1d, 0x9e,
	0xe1, 0xf8, 0x98, 0x11, 0x69, 0xd9, 0x8e, 0x94, 0x9b, 0x1e, 0x87, 0xe9, 0xce, 0x55, 0x28, 0xdf,
	0x8c, 0xa1, 0x89, 0x0d, 0xbf, 0xe6, 0x42, 0x68, 0x41, 0x99, 0x2d, 0x0f, 0xb0, 0x54, 0xbb, 0x16,
}

var invSbox = func() [256]byte {
	var inv [256]byte
	for i, v := range sbox {
		inv[v] = byte(i)
	}
	return inv
}()
