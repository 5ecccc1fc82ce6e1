package protocol

// CRC-8 parameters. Changing either is a wire format change: the
// peripheral firmware carries the identical table.
const (
	crcPolynomial byte = 0x31
	crcInit       byte = 0x00
)

var crcTable [256]byte

func init() {
	for n := 0; n < 256; n++ {
		crc := byte(n)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
		crcTable[n] = crc
	}
}

// ChecksumUpdate folds one byte into a running CRC-8 value.
func ChecksumUpdate(crc, b byte) byte {
	return crcTable[crc^b]
}

// Checksum computes the CRC-8 of data, MSB-first, using the shared
// table. Same input always yields the same output.
func Checksum(data []byte) byte {
	crc := crcInit
	for _, b := range data {
		crc = ChecksumUpdate(crc, b)
	}
	return crc
}
