package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
)

// ReferenceDigits is the length of a bet slip reference number.
const ReferenceDigits = 6

var referenceMax = big.NewInt(1_000_000)

// GenerateReferenceNo returns a random zero-padded 6 digit reference number.
func GenerateReferenceNo() (string, error) {
	n, err := rand.Int(rand.Reader, referenceMax)
	if err != nil {
		return "", fmt.Errorf("generate reference number: %w", err)
	}
	return fmt.Sprintf("%0*d", ReferenceDigits, n.Int64()), nil
}

// IsReferenceNo reports whether s is exactly six digits.
func IsReferenceNo(s string) bool {
	if len(s) != ReferenceDigits {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// StationLabels returns "Station 1" through "Station n".
func StationLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("Station %d", i+1)
	}
	return labels
}

// StationNumber extracts the trailing number of a station label. Labels
// without one sort last.
func StationNumber(label string) int {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return int(^uint(0) >> 1)
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// StationLess orders labels by station number, then alphabetically.
func StationLess(a, b string) bool {
	na, nb := StationNumber(a), StationNumber(b)
	if na != nb {
		return na < nb
	}
	return a < b
}

// QRCodeEncoder matches qrcode.Encode so tests can swap it.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// EncodeQRCode renders content as a square PNG of the given pixel size.
func EncodeQRCode(content string, size int, encode QRCodeEncoder) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid QR code size %d", size)
	}
	if encode == nil {
		encode = qrcode.Encode
	}
	return encode(content, qrcode.Medium, size)
}
