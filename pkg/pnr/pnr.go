// Package pnr generates booking references and passenger name records.
package pnr

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// pnrAlphabet excludes 0/O and 1/I so records survive being read aloud
// at a check-in desk.
const pnrAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateBookingID returns a human-readable booking reference of the form
// FB-YYYYMMDD-XXXXXX, where the suffix is random hex.
func GenerateBookingID() (string, error) {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate booking reference: %w", err)
	}

	return fmt.Sprintf("FB-%s-%X", time.Now().Format("20060102"), suffix), nil
}

// GeneratePNR returns a six-character passenger name record
func GeneratePNR() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate PNR: %w", err)
	}

	var b strings.Builder
	for _, c := range buf {
		b.WriteByte(pnrAlphabet[int(c)%len(pnrAlphabet)])
	}
	return b.String(), nil
}
