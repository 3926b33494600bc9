// Package accesscode issues the short bearer codes that identify a
// registration or open a camp gallery.
package accesscode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/tabor-plzen/camp-api/internal/models"
	"gorm.io/gorm"
)

const (
	alphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength = 8

	// Collisions at 36^8 codes are vanishingly rare; more than a couple of
	// retries means something is broken, not that we are unlucky.
	maxAttempts = 10
)

// ErrSpaceExhausted is returned when no free code could be found within the
// retry cap.
var ErrSpaceExhausted = errors.New("accesscode: no unique code available")

// Generator produces codes that are unique across both the registration and
// camp code pools. The DB unique indexes stay authoritative; the existence
// check here only keeps the retry loop honest.
type Generator struct {
	db *gorm.DB
}

func NewGenerator(db *gorm.DB) *Generator {
	return &Generator{db: db}
}

// Next returns a fresh code not present in either table. Run it inside the
// same transaction as the insert that will claim the code.
func (g *Generator) Next(tx *gorm.DB) (string, error) {
	if tx == nil {
		tx = g.db
	}
	for i := 0; i < maxAttempts; i++ {
		code, err := random()
		if err != nil {
			return "", err
		}
		taken, err := exists(tx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrSpaceExhausted
}

// Valid reports whether the string has the shape of an access code. It says
// nothing about whether the code exists.
func Valid(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func random() (string, error) {
	buf := make([]byte, CodeLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("accesscode: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}

func exists(tx *gorm.DB, code string) (bool, error) {
	var count int64
	if err := tx.Model(&models.Registration{}).Where("access_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := tx.Model(&models.Camp{}).Where("access_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
