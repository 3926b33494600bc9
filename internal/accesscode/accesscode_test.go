package accesscode

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tabor-plzen/camp-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Camp{}, &models.Registration{}))
	return db
}

func TestNextShape(t *testing.T) {
	db := testDB(t)
	g := NewGenerator(db)

	code, err := g.Next(nil)
	require.NoError(t, err)
	require.True(t, Valid(code), "generated code %q should be valid", code)
}

func TestNextAvoidsBothTables(t *testing.T) {
	db := testDB(t)
	g := NewGenerator(db)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := g.Next(nil)
		require.NoError(t, err)
		require.False(t, seen[code], "code %q issued twice", code)
		seen[code] = true

		// Alternate claiming the code in each pool so the cross-table
		// check is exercised.
		if i%2 == 0 {
			require.NoError(t, db.Create(&models.Registration{AccessCode: code, Status: models.RegistrationPending}).Error)
		} else {
			require.NoError(t, db.Create(&models.Camp{Name: "c", AccessCode: &code}).Error)
		}
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"ABCD1234", true},
		{"A1B2C3D4", true},
		{"abcd1234", false},
		{"ABC-1234", false},
		{"ABCD123", false},
		{"ABCD12345", false},
		{"", false},
	}
	for _, c := range cases {
		if Valid(c.code) != c.want {
			t.Errorf("Valid(%q) = %v, want %v", c.code, !c.want, c.want)
		}
	}
}
