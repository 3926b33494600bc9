package camps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tabor-plzen/camp-api/internal/accesscode"
	"github.com/tabor-plzen/camp-api/internal/models"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Camp{}, &models.Registration{}))
	return NewService(db, accesscode.NewGenerator(db), zap.NewNop()), db
}

func TestCreateAssignsCodeAndSpots(t *testing.T) {
	svc, _ := newTestService(t)

	camp := models.Camp{Name: "Adventure Camp", Location: "Sumava", Type: "adventure", Price: 5900, Capacity: 10}
	require.NoError(t, svc.Create(context.Background(), &camp))

	assert.Equal(t, 10, camp.AvailableSpots)
	require.NotNil(t, camp.AccessCode)
	assert.True(t, accesscode.Valid(*camp.AccessCode))
}

func TestListFilters(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seed := []models.Camp{
		{Name: "Adventure", Type: "adventure", Price: 5900, AgeGroup: "8-15"},
		{Name: "Sport", Type: "sport", Price: 4500, AgeGroup: "10-16"},
		{Name: "Creative", Type: "creative", Price: 5200, AgeGroup: "6-14"},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	byType, err := svc.List(ctx, Filter{Type: "sport"})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "Sport", byType[0].Name)

	byPrice, err := svc.List(ctx, Filter{MaxPrice: 5000})
	require.NoError(t, err)
	require.Len(t, byPrice, 1)
	assert.Equal(t, "Sport", byPrice[0].Name)

	byAge, err := svc.List(ctx, Filter{AgeGroup: "6-9"})
	require.NoError(t, err)
	// "8-15" mentions 8, "6-14" mentions 6, "10-16" mentions 6 via "16".
	assert.Len(t, byAge, 3)
}

func TestUpdateCapacityRecomputesSpots(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	camp := models.Camp{Name: "c", Capacity: 10, AvailableSpots: 5}
	require.NoError(t, db.Create(&camp).Error)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&models.Registration{
			CampID:     camp.ID,
			AccessCode: testCode(i),
			Status:     models.RegistrationPending,
		}).Error)
	}

	// Cutting capacity below the reserved count floors at zero instead of
	// going negative.
	require.NoError(t, svc.UpdateCapacity(ctx, camp.ID, 3))

	var got models.Camp
	require.NoError(t, db.First(&got, camp.ID).Error)
	assert.Equal(t, 3, got.Capacity)
	assert.Equal(t, 0, got.AvailableSpots)

	// Raising it again frees the difference.
	require.NoError(t, svc.UpdateCapacity(ctx, camp.ID, 8))
	require.NoError(t, db.First(&got, camp.ID).Error)
	assert.Equal(t, 3, got.AvailableSpots)
}

func TestRecomputeIgnoresCancelled(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	camp := models.Camp{Name: "c", Capacity: 4}
	require.NoError(t, db.Create(&camp).Error)
	require.NoError(t, db.Create(&models.Registration{CampID: camp.ID, AccessCode: "AAAA0001", Status: models.RegistrationPending}).Error)
	require.NoError(t, db.Create(&models.Registration{CampID: camp.ID, AccessCode: "AAAA0002", Status: models.RegistrationCancelled}).Error)

	require.NoError(t, svc.UpdateCapacity(ctx, camp.ID, 4))

	var got models.Camp
	require.NoError(t, db.First(&got, camp.ID).Error)
	assert.Equal(t, 3, got.AvailableSpots)
}

func TestDuplicate(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	camp := models.Camp{Name: "Summer", Capacity: 12, AvailableSpots: 1, Price: 4900}
	code := "CAMP0001"
	camp.AccessCode = &code
	require.NoError(t, db.Create(&camp).Error)

	start := time.Now().AddDate(0, 6, 0)
	end := start.AddDate(0, 0, 7)
	clone, err := svc.Duplicate(ctx, camp.ID, start, end)
	require.NoError(t, err)

	assert.NotEqual(t, camp.ID, clone.ID)
	assert.Equal(t, camp.Name, clone.Name)
	assert.Equal(t, 12, clone.AvailableSpots, "clone starts with an empty registration book")
	require.NotNil(t, clone.AccessCode)
	assert.NotEqual(t, code, *clone.AccessCode)
	assert.WithinDuration(t, start, clone.StartDate, time.Second)
}

func TestDeleteCascades(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	require.NoError(t, db.AutoMigrate(&models.Payment{}, &models.CampPhoto{}, &models.LiveUpdate{}))

	camp := models.Camp{Name: "c", Capacity: 5}
	require.NoError(t, db.Create(&camp).Error)
	reg := models.Registration{CampID: camp.ID, AccessCode: "DDDD0001", Status: models.RegistrationPending}
	require.NoError(t, db.Create(&reg).Error)
	require.NoError(t, db.Create(&models.Payment{RegistrationID: reg.ID, TransactionID: "TXN1", Status: models.PaymentPending}).Error)
	require.NoError(t, db.Create(&models.CampPhoto{CampID: camp.ID, FileName: "a.jpg"}).Error)
	require.NoError(t, db.Create(&models.LiveUpdate{CampID: camp.ID, Title: "t", Content: "c"}).Error)

	require.NoError(t, svc.Delete(ctx, camp.ID))

	for _, m := range []any{&models.Registration{}, &models.Payment{}, &models.CampPhoto{}, &models.LiveUpdate{}} {
		var count int64
		require.NoError(t, db.Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}

	assert.ErrorIs(t, svc.Delete(ctx, camp.ID), ErrNotFound)
}

func testCode(i int) string {
	return string(rune('A'+i)) + "BCDE012" // 8 chars, unique per i < 26
}
