package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/database"
)

func TestSequenceStartsAtOneAndIncrements(t *testing.T) {
	db := setupTestDB(t)
	runner := database.NewTxRunner(db)
	seq := NewSequenceService(runner)

	var got []int64
	for i := 0; i < 5; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			n, err := seq.Next(tx, testTenant, "20250115")
			if err != nil {
				return err
			}
			got = append(got, n)
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, got)
}

func TestSequenceShardsAreIndependent(t *testing.T) {
	db := setupTestDB(t)
	runner := database.NewTxRunner(db)
	seq := NewSequenceService(runner)

	err := db.Transaction(func(tx *gorm.DB) error {
		n1, err := seq.Next(tx, testTenant, "20250115")
		require.NoError(t, err)
		n2, err := seq.Next(tx, testTenant, "20250116")
		require.NoError(t, err)
		n3, err := seq.Next(tx, 2, "20250115")
		require.NoError(t, err)

		// Setiap shard (dan tenant) mulai dari 1
		assert.Equal(t, int64(1), n1)
		assert.Equal(t, int64(1), n2)
		assert.Equal(t, int64(1), n3)
		return nil
	})
	require.NoError(t, err)
}

func TestSequenceRollbackLeavesNoGap(t *testing.T) {
	db := setupTestDB(t)
	runner := database.NewTxRunner(db)
	seq := NewSequenceService(runner)

	err := db.Transaction(func(tx *gorm.DB) error {
		n, err := seq.Next(tx, testTenant, "20250115")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return nil
	})
	require.NoError(t, err)

	// Transaksi gagal -> increment ikut di-rollback
	failed := errors.New("simulated failure")
	err = db.Transaction(func(tx *gorm.DB) error {
		n, err := seq.Next(tx, testTenant, "20250115")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		return failed
	})
	require.ErrorIs(t, err, failed)

	err = db.Transaction(func(tx *gorm.DB) error {
		n, err := seq.Next(tx, testTenant, "20250115")
		require.NoError(t, err)
		// Nomor 2 dipakai ulang: committed numbers tetap gap-free
		assert.Equal(t, int64(2), n)
		return nil
	})
	require.NoError(t, err)
}
