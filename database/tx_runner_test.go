package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/utils"
)

type counter struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"uniqueIndex"`
	Value int
}

func newRunner(t *testing.T) *TxRunner {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&counter{}))
	return NewTxRunner(db)
}

func TestRunSerializableCommits(t *testing.T) {
	runner := newRunner(t)

	err := runner.RunSerializable(context.Background(), TxOptions{Resource: "counter"}, func(tx *gorm.DB) error {
		return tx.Create(&counter{Name: "orders", Value: 1}).Error
	})
	require.NoError(t, err)

	var row counter
	require.NoError(t, runner.DB().Where("name = ?", "orders").First(&row).Error)
	assert.Equal(t, 1, row.Value)
}

func TestRunRollsBackOnError(t *testing.T) {
	runner := newRunner(t)
	boom := errors.New("boom")

	err := runner.RunSerializable(context.Background(), TxOptions{}, func(tx *gorm.DB) error {
		if err := tx.Create(&counter{Name: "orders", Value: 1}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, runner.DB().Model(&counter{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRunClassifiesDuplicateKey(t *testing.T) {
	runner := newRunner(t)
	require.NoError(t, runner.DB().Create(&counter{Name: "orders"}).Error)

	err := runner.RunWithLock(context.Background(), TxOptions{Resource: "counter"}, func(tx *gorm.DB) error {
		return tx.Create(&counter{Name: "orders"}).Error
	})
	var dup *utils.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.True(t, utils.IsRetryable(err))
}

func TestRunClassifiesTimeout(t *testing.T) {
	runner := newRunner(t)

	err := runner.RunWithLock(context.Background(), TxOptions{Resource: "counter", TxTimeout: 50 * time.Millisecond}, func(tx *gorm.DB) error {
		<-tx.Statement.Context.Done()
		return tx.Statement.Context.Err()
	})
	var conflict *utils.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Error(), "counter")
	assert.False(t, utils.IsRetryable(err))
}

func TestClassifyMySQLErrors(t *testing.T) {
	runner := newRunner(t)
	opts := TxOptions{Resource: "orders table"}.withDefaults()

	err := runner.classify(&gomysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}, opts)
	var conflict *utils.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Error(), "orders table")
	assert.False(t, utils.IsRetryable(err))

	err = runner.classify(&gomysql.MySQLError{Number: 1213, Message: "Deadlock found"}, opts)
	var deadlock *utils.DeadlockError
	require.ErrorAs(t, err, &deadlock)
	assert.True(t, utils.IsRetryable(err))

	err = runner.classify(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, opts)
	var dup *utils.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.True(t, utils.IsRetryable(err))

	// Error lain lewat apa adanya
	plain := errors.New("disk on fire")
	assert.Equal(t, plain, runner.classify(plain, opts))
	assert.NoError(t, runner.classify(nil, opts))
}

func TestLockedIsPassThroughOnSQLite(t *testing.T) {
	runner := newRunner(t)
	require.NoError(t, runner.DB().Create(&counter{Name: "orders", Value: 7}).Error)

	// Di sqlite Locked tidak menambah FOR UPDATE; query tetap jalan
	err := runner.RunWithLock(context.Background(), TxOptions{}, func(tx *gorm.DB) error {
		var row counter
		if err := runner.Locked(tx).Where("name = ?", "orders").First(&row).Error; err != nil {
			return err
		}
		return tx.Model(&row).Update("value", row.Value+1).Error
	})
	require.NoError(t, err)

	var row counter
	require.NoError(t, runner.DB().Where("name = ?", "orders").First(&row).Error)
	assert.Equal(t, 8, row.Value)
}
