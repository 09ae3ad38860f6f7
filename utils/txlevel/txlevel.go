// Package txlevel inspects the isolation level of an open gorm
// transaction. Ledger replay and cap-table aggregation refuse to run
// under read committed, since their queries must all observe the same
// register state.
package txlevel

import "github.com/jinzhu/gorm"

const (
	RepeatableRead = "repeatable read"
	Serializable   = "serializable"
)

// Repeatable reports whether tx runs at repeatable read or stricter.
func Repeatable(tx *gorm.DB) (bool, error) {
	var level struct {
		TransactionIsolation string
	}
	if err := tx.Raw("SHOW TRANSACTION ISOLATION LEVEL").Scan(&level).Error; err != nil {
		return false, err
	}
	return level.TransactionIsolation == RepeatableRead ||
		level.TransactionIsolation == Serializable, nil
}
