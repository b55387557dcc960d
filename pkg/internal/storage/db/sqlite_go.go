//go:build !no_sqlite && !cgo

package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/configs"
)

// 纯 Go 版 SQLite 驱动，交叉编译时不需要 CGO.
func newSQLiteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(dsn)
}

func init() {
	RegisterDialectorFactory(configs.SQLite, newSQLiteDialector)
}
