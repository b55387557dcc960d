//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/configs"
)

func newMySQLDialector(dsn string) gorm.Dialector {
	return mysql.Open(dsn)
}

func init() {
	RegisterDialectorFactory(configs.MySQL, newMySQLDialector)
	RegisterDialectorFactory(configs.MariaDB, newMySQLDialector)
}
