//go:build !no_postgres

package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/configs"
)

func newPostgresDialector(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

func init() {
	RegisterDialectorFactory(configs.PostgreSQL, newPostgresDialector)
	RegisterDialectorFactory(configs.Postgres, newPostgresDialector)
	RegisterDialectorFactory(configs.Pg, newPostgresDialector)
}
