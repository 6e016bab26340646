// Package all links every storage backend into the binary.
package all

import (
	_ "reports/internal/storage/file"
	_ "reports/internal/storage/ldap"
	_ "reports/internal/storage/mssql"
	_ "reports/internal/storage/mysql"
	_ "reports/internal/storage/nosql"
	_ "reports/internal/storage/postgres"
	_ "reports/internal/storage/sqlite"
)
