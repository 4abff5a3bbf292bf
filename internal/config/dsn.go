package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

// ConnString returns the driver DSN for kind. An explicit DSN wins; otherwise
// one is assembled from the discrete fields.
func (db DB) ConnString(kind string) (string, error) {
	if db.DSN != "" {
		return db.DSN, nil
	}

	switch kind {
	case "postgres":
		u := url.URL{
			Scheme: "postgres",
			User:   db.userinfo(),
			Host:   db.hostPort(5432),
			Path:   "/" + db.Database,
		}
		if db.SSLMode != "" {
			u.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
		}
		return u.String(), nil

	case "mysql":
		c := mysql.NewConfig()
		c.User = db.User
		c.Passwd = db.Password
		c.Net = "tcp"
		c.Addr = db.hostPort(3306)
		c.DBName = db.Database
		c.ParseTime = true
		return c.FormatDSN(), nil

	case "mssql":
		u := url.URL{
			Scheme: "sqlserver",
			User:   db.userinfo(),
			Host:   db.hostPort(1433),
		}
		if db.Database != "" {
			u.RawQuery = url.Values{"database": {db.Database}}.Encode()
		}
		return u.String(), nil

	case "sqlite":
		if db.Database == "" {
			return "", fmt.Errorf("config: sqlite needs a database path")
		}
		return db.Database, nil

	default:
		return "", fmt.Errorf("config: no connection string format for storage.kind=%s", kind)
	}
}

func (db DB) userinfo() *url.Userinfo {
	if db.User == "" {
		return nil
	}
	if db.Password == "" {
		return url.User(db.User)
	}
	return url.UserPassword(db.User, db.Password)
}

func (db DB) hostPort(defPort int) string {
	port := db.Port
	if port == 0 {
		port = defPort
	}
	return net.JoinHostPort(db.Host, strconv.Itoa(port))
}
