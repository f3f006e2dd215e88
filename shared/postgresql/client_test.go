package postgresql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "minimal",
			cfg:  Config{Host: "localhost", Port: 5432, User: "postgres", Password: "postgres", Database: "jobs_db", SSLMode: "disable"},
			want: "host=localhost port=5432 user=postgres password=postgres dbname=jobs_db sslmode=disable",
		},
		{
			name: "application name and timeout",
			cfg: Config{
				Host: "db", Port: 5433, User: "app", Password: "pw", Database: "jobs", SSLMode: "require",
				ApplicationName: "job-board-api", ConnectTimeout: 10 * time.Second,
			},
			want: "host=db port=5433 user=app password=pw dbname=jobs sslmode=require application_name=job-board-api connect_timeout=10",
		},
		{
			name: "quoted password",
			cfg:  Config{Host: "db", Port: 5432, User: "app", Password: `it's a \secret`, Database: "jobs", SSLMode: "disable"},
			want: `host=db port=5432 user=app password='it\'s a \\secret' dbname=jobs sslmode=disable`,
		},
		{
			name: "empty password",
			cfg:  Config{Host: "db", Port: 5432, User: "app", Database: "jobs", SSLMode: "disable"},
			want: "host=db port=5432 user=app password='' dbname=jobs sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
