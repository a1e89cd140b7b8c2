package db

import "testing"

func TestEnsureDSNDefaults(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{
			name: "bare path",
			dsn:  "data/courtbook.db",
			want: "data/courtbook.db?_fk=1&_txlock=immediate&_busy_timeout=5000",
		},
		{
			name: "keeps caller values",
			dsn:  "file:test.db?_txlock=deferred",
			want: "file:test.db?_txlock=deferred&_fk=1&_busy_timeout=5000",
		},
		{
			name: "all set",
			dsn:  "x.db?_fk=0&_txlock=exclusive&_busy_timeout=10",
			want: "x.db?_fk=0&_txlock=exclusive&_busy_timeout=10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ensureDSNDefaults(tt.dsn); got != tt.want {
				t.Fatalf("ensureDSNDefaults(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}
