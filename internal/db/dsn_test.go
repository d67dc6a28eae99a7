package db

import "testing"

func TestWithDSNDefaults(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "data/app.db", want: "data/app.db?_fk=1&_txlock=immediate&_busy_timeout=5000"},
		{in: "file:app.db?cache=shared", want: "file:app.db?cache=shared&_fk=1&_txlock=immediate&_busy_timeout=5000"},
		{in: "app.db?_txlock=deferred", want: "app.db?_txlock=deferred&_fk=1&_busy_timeout=5000"},
	}

	for _, test := range tests {
		if got := withDSNDefaults(test.in); got != test.want {
			t.Fatalf("withDSNDefaults(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}
