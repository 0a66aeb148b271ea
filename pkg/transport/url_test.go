package transport

import "testing"

func TestDeriveURL(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		path    string
		want    string
		wantErr bool
	}{
		{"TLSOrigin", "https://app.houseboard.example", "", "wss://app.houseboard.example/live", false},
		{"PlainOrigin", "http://localhost:8080", "", "ws://localhost:8080/live", false},
		{"PortPreserved", "https://school.example:8443", "", "wss://school.example:8443/live", false},
		{"CustomPath", "https://app.houseboard.example", "/push", "wss://app.houseboard.example/push", false},
		{"WSOrigin", "ws://localhost:9000", "", "ws://localhost:9000/live", false},
		{"WSSOrigin", "wss://app.houseboard.example", "", "wss://app.houseboard.example/live", false},
		{"MissingHost", "https://", "", "", true},
		{"BadScheme", "ftp://host", "", "", true},
		{"NotAURL", "://", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveURL(tt.origin, tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("DeriveURL(%q) succeeded, want error", tt.origin)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeriveURL(%q) failed: %v", tt.origin, err)
			}
			if got != tt.want {
				t.Errorf("DeriveURL(%q) = %q, want %q", tt.origin, got, tt.want)
			}
		})
	}
}

func TestDeriveURLIsPure(t *testing.T) {
	// Same inputs, same output, every time.
	first, err := DeriveURL("https://app.houseboard.example", "")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		got, err := DeriveURL("https://app.houseboard.example", "")
		if err != nil || got != first {
			t.Fatalf("derivation not deterministic: %q vs %q (%v)", got, first, err)
		}
	}
}
