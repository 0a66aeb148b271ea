package wire

import (
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		data := []byte(`{"kind":"points-updated","payload":{"studentId":42,"total":55},"observedAt":"2026-08-20T10:15:04Z"}`)

		env, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if env.Kind != KindPointsUpdated {
			t.Errorf("Kind = %q, want %q", env.Kind, KindPointsUpdated)
		}
		if env.Payload["total"] != float64(55) {
			t.Errorf("Payload total = %v, want 55", env.Payload["total"])
		}
		want := time.Date(2026, 8, 20, 10, 15, 4, 0, time.UTC)
		if !env.ObservedAt.Equal(want) {
			t.Errorf("ObservedAt = %v, want %v", env.ObservedAt, want)
		}
	})

	t.Run("MissingKind", func(t *testing.T) {
		if _, err := Decode([]byte(`{"payload":{"x":1}}`)); err == nil {
			t.Error("expected error for missing kind")
		}
	})

	t.Run("EmptyKind", func(t *testing.T) {
		if _, err := Decode([]byte(`{"kind":""}`)); err == nil {
			t.Error("expected error for empty kind")
		}
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		if _, err := Decode([]byte(`{not json`)); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})

	t.Run("NoPayload", func(t *testing.T) {
		env, err := Decode([]byte(`{"kind":"class-updated"}`))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if env.Payload != nil {
			t.Errorf("Payload = %v, want nil", env.Payload)
		}
	})
}

func TestEncode(t *testing.T) {
	env := NewEnvelope(KindHouseUpdated, map[string]any{"houseId": "h1"})

	data, err := Encode(env)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Kind != KindHouseUpdated {
		t.Errorf("Kind = %q, want %q", decoded.Kind, KindHouseUpdated)
	}
	if decoded.ObservedAt.IsZero() {
		t.Error("ObservedAt not stamped")
	}

	if _, err := Encode(Envelope{}); err == nil {
		t.Error("expected error encoding envelope without kind")
	}
}

func TestStudentID(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
		wantOK  bool
	}{
		{"Number", map[string]any{"studentId": float64(42)}, "42", true},
		{"String", map[string]any{"studentId": "s-9"}, "s-9", true},
		{"Int", map[string]any{"studentId": 7}, "7", true},
		{"Missing", map[string]any{"total": float64(10)}, "", false},
		{"EmptyString", map[string]any{"studentId": ""}, "", false},
		{"WrongType", map[string]any{"studentId": true}, "", false},
		{"NilPayload", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StudentID(tt.payload)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("StudentID() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStudentKind(t *testing.T) {
	if got := StudentKind("42"); got != "student-42-updated" {
		t.Errorf("StudentKind(42) = %q", got)
	}
}
