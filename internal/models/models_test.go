package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotlist/internal/shared"
)

func TestCredentials(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name  string
			creds Credentials
			ok    bool
		}{
			{"complete", Credentials{"id1", "sec1"}, true},
			{"missing id", Credentials{"", "sec1"}, false},
			{"blank secret", Credentials{"id1", "   "}, false},
			{"empty", Credentials{}, false},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.creds.Validate()
				if tt.ok && err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				if !tt.ok && !errors.Is(err, shared.ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
			})
		}
	})

	t.Run("String redacts secret", func(t *testing.T) {
		s := Credentials{ClientID: "id1", ClientSecret: "sec1"}.String()
		if strings.Contains(s, "sec1") {
			t.Errorf("secret leaked: %s", s)
		}
	})
}

func TestBearerToken(t *testing.T) {
	if (BearerToken{}).Valid() {
		t.Error("empty token should be invalid")
	}
	if !(BearerToken{Value: "T"}).Valid() {
		t.Error("token without expiry should be valid")
	}
	if (BearerToken{Value: "T", Expiry: time.Now().Add(-time.Minute)}).Valid() {
		t.Error("expired token should be invalid")
	}
}

func TestSession(t *testing.T) {
	s := NewSession(Credentials{ClientID: "id1", ClientSecret: "sec1"})
	if err := s.Validate(); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("session without id should fail validation, got %v", err)
	}

	s.SetID(shared.GenerateID())
	if err := s.Validate(); err != nil {
		t.Errorf("expected valid session, got %v", err)
	}

	before := s.UpdatedAt()
	time.Sleep(time.Millisecond)
	s.Touch()
	if !s.UpdatedAt().After(before) {
		t.Error("Touch should bump UpdatedAt")
	}
	if s.Credentials().ClientID != "id1" {
		t.Errorf("Touch should keep credentials, got %s", s.Credentials().ClientID)
	}

	var _ Model = s
}
