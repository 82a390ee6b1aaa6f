package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nazmul-hq/freebusy/libs/auth"
	"golang.org/x/crypto/bcrypt"
)

func authProbe(t *testing.T, cfg AuthConfig, header string) int {
	t.Helper()
	handler := RequireAdmin(cfg, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireAdmin_APIKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("machine-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt hash failed: %v", err)
	}
	cfg := AuthConfig{APIKeyHash: string(hash)}

	if code := authProbe(t, cfg, "Bearer machine-key"); code != http.StatusNoContent {
		t.Fatalf("valid key: expected 204, got %d", code)
	}
	if code := authProbe(t, cfg, "Bearer wrong-key"); code != http.StatusUnauthorized {
		t.Fatalf("wrong key: expected 401, got %d", code)
	}
	if code := authProbe(t, cfg, ""); code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", code)
	}
	if code := authProbe(t, cfg, "Basic machine-key"); code != http.StatusUnauthorized {
		t.Fatalf("non-bearer scheme: expected 401, got %d", code)
	}
}

func TestRequireAdmin_JWT(t *testing.T) {
	secret := "test-secret"
	cfg := AuthConfig{JWTSecret: secret}

	sign := func(role string) string {
		t.Helper()
		token, err := auth.SignHS256(auth.Claims{
			Sub:  "user-1",
			Role: role,
			Iat:  time.Now().Unix(),
			Exp:  time.Now().Add(time.Hour).Unix(),
		}, secret)
		if err != nil {
			t.Fatalf("SignHS256 failed: %v", err)
		}
		return token
	}

	if code := authProbe(t, cfg, "Bearer "+sign("admin")); code != http.StatusNoContent {
		t.Fatalf("admin token: expected 204, got %d", code)
	}
	if code := authProbe(t, cfg, "Bearer "+sign("owner")); code != http.StatusNoContent {
		t.Fatalf("owner token: expected 204, got %d", code)
	}
	if code := authProbe(t, cfg, "Bearer "+sign("viewer")); code != http.StatusForbidden {
		t.Fatalf("viewer token: expected 403, got %d", code)
	}

	other, err := auth.SignHS256(auth.Claims{Sub: "user-1", Role: "admin"}, "other-secret")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}
	if code := authProbe(t, cfg, "Bearer "+other); code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: expected 401, got %d", code)
	}
}

func TestParseAvailabilityDays(t *testing.T) {
	days, errMsg := parseAvailabilityDays("cal-1", []availabilityDayInput{
		{Weekday: 0, Times: []string{"09:00", "12:00", "14:00", "15:30"}},
	})
	if errMsg != "" {
		t.Fatalf("unexpected error: %s", errMsg)
	}
	if len(days) != 1 || len(days[0].Times) != 4 {
		t.Fatalf("unexpected days: %+v", days)
	}
	if days[0].Times[3] != 15*60+30 {
		t.Fatalf("expected 930 minutes, got %d", days[0].Times[3])
	}

	bad := []struct {
		name   string
		inputs []availabilityDayInput
	}{
		{"weekday out of range", []availabilityDayInput{{Weekday: 7, Times: []string{"09:00", "10:00"}}}},
		{"duplicate weekday", []availabilityDayInput{
			{Weekday: 1, Times: []string{"09:00", "10:00"}},
			{Weekday: 1, Times: []string{"11:00", "12:00"}},
		}},
		{"odd times", []availabilityDayInput{{Weekday: 1, Times: []string{"09:00"}}}},
		{"bad clock", []availabilityDayInput{{Weekday: 1, Times: []string{"9am", "10:00"}}}},
		{"not ascending", []availabilityDayInput{{Weekday: 1, Times: []string{"10:00", "09:00"}}}},
		{"overlapping pairs", []availabilityDayInput{{Weekday: 1, Times: []string{"09:00", "11:00", "10:00", "12:00"}}}},
	}
	for _, tc := range bad {
		if _, errMsg := parseAvailabilityDays("cal-1", tc.inputs); errMsg == "" {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
