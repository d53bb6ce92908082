package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input   string
		want    Period
		wantErr bool
	}{
		{"", PeriodAll, false},
		{"day", PeriodDay, false},
		{"WEEK", PeriodWeek, false},
		{" month ", PeriodMonth, false},
		{"year", PeriodAll, true},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePeriod(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePeriod(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPeriod_Since(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		p    Period
		want time.Time
	}{
		{PeriodDay, time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC)},
		{PeriodWeek, time.Date(2025, 3, 24, 12, 0, 0, 0, time.UTC)},
		{PeriodMonth, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{PeriodAll, time.Time{}},
	}
	for _, tt := range tests {
		if got := tt.p.Since(now); !got.Equal(tt.want) {
			t.Errorf("%q.Since() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestNews_Excerpt(t *testing.T) {
	n := News{Content: "Uma notícia bastante longa sobre tecnologia"}
	if got := n.Excerpt(100); got != n.Content {
		t.Errorf("short content should be returned whole, got %q", got)
	}
	if got := n.Excerpt(11); got != "Uma notícia..." {
		t.Errorf("Excerpt(11) = %q", got)
	}
	n.Summary = "Resumo"
	if got := n.Excerpt(3); got != "Resumo" {
		t.Errorf("summary should win, got %q", got)
	}
}

func TestCategory_UnmarshalStringID(t *testing.T) {
	var cats []Category
	if err := json.Unmarshal([]byte(`[{"id":"3","name":"Saúde"},{"id":7,"name":"Educação"}]`), &cats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cats[0].ID != 3 || cats[1].ID != 7 {
		t.Errorf("ids = %d, %d; want 3, 7", cats[0].ID, cats[1].ID)
	}
	if err := json.Unmarshal([]byte(`[{"id":"x"}]`), &cats); err == nil {
		t.Error("expected error for non-numeric category id")
	}
}

func TestUser_UnmarshalNumericID(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"id":42,"name":"Ana","email":"ana@example.com"}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.ID != "42" {
		t.Errorf("ID = %q, want 42", u.ID)
	}
	if u.DisplayName() != "Ana" {
		t.Errorf("DisplayName() = %q", u.DisplayName())
	}
	u.Name = ""
	if u.DisplayName() != "ana@example.com" {
		t.Errorf("DisplayName() fallback = %q", u.DisplayName())
	}
}

func TestProfile_Unmarshal(t *testing.T) {
	body := `{"user":{"id":"u1","name":"Ana","email":"ana@example.com","createdAt":"2025-01-02T03:04:05Z"},
		"preferences":[{"id":"1","name":"Tecnologia"},{"id":"2","name":"Saúde"}]}`
	var p Profile
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.User.ID != "u1" || p.User.Name != "Ana" {
		t.Errorf("user = %+v", p.User)
	}
	if p.User.CreatedAt.Year() != 2025 {
		t.Errorf("CreatedAt = %v", p.User.CreatedAt)
	}
	ids := p.PreferenceIDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("PreferenceIDs() = %v", ids)
	}
}

func TestSession_Authenticated(t *testing.T) {
	var nilSess *Session
	if nilSess.Authenticated() {
		t.Error("nil session must not be authenticated")
	}
	s := &Session{User: &User{ID: "1"}}
	if s.Authenticated() {
		t.Error("cached user without token must not be authenticated")
	}
	if s.DisplayUser() != nil {
		t.Error("DisplayUser() must be nil without token")
	}
	s.Token = "tok"
	if !s.Authenticated() || s.DisplayUser() == nil {
		t.Error("token present should authenticate and expose user")
	}
}
