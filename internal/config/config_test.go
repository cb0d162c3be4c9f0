package config

import (
	"testing"
	"time"
)

func TestPlatform_DateRange(t *testing.T) {
	p := Platform{Name: "twitter", From: "2019-01", To: "2019-04"}

	from, to, err := p.DateRange()
	if err != nil {
		t.Fatalf("DateRange() error = %v", err)
	}

	wantFrom := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2019, 4, 1, 0, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", from, wantFrom)
	}
	if !to.Equal(wantTo) {
		t.Errorf("to = %v, want %v", to, wantTo)
	}
}

func TestPlatform_DateRange_Invalid(t *testing.T) {
	tests := []struct {
		name string
		p    Platform
	}{
		{"bad from", Platform{Name: "x", From: "January 2019", To: "2019-04"}},
		{"bad to", Platform{Name: "x", From: "2019-01", To: "04/2019"}},
		{"inverted", Platform{Name: "x", From: "2019-04", To: "2019-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.p.DateRange(); err == nil {
				t.Error("DateRange() error = nil, want error")
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Scraper.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Scraper.Workers)
	}
	if cfg.Archive.BaseURL == "" {
		t.Error("Archive.BaseURL should have a default")
	}
	if cfg.Storage.Endpoint != "" {
		t.Error("Storage should be disabled by default")
	}
	if cfg.Elasticsearch.Index != "policyscope-documents" {
		t.Errorf("Index = %q, want policyscope-documents", cfg.Elasticsearch.Index)
	}
}
