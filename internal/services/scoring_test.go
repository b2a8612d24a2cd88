package services

import (
	"errors"
	"math"
	"testing"
)

func scenarioProject() *MatchProject {
	return &MatchProject{ID: 1, CountryID: 7, ServicesNeeded: []uint{1, 2}, OwnerEmail: "client@example.com"}
}

func scenarioVendor() *MatchVendor {
	return &MatchVendor{
		ID:                 10,
		Name:               "Acme",
		CountriesSupported: []uint{3, 7},
		ServicesOffered:    []uint{2, 3},
		Rating:             4.0,
		ResponseSLAHours:   24,
	}
}

func TestScoreVendor(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(p *MatchProject, v *MatchVendor)
		expired  bool
		score    float64
		eligible bool
	}{
		{
			name:     "one shared service",
			score:    6.8,
			eligible: true,
		},
		{
			name:     "expired pairing drops sla weight",
			expired:  true,
			score:    6.0,
			eligible: true,
		},
		{
			name:   "country not supported",
			mutate: func(p *MatchProject, v *MatchVendor) { v.CountriesSupported = []uint{3} },
		},
		{
			name:   "no shared service",
			mutate: func(p *MatchProject, v *MatchVendor) { v.ServicesOffered = []uint{5, 6} },
		},
		{
			name:   "vendor offers nothing",
			mutate: func(p *MatchProject, v *MatchVendor) { v.ServicesOffered = nil },
		},
		{
			name:     "two shared services",
			mutate:   func(p *MatchProject, v *MatchVendor) { v.ServicesOffered = []uint{1, 2, 3} },
			score:    8.8,
			eligible: true,
		},
		{
			name:     "duplicate requirement counts once",
			mutate:   func(p *MatchProject, v *MatchVendor) { p.ServicesNeeded = []uint{2, 2, 1} },
			score:    6.8,
			eligible: true,
		},
		{
			name:     "no sla commitment",
			mutate:   func(p *MatchProject, v *MatchVendor) { v.ResponseSLAHours = 0 },
			score:    6.0,
			eligible: true,
		},
		{
			name:     "fast sla is clamped",
			mutate:   func(p *MatchProject, v *MatchVendor) { v.ResponseSLAHours = 1 },
			score:    8.0,
			eligible: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, v := scenarioProject(), scenarioVendor()
			if tt.mutate != nil {
				tt.mutate(p, v)
			}
			score, eligible := ScoreVendor(p, v, tt.expired, DefaultScoreWeights())
			if eligible != tt.eligible {
				t.Fatalf("eligible = %v, expected %v", eligible, tt.eligible)
			}
			if score != tt.score {
				t.Errorf("score = %v, expected %v", score, tt.score)
			}
		})
	}
}

func TestScoreVendor_CustomWeights(t *testing.T) {
	w := ScoreWeights{OverlapMultiplier: 3, SLAWeightBase: 10}
	score, eligible := ScoreVendor(scenarioProject(), scenarioVendor(), false, w)
	if !eligible {
		t.Fatal("vendor should be eligible")
	}
	// 1*3 + 4.0 + round2(10/25)
	if score != 7.4 {
		t.Errorf("score = %v, expected 7.4", score)
	}
}

func TestScoreVendor_MonotonicInOverlap(t *testing.T) {
	p := &MatchProject{ID: 1, CountryID: 1, ServicesNeeded: []uint{1, 2, 3, 4, 5}}
	prev := math.Inf(-1)
	for n := 1; n <= 5; n++ {
		offered := make([]uint, 0, n)
		for i := 1; i <= n; i++ {
			offered = append(offered, uint(i))
		}
		v := &MatchVendor{ID: 1, CountriesSupported: []uint{1}, ServicesOffered: offered, Rating: 3.5, ResponseSLAHours: 48}
		score, eligible := ScoreVendor(p, v, false, DefaultScoreWeights())
		if !eligible {
			t.Fatalf("overlap %d should be eligible", n)
		}
		if score < prev {
			t.Errorf("overlap %d scored %v, less than %v", n, score, prev)
		}
		prev = score
	}
}

func TestSLAWeight(t *testing.T) {
	tests := []struct {
		name     string
		hours    float64
		expired  bool
		base     float64
		expected float64
	}{
		{"expired", 24, true, 20, 0},
		{"zero hours", 0, false, 20, 0},
		{"negative hours", -5, false, 20, 0},
		{"nan hours", math.NaN(), false, 20, 0},
		{"one day", 24, false, 20, 0.8},
		{"rounded", 2, false, 5, 1.67},
		{"clamped high", 0.5, false, 20, 2},
		{"exactly two", 9, false, 20, 2},
		{"very slow", 1e9, false, 20, 0},
		{"zero base", 24, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SLAWeight(tt.hours, tt.expired, tt.base)
			if got != tt.expected {
				t.Errorf("SLAWeight(%v, %v, %v) = %v, expected %v", tt.hours, tt.expired, tt.base, got, tt.expected)
			}
			if got < 0 || got > 2 {
				t.Errorf("SLAWeight out of range: %v", got)
			}
		})
	}
}

func TestValidateVendor(t *testing.T) {
	tests := []struct {
		name    string
		rating  float64
		sla     float64
		wantErr bool
	}{
		{"valid", 4.5, 24, false},
		{"nan rating", math.NaN(), 24, true},
		{"infinite rating", math.Inf(1), 24, true},
		{"nan sla", 4.5, math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateVendor(&MatchVendor{Rating: tt.rating, ResponseSLAHours: tt.sla})
			if (err != nil) != tt.wantErr {
				t.Errorf("validateVendor() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateVendor_UndecodableIDs(t *testing.T) {
	v := &MatchVendor{Rating: 4, ResponseSLAHours: 24, decodeErr: errors.New("bad json")}
	if err := validateVendor(v); !errors.Is(err, errMalformedVendor) {
		t.Errorf("validateVendor() error = %v, expected errMalformedVendor", err)
	}
}
