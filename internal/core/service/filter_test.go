package service

import "testing"

func TestTradeFilterShouldExecute(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		draw  float64
		want  bool
	}{
		{"deep dip executes regardless of draw", 0.30, 0.99, true},
		{"at threshold falls through to sampling", 0.38, 0.99, false},
		{"above threshold sampled in", 0.50, 0.29, true},
		{"above threshold sampled out", 0.50, 0.30, false},
		{"above threshold draw well past rate", 2000.0, 0.95, false},
		{"boundary draw equal to rate filters", 1.00, 0.30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewTradeFilter(0.38, 0.30, func() float64 { return tt.draw })
			if got := f.ShouldExecute(tt.price); got != tt.want {
				t.Errorf("ShouldExecute(%v) with draw %v = %v, want %v", tt.price, tt.draw, got, tt.want)
			}
		})
	}
}

func TestTradeFilterDeepDipSkipsDraw(t *testing.T) {
	called := false
	f := NewTradeFilter(0.38, 0.30, func() float64 {
		called = true
		return 0.0
	})

	if !f.ShouldExecute(0.10) {
		t.Fatal("expected deep dip to execute")
	}
	if called {
		t.Error("deep dip should not consume a random draw")
	}
}

func TestNewTradeFilterDefaultRand(t *testing.T) {
	f := NewTradeFilter(0.38, 0.30, nil)
	// Just exercise it; the draw source is the package default.
	f.ShouldExecute(100.0)
}
