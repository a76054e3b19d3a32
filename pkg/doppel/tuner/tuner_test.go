package tuner

import "testing"

func TestDetect(t *testing.T) {
	res, err := Detect()
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}

	if res.CPUCores < 1 {
		t.Errorf("CPUCores = %d, want >= 1", res.CPUCores)
	}
	if res.TotalRAM <= 0 {
		t.Errorf("TotalRAM = %d, want > 0", res.TotalRAM)
	}
	if res.AvailableRAM <= 0 {
		t.Errorf("AvailableRAM = %d, want > 0", res.AvailableRAM)
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name        string
		res         SystemResources
		wantWorkers int
	}{
		{
			name:        "small system clamps up",
			res:         SystemResources{CPUCores: 1, AvailableRAM: 1 << 20},
			wantWorkers: minHashWorkers,
		},
		{
			name:        "huge system clamps down",
			res:         SystemResources{CPUCores: 128, AvailableRAM: 1 << 40},
			wantWorkers: maxHashWorkers,
		},
		{
			name:        "mid range passes through",
			res:         SystemResources{CPUCores: 8, AvailableRAM: 8 << 30},
			wantWorkers: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Calculate(tt.res)
			if cfg.HashWorkers != tt.wantWorkers {
				t.Errorf("HashWorkers = %d, want %d", cfg.HashWorkers, tt.wantWorkers)
			}
			if cfg.QueueSize < minQueueSize || cfg.QueueSize > maxQueueSize {
				t.Errorf("QueueSize = %d, out of range", cfg.QueueSize)
			}
		})
	}
}

func TestCalculateWithOverrides(t *testing.T) {
	res := SystemResources{CPUCores: 8, AvailableRAM: 8 << 30}

	cfg := CalculateWithOverrides(res, 2)
	if cfg.HashWorkers != 2 {
		t.Errorf("HashWorkers = %d, want override 2", cfg.HashWorkers)
	}

	cfg = CalculateWithOverrides(res, 0)
	if cfg.HashWorkers != 8 {
		t.Errorf("HashWorkers = %d, want detected 8", cfg.HashWorkers)
	}

	cfg = CalculateWithOverrides(res, 1000)
	if cfg.HashWorkers != maxHashWorkers {
		t.Errorf("HashWorkers = %d, want clamp to %d", cfg.HashWorkers, maxHashWorkers)
	}
}
