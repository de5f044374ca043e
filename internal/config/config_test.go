package config

import "testing"

func TestValidate_DefaultsAreValid(t *testing.T) {
	cfg := &Config{
		LogLevel:        "info",
		MaxLoadedModels: 5,
		MaxBatchSize:    32,
		LangIDWorkers:   2,
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_RejectsBadLogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "verbose", MaxLoadedModels: 1, MaxBatchSize: 1, LangIDWorkers: 1}
	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() = nil, want error for invalid log level")
	}
}

func TestValidate_RejectsNonPositiveLimits(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"max_loaded_models", Config{MaxLoadedModels: 0, MaxBatchSize: 1, LangIDWorkers: 1}},
		{"max_batch_size", Config{MaxLoadedModels: 1, MaxBatchSize: 0, LangIDWorkers: 1}},
		{"langid_workers", Config{MaxLoadedModels: 1, MaxBatchSize: 1, LangIDWorkers: 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := Validate(&tc.cfg); err == nil {
				t.Fatalf("Validate() = nil, want error for %s", tc.name)
			}
		})
	}
}

func TestValidate_JoinsMultipleErrors(t *testing.T) {
	cfg := &Config{LogLevel: "bogus", MaxLoadedModels: -1, MaxBatchSize: -1, LangIDWorkers: -1}
	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() = nil, want joined error")
	}
}
