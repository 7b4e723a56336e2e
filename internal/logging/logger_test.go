package logging

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"console dev", Config{Level: "debug", Format: "console", Development: true}, false},
		{"upper case level", Config{Level: "WARN"}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if logger != nil {
				logger.Sync()
			}
		})
	}
}
