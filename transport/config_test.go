package transport

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaudRate != 9600 {
		t.Errorf("BaudRate = %d, want 9600", cfg.BaudRate)
	}
	if cfg.DataBits != 8 {
		t.Errorf("DataBits = %d, want 8", cfg.DataBits)
	}
	if cfg.StopBits != 1 {
		t.Errorf("StopBits = %d, want 1", cfg.StopBits)
	}
	if cfg.Parity != ParityNone {
		t.Errorf("Parity = %v, want ParityNone", cfg.Parity)
	}
	if cfg.ReadTimeout != time.Second {
		t.Errorf("ReadTimeout = %v, want 1s", cfg.ReadTimeout)
	}
}

func TestWithBaudRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    int
		wantErr bool
	}{
		{"9600 valid", 9600, false},
		{"115200 valid", 115200, false},
		{"300 valid", 300, false},
		{"1234 invalid", 1234, true},
		{"0 invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := WithBaudRate(tt.rate)(&cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("WithBaudRate(%d) error = %v, wantErr %v", tt.rate, err, tt.wantErr)
			}
			if err == nil && cfg.BaudRate != tt.rate {
				t.Errorf("BaudRate = %d, want %d", cfg.BaudRate, tt.rate)
			}
		})
	}
}

func TestWithDataBits(t *testing.T) {
	tests := []struct {
		name    string
		bits    int
		wantErr bool
	}{
		{"5 valid", 5, false},
		{"8 valid", 8, false},
		{"4 invalid", 4, true},
		{"9 invalid", 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := WithDataBits(tt.bits)(&cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("WithDataBits(%d) error = %v, wantErr %v", tt.bits, err, tt.wantErr)
			}
		})
	}
}

func TestWithStopBits(t *testing.T) {
	cfg := DefaultConfig()
	if err := WithStopBits(2)(&cfg); err != nil {
		t.Fatalf("WithStopBits(2) error = %v", err)
	}
	if cfg.StopBits != 2 {
		t.Errorf("StopBits = %d, want 2", cfg.StopBits)
	}
	if err := WithStopBits(3)(&cfg); err == nil {
		t.Error("WithStopBits(3) expected an error")
	}
}

func TestWithReadTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if err := WithReadTimeout(-time.Second)(&cfg); err == nil {
		t.Error("WithReadTimeout(negative) expected an error")
	}
	if err := WithReadTimeout(2 * time.Second)(&cfg); err != nil {
		t.Fatalf("WithReadTimeout(2s) error = %v", err)
	}
	if cfg.ReadTimeout != 2*time.Second {
		t.Errorf("ReadTimeout = %v, want 2s", cfg.ReadTimeout)
	}
}

func TestBaudConstantUnknown(t *testing.T) {
	if _, err := baudConstant(1234); err != ErrInvalidBaudRate {
		t.Errorf("baudConstant(1234) error = %v, want ErrInvalidBaudRate", err)
	}
}
