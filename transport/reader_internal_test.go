package transport

import (
	"bytes"
	"testing"
)

func TestSplitTrailingIncompleteRune(t *testing.T) {
	euro := []byte("€") // 3-byte UTF-8 sequence

	tests := []struct {
		name         string
		in           []byte
		wantComplete []byte
		wantPending  []byte
	}{
		{"ascii only", []byte("Router>"), []byte("Router>"), nil},
		{"empty", nil, nil, nil},
		{"complete multibyte", euro, euro, nil},
		{"split after first byte", euro[:1], nil, euro[:1]},
		{"split after two bytes", euro[:2], nil, euro[:2]},
		{"trailing ascii after multibyte", append(append([]byte{}, euro...), 'x'), append(append([]byte{}, euro...), 'x'), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			complete, pending := splitTrailingIncompleteRune(tt.in)
			if !bytes.Equal(complete, tt.wantComplete) {
				t.Errorf("complete = %q, want %q", complete, tt.wantComplete)
			}
			if !bytes.Equal(pending, tt.wantPending) {
				t.Errorf("pending = %q, want %q", pending, tt.wantPending)
			}
		})
	}
}
