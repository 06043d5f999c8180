package auth

import "testing"

func TestValidatePIN(t *testing.T) {
	tests := []struct {
		name    string
		pin     string
		wantErr bool
	}{
		{"valid", "123456", false},
		{"leading zeros", "000042", false},
		{"too short", "12345", true},
		{"too long", "1234567", true},
		{"non digits", "12a456", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePIN(tt.pin)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePIN(%q) error = %v, wantErr %v", tt.pin, err, tt.wantErr)
			}
		})
	}
}

func TestHashAndVerifyPIN(t *testing.T) {
	hash, err := HashPIN("123456")
	if err != nil {
		t.Fatalf("failed to hash pin: %v", err)
	}
	if hash == "123456" {
		t.Fatal("expected hash to differ from the pin")
	}

	if err := VerifyPIN(hash, "123456"); err != nil {
		t.Errorf("expected verification to pass: %v", err)
	}
	if err := VerifyPIN(hash, "654321"); err == nil {
		t.Error("expected verification to fail for wrong pin")
	}
}

func TestMaskPIN(t *testing.T) {
	if got := MaskPIN(""); got != "" {
		t.Errorf("expected empty mask for unset pin, got %q", got)
	}
	if got := MaskPIN("some-hash"); got != "******" {
		t.Errorf("expected masked value, got %q", got)
	}
}
