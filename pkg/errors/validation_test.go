package errors

import "testing"

func TestValidatePartCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"valid code", "C82899", false},
		{"valid short code", "C1525", false},
		{"empty", "", true},
		{"too long", "C123456789012345678", true},
		{"embedded space", "C12 34", true},
		{"control character", "C12\x0034", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePartCode(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePartCode(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestValidateComponentUUID(t *testing.T) {
	tests := []struct {
		name    string
		uuid    string
		wantErr bool
	}{
		{"valid uuid", "a1b2c3d4e5f60718293a4b5c6d7e8f90", false},
		{"empty", "", true},
		{"too short", "a1b2c3", true},
		{"too long", "a1b2c3d4e5f60718293a4b5c6d7e8f90ff", true},
		{"uppercase rejected", "A1B2C3D4E5F60718293A4B5C6D7E8F90", true},
		{"non-hex", "z1b2c3d4e5f60718293a4b5c6d7e8f90", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComponentUUID(tt.uuid)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateComponentUUID(%q) error = %v, wantErr %v", tt.uuid, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidUUID) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidUUID)
			}
		})
	}
}

func TestValidateBatchSize(t *testing.T) {
	if err := ValidateBatchSize(1000, 1000); err != nil {
		t.Errorf("ValidateBatchSize(1000, 1000) = %v, want nil", err)
	}
	err := ValidateBatchSize(1001, 1000)
	if err == nil {
		t.Fatal("ValidateBatchSize(1001, 1000) = nil, want error")
	}
	if !Is(err, ErrCodeBatchTooLarge) {
		t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeBatchTooLarge)
	}
}
