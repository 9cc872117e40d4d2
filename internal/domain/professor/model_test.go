package professor

import "testing"

func TestProfessor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Professor
		wantErr error
	}{
		{"name only", Professor{Name: "Marta"}, nil},
		{"full", Professor{Name: "Marta", Specialty: "Crossfit", Bio: "Diez años", PhotoURL: "https://x.es/m.jpg"}, nil},
		{"blank name", Professor{Name: " "}, ErrEmptyName},
		{"bad photo", Professor{Name: "Marta", PhotoURL: "ftp://x"}, ErrInvalidPhotoURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
