package tensor

import "testing"

func TestNewShape_PadsToRank(t *testing.T) {
	s := NewShape(3, 4)
	want := Shape{3, 4, 1, 1}
	if s != want {
		t.Errorf("NewShape(3, 4) = %v, want %v", s, want)
	}
	if s.Elements() != 12 {
		t.Errorf("Elements() = %d, want 12", s.Elements())
	}
}

func TestNewShape_InvalidExtent(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewShape(0) should panic")
		}
	}()
	NewShape(0)
}

func TestShape_Strides(t *testing.T) {
	s := NewShape(2, 3, 4, 5)
	want := [Rank]int{60, 20, 5, 1}
	if s.Strides() != want {
		t.Errorf("Strides() = %v, want %v", s.Strides(), want)
	}
}

func TestBroadcast(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Shape
		want    Shape
		wantErr bool
	}{
		{"equal", NewShape(3, 4), NewShape(3, 4), NewShape(3, 4), false},
		{"row vector", NewShape(1, 4), NewShape(3, 4), NewShape(3, 4), false},
		{"col vector", NewShape(3, 1), NewShape(3, 4), NewShape(3, 4), false},
		{"incompatible", NewShape(3, 4), NewShape(3, 5), Shape{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Broadcast(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Broadcast(%v, %v) expected error", tt.a, tt.b)
				}
				return
			}
			if err != nil {
				t.Fatalf("Broadcast(%v, %v) error: %v", tt.a, tt.b, err)
			}
			if got != tt.want {
				t.Errorf("Broadcast(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestShape_String(t *testing.T) {
	if got := NewShape(3, 4).String(); got != "(3, 4)" {
		t.Errorf("String() = %q, want %q", got, "(3, 4)")
	}
	if got := NewShape(2, 3, 4).String(); got != "(2, 3, 4)" {
		t.Errorf("String() = %q, want %q", got, "(2, 3, 4)")
	}
}
