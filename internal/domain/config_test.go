package domain

import (
	"reflect"
	"testing"
)

func TestParseProfile(t *testing.T) {
	tests := []struct {
		input   string
		want    Profile
		wantErr bool
	}{
		{input: "", want: ProfileApp},
		{input: "app", want: ProfileApp},
		{input: " Middleware ", want: ProfileMiddleware},
		{input: "worker", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseProfile(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("expected %v, got %v for %q", tt.want, got, tt.input)
		}
	}
}

func TestProfileDefaults(t *testing.T) {
	if got := ProfileApp.Ports(); !reflect.DeepEqual(got, []int{8000, 8001}) {
		t.Fatalf("unexpected app ports %v", got)
	}
	if got := ProfileMiddleware.Ports(); !reflect.DeepEqual(got, []int{8080}) {
		t.Fatalf("unexpected middleware ports %v", got)
	}
	cmd := ProfileMiddleware.Command()
	if cmd[0] != "uvicorn" || cmd[len(cmd)-1] != "--reload" {
		t.Fatalf("unexpected middleware command %v", cmd)
	}
}
