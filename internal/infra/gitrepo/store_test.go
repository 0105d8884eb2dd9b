package gitrepo

import "testing"

func TestSameRemote(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{a: "https://github.com/org/repo.git", b: "https://github.com/org/repo", want: true},
		{a: "https://github.com/org/repo/", b: "https://github.com/org/repo.git", want: true},
		{a: " file:///src ", b: "file:///src", want: true},
		{a: "https://github.com/org/repo", b: "https://github.com/org/other", want: false},
	}
	for _, tt := range tests {
		if got := sameRemote(tt.a, tt.b); got != tt.want {
			t.Fatalf("sameRemote(%q, %q): expected %t, got %t", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestNewStoreWithOptionsClampsDepth(t *testing.T) {
	store := NewStoreWithOptions(StoreOptions{Depth: -3})
	if store.options.Depth != 0 {
		t.Fatalf("expected depth 0, got %d", store.options.Depth)
	}
	if NewStore().options.Depth != 1 {
		t.Fatalf("expected default depth 1")
	}
}
