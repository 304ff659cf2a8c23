package metadata

import "testing"

func TestAuthorNames(t *testing.T) {
	names := NewAuthorNames()
	if _, ok := names.Name("1"); ok {
		t.Error("expected unknown author")
	}
	names.Set("1", "Ada")
	names.Set("1", "Ada L.")
	if name, ok := names.Name("1"); !ok || name != "Ada L." {
		t.Errorf("expected latest name, got %q", name)
	}
	if names.Len() != 1 {
		t.Errorf("expected 1 author, got %d", names.Len())
	}
}
