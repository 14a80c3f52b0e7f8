package agent

import (
	"context"
	"errors"
	"testing"
)

// fakeDirectory implements Directory for resolver tests.
type fakeDirectory struct {
	groups  []Group
	catalog []CatalogEntry

	created      []string
	createResult Binding
	createErr    error
	listErr      error

	bound *Binding
}

func (f *fakeDirectory) ListGroups(ctx context.Context) ([]Group, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.groups, nil
}

func (f *fakeDirectory) ListAgents(ctx context.Context) ([]CatalogEntry, error) {
	return f.catalog, nil
}

func (f *fakeDirectory) CreateGroup(ctx context.Context, accountNo string) (Binding, error) {
	f.created = append(f.created, accountNo)
	if f.createErr != nil {
		return Binding{}, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeDirectory) Bind(binding Binding) {
	f.bound = &binding
}

func TestResolver_ExactMatch(t *testing.T) {
	dir := &fakeDirectory{
		groups: []Group{
			{ID: "g1", Members: []GroupMember{{Nickname: "Sketcher", AccountNo: "sk1"}}},
			{ID: "g2", Members: []GroupMember{{Nickname: "GhostWriter", AccountNo: "gw1"}}},
		},
	}
	r := NewResolver(dir, 0.7, nil)

	binding, err := r.Resolve(context.Background(), "GhostWriter")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if binding.GroupID != "g2" || binding.AccountNo != "gw1" {
		t.Errorf("unexpected binding: %+v", binding)
	}
	if len(dir.created) != 0 {
		t.Error("exact match must not provision a group")
	}
	if dir.bound == nil || dir.bound.GroupID != "g2" {
		t.Error("expected binding to be recorded on the directory")
	}
}

func TestResolver_FuzzyMatchExistingGroup(t *testing.T) {
	dir := &fakeDirectory{
		groups: []Group{
			{ID: "g1", Members: []GroupMember{{Nickname: "Nano Banana Pro🔥", AccountNo: "nb1"}}},
		},
	}
	r := NewResolver(dir, 0.7, nil)

	binding, err := r.Resolve(context.Background(), "nano banana pro")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if binding.GroupID != "g1" || binding.AccountNo != "nb1" {
		t.Errorf("unexpected binding: %+v", binding)
	}
}

func TestResolver_ProvisionsFromCatalog(t *testing.T) {
	dir := &fakeDirectory{
		catalog: []CatalogEntry{
			{ID: "1", Label: "Sketcher", AccountNo: "sk1"},
			{ID: "2", Label: "Ghost Writer Pro", AccountNo: "gw1"},
		},
		createResult: Binding{GroupID: "g-new", AccountNo: "gw1"},
	}
	r := NewResolver(dir, 0.7, nil)

	binding, err := r.Resolve(context.Background(), "GhostWriter")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if binding.GroupID != "g-new" {
		t.Errorf("expected provisioned group, got %+v", binding)
	}
	if len(dir.created) != 1 || dir.created[0] != "gw1" {
		t.Errorf("expected group created for gw1, got %v", dir.created)
	}
}

func TestResolver_CreateResponseWithoutMembers(t *testing.T) {
	dir := &fakeDirectory{
		catalog:      []CatalogEntry{{ID: "1", Label: "GhostWriter", AccountNo: "gw1"}},
		createResult: Binding{GroupID: "g-new"},
	}
	r := NewResolver(dir, 0.7, nil)

	binding, err := r.Resolve(context.Background(), "ghost writer")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if binding.AccountNo != "gw1" {
		t.Errorf("expected catalog account number fallback, got %q", binding.AccountNo)
	}
}

func TestResolver_NoMatch(t *testing.T) {
	dir := &fakeDirectory{
		groups:  []Group{{ID: "g1", Members: []GroupMember{{Nickname: "Sketcher", AccountNo: "sk1"}}}},
		catalog: []CatalogEntry{{ID: "1", Label: "Composer", AccountNo: "co1"}},
	}
	r := NewResolver(dir, 0.7, nil)

	_, err := r.Resolve(context.Background(), "Translator")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("expected NoMatchError, got %T: %v", err, err)
	}
	if noMatch.Name != "Translator" {
		t.Errorf("unexpected name in error: %q", noMatch.Name)
	}
	if len(dir.created) != 0 {
		t.Error("no group must be created when nothing matches")
	}
}

func TestResolver_ListGroupsError(t *testing.T) {
	dir := &fakeDirectory{listErr: errors.New("upstream down")}
	r := NewResolver(dir, 0.7, nil)

	if _, err := r.Resolve(context.Background(), "GhostWriter"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestResolver_PrefersExactOverFuzzy(t *testing.T) {
	dir := &fakeDirectory{
		groups: []Group{
			{ID: "g1", Members: []GroupMember{{Nickname: "Ghost Writer Pro", AccountNo: "gwp"}}},
			{ID: "g2", Members: []GroupMember{{Nickname: "GhostWriter", AccountNo: "gw"}}},
		},
	}
	r := NewResolver(dir, 0.7, nil)

	binding, err := r.Resolve(context.Background(), "GhostWriter")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if binding.GroupID != "g2" {
		t.Errorf("expected exact match group g2, got %+v", binding)
	}
}
