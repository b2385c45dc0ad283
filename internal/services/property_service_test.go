package services

import (
	"testing"
	"time"
)

type stubPropertyStore struct {
	properties map[int64]*Property
	nextID     int64
	audits     []AuditEntry
}

func newStubPropertyStore() *stubPropertyStore {
	return &stubPropertyStore{properties: map[int64]*Property{}}
}

func (s *stubPropertyStore) InsertProperty(p *Property) (*Property, error) {
	s.nextID++
	copy := *p
	copy.ID = s.nextID
	s.properties[copy.ID] = &copy
	return &copy, nil
}

func (s *stubPropertyStore) GetProperty(id int64) (*Property, error) {
	if p, ok := s.properties[id]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (s *stubPropertyStore) UpdateProperty(p *Property) error {
	if _, ok := s.properties[p.ID]; !ok {
		return NewNotFoundError("property not found")
	}
	copy := *p
	s.properties[p.ID] = &copy
	return nil
}

func (s *stubPropertyStore) DeleteProperty(id int64) error {
	if _, ok := s.properties[id]; !ok {
		return NewNotFoundError("property not found")
	}
	delete(s.properties, id)
	return nil
}

func (s *stubPropertyStore) ListProperties(teamID string) ([]*Property, error) {
	out := []*Property{}
	for _, p := range s.properties {
		if p.TeamID == teamID {
			copy := *p
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *stubPropertyStore) AddAudit(entry AuditEntry) {
	s.audits = append(s.audits, entry)
}

func TestPropertyCreateValidatesAndStamps(t *testing.T) {
	store := newStubPropertyStore()
	svc := NewPropertyService(store)
	svc.now = func() time.Time { return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) }

	if _, err := svc.Create("", &Property{Name: "Villa"}); err == nil {
		t.Fatalf("expected forbidden without team")
	}
	if _, err := svc.Create("TEAM", &Property{}); err == nil {
		t.Fatalf("expected error for missing name")
	}

	p, err := svc.Create("TEAM", &Property{Name: "Sunset Villa", Address: "1 Shore Rd"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.ID == 0 || p.TeamID != "TEAM" {
		t.Fatalf("property = %+v", p)
	}
	if p.CreatedAt.IsZero() {
		t.Fatalf("expected created timestamp")
	}
}

func TestPropertyOwnershipAndDelete(t *testing.T) {
	store := newStubPropertyStore()
	svc := NewPropertyService(store)
	svc.now = func() time.Time { return time.Unix(0, 0) }
	p, _ := svc.Create("TEAM", &Property{Name: "Old Mill"})

	if _, err := svc.Get("OTHER", p.ID); err == nil {
		t.Fatalf("expected forbidden for foreign team")
	}
	if _, err := svc.Update("TEAM", p.ID, map[string]any{"name": "Old Mill House"}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	got, err := svc.Get("TEAM", p.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Name != "Old Mill House" {
		t.Fatalf("name = %q", got.Name)
	}

	if err := svc.Delete("TEAM", p.ID, "admin"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(store.audits) != 1 || store.audits[0].Action != "delete_property" {
		t.Fatalf("audits = %+v", store.audits)
	}
}
