package services

import "testing"

type stubNotificationStore struct {
	notifications map[string]*Notification
}

func (s *stubNotificationStore) ListNotifications(teamID string) ([]*Notification, error) {
	out := []*Notification{}
	for _, n := range s.notifications {
		if n.TeamID == teamID {
			copy := *n
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *stubNotificationStore) GetNotification(id string) (*Notification, error) {
	if n, ok := s.notifications[id]; ok {
		copy := *n
		return &copy, nil
	}
	return nil, nil
}

func (s *stubNotificationStore) MarkNotificationRead(id string) error {
	if n, ok := s.notifications[id]; ok {
		n.Read = true
		return nil
	}
	return NewNotFoundError("notification not found")
}

func TestNotificationListAndMarkRead(t *testing.T) {
	store := &stubNotificationStore{notifications: map[string]*Notification{
		"n1": {ID: "n1", TeamID: "TEAM", Kind: "evaluation_submitted"},
		"n2": {ID: "n2", TeamID: "OTHER"},
	}}
	svc := NewNotificationService(store)

	list, err := svc.List("TEAM")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "n1" {
		t.Fatalf("list = %+v, want only n1", list)
	}

	if err := svc.MarkRead("TEAM", "missing"); err == nil {
		t.Fatalf("expected not found")
	}
	if err := svc.MarkRead("TEAM", "n2"); err == nil {
		t.Fatalf("expected forbidden for foreign notification")
	}
	if err := svc.MarkRead("TEAM", "n1"); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	if !store.notifications["n1"].Read {
		t.Fatalf("notification not marked read")
	}
}
