package services

type NotificationStore interface {
	ListNotifications(teamID string) ([]*Notification, error)
	GetNotification(id string) (*Notification, error)
	MarkNotificationRead(id string) error
}

// NotificationService serves the team notification feed. Rows are created by
// EvaluationService on submission; this service only reads and marks them.
type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) List(teamID string) ([]*Notification, error) {
	if teamID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	return s.store.ListNotifications(teamID)
}

func (s *NotificationService) MarkRead(teamID, id string) error {
	if teamID == "" {
		return NewForbiddenError("unauthorized")
	}
	n, err := s.store.GetNotification(id)
	if err != nil {
		return err
	}
	if n == nil {
		return NewNotFoundError("notification not found")
	}
	if n.TeamID != teamID {
		return NewForbiddenError("forbidden")
	}
	return s.store.MarkNotificationRead(id)
}
