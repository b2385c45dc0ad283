package services

import (
	"strconv"
	"strings"
	"time"
)

type PropertyStore interface {
	InsertProperty(p *Property) (*Property, error)
	GetProperty(id int64) (*Property, error)
	UpdateProperty(p *Property) error
	DeleteProperty(id int64) error
	ListProperties(teamID string) ([]*Property, error)
	AddAudit(entry AuditEntry)
}

type PropertyService struct {
	store PropertyStore
	now   func() time.Time
}

func NewPropertyService(store PropertyStore) *PropertyService {
	return &PropertyService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *PropertyService) Create(teamID string, p *Property) (*Property, error) {
	if teamID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	if p == nil {
		return nil, NewInvalidError("property required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, NewInvalidError("name required")
	}
	p.TeamID = teamID
	p.CreatedAt = s.now()
	created, err := s.store.InsertProperty(p)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return p, nil
	}
	return created, nil
}

func (s *PropertyService) Get(teamID string, id int64) (*Property, error) {
	return s.owned(teamID, id)
}

func (s *PropertyService) List(teamID string) ([]*Property, error) {
	if teamID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	return s.store.ListProperties(teamID)
}

func (s *PropertyService) Update(teamID string, id int64, raw map[string]any) (*Property, error) {
	old, err := s.owned(teamID, id)
	if err != nil {
		return nil, err
	}
	updated := *old
	if v, ok := raw["name"].(string); ok && strings.TrimSpace(v) != "" {
		updated.Name = v
	}
	if v, ok := raw["address"].(string); ok {
		updated.Address = v
	}
	if err := s.store.UpdateProperty(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the property together with its stored evaluation.
func (s *PropertyService) Delete(teamID string, id int64, actor string) error {
	if _, err := s.owned(teamID, id); err != nil {
		return err
	}
	if err := s.store.DeleteProperty(id); err != nil {
		return err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "delete_property", Target: strconv.FormatInt(id, 10)})
	return nil
}

func (s *PropertyService) owned(teamID string, id int64) (*Property, error) {
	if teamID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	p, err := s.store.GetProperty(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NewNotFoundError("property not found")
	}
	if p.TeamID != teamID {
		return nil, NewForbiddenError("forbidden")
	}
	return p, nil
}
