package services

import (
	"errors"
	"strings"

	"sparesledger/internal/domain"
	"sparesledger/internal/repos"
)

var ErrUnknownRole = errors.New("unknown role")

// RoleService remembers which role each browser picked. There are no
// credentials: picking a role is all the login screen does.
type RoleService struct {
	Sessions        *repos.SessionRepo
	AdminName       string
	StoreKeeperName string
}

func (s *RoleService) Pick(sid string, role domain.Role, name string) (*domain.Session, error) {
	if !role.Valid() {
		return nil, ErrUnknownRole
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultName(role)
	}
	if err := s.Sessions.Bind(sid, role, name); err != nil {
		return nil, err
	}
	return &domain.Session{ID: sid, Role: role, Name: name}, nil
}

func (s *RoleService) Clear(sid string) error {
	return s.Sessions.Unbind(sid)
}

// Current returns nil, nil when sid has not picked a role.
func (s *RoleService) Current(sid string) (*domain.Session, error) {
	sess, err := s.Sessions.Get(sid)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, nil
	}
	return sess, err
}

func (s *RoleService) defaultName(role domain.Role) string {
	if role == domain.RoleAdmin {
		return s.AdminName
	}
	return s.StoreKeeperName
}
