package memory

import (
	"context"
	"fmt"
	"time"

	"nursesrent/database/repository"
	userRepo "nursesrent/database/repository/user"
	"nursesrent/models"
)

type users struct{ *Store }

// Users returns the user repository view.
func (s *Store) Users() userRepo.UserRepository { return users{s} }

func (s *Store) emailTaken(role models.Role, email string) bool {
	if role == models.RoleHost {
		for _, h := range s.hosts {
			if h.Email == email {
				return true
			}
		}
		return false
	}
	for _, n := range s.nurses {
		if n.Email == email {
			return true
		}
	}
	return false
}

func (s *Store) profile(role models.Role, id string) (*models.UserProfile, bool) {
	if role == models.RoleHost {
		if h, ok := s.hosts[id]; ok {
			return &h.UserProfile, true
		}
		return nil, false
	}
	if n, ok := s.nurses[id]; ok {
		return &n.UserProfile, true
	}
	return nil, false
}

func (u users) CreateHost(_ context.Context, host *models.Host) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.hosts[host.ID]; ok || u.emailTaken(models.RoleHost, host.Email) {
		return fmt.Errorf("failed to create host: %w", repository.ErrDuplicate)
	}
	now := time.Now()
	host.CreatedAt, host.UpdatedAt = now, now
	host.Role = models.RoleHost
	cp := *host
	u.hosts[host.ID] = &cp
	return nil
}

func (u users) CreateNurse(_ context.Context, nurse *models.Nurse) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.nurses[nurse.ID]; ok || u.emailTaken(models.RoleNurse, nurse.Email) {
		return fmt.Errorf("failed to create nurse: %w", repository.ErrDuplicate)
	}
	now := time.Now()
	nurse.CreatedAt, nurse.UpdatedAt = now, now
	nurse.Role = models.RoleNurse
	cp := *nurse
	u.nurses[nurse.ID] = &cp
	return nil
}

func (u users) GetHost(_ context.Context, id string) (*models.Host, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	h, ok := u.hosts[id]
	if !ok {
		return nil, fmt.Errorf("host %s: %w", id, repository.ErrNotFound)
	}
	cp := *h
	return &cp, nil
}

func (u users) GetNurse(_ context.Context, id string) (*models.Nurse, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	n, ok := u.nurses[id]
	if !ok {
		return nil, fmt.Errorf("nurse %s: %w", id, repository.ErrNotFound)
	}
	cp := *n
	return &cp, nil
}

func (u users) GetAccount(ctx context.Context, role models.Role, id string) (models.Account, error) {
	switch role {
	case models.RoleHost:
		h, err := u.GetHost(ctx, id)
		if err != nil {
			return nil, err
		}
		return h, nil
	case models.RoleNurse:
		n, err := u.GetNurse(ctx, id)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	return nil, fmt.Errorf("unknown role %q: %w", role, repository.ErrNotFound)
}

func (u users) GetByEmail(_ context.Context, role models.Role, email string) (models.Account, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if role == models.RoleHost {
		for _, h := range u.hosts {
			if h.Email == email {
				cp := *h
				return &cp, nil
			}
		}
	} else {
		for _, n := range u.nurses {
			if n.Email == email {
				cp := *n
				return &cp, nil
			}
		}
	}
	return nil, fmt.Errorf("%s with email %s: %w", role, email, repository.ErrNotFound)
}

func (u users) update(role models.Role, id string, fn func(p *models.UserProfile)) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	p, ok := u.profile(role, id)
	if !ok {
		return fmt.Errorf("%s %s: %w", role, id, repository.ErrNotFound)
	}
	fn(p)
	p.UpdatedAt = time.Now()
	return nil
}

func (u users) UpdateTokenHash(_ context.Context, role models.Role, id, tokenHash string) error {
	return u.update(role, id, func(p *models.UserProfile) { p.TokenHash = tokenHash })
}

func (u users) SetCustomerID(_ context.Context, role models.Role, id, customerID string) error {
	return u.update(role, id, func(p *models.UserProfile) { p.StripeCustomerID = customerID })
}

func (u users) SetVerified(_ context.Context, role models.Role, id string) error {
	return u.update(role, id, func(p *models.UserProfile) { p.IsVerified = true })
}

func (u users) SetConnectedAccount(_ context.Context, hostID, accountID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	h, ok := u.hosts[hostID]
	if !ok {
		return fmt.Errorf("host %s: %w", hostID, repository.ErrNotFound)
	}
	h.StripeAccountID = accountID
	h.IsConnected = true
	h.UpdatedAt = time.Now()
	return nil
}
