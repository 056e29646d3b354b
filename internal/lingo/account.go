package lingo

import (
	"context"
	"fmt"

	"github.com/hay-kot/lingo/internal/auth"
)

func (s *Service) authProvider() (auth.Provider, error) {
	if s.auth == nil {
		return nil, fmt.Errorf("%w: auth", ErrNotConfigured)
	}
	return s.auth, nil
}

func (s *Service) SignUp(ctx context.Context, email, password string) (auth.User, error) {
	p, err := s.authProvider()
	if err != nil {
		return auth.User{}, err
	}
	u, err := p.SignUp(ctx, email, password)
	if err != nil {
		return auth.User{}, err
	}
	s.log.Info().Str("uid", u.UID).Str("provider", p.Name()).Msg("signed up")
	return u, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (auth.User, error) {
	p, err := s.authProvider()
	if err != nil {
		return auth.User{}, err
	}
	u, err := p.SignIn(ctx, email, password)
	if err != nil {
		return auth.User{}, err
	}
	s.log.Info().Str("uid", u.UID).Str("provider", p.Name()).Msg("signed in")
	return u, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	p, err := s.authProvider()
	if err != nil {
		return err
	}
	return p.SignOut(ctx)
}

func (s *Service) CurrentUser(ctx context.Context) (auth.User, error) {
	p, err := s.authProvider()
	if err != nil {
		return auth.User{}, err
	}
	return p.CurrentUser(ctx)
}
