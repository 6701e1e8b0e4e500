/**
 * @description
 * This file contains the identity-provider adapter: the service that wraps
 * sign-in/sign-up/sign-out against the external auth service and keeps the
 * local user profile in step with it. Session tokens stay opaque here; the
 * API layer decides how they travel (httpOnly cookie).
 *
 * @notes
 * - CurrentUser treats every flavor of absence (no token, expired session,
 *   missing profile) as an anonymous caller, never as an error.
 * - SignUp provisions the payments-processor customer up front so the first
 *   bank link already has a customer to attach funding sources to.
 */
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/horizonbank/horizon-api/internal/domain"
	"github.com/horizonbank/horizon-api/internal/store"
	"github.com/horizonbank/horizon-api/pkg/authclient"
	"github.com/horizonbank/horizon-api/pkg/dwollaclient"
)

// IdentityClient is the slice of the identity provider the adapter needs.
type IdentityClient interface {
	SignUp(ctx context.Context, name, email, password string) (*authclient.Session, error)
	SignIn(ctx context.Context, email, password string) (*authclient.Session, error)
	SignOut(ctx context.Context, token string) error
}

// CustomerProvisioner creates payments-processor customers.
type CustomerProvisioner interface {
	CreateCustomer(ctx context.Context, req dwollaclient.CustomerRequest) (string, error)
}

// AuthService adapts the external identity provider to the rest of the core.
type AuthService struct {
	identity  IdentityClient
	customers CustomerProvisioner
	users     store.UserRepository
	sessions  store.SessionRepository
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(identity IdentityClient, customers CustomerProvisioner, users store.UserRepository, sessions store.SessionRepository) *AuthService {
	return &AuthService{
		identity:  identity,
		customers: customers,
		users:     users,
		sessions:  sessions,
	}
}

// SignUp creates a provider account, provisions a processor customer, and
// upserts the local profile. A profile already stored for the same identity
// is reused: new non-empty field values are applied, nothing else changes.
// Returns the stored profile and the opaque session token.
func (s *AuthService) SignUp(ctx context.Context, params domain.SignUpParams) (*domain.UserProfile, string, error) {
	name := fmt.Sprintf("%s %s", params.FirstName, params.LastName)
	session, err := s.identity.SignUp(ctx, name, params.Email, params.Password)
	if err != nil {
		return nil, "", fmt.Errorf("signing up with identity provider: %w", err)
	}

	customerURL, err := s.customers.CreateCustomer(ctx, dwollaclient.CustomerRequest{
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		Email:       params.Email,
		Type:        "personal",
		Address1:    params.Address1,
		City:        params.City,
		State:       params.State,
		PostalCode:  params.PostalCode,
		DateOfBirth: params.DateOfBirth,
		SSN:         params.SSN,
	})
	if err != nil {
		// The provider account exists but the local state does not. The user
		// can recover by signing up again with the same identity.
		log.Printf("Error creating processor customer for user %s: %v", session.User.ID, err)
		return nil, "", fmt.Errorf("%w: %v", domain.ErrProfileCreation, err)
	}

	profile := &domain.UserProfile{
		UserID:            session.User.ID,
		Email:             session.User.Email,
		FirstName:         params.FirstName,
		LastName:          params.LastName,
		Address1:          params.Address1,
		City:              params.City,
		State:             params.State,
		PostalCode:        params.PostalCode,
		DateOfBirth:       params.DateOfBirth,
		SSN:               params.SSN,
		DwollaCustomerURL: customerURL,
		DwollaCustomerID:  dwollaclient.ExtractCustomerID(customerURL),
	}

	stored, err := s.users.Upsert(ctx, profile)
	if err != nil {
		log.Printf("Error persisting profile for user %s: %v", session.User.ID, err)
		return nil, "", fmt.Errorf("%w: %v", domain.ErrProfileCreation, err)
	}
	return stored, session.Token, nil
}

// SignIn authenticates against the identity provider and returns the stored
// profile with the new session token. Bad credentials surface as
// domain.ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.UserProfile, string, error) {
	session, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	profile, err := s.users.FindByUserID(ctx, session.User.ID)
	if err != nil {
		return nil, "", err
	}
	if profile == nil {
		// Account exists upstream but sign-up never finished locally.
		return nil, "", fmt.Errorf("%w: no profile for user %s", domain.ErrProfileCreation, session.User.ID)
	}
	return profile, session.Token, nil
}

// CurrentUser resolves a session token to a profile. An empty token, an
// expired or unknown session, and a missing profile all return (nil, nil).
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.UserProfile, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	return s.users.FindByUserID(ctx, session.UserID)
}

// SignOut invalidates the session upstream and removes the local session
// record. Both steps tolerate the session already being gone.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		log.Printf("Error resolving session during sign-out: %v", err)
	}

	if err := s.identity.SignOut(ctx, token); err != nil {
		log.Printf("Error signing out with identity provider: %v", err)
	}

	if session != nil {
		if err := s.sessions.DeleteByUserID(ctx, session.UserID); err != nil {
			log.Printf("Error deleting local session for user %s: %v", session.UserID, err)
		}
	}
	return nil
}
