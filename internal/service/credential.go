package service

import (
	"context"
	"errors"
	"time"

	"cabinfolio-backend/internal/accounting"
	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/logger"
	"cabinfolio-backend/internal/repository"
	"cabinfolio-backend/internal/vault"
)

type credentialService struct {
	vault      *vault.Vault
	creds      repository.CredentialRepository
	authClient accounting.AuthClient
}

func NewCredentialService(v *vault.Vault, creds repository.CredentialRepository, authClient accounting.AuthClient) CredentialService {
	return &credentialService{vault: v, creds: creds, authClient: authClient}
}

func (s *credentialService) Connect(ctx context.Context, ownerRef string, pair domain.TokenPair, orgID, orgName string) error {
	if err := s.vault.Store(ctx, ownerRef, pair, orgID, orgName); err != nil {
		return err
	}
	logger.Info("accounting connection stored", "owner_ref", ownerRef, "organization", orgName)
	return nil
}

func (s *credentialService) Disconnect(ctx context.Context, ownerRef string) error {
	if err := s.vault.Remove(ctx, ownerRef); err != nil {
		return err
	}
	logger.Info("accounting connection removed", "owner_ref", ownerRef)
	return nil
}

func (s *credentialService) Status(ctx context.Context, ownerRef string) (*ConnectionStatus, error) {
	cred, err := s.vault.Record(ctx, ownerRef)
	if errors.Is(err, domain.ErrNotConnected) {
		return &ConnectionStatus{Connected: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ConnectionStatus{
		Connected:        true,
		OrganizationName: cred.OrganizationName,
		TokenExpiresAt:   cred.TokenExpiresAt,
		NeedsRefresh:     s.vault.ExpiresSoon(cred.TokenExpiresAt),
	}, nil
}

// GetValidAccessToken returns the stored access token as-is while it
// has more than the refresh skew left, and otherwise refreshes against
// the authorization server. Two concurrent refreshes for the same owner
// are serialized by a conditional write on the previous refresh token's
// fingerprint: the loser re-reads the winner's tokens instead of
// refreshing again.
func (s *credentialService) GetValidAccessToken(ctx context.Context, ownerRef string) (string, error) {
	cred, err := s.vault.Record(ctx, ownerRef)
	if err != nil {
		return "", err
	}

	pair, err := s.vault.DecryptRecord(cred)
	if err != nil {
		return "", err
	}
	if !s.vault.ExpiresSoon(cred.TokenExpiresAt) {
		return pair.AccessToken, nil
	}

	fresh, err := s.authClient.RefreshToken(ctx, pair.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrReauthorizationRequired) {
			logger.Warn("refresh token rejected, owner must re-authorize", "owner_ref", ownerRef)
		}
		return "", err
	}

	accessCipher, refreshCipher, fingerprint, err := s.vault.EncryptPair(fresh)
	if err != nil {
		return "", err
	}

	swapped, err := s.creds.ReplaceTokens(ctx, ownerRef, cred.RefreshFingerprint, accessCipher, refreshCipher, fingerprint, fresh.ExpiresAt)
	if err != nil {
		return "", err
	}
	if !swapped {
		// Lost the race: another request already rotated the tokens.
		// Ours are now orphaned; read back what won.
		logger.Debug("concurrent token refresh detected, re-reading", "owner_ref", ownerRef)
		current, err := s.vault.GetDecrypted(ctx, ownerRef)
		if err != nil {
			return "", err
		}
		return current.AccessToken, nil
	}

	logger.Info("access token refreshed", "owner_ref", ownerRef, "expires_at", fresh.ExpiresAt.Format(time.RFC3339))
	return fresh.AccessToken, nil
}
