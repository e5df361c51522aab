package jobs

import (
	"context"
	"errors"
	"time"

	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/logger"
	"cabinfolio-backend/internal/vault"
)

// RefreshExpiringCredentials proactively rotates credentials inside the
// expiry window so user-facing requests rarely pay the refresh
// round-trip. A rejected refresh token cannot be repaired here; the
// admin is alerted to re-authorize.
func (jr *JobRunner) RefreshExpiringCredentials() {
	jr.runWithRecovery("RefreshExpiringCredentials", func() {
		ctx := context.Background()

		expiring, err := jr.credentials.ListExpiringBefore(ctx, time.Now().Add(vault.RefreshSkew))
		if err != nil {
			logger.Error("Failed to list expiring credentials", "error", err)
			return
		}

		for _, cred := range expiring {
			_, err := jr.credSvc.GetValidAccessToken(ctx, cred.OwnerRef)
			switch {
			case err == nil:
				logger.Info("Credential refreshed proactively", "owner_ref", cred.OwnerRef)
			case errors.Is(err, domain.ErrReauthorizationRequired):
				logger.Error("Credential requires re-authorization", "owner_ref", cred.OwnerRef)
				if jr.email != nil && jr.config.Accounting.AdminEmail != "" {
					if mailErr := jr.email.SendReauthorizationAlert(ctx, jr.config.Accounting.AdminEmail, cred.OwnerRef); mailErr != nil {
						logger.Warn("Failed to send re-authorization alert", "owner_ref", cred.OwnerRef, "error", mailErr)
					}
				}
			case domain.IsTransient(err):
				// Next sweep retries; nothing was mutated.
				logger.Warn("Transient failure refreshing credential", "owner_ref", cred.OwnerRef, "error", err)
			default:
				logger.Error("Failed to refresh credential", "owner_ref", cred.OwnerRef, "error", err)
			}
		}
	})
}
