package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"monopoly/internal/ports"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// AfterAuthenticateDevice brings the user's token wallet back in line with the
// ledger. The wallet mirror is best effort, so drift is repaired on every login.
func AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	if engine == nil || economy == nil {
		return nil
	}

	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		resolvedID, err := extractUserIDFromToken(out.GetToken())
		if err != nil {
			logger.Error("AfterAuthenticateDevice: Failed to extract user ID from token: %v", err)
			return err
		}
		userID = resolvedID
	}

	if err := reconcileWallet(ctx, economy, userID, engine.Balance(userID)); err != nil {
		logger.Warn("AfterAuthenticateDevice: wallet reconcile failed for user %s: %v", userID, err)
	}
	return nil
}

// reconcileWallet moves the mirrored wallet to want with a single delta.
func reconcileWallet(ctx context.Context, economy ports.EconomyPort, userID string, want int64) error {
	have, err := economy.GetBalance(ctx, userID)
	if err != nil {
		return err
	}
	if have == want {
		return nil
	}
	return economy.UpdateBalances(ctx, []ports.WalletUpdate{{
		UserID:   userID,
		Amount:   want - have,
		Metadata: map[string]interface{}{"reason": "ledger_reconcile"},
	}})
}

// extractUserIDFromToken reads the uid claim of a session token Nakama just issued.
// The signature is not checked; the token never left the server.
func extractUserIDFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return "", fmt.Errorf("token claims missing uid")
	}
	return uid, nil
}
