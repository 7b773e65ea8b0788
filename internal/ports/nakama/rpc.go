package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"monopoly/internal/app"
	"monopoly/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// gRPC status codes used by runtime.NewError.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnauthenticated    = 16
)

var (
	// engine serves every RPC. Set by InitModule; tests replace it.
	engine *app.Engine
	// economy backs the wallet mirror for hooks.
	economy ports.EconomyPort
)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcCreateSession: rpcCreateSession,
		RpcJoinSession:   rpcJoinSession,
		RpcStartSession:  rpcStartSession,
		RpcRollDice:      rpcRollDice,
		RpcBuyTile:       rpcBuyTile,
		RpcPlayerView:    rpcPlayerView,
		RpcSessionInfo:   rpcSessionInfo,
		RpcBalance:       rpcBalance,
		RpcTransfer:      rpcTransfer,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

func rpcCreateSession(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	caller, _, err := decodeRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	id, _, err := engine.CreateSession(ctx, caller)
	if err != nil {
		return "", rpcError(logger, RpcCreateSession, caller, err)
	}
	logger.Info("%s [User:%s]: created session %d", RpcCreateSession, caller, id)
	return sessionInfoJSON(ctx, logger, id)
}

func rpcJoinSession(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	caller, req, err := decodeRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	if _, err := engine.JoinSession(ctx, req.SessionID, caller); err != nil {
		return "", rpcError(logger, RpcJoinSession, caller, err)
	}
	return sessionInfoJSON(ctx, logger, req.SessionID)
}

func rpcStartSession(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	caller, req, err := decodeRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	if _, err := engine.StartSession(ctx, req.SessionID, caller); err != nil {
		return "", rpcError(logger, RpcStartSession, caller, err)
	}
	logger.Info("%s [User:%s]: started session %d", RpcStartSession, caller, req.SessionID)
	return sessionInfoJSON(ctx, logger, req.SessionID)
}

func rpcRollDice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	caller, req, err := decodeRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	value, events, err := engine.RollDice(ctx, req.SessionID, caller)
	if err != nil {
		return "", rpcError(logger, RpcRollDice, caller, err)
	}
	resp := RollResponse{SessionID: req.SessionID, Value: value}
	for _, ev := range events {
		if rolled, ok := ev.Payload.(app.DiceRolledPayload); ok {
			resp.Position = rolled.Position
			resp.NextTurn = rolled.NextTurn
		}
	}
	return encode(logger, resp)
}

func rpcBuyTile(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	caller, req, err := decodeRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	if _, err := engine.BuyTile(ctx, req.SessionID, req.Tile, caller); err != nil {
		return "", rpcError(logger, RpcBuyTile, caller, err)
	}
	view, err := engine.PlayerView(ctx, req.SessionID, caller)
	if err != nil {
		return "", rpcError(logger, RpcBuyTile, caller, err)
	}
	return encode(logger, playerViewToResponse(req.SessionID, view))
}

func rpcPlayerView(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	caller, req, err := decodeRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	account := req.Account
	if account == "" {
		account = caller
	}
	view, err := engine.PlayerView(ctx, req.SessionID, account)
	if err != nil {
		return "", rpcError(logger, RpcPlayerView, caller, err)
	}
	return encode(logger, playerViewToResponse(req.SessionID, view))
}

func rpcSessionInfo(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	_, req, err := decodeRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	return sessionInfoJSON(ctx, logger, req.SessionID)
}

func rpcBalance(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	caller, req, err := decodeRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	account := req.Account
	if account == "" {
		account = caller
	}
	return encode(logger, BalanceResponse{Account: account, Balance: engine.Balance(account)})
}

func rpcTransfer(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	caller, req, err := decodeRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	if _, err := engine.Transfer(ctx, caller, req.To, req.Amount); err != nil {
		return "", rpcError(logger, RpcTransfer, caller, err)
	}
	logger.Info("%s [User:%s]: sent %d to %s", RpcTransfer, caller, req.Amount, req.To)
	return encode(logger, BalanceResponse{Account: caller, Balance: engine.Balance(caller)})
}

// decodeRequest resolves the calling user and parses the optional JSON payload.
func decodeRequest(ctx context.Context, payload string) (string, rpcRequest, error) {
	var req rpcRequest
	if engine == nil {
		return "", req, runtime.NewError("game engine not initialized", codeInternal)
	}
	caller, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if caller == "" {
		return "", req, runtime.NewError("authenticated user required", codeUnauthenticated)
	}
	if strings.TrimSpace(payload) == "" {
		return caller, req, nil
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", req, runtime.NewError("Invalid payload", codeInvalidArgument)
	}
	return caller, req, nil
}

func sessionInfoJSON(ctx context.Context, logger runtime.Logger, id uint64) (string, error) {
	info, err := engine.SessionInfo(ctx, id)
	if err != nil {
		return "", rpcError(logger, RpcSessionInfo, "", err)
	}
	return encode(logger, sessionInfoToResponse(info))
}

func encode(logger runtime.Logger, v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to encode response: %v", err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	return string(b), nil
}

// rpcError maps an engine error to a runtime error with a gRPC status code.
func rpcError(logger runtime.Logger, rpc, caller string, err error) error {
	code := grpcCode(app.CodeOf(err))
	if code == codeInternal {
		logger.Error("%s [User:%s]: %v", rpc, caller, err)
		return runtime.NewError("Internal error", codeInternal)
	}
	logger.Debug("%s [User:%s]: rejected: %v", rpc, caller, err)
	return runtime.NewError(string(app.CodeOf(err))+": "+err.Error(), code)
}

func grpcCode(code app.Code) int {
	switch code {
	case app.CodeInvalidArgument:
		return codeInvalidArgument
	case app.CodeNotFound:
		return codeNotFound
	case app.CodeUnauthorized:
		return codePermissionDenied
	case app.CodeInternal:
		return codeInternal
	default:
		return codeFailedPrecondition
	}
}
