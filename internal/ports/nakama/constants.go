package nakama

// RPC ids registered with the Nakama runtime.
const (
	RpcCreateSession = "monopoly_create_session"
	RpcJoinSession   = "monopoly_join_session"
	RpcStartSession  = "monopoly_start_session"
	RpcRollDice      = "monopoly_roll_dice"
	RpcBuyTile       = "monopoly_buy_tile"
	RpcPlayerView    = "monopoly_player_view"
	RpcSessionInfo   = "monopoly_session_info"
	RpcBalance       = "monopoly_balance"
	RpcTransfer      = "monopoly_transfer"
)

// Runtime env keys read in InitModule.
const (
	EnvStorePath   = "monopoly_store_path"
	EnvGameConfig  = "monopoly_game_config"
	EnvLedgerOwner = "monopoly_ledger_owner"
	EnvEngineID    = "monopoly_engine_id"
)

// WalletCurrency is the wallet key ledger balances are mirrored into.
const WalletCurrency = "tokens"

const defaultLedgerOwner = "monopoly-ledger-owner"

// Notification codes sent to clients, one per engine event kind.
const (
	NotifySessionCreated    = 101
	NotifyPlayerJoined      = 102
	NotifySessionStarted    = 103
	NotifyDiceRolled        = 104
	NotifyTilePurchased     = 105
	NotifyTokensMinted      = 106
	NotifyTokensTransferred = 107
)
