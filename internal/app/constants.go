package app

// StartingBalance is minted to every seated player when a session starts,
// unless WithStartingBalance overrides it.
const StartingBalance int64 = 1000

// DefaultEngineID is the account identity the engine mints under and collects tile payments into.
const DefaultEngineID = "monopoly-engine"
