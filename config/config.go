package config

// AppName doubles as the Postgres schema name for the app's tables.
const AppName = "settlex"

// Stellar network constants.
const (
	NetworkPassphraseTestnet = "Test SDF Network ; September 2015"
	NetworkPassphrasePublic  = "Public Global Stellar Network ; September 2015"

	// BaseFeeStroops is the minimum base fee for a classic payment (0.00001 XLM).
	BaseFeeStroops = 100

	// MemoMaxBytes is the protocol limit for text memos.
	MemoMaxBytes = 28

	// MemoPrefix tags every payment memo emitted by this app.
	MemoPrefix = "SettleX"
)

// MaxAmount is an application-level ceiling on a single expense or payment,
// guarding against fat-fingered input. It is not a protocol limit.
const MaxAmount = 100_000_000

// Confirmation polling for the optional on-chain audit record.
const (
	RecordPollAttempts   = 20
	RecordPollIntervalMs = 2500
)
