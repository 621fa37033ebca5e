package irc

// Numeric replies the engine and the bundled extensions refer to by name.
const (
	RplWelcome  = "001"
	RplYourHost = "002"
	RplCreated  = "003"
	RplMyInfo   = "004"
	RplISupport = "005"

	RplStatsConn     = "250"
	RplLuserClient   = "251"
	RplLuserOp       = "252"
	RplLuserUnknown  = "253"
	RplLuserChannels = "254"
	RplLuserMe       = "255"
	RplLocalUsers    = "265"
	RplGlobalUsers   = "266"

	RplLinks      = "364"
	RplEndOfLinks = "365"
	RplMOTD       = "372"
	RplMOTDStart  = "375"
	RplEndOfMOTD  = "376"

	ErrErroneusNickname = "432"
	ErrNicknameInUse    = "433"
)
