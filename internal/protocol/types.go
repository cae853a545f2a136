package protocol

// Request/response type discriminators carried in wire.Frame.Type. A reply
// always echoes the request's type alongside its tag; for Disconnect that
// empty echo is the acknowledgement sent before the connection closes.
const (
	TypeAuth int16 = iota
	TypeRegister
	TypePut
	TypeGet
	TypeMultiPut
	TypeMultiGet
	TypeGetWhen
	TypeDisconnect
)
