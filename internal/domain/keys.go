package domain

type CtxKey string

const (
	// KeyRequestID holds the correlation id of the current request
	KeyRequestID CtxKey = "RequestID"
)
