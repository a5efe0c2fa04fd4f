package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrRoomAlreadyExists = fmt.Errorf("room already exists")
	ErrRoomNotFound      = fmt.Errorf("room not found")
	ErrWrongSecret       = fmt.Errorf("wrong room secret")
	ErrProfileNotFound   = fmt.Errorf("profile not found")
	ErrInvalidToken      = fmt.Errorf("invalid room token")
	ErrSendBufferFull    = fmt.Errorf("connection send buffer full")
	ErrConnectionClosed  = fmt.Errorf("connection closed")
)
