package notification

import "errors"

var (
	ErrNoTarget     = errors.New("no notification target configured")
	ErrAllTargets   = errors.New("all notification targets failed")
	ErrBadStatus    = errors.New("notification target returned a non-2xx status")
)
