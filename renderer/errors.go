package renderer

import "errors"

var (
	ErrNoEngine     = errors.New("renderer: no engine attached")
	ErrWindowClosed = errors.New("renderer: window closed")
	ErrScreenClosed = errors.New("renderer: screen closed")
	ErrInitFailed   = errors.New("renderer: display initialization failed")
	ErrInterrupted  = errors.New("renderer: interrupted")
)
