package config

import "errors"

// ErrInvalidConfig marks a configuration-invalid failure: the slave is
// rejected at init and never promoted by the master.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// ErrStartupFailed marks an SDO-transport-failed startup step. The
// underlying transport error is wrapped with %w.
var ErrStartupFailed = errors.New("config: startup configuration failed")
