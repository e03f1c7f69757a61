package svc

import "errors"

// ErrNoLedgerStore 错误：没有启用任何账本存储
var ErrNoLedgerStore = errors.New("no ledger store enabled")

// ErrStorageInitFailed 错误：存储初始化失败
var ErrStorageInitFailed = errors.New("storage initialization failed")
