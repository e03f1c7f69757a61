package service

import "errors"

// ErrInsufficientHistory 错误：样本数不足（该 ticker/pair 本周期被排除，非致命）
var ErrInsufficientHistory = errors.New("insufficient price history")

// ErrInvalidMarketData 错误：订单簿缺边或收盘价非法
var ErrInvalidMarketData = errors.New("invalid market data")

// ErrZeroDenominator 错误：风险调整后总规模为零，本周期分配中止
var ErrZeroDenominator = errors.New("total risk-adjusted size is zero")
