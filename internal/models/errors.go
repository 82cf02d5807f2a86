package models

import "errors"

// Доменные ошибки. Обработчики HTTP сопоставляют их со статусами
// через errors.Is: валидация и платежи — 400, чужая подписка — 403,
// отсутствующая запись — 404.
var (
	// ErrInvalidPhone номер телефона не соответствует формату +79XXXXXXXXX.
	ErrInvalidPhone = errors.New("invalid phone number")
	// ErrDuplicateSubscription подписка на этот тариф с этим номером уже оформлена.
	ErrDuplicateSubscription = errors.New("subscription already exists")
	// ErrAlreadyResumed по тарифу уже есть активная подписка с автоплатежом.
	ErrAlreadyResumed = errors.New("subscription already resumed")
	// ErrPaymentFailed банк отклонил платеж.
	ErrPaymentFailed = errors.New("payment failed")
	// ErrCashbackFailed банк отклонил начисление кэшбека.
	ErrCashbackFailed = errors.New("cashback accrual failed")
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrNotOwner подписка принадлежит другому пользователю.
	ErrNotOwner = errors.New("subscription belongs to another user")
	// ErrNoStandardCondition у тарифа не задано обычное условие.
	ErrNoStandardCondition = errors.New("tariff has no standard condition")
	// ErrUserExists пользователь с таким username уже зарегистрирован.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials неверная пара логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
