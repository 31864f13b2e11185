// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения. Ошибки валидации
// НЕ пишутся в лог как ошибки — это ожидаемые ситуации.
package common

import "errors"

// Ошибки экономики (Ilm Coins, переводы, пожертвования)
var (
	// ErrInsufficientBalance — недостаточно монет на счёте
	ErrInsufficientBalance = errors.New("недостаточно монет на счёте")
	// ErrSelfTransfer — попытка перевести монеты самому себе
	ErrSelfTransfer = errors.New("нельзя переводить монеты самому себе")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrTransfersDisabled — переводы выключены в настройках
	ErrTransfersDisabled = errors.New("переводы временно отключены")
	// ErrTransferOutOfBounds — сумма перевода вне диапазона min..max
	ErrTransferOutOfBounds = errors.New("сумма перевода вне допустимого диапазона")
	// ErrDonationOutOfBounds — сумма пожертвования вне диапазона min..max
	ErrDonationOutOfBounds = errors.New("сумма пожертвования вне допустимого диапазона")
	// ErrAccountNotFound — счёт не найден в базе
	ErrAccountNotFound = errors.New("счёт не найден")
)

// Ошибки ежедневной награды и работы
var (
	// ErrDailyAlreadyClaimed — награда уже получена (прошло меньше 20 часов)
	ErrDailyAlreadyClaimed = errors.New("ежедневная награда уже получена")
	// ErrWorkCooldown — команда работы на перезарядке
	ErrWorkCooldown = errors.New("работать можно будет позже")
)

// Ошибки статистики
var (
	// ErrUnknownStat — имя счётчика вне белого списка
	ErrUnknownStat = errors.New("неизвестное имя счётчика")
)
