package domain

import "errors"

var (
	// ErrDuplicateUnit пристрій з таким ідентифікатором вже зареєстрований
	ErrDuplicateUnit = errors.New("unit already registered")
	// ErrUnitNotFound пристрій не знайдено у реєстрі
	ErrUnitNotFound = errors.New("unit not found")
	// ErrMissionNotFound місію не знайдено
	ErrMissionNotFound = errors.New("mission not found")
	// ErrInvalidTransition недопустимий перехід статусу пристрою або місії,
	// зокрема повторне завершення вже завершеної місії
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNoUnitAvailable немає вільного придатного пристрою. Це штатний
	// результат диспетчеризації, а не збій: викликач може повторити спробу
	// або підвищити пріоритет.
	ErrNoUnitAvailable = errors.New("no unit currently available")
	// ErrArchiveDisabled архів детекцій не налаштовано
	ErrArchiveDisabled = errors.New("detection archive is disabled")
	// ErrInvalidInput некоректні вхідні дані операції
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownValue невідоме значення переліку
	ErrUnknownValue = errors.New("unknown enum value")
)
