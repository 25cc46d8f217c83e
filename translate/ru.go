package translate

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var russian = map[string]string{
	"STOP":                            "ОСТАНОВ",
	"Breakpoint":                      "Точка останова",
	"Run out end of memory":           "Выход за конец памяти",
	"Invalid instruction":             "Неверная команда",
	"Addition overflow":               "Переполнение при сложении",
	"Exponent overflow":               "Переполнение порядка",
	"Multiplication overflow":         "Переполнение при умножении",
	"Division overflow":               "Переполнение при делении",
	"Division mantissa overflow":      "Переполнение мантиссы при делении",
	"Division by zero":                "Деление на ноль",
	"SQRT from negative number":       "Корень из отрицательного числа",
	"SQRT error":                      "Ошибка извлечения корня",
	"Drum read error":                 "Ошибка чтения барабана",
	"Drum write error":                "Ошибка записи барабана",
	"Card reader empty":               "Нет перфокарт",
	"card reader mismatch cyclic sum": "Несовпадение контрольной суммы перфокарты",
	"i/o setup was missing":           "Нет команды подготовки обмена",
	"tape read error":                 "Ошибка чтения ленты",
	"end of tape detected":            "Конец ленты",
	"matching tape zone not found":    "Зона ленты не найдена",
	"not ready punch":                 "Перфоратор не готов",
	"not ready print":                 "Печать не готова",
	"unit not attached":               "Устройство не подключено",
	"Unknown error %v":                "Неизвестная ошибка %v",
	"unknown arithmetic strategy":     "неизвестный способ вычислений",

	"writing attempt to read-only memory location": "Запись в ячейку только для чтения",
}

func registerRussian() {
	for key, msg := range russian {
		message.SetString(language.Russian, key, msg)
	}
}
