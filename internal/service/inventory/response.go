package inventory

import "net/http"

// Коды ответа, единые для всех операций сервиса.
const (
	// CodeSuccess — операция полностью выполнена.
	CodeSuccess = "00"
	// CodeNoContent — выборка пустая; это не ошибка, а различимый результат.
	CodeNoContent = "11"
	// CodeFailure — операция не выполнена.
	CodeFailure = "99"
)

// Response — единый конверт результата для всех операций ядра.
// Инвариант: Code == CodeSuccess тогда и только тогда, когда операция
// полностью успешна; остальные коды всегда несут Message.
type Response struct {
	Code       string `json:"code"`
	HTTPStatus int    `json:"http_status"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// OK возвращает успешный конверт с полезной нагрузкой.
func OK(message string, data any) Response {
	return Response{
		Code:       CodeSuccess,
		HTTPStatus: http.StatusOK,
		Message:    message,
		Data:       data,
	}
}

// NoContent возвращает конверт пустой выборки.
func NoContent(message string, data any) Response {
	return Response{
		Code:       CodeNoContent,
		HTTPStatus: http.StatusNoContent,
		Message:    message,
		Data:       data,
	}
}

// Failure возвращает конверт ошибки с заданным HTTP-статусом.
func Failure(httpStatus int, message string, data any) Response {
	return Response{
		Code:       CodeFailure,
		HTTPStatus: httpStatus,
		Message:    message,
		Data:       data,
	}
}
