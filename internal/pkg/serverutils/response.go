// FILE: internal/pkg/serverutils/response.go
package serverutils

type Envelope struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(data interface{}) Envelope {
	return Envelope{
		Success: true,
		Code:    200,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) Envelope {
	return Envelope{
		Success: false,
		Code:    code,
		Message: message,
	}
}
