package serverutils

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// MessageBody is used for success responses that only carry a message.
type MessageBody struct {
	Message string `json:"message"`
}

func ErrorResponse(message string, err error) ErrorBody {
	body := ErrorBody{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	return body
}

func MessageResponse(message string) MessageBody {
	return MessageBody{Message: message}
}
