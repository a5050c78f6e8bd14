package models

// error kinds reported to http clients
const (
	KindInvalidInput = "invalid_input"
	KindMissingData  = "missing_data"
	KindUpstream     = "upstream"
	KindInternal     = "internal"
)

// ServiceResponse is the envelope every http response is wrapped in
type ServiceResponse[T any] struct {
	Data  *T     `json:"data"`
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func GetServiceResponseOk[T any](data *T) ServiceResponse[T] {
	return ServiceResponse[T]{
		Data: data,
	}
}

func GetServiceResponseError(kind string, err error) ServiceResponse[any] {
	return ServiceResponse[any]{
		Error: err.Error(),
		Kind:  kind,
	}
}
