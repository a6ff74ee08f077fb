package errors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/structpb"
)

type Error struct {
	code       ERR
	message    string
	wrappedErr error
	data       ErrDataI
}

type Interface interface {
	Error() string
	Is(target error) bool
	As(target interface{}) bool
	Unwrap() error

	Code() ERR
	Message() string
	WrappedErr() error
	Data() ErrDataI
}

func (e *Error) Error() string {
	// Error() can be called on wrapped errors, which can be nil, for example predefined errors
	if e == nil {
		return "<nil>"
	}

	dataMsg := ""
	if e.Data() != nil {
		dataMsg = e.data.Error()
	}

	if e.WrappedErr() == nil {
		if dataMsg == "" {
			return fmt.Sprintf("Error: %s (error code: %d), Message: %v", e.code, e.code, e.message)
		}

		return fmt.Sprintf("Error: %s (error code: %d), Message: %v, Data: %s", e.code, e.code, e.message, dataMsg)
	}

	if dataMsg == "" {
		return fmt.Sprintf("Error: %s (error code: %d), Message: %v, Wrapped err: %v", e.code, e.code, e.message, e.wrappedErr)
	}

	return fmt.Sprintf("Error: %s (error code: %d), Message: %v, Wrapped err: %v, Data: %s", e.code, e.code, e.message, e.wrappedErr, dataMsg)
}

// Is reports whether error codes match.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}

	targetError, ok := target.(*Error)
	if !ok {
		return strings.Contains(e.Error(), target.Error())
	}

	if e.code == targetError.code {
		return true
	}

	if e.wrappedErr == nil {
		return false
	}

	// Unwrap the current error and recursively call Is on the unwrapped error
	if unwrapped := errors.Unwrap(e); unwrapped != nil {
		if ue, ok := unwrapped.(*Error); ok {
			return ue.Is(target)
		}
	}

	return false
}

func (e *Error) As(target interface{}) bool {
	if e == nil {
		return false
	}

	if targetErr, ok := target.(**Error); ok {
		*targetErr = e
		return true
	}

	// check if Data matches the target type
	if e.data != nil {
		if data, ok := e.data.(error); ok {
			if errors.As(data, target) {
				return true
			}
		}
	}

	if e.wrappedErr != nil {
		// use reflect to see if the value is nil. If it is, return false
		if v := reflect.ValueOf(e.wrappedErr); v.Kind() == reflect.Ptr && v.IsNil() {
			return false
		}

		return errors.As(e.wrappedErr, target)
	}

	return false
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.wrappedErr
}

func (e *Error) Code() ERR {
	if e == nil {
		return ERR_UNKNOWN
	}

	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}

	return e.message
}

func (e *Error) WrappedErr() error {
	if e == nil {
		return nil
	}

	return e.wrappedErr
}

func (e *Error) Data() ErrDataI {
	if e == nil {
		return nil
	}

	return e.data
}

func (e *Error) SetData(key string, value interface{}) {
	if e.data == nil {
		e.data = &ErrData{}
	}

	e.data.SetData(key, value)
}

func (e *Error) GetData(key string) interface{} {
	if e.data == nil {
		return nil
	}

	return e.data.GetData(key)
}

// New creates a new *Error. If the last parameter is an error it becomes the wrapped error, the
// remaining parameters are used to format the message.
func New(code ERR, message string, params ...interface{}) *Error {
	var wErr error

	if len(params) > 0 {
		lastParam := params[len(params)-1]

		switch err := lastParam.(type) {
		case *Error:
			wErr = err
			params = params[:len(params)-1]
		case error:
			wErr = err
			params = params[:len(params)-1]
		}
	}

	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}

	if _, ok := ERR_name[int32(code)]; !ok {
		return &Error{
			code:       code,
			message:    "invalid error code",
			wrappedErr: wErr,
		}
	}

	return &Error{
		code:       code,
		message:    message,
		wrappedErr: wErr,
	}
}

// WrapGRPC converts err into a gRPC status error. Every *Error in the wrap chain is carried as a
// structpb.Struct detail so that UnwrapGRPC can rebuild the chain on the other side.
// NOTE: returns error and not *Error, a typed nil would not compare equal to nil in generated code
func WrapGRPC(err error) error {
	if err == nil {
		return nil
	}

	castedErr, ok := err.(*Error)
	if !ok {
		st := status.New(codes.Unknown, err.Error())

		details, pbErr := detailsFor(ERR_ERROR, err.Error(), nil)
		if pbErr != nil {
			return New(ERR_ERROR, "error serializing error details", err)
		}

		st, detailsErr := st.WithDetails(details)
		if detailsErr != nil {
			return New(ERR_ERROR, "error adding details to the error's gRPC status", err)
		}

		return st.Err()
	}

	// already wrapped, don't wrap it with gRPC details again
	if castedErr.wrappedErr != nil {
		if _, ok := status.FromError(castedErr.wrappedErr); ok {
			return err
		}
	}

	var wrappedErrDetails []protoadapt.MessageV1

	var current error = castedErr
	for current != nil {
		tErr, ok := current.(*Error)
		if !ok {
			details, pbErr := detailsFor(ERR_ERROR, current.Error(), nil)
			if pbErr != nil {
				return New(ERR_ERROR, "error serializing error details", err)
			}

			wrappedErrDetails = append(wrappedErrDetails, details)

			break
		}

		details, pbErr := detailsFor(tErr.code, tErr.message, tErr.data)
		if pbErr != nil {
			return New(ERR_ERROR, "error serializing error details", err)
		}

		wrappedErrDetails = append(wrappedErrDetails, details)
		current = tErr.wrappedErr
	}

	st := status.New(ErrorCodeToGRPCCode(castedErr.code), castedErr.message)

	st, detailsErr := st.WithDetails(wrappedErrDetails...)
	if detailsErr != nil {
		return New(ERR_ERROR, "error adding details to the error's gRPC status", err)
	}

	return st.Err()
}

func detailsFor(code ERR, message string, data ErrDataI) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"code":    int32(code),
		"message": message,
	}

	if data != nil {
		fields["data"] = string(data.EncodeErrorData())
	}

	return structpb.NewStruct(fields)
}

// UnwrapGRPC rebuilds an *Error chain from a status error created by WrapGRPC.
func UnwrapGRPC(err error) *Error {
	if err == nil {
		return nil
	}

	if tErr, ok := err.(*Error); ok {
		return tErr
	}

	st, ok := status.FromError(err)
	if !ok {
		return &Error{
			code:       ERR_ERROR,
			message:    "error unwrapping gRPC details",
			wrappedErr: err,
		}
	}

	if len(st.Details()) == 0 {
		return &Error{
			code:    grpcCodeToErrorCode(st.Code()),
			message: st.Message(),
		}
	}

	var prevErr, currErr *Error

	for i := len(st.Details()) - 1; i >= 0; i-- {
		detail, ok := st.Details()[i].(*structpb.Struct)
		if !ok {
			continue
		}

		fields := detail.GetFields()
		code := ERR(int32(fields["code"].GetNumberValue()))

		currErr = New(code, "")
		currErr.message = fields["message"].GetStringValue()

		if dataValue, ok := fields["data"]; ok {
			data, dataErr := GetErrorData(code, []byte(dataValue.GetStringValue()))
			if dataErr == nil {
				currErr.data = data
			}
		}

		// if we moved up higher in the hierarchy
		if prevErr != nil {
			currErr.wrappedErr = prevErr
		}

		prevErr = currErr
	}

	if currErr == nil {
		return &Error{
			code:    ERR_ERROR,
			message: err.Error(),
		}
	}

	return currErr
}

// ErrorCodeToGRPCCode maps application specific error codes to gRPC status codes.
func ErrorCodeToGRPCCode(code ERR) codes.Code {
	switch code {
	case ERR_UNKNOWN:
		return codes.Unknown
	case ERR_INVALID_ARGUMENT:
		return codes.InvalidArgument
	case ERR_THRESHOLD_EXCEEDED:
		return codes.ResourceExhausted
	case ERR_NOT_FOUND, ERR_BLOCK_NOT_FOUND, ERR_TX_NOT_FOUND, ERR_UTXO_NOT_FOUND:
		return codes.NotFound
	case ERR_SERVICE_UNAVAILABLE, ERR_STORAGE_UNAVAILABLE:
		return codes.Unavailable
	case ERR_CONTEXT_CANCELED:
		return codes.Canceled
	default:
		return codes.Internal
	}
}

func grpcCodeToErrorCode(code codes.Code) ERR {
	switch code {
	case codes.InvalidArgument:
		return ERR_INVALID_ARGUMENT
	case codes.NotFound:
		return ERR_NOT_FOUND
	case codes.ResourceExhausted:
		return ERR_THRESHOLD_EXCEEDED
	case codes.Unavailable:
		return ERR_SERVICE_UNAVAILABLE
	case codes.Canceled:
		return ERR_CONTEXT_CANCELED
	case codes.Unknown:
		return ERR_UNKNOWN
	default:
		return ERR_ERROR
	}
}

func Join(errs ...error) error {
	var messages []string

	for _, err := range errs {
		if err != nil {
			messages = append(messages, err.Error())
		}
	}

	if len(messages) == 0 {
		return nil
	}

	return errors.New(strings.Join(messages, ", "))
}

func Is(err, target error) bool {
	if isGRPCWrappedError(err) {
		err = UnwrapGRPC(err)
	}

	return errors.Is(err, target)
}

func AsData(err error, target interface{}) bool {
	if isGRPCWrappedError(err) {
		err = UnwrapGRPC(err)
	}

	// cycle through the wrapped errors and check if any of them match the target
	if castedErr, ok := err.(*Error); ok {
		if castedErr.data != nil {
			if data, ok := castedErr.data.(error); ok && errors.As(data, target) {
				return true
			}
		}

		if castedErr.wrappedErr != nil {
			return AsData(castedErr.wrappedErr, target)
		}
	}

	return false
}

func As(err error, target any) bool {
	if isGRPCWrappedError(err) {
		err = UnwrapGRPC(err)
	}

	return errors.As(err, target)
}

func isGRPCWrappedError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(*Error); ok {
		return false
	}

	_, ok := status.FromError(err)

	return ok
}
