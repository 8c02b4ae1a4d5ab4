package grpcgov

import (
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/multisig/engine"
	"xdao.co/multisig/model"
)

// kindCode maps an engine error kind to both the gRPC transport code and the
// stable boundary code carried in the status message.
func kindCode(kind engine.Kind) (codes.Code, model.ErrorCode) {
	switch kind {
	case engine.KindUnauthorized:
		return codes.PermissionDenied, model.ErrUnauthorized
	case engine.KindNotFound:
		return codes.NotFound, model.ErrNotFound
	case engine.KindQuorumNotMet:
		return codes.FailedPrecondition, model.ErrQuorumNotMet
	case engine.KindQuorumUnreachable:
		return codes.FailedPrecondition, model.ErrQuorumUnreachable
	case engine.KindNothingToRemove:
		return codes.FailedPrecondition, model.ErrNothingToRemove
	case engine.KindInvalidQuorum:
		return codes.InvalidArgument, model.ErrInvalidQuorum
	case engine.KindInvalidCall, engine.KindInvalidConfig:
		return codes.InvalidArgument, model.ErrInvalidCall
	default:
		return codes.Internal, model.ErrInternal
	}
}

// mapErr converts an engine error into a gRPC status. The status message is
// "<CODE>: <human message>" so clients can recover the boundary code even
// where one transport code covers several kinds.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	kind := engine.ErrKind(err)
	if kind == "" {
		return status.Error(codes.Internal, string(model.ErrInternal)+": "+err.Error())
	}
	grpcCode, code := kindCode(kind)
	return status.Error(grpcCode, string(code)+": "+err.Error())
}

func badRequest(code model.ErrorCode, msg string) error {
	grpcCode := codes.InvalidArgument
	if code == model.ErrBadSignature || code == model.ErrStaleRequest {
		grpcCode = codes.Unauthenticated
	}
	return status.Error(grpcCode, string(code)+": "+msg)
}

// mapRPC converts a gRPC error back into a *model.CodedError.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	msg := st.Message()
	if code, rest, found := cutCode(msg); found {
		return model.NewError(code, rest)
	}

	switch st.Code() {
	case codes.PermissionDenied:
		return model.NewError(model.ErrUnauthorized, msg)
	case codes.NotFound:
		return model.NewError(model.ErrNotFound, msg)
	case codes.Unauthenticated:
		return model.NewError(model.ErrBadSignature, msg)
	case codes.InvalidArgument:
		return model.NewError(model.ErrInvalidRequest, msg)
	default:
		return err
	}
}

func cutCode(msg string) (model.ErrorCode, string, bool) {
	head, rest, found := strings.Cut(msg, ": ")
	if !found {
		return "", "", false
	}
	switch code := model.ErrorCode(head); code {
	case model.ErrInvalidRequest, model.ErrBadSignature, model.ErrStaleRequest,
		model.ErrUnauthorized,
		model.ErrNotFound, model.ErrQuorumNotMet, model.ErrInvalidQuorum,
		model.ErrQuorumUnreachable, model.ErrNothingToRemove,
		model.ErrInvalidCall, model.ErrInternal:
		return code, rest, true
	default:
		return "", "", false
	}
}
