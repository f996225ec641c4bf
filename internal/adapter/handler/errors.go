package handler

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/cocktail-pantry/internal/adapter/storage"
	"github.com/rl1809/cocktail-pantry/internal/core/engine"
	"github.com/rl1809/cocktail-pantry/internal/core/service"
)

// errorKind groups service errors by how a transport should report them.
type errorKind int

const (
	kindInternal errorKind = iota
	kindInvalid
	kindNotFound
	kindUnprocessable
	kindConflict
)

func classify(err error) errorKind {
	switch {
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, engine.ErrInvalidQuantity):
		return kindInvalid
	case errors.Is(err, service.ErrNotFound):
		return kindNotFound
	case errors.Is(err, service.ErrUnknownUnit), errors.Is(err, engine.ErrIncompatibleUnits):
		return kindUnprocessable
	case errors.Is(err, service.ErrLockTimeout), errors.Is(err, storage.ErrOptimisticLock):
		return kindConflict
	default:
		return kindInternal
	}
}

func httpStatus(err error) int {
	switch classify(err) {
	case kindInvalid:
		return http.StatusBadRequest
	case kindNotFound:
		return http.StatusNotFound
	case kindUnprocessable:
		return http.StatusUnprocessableEntity
	case kindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func grpcError(err error) error {
	switch classify(err) {
	case kindInvalid:
		return status.Error(codes.InvalidArgument, err.Error())
	case kindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case kindUnprocessable:
		return status.Error(codes.FailedPrecondition, err.Error())
	case kindConflict:
		return status.Error(codes.Aborted, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
