package handler

import (
	"errors"

	"github.com/ogurasousui/codex-employee-record/internal/core/employee"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	// ハンドラ内で生成済みのステータスはそのまま返します。
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken),
		errors.Is(err, employee.ErrInvalidDate),
		errors.Is(err, employee.ErrInvalidRecord),
		errors.Is(err, employee.ErrDomain),
		errors.Is(err, employee.ErrRange),
		errors.Is(err, employee.ErrAge),
		errors.Is(err, employee.ErrTemporal),
		errors.Is(err, employee.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, employee.ErrPrecondition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, employee.ErrNationalIDAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
