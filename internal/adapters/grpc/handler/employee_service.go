package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// EmployeeServiceName は gRPC のサービス名です。
const EmployeeServiceName = "employee.v1.EmployeeService"

// EmployeeServiceServer は EmployeeService のサーバーインターフェースです。
// メッセージは google.protobuf.Struct で表現します。
type EmployeeServiceServer interface {
	CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	QuoteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(EmployeeServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// EmployeeServiceDesc は EmployeeService の ServiceDesc です。
var EmployeeServiceDesc = grpc.ServiceDesc{
	ServiceName: EmployeeServiceName,
	HandlerType: (*EmployeeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateEmployee", Handler: unaryHandler("CreateEmployee", EmployeeServiceServer.CreateEmployee)},
		{MethodName: "GetEmployee", Handler: unaryHandler("GetEmployee", EmployeeServiceServer.GetEmployee)},
		{MethodName: "UpdateEmployee", Handler: unaryHandler("UpdateEmployee", EmployeeServiceServer.UpdateEmployee)},
		{MethodName: "DeleteEmployee", Handler: unaryHandler("DeleteEmployee", EmployeeServiceServer.DeleteEmployee)},
		{MethodName: "ListEmployees", Handler: unaryHandler("ListEmployees", EmployeeServiceServer.ListEmployees)},
		{MethodName: "QuoteEmployee", Handler: unaryHandler("QuoteEmployee", EmployeeServiceServer.QuoteEmployee)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "employee/v1/employee_service",
}

// RegisterEmployeeServiceServer は srv を gRPC サーバーに登録します。
func RegisterEmployeeServiceServer(s grpc.ServiceRegistrar, srv EmployeeServiceServer) {
	s.RegisterService(&EmployeeServiceDesc, srv)
}

// FullMethodName は EmployeeService のメソッドの完全名を返します。
func FullMethodName(method string) string {
	return "/" + EmployeeServiceName + "/" + method
}

func unaryHandler(method string, call unaryMethod) grpc.MethodHandler {
	fullMethod := FullMethodName(method)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EmployeeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(EmployeeServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
