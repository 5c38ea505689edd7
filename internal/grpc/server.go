// Package grpc обслуживает межсервисные запросы каталога: проверку фильма и краткие сведения
// о фильме и пользователе. Сообщения берутся из well-known типов protobuf.
package grpc

import (
	"context"
	"log/slog"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"cinevault/internal/domain"
	"cinevault/internal/mapper"
	"cinevault/internal/service"
)

const ServiceName = "cinevault.CatalogInterService"

// CatalogServer методы сервиса CatalogInterService.
type CatalogServer interface {
	CheckMovieExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
	GetMovieInfo(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	GetUserInfo(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
}

// ServiceDesc описание сервиса для регистрации на grpc.Server.
var ServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{MethodName: "CheckMovieExists", Handler: unaryHandler("CheckMovieExists", CatalogServer.CheckMovieExists)},
		{MethodName: "GetMovieInfo", Handler: unaryHandler("GetMovieInfo", CatalogServer.GetMovieInfo)},
		{MethodName: "GetUserInfo", Handler: unaryHandler("GetUserInfo", CatalogServer.GetUserInfo)},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "cinevault/catalog.proto",
}

func RegisterCatalogServer(s gogrpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Resp any](method string, call func(CatalogServer, context.Context, *wrapperspb.Int64Value) (Resp, error)) func(any, context.Context, func(any) error, gogrpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
		in := new(wrapperspb.Int64Value)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServer), ctx, in)
		}
		info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CatalogServer), ctx, req.(*wrapperspb.Int64Value))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Server реализует CatalogServer поверх сервисов каталога.
type Server struct {
	movies *service.MovieService
	users  *service.UserService
	logger *slog.Logger
}

var _ CatalogServer = (*Server)(nil)

// NewServer создает новый экземпляр gRPC сервера.
func NewServer(svc *service.Services, logger *slog.Logger) *Server {
	return &Server{
		movies: svc.Movies,
		users:  svc.Users,
		logger: logger,
	}
}

// toStatus переводит ошибку сервиса в статус gRPC.
func toStatus(err error) error {
	switch service.KindOf(err) {
	case service.KindNotFound:
		return status.Error(codes.NotFound, service.MessageOf(err))
	case service.KindValidation:
		return status.Error(codes.InvalidArgument, service.MessageOf(err))
	case service.KindConflict:
		return status.Error(codes.AlreadyExists, service.MessageOf(err))
	}
	return status.Error(codes.Internal, service.MessageOf(err))
}

func (s *Server) CheckMovieExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	s.logger.InfoContext(ctx, "gRPC CheckMovieExists called", slog.Int64("movieID", req.GetValue()))
	if req.GetValue() <= 0 {
		s.logger.WarnContext(ctx, "gRPC CheckMovieExists called with invalid movie id")
		return nil, status.Errorf(codes.InvalidArgument, "movie id must be positive")
	}

	_, err := s.movies.Get(ctx, req.GetValue())
	if service.KindOf(err) == service.KindNotFound {
		s.logger.InfoContext(ctx, "Movie does not exist (checked via gRPC)", slog.Int64("movieID", req.GetValue()))
		return wrapperspb.Bool(false), nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to check movie existence", slog.Int64("movieID", req.GetValue()), slog.String("error", err.Error()))
		return nil, toStatus(err)
	}
	return wrapperspb.Bool(true), nil
}

func (s *Server) GetMovieInfo(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	s.logger.InfoContext(ctx, "gRPC GetMovieInfo called", slog.Int64("movieID", req.GetValue()))
	if req.GetValue() <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "movie id must be positive")
	}

	movie, err := s.movies.Get(ctx, req.GetValue())
	if err != nil {
		s.logger.WarnContext(ctx, "GetMovieInfo failed", slog.Int64("movieID", req.GetValue()), slog.String("error", err.Error()))
		return nil, toStatus(err)
	}
	return movieInfo(movie)
}

func (s *Server) GetUserInfo(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	s.logger.InfoContext(ctx, "gRPC GetUserInfo called", slog.Int64("userID", req.GetValue()))
	if req.GetValue() <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "user id must be positive")
	}

	user, err := s.users.Get(ctx, req.GetValue())
	if err != nil {
		s.logger.WarnContext(ctx, "GetUserInfo failed", slog.Int64("userID", req.GetValue()), slog.String("error", err.Error()))
		return nil, toStatus(err)
	}
	resp := mapper.User(user)
	st, err := structpb.NewStruct(map[string]any{
		"id":         resp.ID,
		"username":   resp.Username,
		"email":      resp.Email,
		"created_at": resp.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode user info: %v", err)
	}
	return st, nil
}

func movieInfo(movie *domain.Movie) (*structpb.Struct, error) {
	resp := mapper.Movie(movie)
	var releaseDate any
	if resp.ReleaseDate != nil {
		releaseDate = resp.ReleaseDate.String()
	}
	st, err := structpb.NewStruct(map[string]any{
		"id":             resp.ID,
		"title":          resp.Title,
		"genre":          resp.Genre,
		"director":       resp.Director,
		"release_date":   releaseDate,
		"average_rating": resp.AverageRating,
		"review_count":   resp.ReviewCount,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode movie info: %v", err)
	}
	return st, nil
}
