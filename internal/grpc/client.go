package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const callTimeout = 3 * time.Second

// MovieInfo краткие сведения о фильме.
type MovieInfo struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Genre         string  `json:"genre"`
	Director      string  `json:"director"`
	ReleaseDate   string  `json:"release_date"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// UserInfo краткие сведения о пользователе.
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Client клиент CatalogInterService. Используется утилитой catalogctl и соседними сервисами модуля.
type Client struct {
	conn   *gogrpc.ClientConn
	logger *slog.Logger
}

// NewClient создает клиент. Соединение устанавливается лениво, при первом вызове.
func NewClient(addr string, logger *slog.Logger, opts ...gogrpc.DialOption) (*Client, error) {
	logger.Info("Creating catalog gRPC client", slog.String("address", addr))
	opts = append([]gogrpc.DialOption{gogrpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := gogrpc.NewClient(addr, opts...)
	if err != nil {
		logger.Error("Failed to create catalog gRPC client", slog.String("address", addr), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create grpc client for %s: %w", addr, err)
	}
	return &Client{conn: conn, logger: logger}, nil
}

func (c *Client) invoke(ctx context.Context, method string, id int64, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if err := c.conn.Invoke(callCtx, fullMethod(method), wrapperspb.Int64(id), out); err != nil {
		st, _ := status.FromError(err)
		c.logger.ErrorContext(ctx, "Catalog gRPC call failed",
			slog.String("method", method),
			slog.Int64("id", id),
			slog.String("code", st.Code().String()),
			slog.String("message", st.Message()))
		return fmt.Errorf("grpc %s failed for id %d: %w", method, id, err)
	}
	return nil
}

func (c *Client) CheckMovieExists(ctx context.Context, movieID int64) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, "CheckMovieExists", movieID, out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *Client) GetMovieInfo(ctx context.Context, movieID int64) (MovieInfo, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "GetMovieInfo", movieID, out); err != nil {
		return MovieInfo{}, err
	}
	f := out.GetFields()
	return MovieInfo{
		ID:            int64(f["id"].GetNumberValue()),
		Title:         f["title"].GetStringValue(),
		Genre:         f["genre"].GetStringValue(),
		Director:      f["director"].GetStringValue(),
		ReleaseDate:   f["release_date"].GetStringValue(),
		AverageRating: f["average_rating"].GetNumberValue(),
		ReviewCount:   int(f["review_count"].GetNumberValue()),
	}, nil
}

func (c *Client) GetUserInfo(ctx context.Context, userID int64) (UserInfo, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "GetUserInfo", userID, out); err != nil {
		return UserInfo{}, err
	}
	f := out.GetFields()
	return UserInfo{
		ID:       int64(f["id"].GetNumberValue()),
		Username: f["username"].GetStringValue(),
		Email:    f["email"].GetStringValue(),
	}, nil
}

// Close закрывает gRPC соединение.
func (c *Client) Close() error {
	c.logger.Info("Closing catalog gRPC connection")
	return c.conn.Close()
}
