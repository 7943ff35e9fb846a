package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient asks the server's gRPC health service whether it is serving.
type HealthClient struct {
	address string
	service string
	conn    *grpc.ClientConn
	client  healthpb.HealthClient
}

// NewHealthClient prepares a connection to address. The connection is lazy:
// nothing is dialed until the first Check.
func NewHealthClient(address, service string) (*HealthClient, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc client %s: %w", address, err)
	}
	return &HealthClient{
		address: address,
		service: service,
		conn:    conn,
		client:  healthpb.NewHealthClient(conn),
	}, nil
}

// Check reports whether the server answered SERVING.
func (h *HealthClient) Check(ctx context.Context) (bool, error) {
	resp, err := h.client.Check(ctx, &healthpb.HealthCheckRequest{Service: h.service})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

func (h *HealthClient) Close() error {
	return h.conn.Close()
}
