package telemetry

import (
	"context"

	"github.com/eryajf/promwrite"
)

// RemoteWritePusher pushes series to a Prometheus remote-write endpoint.
type RemoteWritePusher struct {
	client *promwrite.Client
}

func NewRemoteWritePusher(url string) *RemoteWritePusher {
	return &RemoteWritePusher{client: promwrite.NewClient(url)}
}

func (p *RemoteWritePusher) Push(ctx context.Context, series []promwrite.TimeSeries) error {
	_, err := p.client.Write(ctx, &promwrite.WriteRequest{TimeSeries: series})
	return err
}
