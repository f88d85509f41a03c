// Package zeroconf advertises the sensor daemon's HTTP API over mDNS/DNS-SD.
package zeroconf

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/grandcat/zeroconf"

	"github.com/micro-nova/imx585-go/internal/models"
)

const serviceType = "_imx585._tcp"

// Service is one mDNS registration.
type Service struct {
	name string
	port int
	txt  []string
}

// New describes a registration for the sensor in info, reachable on port.
func New(name string, port int, info models.Info) *Service {
	return &Service{name: name, port: port, txt: TXTRecords(info)}
}

// TXTRecords builds the DNS-SD TXT records for info.
func TXTRecords(info models.Info) []string {
	return []string{
		"version=" + info.Version,
		"variant=" + info.Variant,
		"lanes=" + strconv.Itoa(info.Lanes),
		"path=/api",
	}
}

// Start registers the service and blocks until ctx is done, then
// unregisters it.
func (s *Service) Start(ctx context.Context) error {
	server, err := zeroconf.Register(s.name, serviceType, "local.", s.port, s.txt, nil)
	if err != nil {
		return fmt.Errorf("zeroconf register: %w", err)
	}
	slog.Info("zeroconf: registered", "name", s.name, "type", serviceType, "port", s.port)

	<-ctx.Done()

	server.Shutdown()
	slog.Info("zeroconf: unregistered", "name", s.name)
	return nil
}
