package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"yangstage/internal/adapters"
	"yangstage/internal/ports"
	"yangstage/internal/types"
)

// DialFunc opens a dispatcher for the configured device.
type DialFunc func(ctx context.Context, device types.DeviceConfig, decoder ports.DecoderPort) (ports.DispatcherPort, error)

// CompilerFactory builds a compiler invoker for an executable and output
// format.
type CompilerFactory func(executable string, format string) ports.CompilerPort

type Service struct {
	Dial         DialFunc
	Decoder      ports.DecoderPort
	Materializer ports.MaterializerPort
	Manifest     ports.ManifestPort
	Compiler     CompilerFactory
	Data         ports.DataPayloadPort
	Clock        func() time.Time
	NewRunID     func() string
}

func NewService() Service {
	searchPath := adapters.NewSearchPathAdapter()
	return Service{
		Dial:         DialDevice,
		Decoder:      adapters.NewXMLDecoder(),
		Materializer: searchPath,
		Manifest:     searchPath,
		Compiler: func(executable string, format string) ports.CompilerPort {
			return adapters.NewExecCompilerAdapter(executable, format)
		},
		Data:     adapters.NewDataFileAdapter(),
		Clock:    time.Now,
		NewRunID: uuid.NewString,
	}
}

// DialDevice serves schemas from device.Dir when set and otherwise opens
// a NETCONF session over SSH.
func DialDevice(ctx context.Context, device types.DeviceConfig, decoder ports.DecoderPort) (ports.DispatcherPort, error) {
	if strings.TrimSpace(device.Dir) != "" {
		return adapters.NewDirectoryDispatcher(device.Dir, decoder), nil
	}
	dispatcher, err := adapters.DialNetconf(ctx, device, decoder)
	if err != nil {
		return nil, err
	}
	return dispatcher, nil
}
